package http

import (
	"net/http"

	"bora-alugar-backend/internal/service"
)

type MessageHandler struct {
	messageSvc service.MessageService
}

func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	msg, err := h.messageSvc.Send(r.Context(), userID(r), req.ReceiverID, req.ItemID, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapMessage(msg))
}

func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	otherID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, size := page(r)
	msgs, total, err := h.messageSvc.Conversation(r.Context(), userID(r), otherID, p, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[messageResponse]{Items: mapMessages(msgs), Total: total, Page: p, PageSize: size})
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.messageSvc.Conversations(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[conversationResponse]{Items: mapConversations(convs), Total: int32(len(convs))})
}

func (h *MessageHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.messageSvc.MarkAsRead(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
