package http

import (
	"net/http"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/service"
	"bora-alugar-backend/internal/utils"
)

type AdminHandler struct {
	adminSvc service.AdminService
}

func NewAdminHandler(adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// ListKYC defaults to pending requests
func (h *AdminHandler) ListKYC(w http.ResponseWriter, r *http.Request) {
	status := domain.KYCStatus(r.URL.Query().Get("status"))
	reqs, err := h.adminSvc.ListKYCRequests(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[kycResponse]{Items: mapKYCs(reqs), Total: int32(len(reqs))})
}

func (h *AdminHandler) ApproveKYC(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	kyc, err := h.adminSvc.ApproveKYC(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapKYC(kyc))
}

func (h *AdminHandler) RejectKYC(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req rejectRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	kyc, err := h.adminSvc.RejectKYC(r.Context(), userID(r), id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapKYC(kyc))
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, size := page(r)
	users, total, err := h.adminSvc.ListUsers(r.Context(), r.URL.Query().Get("q"), p, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[userResponse]{Items: mapUsers(users), Total: total, Page: p, PageSize: size})
}

func (h *AdminHandler) SetUserPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req adminPlanRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var expires *time.Time
	if req.ExpiresOn != "" {
		t, err := utils.ParseDate(req.ExpiresOn)
		if err != nil {
			writeError(w, r, &service.ValidationError{Fields: map[string]string{"expiresOn": err.Error()}})
			return
		}
		expires = &t
	}
	user, err := h.adminSvc.SetUserPlan(r.Context(), userID(r), id, domain.Plan(req.Plan), expires)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(user))
}

func (h *AdminHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.adminSvc.DeleteItem(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
