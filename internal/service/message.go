package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/repository"
)

const maxMessageLength = 2000

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    *Notifier
	events      Publisher
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, notifier *Notifier, events Publisher) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		events:      events,
	}
}

func (s *messageService) Send(ctx context.Context, senderID, receiverID int32, itemID *int32, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	v := validation{}
	v.check(content != "", "content", "is required")
	v.check(utf8.RuneCountInString(content) <= maxMessageLength, "content", "is too long")
	v.check(receiverID != senderID, "receiverId", "cannot message yourself")
	if err := v.err(); err != nil {
		return nil, err
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{SenderID: senderID, ReceiverID: receiverID, ItemID: itemID, Content: content}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, domain.ChangeEvent{
		Collection: domain.CollectionMessages,
		Op:         domain.ChangeInsert,
		ID:         msg.ID,
		Audience:   []int32{senderID, receiverID},
	})
	// Chat messages go to the device only; the inbox would duplicate the conversation list
	s.notifier.Push(ctx, receiver, sender.Name, preview(content), map[string]string{"sender_id": itoa(senderID)})
	return msg, nil
}

func (s *messageService) Conversation(ctx context.Context, userID, otherID int32, page, pageSize int32) ([]domain.Message, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.messageRepo.ListConversation(ctx, userID, otherID, page, pageSize)
}

func (s *messageService) Conversations(ctx context.Context, userID int32) ([]domain.Conversation, error) {
	return s.messageRepo.ListConversations(ctx, userID)
}

// MarkAsRead only affects messages received by userID
func (s *messageService) MarkAsRead(ctx context.Context, userID, messageID int32) error {
	if err := s.messageRepo.MarkAsRead(ctx, messageID, userID); err != nil {
		return err
	}
	s.events.Publish(ctx, domain.ChangeEvent{
		Collection: domain.CollectionMessages,
		Op:         domain.ChangeUpdate,
		ID:         messageID,
		Audience:   []int32{userID},
	})
	return nil
}

func preview(content string) string {
	const max = 80
	if utf8.RuneCountInString(content) <= max {
		return content
	}
	runes := []rune(content)
	return string(runes[:max]) + "…"
}
