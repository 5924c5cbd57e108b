package service

import (
	"context"
	"errors"
	"strconv"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/push"
	"bora-alugar-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	if err := s.noteRepo.MarkAsRead(ctx, notificationID, userID); err != nil {
		return err
	}
	return nil
}

// Note is one message to a user. Email is sent only when requested.
type Note struct {
	UserID     int32
	Type       domain.NotificationType
	Title      string
	Message    string
	Attributes map[string]string
	Email      bool
}

// Notifier fans a note out to the inbox, the realtime hub, push and email.
// Delivery is best effort: failures are logged and never fail the caller.
type Notifier struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	push     push.Sender
	email    EmailService
	events   Publisher
}

func NewNotifier(noteRepo repository.NotificationRepository, userRepo repository.UserRepository, pusher push.Sender, email EmailService, events Publisher) *Notifier {
	if pusher == nil {
		pusher = push.Noop{}
	}
	if email == nil {
		email = NoopEmail{}
	}
	if events == nil {
		events = NoopPublisher{}
	}
	return &Notifier{noteRepo: noteRepo, userRepo: userRepo, push: pusher, email: email, events: events}
}

func (n *Notifier) Notify(ctx context.Context, note Note) {
	notif := &domain.Notification{
		UserID:     note.UserID,
		Type:       note.Type,
		Title:      note.Title,
		Message:    note.Message,
		Attributes: note.Attributes,
	}
	if err := n.noteRepo.Create(ctx, notif); err != nil {
		logger.WarnContext(ctx, "Failed to store notification", "userID", note.UserID, "type", note.Type, "error", err)
	} else {
		n.events.Publish(ctx, domain.ChangeEvent{
			Collection: domain.CollectionNotifications,
			Op:         domain.ChangeInsert,
			ID:         notif.ID,
			Audience:   []int32{note.UserID},
		})
	}

	user, err := n.userRepo.GetByID(ctx, note.UserID)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load notification recipient", "userID", note.UserID, "error", err)
		return
	}
	n.Push(ctx, user, note.Title, note.Message, note.Attributes)

	if note.Email && user.Email != "" {
		if err := n.email.Send(ctx, user.Email, user.Name, note.Title, note.Message); err != nil {
			logger.WarnContext(ctx, "Failed to send notification email", "userID", user.ID, "error", err)
		}
	}
}

// Push sends only a device notification, without an inbox entry
func (n *Notifier) Push(ctx context.Context, user *domain.User, title, body string, data map[string]string) {
	err := n.push.Send(ctx, user.PushToken, title, body, data)
	switch {
	case err == nil, errors.Is(err, push.ErrNoToken):
	case errors.Is(err, push.ErrUnregistered):
		logger.InfoContext(ctx, "Dropping stale push token", "userID", user.ID)
		if err := n.userRepo.UpdatePushToken(ctx, user.ID, ""); err != nil {
			logger.WarnContext(ctx, "Failed to clear push token", "userID", user.ID, "error", err)
		}
	default:
		logger.WarnContext(ctx, "Push delivery failed", "userID", user.ID, "error", err)
	}
}

// NoopPublisher drops change events
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, ev domain.ChangeEvent) {}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func itoa(id int32) string {
	return strconv.FormatInt(int64(id), 10)
}
