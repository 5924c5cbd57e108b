package push

import (
	"context"
	"errors"
	"fmt"

	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	ErrNoToken = errors.New("user has no push token")
	// ErrUnregistered means the device token is stale and should be forgotten
	ErrUnregistered = errors.New("push token unregistered")
)

// Sender delivers a push notification to one device
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// New returns an FCM sender when push is enabled, otherwise a no-op
func New(ctx context.Context, cfg config.PushConfig) (Sender, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	return NewFCM(ctx, cfg)
}

type FCM struct {
	client *messaging.Client
}

func NewFCM(ctx context.Context, cfg config.PushConfig) (*FCM, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase messaging: %w", err)
	}
	return &FCM{client: client}, nil
}

func (f *FCM) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return ErrNoToken
	}
	logger.ExternalServiceCall("fcm", "send", "title", title)
	id, err := f.client.Send(ctx, buildMessage(token, title, body, data))
	logger.ExternalServiceResult("fcm", "send", err, "messageID", id)
	if messaging.IsUnregistered(err) {
		return ErrUnregistered
	}
	return err
}

func buildMessage(token, title, body string, data map[string]string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{Title: title, Body: body},
					Sound: "default",
				},
			},
		},
	}
}

// Noop drops every notification; used when push is disabled
type Noop struct{}

func (Noop) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	logger.Debug("Push disabled, dropping notification", "title", title)
	return nil
}
