package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// mailSender is the part of the SendGrid client the service uses
type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridEmailService struct {
	client   mailSender
	from     string
	fromName string
}

// NewEmailService returns a SendGrid backed sender, or NoopEmail when no API key is configured
func NewEmailService(cfg config.EmailConfig) EmailService {
	if cfg.APIKey == "" {
		logger.Info("SendGrid API key not set, outgoing email disabled")
		return NoopEmail{}
	}
	return newSendGridEmailService(sendgrid.NewSendClient(cfg.APIKey), cfg)
}

func newSendGridEmailService(client mailSender, cfg config.EmailConfig) *sendGridEmailService {
	fromName := cfg.FromName
	if fromName == "" {
		fromName = "Bora Alugar"
	}
	return &sendGridEmailService{client: client, from: cfg.From, fromName: fromName}
}

func (s *sendGridEmailService) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(toName, toEmail)

	greeting := "Olá"
	if toName != "" {
		greeting += " " + toName
	}
	plain := fmt.Sprintf("%s,\n\n%s\n\nEquipe Bora Alugar", greeting, body)
	htmlBody := fmt.Sprintf("<p>%s,</p><p>%s</p><p>Equipe Bora Alugar</p>",
		html.EscapeString(greeting), strings.ReplaceAll(html.EscapeString(body), "\n", "<br>"))

	message := mail.NewSingleEmail(from, subject, to, plain, htmlBody)

	logger.ExternalServiceCall("sendgrid", "send", "subject", subject)
	resp, err := s.client.SendWithContext(ctx, message)
	if err == nil && resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NoopEmail drops outgoing mail
type NoopEmail struct{}

func (NoopEmail) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	logger.Debug("Email disabled, dropping message", "subject", subject)
	return nil
}
