package services

import (
	"context"
	"fmt"
	"log"

	"eventboard/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendEventPublished notifies the initiator that their event passed moderation,
// using the "event_published" template.
func (s *emailService) SendEventPublished(ctx context.Context, data *domain.ModerationEmailData) error {
	return s.send("event_published", data)
}

// SendEventRejected notifies the initiator that their event was rejected,
// using the "event_rejected" template.
func (s *emailService) SendEventRejected(ctx context.Context, data *domain.ModerationEmailData) error {
	return s.send("event_rejected", data)
}

func (s *emailService) send(templateName string, data *domain.ModerationEmailData) error {
	if data == nil {
		return fmt.Errorf("moderation email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	log.Printf("[EMAIL] %s email sent to %s", templateName, data.Email)
	return nil
}
