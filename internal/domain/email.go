package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named template into subject, html and text
// bodies.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// ModerationEmailData feeds the moderation-outcome templates.
type ModerationEmailData struct {
	Email      string
	EventTitle string
	Reason     string
}

// EmailService defines the contract for sending domain-level emails.
// All sends are best-effort: callers log failures and continue.
type EmailService interface {
	SendEventPublished(ctx context.Context, data *ModerationEmailData) error
	SendEventRejected(ctx context.Context, data *ModerationEmailData) error
}
