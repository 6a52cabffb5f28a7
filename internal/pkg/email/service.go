// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/config"
)

// Transport delivers a rendered email
type Transport interface {
	Send(ctx context.Context, email *Email) error
}

// EmailService renders and sends account emails
type EmailService struct {
	config    *config.Config
	transport Transport
	templates map[EmailType]*template.Template
	log       *logrus.Logger
}

// NewEmailService creates an email service for the configured provider
func NewEmailService(cfg *config.Config, log *logrus.Logger) (*EmailService, error) {
	var transport Transport
	switch cfg.Email.Provider {
	case "smtp":
		transport = newSMTPTransport(cfg.Email)
	case "", "log":
		transport = &logTransport{log: log}
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Email.Provider)
	}
	return NewEmailServiceWithTransport(cfg, transport, log), nil
}

// NewEmailServiceWithTransport creates an email service that sends through transport
func NewEmailServiceWithTransport(cfg *config.Config, transport Transport, log *logrus.Logger) *EmailService {
	return &EmailService{
		config:    cfg,
		transport: transport,
		templates: map[EmailType]*template.Template{
			EmailTypePasswordReset: template.Must(template.New("password_reset").Parse(passwordResetTemplate)),
		},
		log: log,
	}
}

// SendEmail sends an email using the configured transport
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	if err := s.transport.Send(ctx, email); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"type": email.Type,
			"to":   email.To,
		}).Error("failed to send email")
		return fmt.Errorf("failed to send %s email: %w", email.Type, err)
	}
	return nil
}

// SendPasswordResetEmail sends password reset email
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, userEmail, userName, resetToken string) error {
	data := PasswordResetData{
		EmailTemplateData: GetBaseTemplateData(
			s.siteName(),
			s.config.App.BaseURL,
			userName,
			userEmail,
		),
		ResetURL:   fmt.Sprintf("%s/reset-password?token=%s", s.config.App.BaseURL, url.QueryEscape(resetToken)),
		ExpiryTime: humanDuration(s.config.Security.PasswordResetTTL),
	}

	htmlContent, err := s.renderTemplate(EmailTypePasswordReset, data)
	if err != nil {
		return fmt.Errorf("failed to render password reset template: %w", err)
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{userEmail},
		Subject:     "Reset Your Password",
		HTMLContent: htmlContent,
		Type:        EmailTypePasswordReset,
		Data:        map[string]interface{}{"user_name": userName},
	})
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(emailType EmailType, data interface{}) (string, error) {
	tmpl, exists := s.templates[emailType]
	if !exists {
		return "", fmt.Errorf("template %s not found", emailType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", emailType, err)
	}

	return buf.String(), nil
}

func (s *EmailService) siteName() string {
	if s.config.Email.FromName != "" {
		return s.config.Email.FromName
	}
	return s.config.App.Name
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a limited time"
	case d%time.Hour == 0 && d >= time.Hour:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	default:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	}
}

// logTransport writes emails to the application log instead of sending them
type logTransport struct {
	log *logrus.Logger
}

func (t *logTransport) Send(_ context.Context, email *Email) error {
	t.log.WithFields(logrus.Fields{
		"type":    email.Type,
		"to":      email.To,
		"subject": email.Subject,
	}).Info("email delivery skipped, log provider active")
	return nil
}

const passwordResetTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.SiteName}}</h1>
        <p>Hello {{.UserName}},</p>
        <p>We received a request to reset the password of your account.</p>
        <p><a href="{{.ResetURL}}">Choose a new password</a></p>
        <p>The link is valid for {{.ExpiryTime}}. If you did not ask for it, ignore this email.</p>
        <hr>
        <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}</p>
    </div>
</body>
</html>`
