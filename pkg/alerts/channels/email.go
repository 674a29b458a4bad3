package channels

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/carverauto/pulse/pkg/models"
)

// EmailConfig configures the SendGrid email channel.
type EmailConfig struct {
	APIKey   string   `json:"api_key" toml:"api_key"`
	From     string   `json:"from" toml:"from"`
	FromName string   `json:"from_name,omitempty" toml:"from_name"`
	To       []string `json:"to" toml:"to"`
}

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailHandler sends plain-text alert emails through SendGrid.
type EmailHandler struct {
	cfg    EmailConfig
	client mailSender
}

func NewEmailHandler(cfg EmailConfig) (*EmailHandler, error) {
	if cfg.APIKey == "" || cfg.From == "" || len(cfg.To) == 0 {
		return nil, errEmailConfig
	}

	return newEmailHandler(cfg, sendgrid.NewSendClient(cfg.APIKey)), nil
}

func newEmailHandler(cfg EmailConfig, client mailSender) *EmailHandler {
	if cfg.FromName == "" {
		cfg.FromName = "Pulse"
	}

	return &EmailHandler{cfg: cfg, client: client}
}

func (*EmailHandler) Channel() models.AlertChannel {
	return models.ChannelEmail
}

func (h *EmailHandler) Send(ctx context.Context, alert *models.Alert) error {
	response, err := h.client.SendWithContext(ctx, h.buildMessage(alert))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("%w: status=%d body=%s", errEmailStatus, response.StatusCode, response.Body)
	}

	log.Printf("Alert %d emailed to %d recipients (status %d)", alert.ID, len(h.cfg.To), response.StatusCode)

	return nil
}

func (h *EmailHandler) buildMessage(alert *models.Alert) *mail.SGMailV3 {
	p := NewPayload(alert)
	subject := fmt.Sprintf("[%s] %s", strings.ToUpper(p.Priority), p.Title)

	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(h.cfg.FromName, h.cfg.From))
	message.Subject = subject

	personalization := mail.NewPersonalization()
	for _, to := range h.cfg.To {
		personalization.AddTos(mail.NewEmail("", to))
	}

	message.AddPersonalizations(personalization)
	message.AddContent(mail.NewContent("text/plain", emailBody(alert, p)))

	return message
}

func emailBody(alert *models.Alert, p *Payload) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", p.Message)
	fmt.Fprintf(&b, "Alert ID:  %d\n", p.AlertID)
	fmt.Fprintf(&b, "Priority:  %s\n", p.Priority)
	fmt.Fprintf(&b, "Category:  %s\n", p.Category)
	fmt.Fprintf(&b, "Resource:  %s\n", p.Resource)
	fmt.Fprintf(&b, "Source:    %s\n", p.Source)
	fmt.Fprintf(&b, "Triggered: %s\n", p.Timestamp)

	for _, key := range sortedKeys(p.Details) {
		fmt.Fprintf(&b, "%s: %v\n", key, p.Details[key])
	}

	if recs := alert.Metadata.Recommendations; len(recs) > 0 {
		b.WriteString("\nRecommendations:\n")

		for _, r := range recs {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	return b.String()
}
