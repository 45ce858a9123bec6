package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"recycle_portal_backend/platform/config"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte // raw file bytes (will be base64-encoded for Brevo)
	FileName string // e.g. "beoordelen-qr.png"
	MIMEType string // e.g. "image/png"
}

// Sender delivers customer emails about counter offers.
type Sender interface {
	SendCounterOfferProposalEmail(ctx context.Context, toEmail string, proposal CounterOfferProposal) error
	SendCounterOfferAcceptedEmail(ctx context.Context, toEmail string, outcome CounterOfferOutcome) error
	SendCounterOfferDeclinedEmail(ctx context.Context, toEmail string, outcome CounterOfferOutcome) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

type NoopSender struct{}

func (NoopSender) SendCounterOfferProposalEmail(ctx context.Context, toEmail string, proposal CounterOfferProposal) error {
	return nil
}

func (NoopSender) SendCounterOfferAcceptedEmail(ctx context.Context, toEmail string, outcome CounterOfferOutcome) error {
	return nil
}

func (NoopSender) SendCounterOfferDeclinedEmail(ctx context.Context, toEmail string, outcome CounterOfferOutcome) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

type BrevoSender struct {
	apiKey    string
	fromName  string
	fromEmail string
	endpoint  string
	client    *http.Client
}

type brevoAttachment struct {
	Content string `json:"content"` // base64-encoded file content
	Name    string `json:"name"`
}

type brevoEmailRequest struct {
	Sender struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"sender"`
	To []struct {
		Email string `json:"email"`
	} `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

// NewSender builds the sender for the configured provider.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	switch cfg.GetEmailProvider() {
	case "smtp":
		return NewSMTPSender(cfg.GetSMTPHost(), cfg.GetSMTPPort(), cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName()), nil
	case "", "brevo":
		return NewBrevoSender(cfg.GetBrevoAPIKey(), cfg.GetEmailFromAddress(), cfg.GetEmailFromName()), nil
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.GetEmailProvider())
	}
}

// NewBrevoSender creates a sender on the Brevo transactional email API.
func NewBrevoSender(apiKey, fromEmail, fromName string) *BrevoSender {
	return &BrevoSender{
		apiKey:    apiKey,
		fromName:  fromName,
		fromEmail: fromEmail,
		endpoint:  brevoEndpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *BrevoSender) SendCounterOfferProposalEmail(ctx context.Context, toEmail string, proposal CounterOfferProposal) error {
	msg, err := counterOfferProposalMessage(proposal)
	if err != nil {
		return err
	}
	return b.sendWithAttachments(ctx, toEmail, msg.subject, msg.html, msg.attachments...)
}

func (b *BrevoSender) SendCounterOfferAcceptedEmail(ctx context.Context, toEmail string, outcome CounterOfferOutcome) error {
	msg, err := counterOfferAcceptedMessage(outcome)
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, msg.subject, msg.html)
}

func (b *BrevoSender) SendCounterOfferDeclinedEmail(ctx context.Context, toEmail string, outcome CounterOfferOutcome) error {
	msg, err := counterOfferDeclinedMessage(outcome)
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, msg.subject, msg.html)
}

func (b *BrevoSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return b.send(ctx, toEmail, subject, htmlContent)
}

func (b *BrevoSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	return b.sendWithAttachments(ctx, toEmail, subject, htmlContent)
}

func (b *BrevoSender) sendWithAttachments(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	payload := brevoEmailRequest{
		Subject:     subject,
		HTMLContent: htmlContent,
	}
	payload.Sender.Name = b.fromName
	payload.Sender.Email = b.fromEmail
	payload.To = []struct {
		Email string `json:"email"`
	}{{Email: toEmail}}

	for _, att := range attachments {
		payload.Attachment = append(payload.Attachment, brevoAttachment{
			Content: base64.StdEncoding.EncodeToString(att.Content),
			Name:    att.FileName,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("brevo send failed: status %d: %s", resp.StatusCode, string(data))
	}

	return nil
}
