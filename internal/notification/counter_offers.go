package notification

import (
	"context"
	"strings"
	"time"

	"recycle_portal_backend/internal/email"
	"recycle_portal_backend/internal/events"
	notificationoutbox "recycle_portal_backend/internal/notification/outbox"
)

const (
	templateCounterOfferProposal = "counter_offer_proposal"
	templateCounterOfferAccepted = "counter_offer_accepted"
	templateCounterOfferDeclined = "counter_offer_declined"
)

// counterOfferEmailPayload is the outbox payload of every counter-offer email.
type counterOfferEmailPayload struct {
	ToEmail            string     `json:"toEmail"`
	CounterOfferID     string     `json:"counterOfferId"`
	OrderID            string     `json:"orderId"`
	CustomerName       string     `json:"customerName,omitempty"`
	DeviceName         string     `json:"deviceName,omitempty"`
	OriginalPriceCents int64      `json:"originalPriceCents"`
	AmendedPriceCents  int64      `json:"amendedPriceCents"`
	Reason             string     `json:"reason,omitempty"`
	ReviewURL          string     `json:"reviewUrl,omitempty"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
	EvidenceCount      int        `json:"evidenceCount,omitempty"`
}

func (p counterOfferEmailPayload) proposal() email.CounterOfferProposal {
	var expiresAt time.Time
	if p.ExpiresAt != nil {
		expiresAt = *p.ExpiresAt
	}
	return email.CounterOfferProposal{
		CustomerName:       p.CustomerName,
		DeviceName:         p.DeviceName,
		OriginalPriceCents: p.OriginalPriceCents,
		AmendedPriceCents:  p.AmendedPriceCents,
		Reason:             p.Reason,
		ReviewURL:          p.ReviewURL,
		ExpiresAt:          expiresAt,
		EvidenceCount:      p.EvidenceCount,
	}
}

func (p counterOfferEmailPayload) outcome() email.CounterOfferOutcome {
	return email.CounterOfferOutcome{
		CustomerName:       p.CustomerName,
		DeviceName:         p.DeviceName,
		OriginalPriceCents: p.OriginalPriceCents,
		AmendedPriceCents:  p.AmendedPriceCents,
	}
}

func (m *Module) handleCounterOfferCreated(ctx context.Context, e events.CounterOfferCreated) error {
	expiresAt := e.ExpiresAt
	payload := counterOfferEmailPayload{
		ToEmail:            strings.TrimSpace(e.CustomerEmail),
		CounterOfferID:     e.CounterOfferID.String(),
		OrderID:            e.OrderID.String(),
		CustomerName:       e.CustomerName,
		DeviceName:         e.DeviceName,
		OriginalPriceCents: e.OriginalPriceCents,
		AmendedPriceCents:  e.AmendedPriceCents,
		Reason:             e.Reason,
		ReviewURL:          m.buildPublicURL(counterOfferPublicPath, e.Token),
		ExpiresAt:          &expiresAt,
		EvidenceCount:      e.EvidenceImageCount,
	}
	return m.dispatchCounterOfferEmail(ctx, templateCounterOfferProposal, payload)
}

func (m *Module) handleCounterOfferAccepted(ctx context.Context, e events.CounterOfferAccepted) error {
	return m.dispatchCounterOfferEmail(ctx, templateCounterOfferAccepted, counterOfferEmailPayload{
		ToEmail:            strings.TrimSpace(e.CustomerEmail),
		CounterOfferID:     e.CounterOfferID.String(),
		OrderID:            e.OrderID.String(),
		CustomerName:       e.CustomerName,
		DeviceName:         e.DeviceName,
		OriginalPriceCents: e.OriginalPriceCents,
		AmendedPriceCents:  e.AmendedPriceCents,
	})
}

func (m *Module) handleCounterOfferDeclined(ctx context.Context, e events.CounterOfferDeclined) error {
	return m.dispatchCounterOfferEmail(ctx, templateCounterOfferDeclined, counterOfferEmailPayload{
		ToEmail:            strings.TrimSpace(e.CustomerEmail),
		CounterOfferID:     e.CounterOfferID.String(),
		OrderID:            e.OrderID.String(),
		CustomerName:       e.CustomerName,
		DeviceName:         e.DeviceName,
		OriginalPriceCents: e.OriginalPriceCents,
		AmendedPriceCents:  e.AmendedPriceCents,
	})
}

// dispatchCounterOfferEmail stores the email in the outbox when one is
// configured and sends it right away otherwise.
func (m *Module) dispatchCounterOfferEmail(ctx context.Context, template string, payload counterOfferEmailPayload) error {
	if payload.ToEmail == "" {
		m.log.Info("customer has no email address; skipping counter offer email",
			"template", template,
			"counterOfferId", payload.CounterOfferID,
			"orderId", payload.OrderID,
		)
		return nil
	}

	if m.outbox != nil {
		id, err := m.outbox.Insert(ctx, notificationoutbox.InsertParams{
			Kind:     notificationoutbox.KindEmail,
			Template: template,
			Payload:  payload,
			RunAt:    m.now(),
		})
		if err != nil {
			return err
		}
		m.log.Info("counter offer email queued", "outboxId", id.String(), "template", template, "counterOfferId", payload.CounterOfferID)
		return nil
	}

	if err := m.sendCounterOfferEmail(ctx, template, payload); err != nil {
		return err
	}
	m.log.Info("counter offer email sent", "template", template, "counterOfferId", payload.CounterOfferID)
	return nil
}

func (m *Module) sendCounterOfferEmail(ctx context.Context, template string, payload counterOfferEmailPayload) error {
	switch template {
	case templateCounterOfferProposal:
		return m.sender.SendCounterOfferProposalEmail(ctx, payload.ToEmail, payload.proposal())
	case templateCounterOfferAccepted:
		return m.sender.SendCounterOfferAcceptedEmail(ctx, payload.ToEmail, payload.outcome())
	case templateCounterOfferDeclined:
		return m.sender.SendCounterOfferDeclinedEmail(ctx, payload.ToEmail, payload.outcome())
	default:
		return errUnsupportedTemplate
	}
}
