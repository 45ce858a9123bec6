// Package domain holds the counter-offer aggregate and its state rules.
// Nothing here performs I/O; the clock is always passed in.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a counter offer.
// StatusExpired is never stored; it is derived from a pending record and the clock.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusExpired  Status = "expired"
)

// Outcome is the customer's response to a pending offer.
type Outcome string

const (
	OutcomeAccept  Outcome = "accept"
	OutcomeDecline Outcome = "decline"
)

// Status returns the stored status an outcome resolves to.
func (o Outcome) Status() Status {
	if o == OutcomeAccept {
		return StatusAccepted
	}
	return StatusDeclined
}

const (
	// DefaultValidity is how long a customer has to respond.
	DefaultValidity = 7 * 24 * time.Hour
	// MaxEvidenceImages caps the photos attached to one offer.
	MaxEvidenceImages = 10
	// DefaultMaxEvidenceBytes is the per-file upload limit.
	DefaultMaxEvidenceBytes int64 = 5 << 20
	// MaxReasonLength bounds the recycler's explanation.
	MaxReasonLength = 2000
	// MaxNotesLength bounds the customer's optional note.
	MaxNotesLength = 2000
)

// Evidence is one uploaded photo referenced by an offer.
type Evidence struct {
	URL        string `json:"url"`
	EvidenceID string `json:"evidenceId"`
}

// CounterOffer is a recycler's proposal to change the price of an order
// after inspecting the device.
type CounterOffer struct {
	ID                  uuid.UUID
	Token               string
	OrderID             uuid.UUID
	OriginalPriceCents  int64
	AmendedPriceCents   int64
	Reason              string
	Images              []Evidence
	Status              Status
	PreviousOrderStatus string
	CreatedByName       string
	CustomerNotes       *string
	CreatedAt           time.Time
	ExpiresAt           time.Time
	RespondedAt         *time.Time
}

// State is the read-time view of an offer's lifecycle.
type State struct {
	Status            Status     `json:"status"`
	IsExpired         bool       `json:"isExpired"`
	IsAlreadyActioned bool       `json:"isAlreadyActioned"`
	CanTakeAction     bool       `json:"canTakeAction"`
	RespondedAt       *time.Time `json:"respondedAt,omitempty"`
}

// IsExpiredAt reports whether a pending offer has run out of time.
// Resolved offers never expire.
func (o CounterOffer) IsExpiredAt(now time.Time) bool {
	return o.Status == StatusPending && now.After(o.ExpiresAt)
}

// View derives the customer-facing flags for the given instant.
func (o CounterOffer) View(now time.Time) State {
	expired := o.IsExpiredAt(now)
	actioned := o.Status == StatusAccepted || o.Status == StatusDeclined

	status := o.Status
	if expired {
		status = StatusExpired
	}

	return State{
		Status:            status,
		IsExpired:         expired,
		IsAlreadyActioned: actioned,
		CanTakeAction:     o.Status == StatusPending && !expired,
		RespondedAt:       o.RespondedAt,
	}
}

// BlocksNewOffer reports whether this offer still counts as the order's open offer.
func (o CounterOffer) BlocksNewOffer(now time.Time) bool {
	return o.View(now).CanTakeAction
}

// NewCounterOfferParams carries the inputs for a fresh offer.
type NewCounterOfferParams struct {
	OrderID             uuid.UUID
	Token               string
	OriginalPriceCents  int64
	AmendedPriceCents   int64
	Reason              string
	Images              []Evidence
	PreviousOrderStatus string
	CreatedByName       string
	Now                 time.Time
	Validity            time.Duration
}

// NewCounterOffer validates the inputs and builds a pending offer.
func NewCounterOffer(p NewCounterOfferParams) (CounterOffer, error) {
	reason := strings.TrimSpace(p.Reason)
	if err := ValidateCreate(p.OriginalPriceCents, p.AmendedPriceCents, reason, len(p.Images)); err != nil {
		return CounterOffer{}, err
	}

	validity := p.Validity
	if validity <= 0 {
		validity = DefaultValidity
	}

	images := make([]Evidence, len(p.Images))
	copy(images, p.Images)

	createdAt := p.Now.UTC()
	return CounterOffer{
		ID:                  uuid.New(),
		Token:               p.Token,
		OrderID:             p.OrderID,
		OriginalPriceCents:  p.OriginalPriceCents,
		AmendedPriceCents:   p.AmendedPriceCents,
		Reason:              reason,
		Images:              images,
		Status:              StatusPending,
		PreviousOrderStatus: p.PreviousOrderStatus,
		CreatedByName:       strings.TrimSpace(p.CreatedByName),
		CreatedAt:           createdAt,
		ExpiresAt:           createdAt.Add(validity),
	}, nil
}

// Resolve applies an outcome to a copy of the offer. The caller is expected
// to have checked View(now).CanTakeAction under the store's guard.
func (o CounterOffer) Resolve(outcome Outcome, notes *string, now time.Time) CounterOffer {
	responded := now.UTC()
	o.Status = outcome.Status()
	o.RespondedAt = &responded
	o.CustomerNotes = notes
	return o
}
