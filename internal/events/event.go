// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"recycle_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// Event names published by the counter-offer module.
const (
	CounterOfferCreatedName  = "counter_offers.created"
	CounterOfferAcceptedName = "counter_offers.accepted"
	CounterOfferDeclinedName = "counter_offers.declined"

	NotificationOutboxDueName = "notification.outbox.due"
)

// =============================================================================
// Counter Offer Domain Events
// =============================================================================

// CounterOfferRecipient identifies the customer who must act on the offer.
type CounterOfferRecipient struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	DeviceName    string `json:"deviceName,omitempty"`
}

// CounterOfferCreated is published after a counter offer has been persisted
// and the order has been marked as awaiting the customer.
type CounterOfferCreated struct {
	BaseEvent
	CounterOfferRecipient
	CounterOfferID     uuid.UUID `json:"counterOfferId"`
	OrderID            uuid.UUID `json:"orderId"`
	Token              string    `json:"token"`
	OriginalPriceCents int64     `json:"originalPriceCents"`
	AmendedPriceCents  int64     `json:"amendedPriceCents"`
	Reason             string    `json:"reason"`
	CreatedByName      string    `json:"createdByName,omitempty"`
	ExpiresAt          time.Time `json:"expiresAt"`
	EvidenceImageCount int       `json:"evidenceImageCount"`
}

func (e CounterOfferCreated) EventName() string { return CounterOfferCreatedName }

// CounterOfferAccepted is published when the customer accepts the amended price.
type CounterOfferAccepted struct {
	BaseEvent
	CounterOfferRecipient
	CounterOfferID     uuid.UUID `json:"counterOfferId"`
	OrderID            uuid.UUID `json:"orderId"`
	Token              string    `json:"token"`
	OriginalPriceCents int64     `json:"originalPriceCents"`
	AmendedPriceCents  int64     `json:"amendedPriceCents"`
	CustomerNotes      string    `json:"customerNotes,omitempty"`
}

func (e CounterOfferAccepted) EventName() string { return CounterOfferAcceptedName }

// CounterOfferDeclined is published when the customer declines the amended price.
type CounterOfferDeclined struct {
	BaseEvent
	CounterOfferRecipient
	CounterOfferID     uuid.UUID `json:"counterOfferId"`
	OrderID            uuid.UUID `json:"orderId"`
	Token              string    `json:"token"`
	OriginalPriceCents int64     `json:"originalPriceCents"`
	AmendedPriceCents  int64     `json:"amendedPriceCents"`
	CustomerNotes      string    `json:"customerNotes,omitempty"`
}

func (e CounterOfferDeclined) EventName() string { return CounterOfferDeclinedName }

// =============================================================================
// Notification Events
// =============================================================================

// NotificationOutboxDue is published by the scheduler worker when a stored
// notification is ready to be delivered.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID `json:"outboxId"`
}

func (e NotificationOutboxDue) EventName() string { return NotificationOutboxDueName }
