package transport

import (
	"time"

	"github.com/google/uuid"
)

// EvidenceRef points at one uploaded photo.
type EvidenceRef struct {
	URL        string `json:"url" validate:"required,url,max=2048"`
	EvidenceID string `json:"evidenceId" validate:"notblank,max=200"`
}

// --- Recycler API ---

// CreateCounterOfferRequest proposes a new price for an order. The original
// price is read from the order, never from the caller.
type CreateCounterOfferRequest struct {
	OrderID           uuid.UUID     `json:"orderId" validate:"required"`
	AmendedPriceCents int64         `json:"amendedPriceCents"`
	Reason            string        `json:"reason" validate:"max=2000"`
	Images            []EvidenceRef `json:"images" validate:"max=10,dive"`
	CreatedByName     string        `json:"createdByName,omitempty" validate:"omitempty,max=200"`
}

// CreateCounterOfferResponse is returned after an offer has been created.
type CreateCounterOfferResponse struct {
	ID                 uuid.UUID `json:"id"`
	OrderID            uuid.UUID `json:"orderId"`
	Token              string    `json:"token"`
	ReviewURL          string    `json:"reviewUrl"`
	OriginalPriceCents int64     `json:"originalPriceCents"`
	AmendedPriceCents  int64     `json:"amendedPriceCents"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	ExpiresAt          time.Time `json:"expiresAt"`
}

// CounterOfferResponse is the recycler view of an offer, including its token.
type CounterOfferResponse struct {
	PublicCounterOfferResponse
	Token               string `json:"token"`
	ReviewURL           string `json:"reviewUrl"`
	PreviousOrderStatus string `json:"previousOrderStatus"`
}

// ListCounterOffersResponse is the negotiation history of one order.
type ListCounterOffersResponse struct {
	Items []CounterOfferResponse `json:"items"`
}

// UploadEvidenceResponse lists stored photos in upload order.
type UploadEvidenceResponse struct {
	Items []EvidenceRef `json:"items"`
}

// --- Public (customer) API ---

// RespondRequest carries the customer's optional note on accept or decline.
type RespondRequest struct {
	CustomerNotes string `json:"customerNotes,omitempty" validate:"omitempty,max=2000"`
}

// PublicCounterOfferResponse is what a token holder may see.
type PublicCounterOfferResponse struct {
	ID                 uuid.UUID     `json:"id"`
	OrderID            uuid.UUID     `json:"orderId"`
	OriginalPriceCents int64         `json:"originalPriceCents"`
	AmendedPriceCents  int64         `json:"amendedPriceCents"`
	Reason             string        `json:"reason"`
	Images             []EvidenceRef `json:"images"`
	Status             string        `json:"status"`
	CreatedByName      string        `json:"createdByName,omitempty"`
	CustomerNotes      *string       `json:"customerNotes,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	ExpiresAt          time.Time     `json:"expiresAt"`
	RespondedAt        *time.Time    `json:"respondedAt,omitempty"`
	IsExpired          bool          `json:"isExpired"`
	IsAlreadyActioned  bool          `json:"isAlreadyActioned"`
	CanTakeAction      bool          `json:"canTakeAction"`
}
