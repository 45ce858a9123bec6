package transport

import (
	"time"

	"github.com/google/uuid"
)

// OrderResponse is the recycler view of an order.
type OrderResponse struct {
	ID            uuid.UUID `json:"id"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerPhone *string   `json:"customerPhone,omitempty"`
	DeviceName    string    `json:"deviceName"`
	AmountCents   int64     `json:"amountCents"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
