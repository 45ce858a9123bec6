package adapters

import (
	"context"

	counteroffers "recycle_portal_backend/internal/counteroffers/service"
	"recycle_portal_backend/internal/orders/repository"
	"recycle_portal_backend/platform/phone"

	"github.com/google/uuid"
)

// OrderStore is what the counter-offer link needs from the orders module.
type OrderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Order, error)
	UpdateAmount(ctx context.Context, id uuid.UUID, amountCents int64) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// CounterOfferOrderLink implements the counter-offer OrderLink port on top of
// the orders service, translating between the two models.
type CounterOfferOrderLink struct {
	orders      OrderStore
	phoneRegion string
}

// NewCounterOfferOrderLink creates the adapter. phoneRegion resolves local
// customer phone numbers.
func NewCounterOfferOrderLink(orders OrderStore, phoneRegion string) *CounterOfferOrderLink {
	return &CounterOfferOrderLink{orders: orders, phoneRegion: phoneRegion}
}

// GetOrder loads the order with the customer's contact details.
func (a *CounterOfferOrderLink) GetOrder(ctx context.Context, orderID uuid.UUID) (counteroffers.Order, error) {
	o, err := a.orders.GetByID(ctx, orderID)
	if err != nil {
		return counteroffers.Order{}, err
	}

	var customerPhone string
	if o.CustomerPhone != nil {
		customerPhone = phone.NormalizeE164InRegion(*o.CustomerPhone, a.phoneRegion)
	}

	return counteroffers.Order{
		ID:            o.ID,
		PriceCents:    o.AmountCents,
		Status:        o.Status,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: customerPhone,
		DeviceName:    o.DeviceName,
	}, nil
}

// SetOrderPrice writes the agreed price.
func (a *CounterOfferOrderLink) SetOrderPrice(ctx context.Context, orderID uuid.UUID, priceCents int64) error {
	return a.orders.UpdateAmount(ctx, orderID, priceCents)
}

// SetOrderStatus writes the order's status marker.
func (a *CounterOfferOrderLink) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	return a.orders.UpdateStatus(ctx, orderID, status)
}

var _ counteroffers.OrderLink = (*CounterOfferOrderLink)(nil)
