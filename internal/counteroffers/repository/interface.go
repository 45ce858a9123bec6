package repository

import (
	"context"
	"time"

	"recycle_portal_backend/internal/counteroffers/domain"

	"github.com/google/uuid"
)

// OfferReader provides read-only access to counter offers.
// Reads never change stored state.
type OfferReader interface {
	GetByToken(ctx context.Context, token string) (domain.CounterOffer, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.CounterOffer, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]domain.CounterOffer, error)
}

// OfferWriter provides the two write paths of the lifecycle.
type OfferWriter interface {
	// Create stores a pending offer. It fails with a conflict when the order
	// already has an offer that is pending and not expired at now.
	Create(ctx context.Context, offer domain.CounterOffer, now time.Time) error
	// Resolve moves a pending, unexpired offer to the outcome's status as one
	// conditional write. Resolved or expired offers yield a conflict carrying
	// the current state; unknown tokens yield not found.
	Resolve(ctx context.Context, token string, outcome domain.Outcome, notes *string, now time.Time) (domain.CounterOffer, error)
}

// CounterOffersRepository is the full storage contract used by the service.
type CounterOffersRepository interface {
	OfferReader
	OfferWriter
}

var (
	_ CounterOffersRepository = (*Repository)(nil)
	_ CounterOffersRepository = (*MemoryRepository)(nil)
)
