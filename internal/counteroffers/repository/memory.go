package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"recycle_portal_backend/internal/counteroffers/domain"
	"recycle_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

// MemoryRepository keeps counter offers in process memory. It follows the
// same conditional-write rules as Repository and is used for tests and for
// running the API without a database.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]domain.CounterOffer
	byToken map[string]uuid.UUID
}

// NewMemoryRepository creates an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[uuid.UUID]domain.CounterOffer),
		byToken: make(map[string]uuid.UUID),
	}
}

// Create stores a pending offer unless the order already has an open one.
func (m *MemoryRepository) Create(_ context.Context, offer domain.CounterOffer, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.byID {
		if existing.OrderID == offer.OrderID && existing.BlocksNewOffer(now) {
			return apperr.Conflict(domain.MsgOfferPending).WithDetails(map[string]string{"orderId": offer.OrderID.String()})
		}
	}
	if _, taken := m.byToken[offer.Token]; taken {
		return apperr.Conflict("token collision")
	}

	m.byID[offer.ID] = cloneOffer(offer)
	m.byToken[offer.Token] = offer.ID
	return nil
}

// GetByToken retrieves an offer by its customer token.
func (m *MemoryRepository) GetByToken(_ context.Context, token string) (domain.CounterOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byToken[token]
	if !ok {
		return domain.CounterOffer{}, apperr.NotFound(domain.MsgNotFound)
	}
	return cloneOffer(m.byID[id]), nil
}

// GetByID retrieves an offer by its ID.
func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (domain.CounterOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	offer, ok := m.byID[id]
	if !ok {
		return domain.CounterOffer{}, apperr.NotFound(domain.MsgNotFound)
	}
	return cloneOffer(offer), nil
}

// ListForOrder returns every offer made on an order, newest first.
func (m *MemoryRepository) ListForOrder(_ context.Context, orderID uuid.UUID) ([]domain.CounterOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	offers := make([]domain.CounterOffer, 0)
	for _, offer := range m.byID {
		if offer.OrderID == orderID {
			offers = append(offers, cloneOffer(offer))
		}
	}
	sort.Slice(offers, func(i, j int) bool {
		return offers[i].CreatedAt.After(offers[j].CreatedAt)
	})
	return offers, nil
}

// Resolve checks and writes under one lock, mirroring the conditional update.
func (m *MemoryRepository) Resolve(_ context.Context, token string, outcome domain.Outcome, notes *string, now time.Time) (domain.CounterOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byToken[token]
	if !ok {
		return domain.CounterOffer{}, apperr.NotFound(domain.MsgNotFound)
	}

	current := m.byID[id]
	if conflict := domain.ConflictFor(current, now); conflict != nil {
		return cloneOffer(current), conflict
	}

	resolved := current.Resolve(outcome, notes, now)
	m.byID[id] = resolved
	return cloneOffer(resolved), nil
}

func cloneOffer(o domain.CounterOffer) domain.CounterOffer {
	if o.Images != nil {
		images := make([]domain.Evidence, len(o.Images))
		copy(images, o.Images)
		o.Images = images
	}
	if o.CustomerNotes != nil {
		notes := *o.CustomerNotes
		o.CustomerNotes = &notes
	}
	if o.RespondedAt != nil {
		responded := *o.RespondedAt
		o.RespondedAt = &responded
	}
	return o
}
