// Package service exposes the order operations other modules may use.
package service

import (
	"context"
	"strings"

	"recycle_portal_backend/internal/orders/repository"
	"recycle_portal_backend/internal/orders/transport"
	"recycle_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

// Store is the storage the order service depends on.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Order, error)
	UpdateAmount(ctx context.Context, id uuid.UUID, amountCents int64) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// Service provides order reads and the two patches counter offers need.
type Service struct {
	repo Store
}

// New creates a new orders service.
func New(repo Store) *Service {
	return &Service{repo: repo}
}

// GetByID returns the order record.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// Get returns the recycler view of an order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.OrderResponse, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.OrderResponse{}, err
	}
	return transport.OrderResponse{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		DeviceName:    o.DeviceName,
		AmountCents:   o.AmountCents,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}, nil
}

// UpdateAmount sets the agreed price.
func (s *Service) UpdateAmount(ctx context.Context, id uuid.UUID, amountCents int64) error {
	if amountCents < 0 {
		return apperr.Validation("amount must not be negative")
	}
	return s.repo.UpdateAmount(ctx, id, amountCents)
}

// UpdateStatus sets the lifecycle status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return apperr.Validation("status is required")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
