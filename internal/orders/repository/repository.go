// Package repository reads and patches the order record that counter offers amend.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recycle_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderNotFoundMsg = "order not found"

// Order is the narrow order record owned by the order lifecycle.
type Order struct {
	ID            uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
	DeviceName    string
	AmountCents   int64
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Repository provides database operations for orders.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new orders repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID retrieves an order.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Order, error) {
	query := `
		SELECT id, customer_name, customer_email, customer_phone, device_name,
		       amount_cents, status, created_at, updated_at
		FROM orders
		WHERE id = $1`

	var o Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.DeviceName,
		&o.AmountCents, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, apperr.NotFound(orderNotFoundMsg)
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order by id: %w", err)
	}
	return o, nil
}

// UpdateAmount sets the agreed price.
func (r *Repository) UpdateAmount(ctx context.Context, id uuid.UUID, amountCents int64) error {
	query := `UPDATE orders SET amount_cents = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, amountCents)
	if err != nil {
		return fmt.Errorf("update order amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(orderNotFoundMsg)
	}
	return nil
}

// UpdateStatus sets the lifecycle status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(orderNotFoundMsg)
	}
	return nil
}
