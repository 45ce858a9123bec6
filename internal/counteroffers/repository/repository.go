// Package repository persists counter offers.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recycle_portal_backend/internal/counteroffers/domain"
	"recycle_portal_backend/platform/apperr"
	"recycle_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores counter offers in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// New creates a new counter offers repository.
func New(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{pool: pool, log: log}
}

// dbError logs an infrastructure failure and wraps it with the operation name.
func (r *Repository) dbError(ctx context.Context, op string, err error) error {
	if r.log != nil {
		r.log.WithContext(ctx).DatabaseError(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

const offerColumns = `
		co.id, co.token, co.order_id,
		co.original_price_cents, co.amended_price_cents, co.reason,
		co.status, co.previous_order_status, co.created_by_name, co.customer_notes,
		co.created_at, co.expires_at, co.responded_at,
		COALESCE((
			SELECT jsonb_agg(jsonb_build_object('url', e.url, 'evidenceId', e.evidence_id) ORDER BY e.position)
			FROM counter_offer_evidence e
			WHERE e.counter_offer_id = co.id
		), '[]'::jsonb) AS images`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOffer(row rowScanner) (domain.CounterOffer, error) {
	var (
		o      domain.CounterOffer
		status string
		images []byte
	)
	err := row.Scan(
		&o.ID, &o.Token, &o.OrderID,
		&o.OriginalPriceCents, &o.AmendedPriceCents, &o.Reason,
		&status, &o.PreviousOrderStatus, &o.CreatedByName, &o.CustomerNotes,
		&o.CreatedAt, &o.ExpiresAt, &o.RespondedAt,
		&images,
	)
	if err != nil {
		return domain.CounterOffer{}, err
	}
	o.Status = domain.Status(status)
	if err := json.Unmarshal(images, &o.Images); err != nil {
		return domain.CounterOffer{}, fmt.Errorf("decode evidence: %w", err)
	}
	return o, nil
}

// Create inserts a pending offer and its evidence. Creation for the same order
// is serialized with a transaction-scoped advisory lock so the open-offer check
// and the insert cannot interleave.
func (r *Repository) Create(ctx context.Context, offer domain.CounterOffer, now time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.dbError(ctx, "begin counter offer transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, offer.OrderID.String()); err != nil {
		return r.dbError(ctx, "lock order for counter offer", err)
	}

	var open bool
	openQuery := `SELECT EXISTS(
		SELECT 1 FROM counter_offers
		WHERE order_id = $1 AND status = 'pending' AND expires_at >= $2
	)`
	if err := tx.QueryRow(ctx, openQuery, offer.OrderID, now).Scan(&open); err != nil {
		return r.dbError(ctx, "check open counter offer", err)
	}
	if open {
		return apperr.Conflict(domain.MsgOfferPending).WithDetails(map[string]string{"orderId": offer.OrderID.String()})
	}

	insertQuery := `
		INSERT INTO counter_offers (
			id, token, order_id, original_price_cents, amended_price_cents, reason,
			status, previous_order_status, created_by_name, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if _, err := tx.Exec(ctx, insertQuery,
		offer.ID, offer.Token, offer.OrderID,
		offer.OriginalPriceCents, offer.AmendedPriceCents, offer.Reason,
		string(offer.Status), offer.PreviousOrderStatus, offer.CreatedByName,
		offer.CreatedAt, offer.ExpiresAt,
	); err != nil {
		return r.dbError(ctx, "insert counter offer", err)
	}

	if len(offer.Images) > 0 {
		batch := &pgx.Batch{}
		for i, img := range offer.Images {
			batch.Queue(`
				INSERT INTO counter_offer_evidence (counter_offer_id, position, evidence_id, url)
				VALUES ($1, $2, $3, $4)`, offer.ID, i, img.EvidenceID, img.URL)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return r.dbError(ctx, "insert counter offer evidence", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return r.dbError(ctx, "commit counter offer", err)
	}
	return nil
}

// GetByToken retrieves an offer by its customer token.
func (r *Repository) GetByToken(ctx context.Context, token string) (domain.CounterOffer, error) {
	query := `SELECT ` + offerColumns + `
		FROM counter_offers co
		WHERE co.token = $1`

	offer, err := scanOffer(r.pool.QueryRow(ctx, query, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CounterOffer{}, apperr.NotFound(domain.MsgNotFound)
	}
	if err != nil {
		return domain.CounterOffer{}, r.dbError(ctx, "get counter offer by token", err)
	}
	return offer, nil
}

// GetByID retrieves an offer by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.CounterOffer, error) {
	query := `SELECT ` + offerColumns + `
		FROM counter_offers co
		WHERE co.id = $1`

	offer, err := scanOffer(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CounterOffer{}, apperr.NotFound(domain.MsgNotFound)
	}
	if err != nil {
		return domain.CounterOffer{}, r.dbError(ctx, "get counter offer by id", err)
	}
	return offer, nil
}

// ListForOrder returns every offer made on an order, newest first.
func (r *Repository) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]domain.CounterOffer, error) {
	query := `SELECT ` + offerColumns + `
		FROM counter_offers co
		WHERE co.order_id = $1
		ORDER BY co.created_at DESC`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, r.dbError(ctx, "list counter offers", err)
	}
	defer rows.Close()

	offers := make([]domain.CounterOffer, 0)
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, r.dbError(ctx, "scan counter offer", err)
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, r.dbError(ctx, "iterate counter offers", err)
	}
	return offers, nil
}

// Resolve records the customer's response as a single conditional update.
// When no row matches, the offer is re-read to report why.
func (r *Repository) Resolve(ctx context.Context, token string, outcome domain.Outcome, notes *string, now time.Time) (domain.CounterOffer, error) {
	query := `
		UPDATE counter_offers co
		SET status = $2,
		    responded_at = $3,
		    customer_notes = $4
		WHERE co.token = $1
		  AND co.status = 'pending'
		  AND co.expires_at >= $3
		RETURNING ` + offerColumns

	offer, err := scanOffer(r.pool.QueryRow(ctx, query, token, string(outcome.Status()), now, notes))
	if err == nil {
		return offer, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.CounterOffer{}, r.dbError(ctx, "resolve counter offer", err)
	}

	current, err := r.GetByToken(ctx, token)
	if err != nil {
		return domain.CounterOffer{}, err
	}
	if conflict := domain.ConflictFor(current, now); conflict != nil {
		return current, conflict
	}
	// Row matched on re-read but not on update: it changed in between.
	return current, apperr.Conflict(domain.MsgAlreadyResponded).WithDetails(current.View(now))
}
