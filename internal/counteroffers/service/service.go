// Package service implements the counter-offer negotiation workflow.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recycle_portal_backend/internal/counteroffers/domain"
	"recycle_portal_backend/internal/counteroffers/repository"
	"recycle_portal_backend/internal/events"
	"recycle_portal_backend/platform/apperr"
	"recycle_portal_backend/platform/config"
	"recycle_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Order is the slice of an order the negotiation needs.
type Order struct {
	ID            uuid.UUID
	PriceCents    int64
	Status        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	DeviceName    string
}

// OrderLink reads and patches the order an offer amends.
type OrderLink interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (Order, error)
	SetOrderPrice(ctx context.Context, orderID uuid.UUID, priceCents int64) error
	SetOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error
}

// EvidenceUpload is one validated photo ready to store.
type EvidenceUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// EvidenceStore persists evidence photos and returns a stable reference.
type EvidenceStore interface {
	Upload(ctx context.Context, file EvidenceUpload) (domain.Evidence, error)
}

// TokenIssuer mints customer capability tokens.
type TokenIssuer interface {
	Issue() (string, error)
}

// Notifier hands lifecycle events to whatever delivers them to the customer.
// Its errors are logged by the service and never returned to callers.
type Notifier interface {
	Notify(ctx context.Context, event events.Event) error
}

// Clock is the single time source for creation and expiry decisions.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the server's clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Dependencies groups the collaborators of the service.
type Dependencies struct {
	Repo     repository.CounterOffersRepository
	Orders   OrderLink
	Evidence EvidenceStore
	Tokens   TokenIssuer
	Notifier Notifier
	Clock    Clock
	Log      *logger.Logger
}

// Options tunes the workflow. Zero values fall back to defaults.
type Options struct {
	Policy           config.CounterOfferPolicy
	Validity         time.Duration
	MaxEvidenceBytes int64
	// ReviewBaseURL is the customer-facing app origin used to build review links.
	ReviewBaseURL string
}

// Service coordinates offers, orders, evidence and notifications.
type Service struct {
	repo     repository.CounterOffersRepository
	orders   OrderLink
	evidence EvidenceStore
	tokens   TokenIssuer
	notifier Notifier
	clock    Clock
	log      *logger.Logger

	policy           config.CounterOfferPolicy
	validity         time.Duration
	maxEvidenceBytes int64
	reviewBaseURL    string
}

// New creates a new counter offer service.
func New(deps Dependencies, opts Options) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	policy := opts.Policy
	if policy.PendingStatus == "" {
		policy = config.DefaultCounterOfferPolicy()
	}
	validity := opts.Validity
	if validity <= 0 {
		validity = domain.DefaultValidity
	}
	maxBytes := opts.MaxEvidenceBytes
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxEvidenceBytes
	}

	return &Service{
		repo:             deps.Repo,
		orders:           deps.Orders,
		evidence:         deps.Evidence,
		tokens:           deps.Tokens,
		notifier:         deps.Notifier,
		clock:            clock,
		log:              deps.Log,
		policy:           policy,
		validity:         validity,
		maxEvidenceBytes: maxBytes,
		reviewBaseURL:    strings.TrimRight(opts.ReviewBaseURL, "/"),
	}
}

// ReviewURL is the customer link for a token.
func (s *Service) ReviewURL(token string) string {
	return fmt.Sprintf("%s/counter-offers/%s", s.reviewBaseURL, token)
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// notify never fails the caller; delivery problems are logged.
func (s *Service) notify(ctx context.Context, event events.Event) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && s.log != nil {
			s.log.WithContext(ctx).NotificationFailure(event.EventName(), fmt.Errorf("notifier panic: %v", r))
		}
	}()
	if err := s.notifier.Notify(ctx, event); err != nil && s.log != nil {
		s.log.WithContext(ctx).NotificationFailure(event.EventName(), err)
	}
}

// retryable keeps typed errors and marks anything else as a collaborator failure.
func retryable(op, message string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Unavailable(message, err).WithOp(op)
}

// BusNotifier publishes lifecycle events on the in-process event bus.
// Handlers run on the bus's own goroutines, so Notify returns immediately.
type BusNotifier struct {
	bus events.Bus
}

// NewBusNotifier wraps an event bus as a Notifier.
func NewBusNotifier(bus events.Bus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

// Notify publishes the event.
func (n *BusNotifier) Notify(ctx context.Context, event events.Event) error {
	n.bus.Publish(ctx, event)
	return nil
}
