// Package notification provides event handlers for sending notifications
// in response to domain events.
// This module subscribes to events and inverts the dependency: domain modules
// no longer need to know about email providers or templates.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recycle_portal_backend/internal/email"
	"recycle_portal_backend/internal/events"
	notificationoutbox "recycle_portal_backend/internal/notification/outbox"
	"recycle_portal_backend/platform/config"
	"recycle_portal_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	invalidOutboxPayloadPrefix = "invalid payload: "
	maxOutboxRetryAttempts     = 5
	outboxRetryBaseDelay       = time.Minute
	outboxRetryMaxDelay        = 60 * time.Minute

	counterOfferPublicPath = "/counter-offers/"
)

// OutboxStore persists notifications for delivery by the scheduler.
type OutboxStore interface {
	Insert(ctx context.Context, p notificationoutbox.InsertParams) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (notificationoutbox.Record, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkSucceeded(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
	ScheduleRetry(ctx context.Context, id uuid.UUID, runAt time.Time, lastError string) error
}

// Subscriber is the part of the event bus the module registers on.
type Subscriber interface {
	Subscribe(eventName string, handler events.Handler)
}

// Module handles all notification-related event subscriptions.
type Module struct {
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
	outbox OutboxStore
	now    func() time.Time
}

// New creates a new notification module. Without an outbox, emails are sent
// directly from the event handler.
func New(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		sender: sender,
		cfg:    cfg,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetNotificationOutbox routes notifications through the persistent outbox.
func (m *Module) SetNotificationOutbox(store OutboxStore) {
	m.outbox = store
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus Subscriber) {
	// Counter offer domain events
	bus.Subscribe(events.CounterOfferCreatedName, m)
	bus.Subscribe(events.CounterOfferAcceptedName, m)
	bus.Subscribe(events.CounterOfferDeclinedName, m)

	// Scheduler events
	bus.Subscribe(events.NotificationOutboxDueName, m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.CounterOfferCreated:
		return m.handleCounterOfferCreated(ctx, e)
	case events.CounterOfferAccepted:
		return m.handleCounterOfferAccepted(ctx, e)
	case events.CounterOfferDeclined:
		return m.handleCounterOfferDeclined(ctx, e)
	case events.NotificationOutboxDue:
		return m.handleNotificationOutboxDue(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) buildPublicURL(path string, tokenValue string) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	if base == "" || strings.TrimSpace(tokenValue) == "" {
		return ""
	}
	return fmt.Sprintf("%s%s%s", base, path, tokenValue)
}
