package scheduler

import (
	"context"
	"time"

	"recycle_portal_backend/internal/notification/outbox"
	"recycle_portal_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	outboxPollInterval = 2 * time.Second
	outboxClaimLimit   = 50
)

// OutboxClaimer claims due outbox records and releases those that could not be queued.
type OutboxClaimer interface {
	ClaimPending(ctx context.Context, limit int) ([]outbox.Record, error)
	MarkPending(ctx context.Context, id uuid.UUID, lastError *string) error
}

type NotificationOutboxDispatcher struct {
	enqueuer OutboxEnqueuer
	repo     OutboxClaimer
	log      *logger.Logger
	interval time.Duration
}

func NewNotificationOutboxDispatcher(enqueuer OutboxEnqueuer, repo OutboxClaimer, log *logger.Logger) *NotificationOutboxDispatcher {
	return &NotificationOutboxDispatcher{
		enqueuer: enqueuer,
		repo:     repo,
		log:      log,
		interval: outboxPollInterval,
	}
}

func (d *NotificationOutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.enqueuer == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		d.dispatchOnce(ctx)
	}
}

// dispatchOnce claims one batch and enqueues it, returning how many records were queued.
func (d *NotificationOutboxDispatcher) dispatchOnce(ctx context.Context) int {
	records, err := d.repo.ClaimPending(ctx, outboxClaimLimit)
	if err != nil {
		d.log.Warn("outbox claim failed", "error", err)
		return 0
	}

	queued := 0
	for _, rec := range records {
		err := d.enqueuer.EnqueueNotificationOutboxDue(ctx, NotificationOutboxDuePayload{
			OutboxID: rec.ID.String(),
		}, rec.RunAt)
		if err != nil {
			msg := err.Error()
			_ = d.repo.MarkPending(ctx, rec.ID, &msg)
			d.log.Warn("outbox enqueue failed", "outboxId", rec.ID.String(), "error", err)
			continue
		}
		queued++
	}
	return queued
}
