package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"recycle_portal_backend/internal/counteroffers/domain"
	"recycle_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

var t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func pendingOffer(t *testing.T, orderID uuid.UUID, token string, now time.Time) domain.CounterOffer {
	t.Helper()
	offer, err := domain.NewCounterOffer(domain.NewCounterOfferParams{
		OrderID:             orderID,
		Token:               token,
		OriginalPriceCents:  12000,
		AmendedPriceCents:   9500,
		Reason:              "screen cracked",
		Images:              []domain.Evidence{{URL: "https://cdn.test/a.jpg", EvidenceID: "a"}},
		PreviousOrderStatus: "received",
		CreatedByName:       "Sam",
		Now:                 now,
	})
	if err != nil {
		t.Fatalf("new offer: %v", err)
	}
	return offer
}

func TestMemoryCreateRejectsSecondOpenOffer(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	orderID := uuid.New()

	if err := repo.Create(ctx, pendingOffer(t, orderID, "one", t0), t0); err != nil {
		t.Fatalf("first create: %v", err)
	}

	err := repo.Create(ctx, pendingOffer(t, orderID, "two", t0), t0.Add(time.Hour))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMemoryCreateAllowedAfterExpiry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	orderID := uuid.New()

	first := pendingOffer(t, orderID, "one", t0)
	if err := repo.Create(ctx, first, t0); err != nil {
		t.Fatalf("first create: %v", err)
	}

	later := first.ExpiresAt.Add(time.Minute)
	if err := repo.Create(ctx, pendingOffer(t, orderID, "two", later), later); err != nil {
		t.Fatalf("expired offer must not block a new one: %v", err)
	}

	offers, err := repo.ListForOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(offers) != 2 || offers[0].Token != "two" {
		t.Fatalf("expected newest first, got %+v", offers)
	}
}

func TestMemoryResolveOnlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	offer := pendingOffer(t, uuid.New(), "tok", t0)
	if err := repo.Create(ctx, offer, t0); err != nil {
		t.Fatalf("create: %v", err)
	}

	resolved, err := repo.Resolve(ctx, "tok", domain.OutcomeAccept, nil, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != domain.StatusAccepted || resolved.RespondedAt == nil {
		t.Fatalf("unexpected resolved offer: %+v", resolved)
	}

	current, err := repo.Resolve(ctx, "tok", domain.OutcomeDecline, nil, t0.Add(2*time.Hour))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if current.Status != domain.StatusAccepted || !current.RespondedAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("second resolve must not change state: %+v", current)
	}
}

func TestMemoryResolveExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	offer := pendingOffer(t, uuid.New(), "tok", t0)
	if err := repo.Create(ctx, offer, t0); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := repo.Resolve(ctx, "tok", domain.OutcomeDecline, nil, offer.ExpiresAt.Add(time.Second))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	stored, _ := repo.GetByToken(ctx, "tok")
	if stored.Status != domain.StatusPending || stored.RespondedAt != nil {
		t.Fatalf("expired resolve must not write: %+v", stored)
	}
}

func TestMemoryResolveUnknownToken(t *testing.T) {
	_, err := NewMemoryRepository().Resolve(context.Background(), "missing", domain.OutcomeAccept, nil, t0)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryConcurrentResolveHasOneWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	if err := repo.Create(ctx, pendingOffer(t, uuid.New(), "tok", t0), t0); err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcome := domain.OutcomeAccept
			if i%2 == 1 {
				outcome = domain.OutcomeDecline
			}
			if _, err := repo.Resolve(ctx, "tok", outcome, nil, t0.Add(time.Minute)); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful resolve, got %d", successes)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	if err := repo.Create(ctx, pendingOffer(t, uuid.New(), "tok", t0), t0); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := repo.GetByToken(ctx, "tok")
	got.Images[0].URL = "mutated"

	again, _ := repo.GetByToken(ctx, "tok")
	if again.Images[0].URL == "mutated" {
		t.Fatalf("caller mutation leaked into the store")
	}
}
