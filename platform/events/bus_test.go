package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"recycle_portal_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
}

func (testEvent) EventName() string { return "test.event" }

func TestPublishRunsHandlersWithoutBlocking(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))
	release := make(chan struct{})
	var calls atomic.Int32

	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		<-release
		calls.Add(1)
		return nil
	}))

	done := make(chan struct{})
	go func() {
		bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow handler")
	}

	close(release)
	bus.Wait()
	if calls.Load() != 1 {
		t.Fatalf("expected 1 handler call, got %d", calls.Load())
	}
}

func TestPublishSurvivesHandlerPanicAndError(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))
	var calls atomic.Int32

	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		panic("boom")
	}))
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		calls.Add(1)
		return errors.New("delivery failed")
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected second handler to run, got %d calls", calls.Load())
	}
}

func TestPublishSyncJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	errA := errors.New("a")
	errB := errors.New("b")
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error { return errA }))
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error { return errB }))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected joined errors, got %v", err)
	}
}
