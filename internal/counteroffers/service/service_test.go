package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"recycle_portal_backend/internal/counteroffers/domain"
	"recycle_portal_backend/internal/counteroffers/repository"
	"recycle_portal_backend/internal/counteroffers/transport"
	"recycle_portal_backend/internal/events"
	"recycle_portal_backend/platform/apperr"
	"recycle_portal_backend/platform/config"
	"recycle_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeOrders struct {
	mu         sync.Mutex
	orders     map[uuid.UUID]Order
	failPrice  error
	failStatus error
	statusLog  []string
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[uuid.UUID]Order)}
}

func (f *fakeOrders) add(priceCents int64, status string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.orders[id] = Order{
		ID:            id,
		PriceCents:    priceCents,
		Status:        status,
		CustomerName:  "Jo Customer",
		CustomerEmail: "jo@example.test",
		DeviceName:    "Phone X",
	}
	return id
}

func (f *fakeOrders) get(id uuid.UUID) Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[id]
}

func (f *fakeOrders) GetOrder(_ context.Context, id uuid.UUID) (Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return Order{}, apperr.NotFound(domain.MsgOrderNotFound)
	}
	return o, nil
}

func (f *fakeOrders) SetOrderPrice(_ context.Context, id uuid.UUID, priceCents int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPrice != nil {
		return f.failPrice
	}
	o := f.orders[id]
	o.PriceCents = priceCents
	f.orders[id] = o
	return nil
}

func (f *fakeOrders) SetOrderStatus(_ context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStatus != nil {
		return f.failStatus
	}
	o := f.orders[id]
	o.Status = status
	f.orders[id] = o
	f.statusLog = append(f.statusLog, status)
	return nil
}

type seqTokens struct {
	mu sync.Mutex
	n  int
}

func (s *seqTokens) Issue() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("token-%d", s.n), nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, event events.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.EventName())
	}
	return out
}

type fakeEvidence struct {
	mu      sync.Mutex
	uploads []EvidenceUpload
	fail    error
}

func (f *fakeEvidence) Upload(_ context.Context, file EvidenceUpload) (domain.Evidence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return domain.Evidence{}, f.fail
	}
	f.uploads = append(f.uploads, file)
	return domain.Evidence{
		URL:        "https://cdn.test/evidence/" + file.FileName,
		EvidenceID: "ev-" + file.FileName,
	}, nil
}

type fixture struct {
	svc      *Service
	repo     *repository.MemoryRepository
	orders   *fakeOrders
	clock    *fakeClock
	notifier *recordingNotifier
	evidence *fakeEvidence
}

func newFixture(t *testing.T, policy config.CounterOfferPolicy) *fixture {
	t.Helper()
	f := &fixture{
		repo:     repository.NewMemoryRepository(),
		orders:   newFakeOrders(),
		clock:    &fakeClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)},
		notifier: &recordingNotifier{},
		evidence: &fakeEvidence{},
	}
	f.svc = New(Dependencies{
		Repo:     f.repo,
		Orders:   f.orders,
		Evidence: f.evidence,
		Tokens:   &seqTokens{},
		Notifier: f.notifier,
		Clock:    f.clock,
		Log:      logger.New("test"),
	}, Options{
		Policy:        policy,
		ReviewBaseURL: "https://app.test/",
	})
	return f
}

func createReq(orderID uuid.UUID, amended int64, reason string) transport.CreateCounterOfferRequest {
	return transport.CreateCounterOfferRequest{
		OrderID:           orderID,
		AmendedPriceCents: amended,
		Reason:            reason,
	}
}

func assertKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != kind {
		t.Fatalf("expected error kind %d, got %v", kind, err)
	}
	return appErr
}

// Scenario A: create, read, accept, order price updated.
func TestCreateThenAcceptUpdatesOrderPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	created, err := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "screen cracked"), "Sam")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Token == "" || created.OriginalPriceCents != 12000 {
		t.Fatalf("unexpected create response: %+v", created)
	}
	if created.ReviewURL != "https://app.test/counter-offers/"+created.Token {
		t.Fatalf("unexpected review url %q", created.ReviewURL)
	}
	if got := f.orders.get(orderID).Status; got != "counter_offer_pending" {
		t.Fatalf("expected pending marker on order, got %q", got)
	}

	view, err := f.svc.GetByToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if !view.CanTakeAction || view.IsExpired || view.IsAlreadyActioned {
		t.Fatalf("unexpected flags: %+v", view)
	}

	f.clock.Advance(time.Hour)
	accepted, err := f.svc.Accept(ctx, created.Token, transport.RespondRequest{CustomerNotes: "fine, understood"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != string(domain.StatusAccepted) || accepted.RespondedAt == nil {
		t.Fatalf("unexpected accepted view: %+v", accepted)
	}
	if accepted.CustomerNotes == nil || *accepted.CustomerNotes != "fine, understood" {
		t.Fatalf("expected customer notes to be stored")
	}

	order := f.orders.get(orderID)
	if order.PriceCents != 9500 {
		t.Fatalf("expected order price 9500, got %d", order.PriceCents)
	}
	if order.Status != "received" {
		t.Fatalf("expected order status restored to received, got %q", order.Status)
	}

	again, err := f.svc.GetByToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("get after accept: %v", err)
	}
	if !again.IsAlreadyActioned || again.CanTakeAction {
		t.Fatalf("expected actioned offer, got %+v", again)
	}
}

// Scenario B: unchanged price is rejected.
func TestCreateRejectsUnchangedPrice(t *testing.T) {
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	_, err := f.svc.CreateCounterOffer(context.Background(), createReq(orderID, 12000, "no change"), "Sam")
	appErr := assertKind(t, err, apperr.KindValidation)
	if appErr.Message != domain.MsgUnchangedPrice {
		t.Fatalf("expected %q, got %q", domain.MsgUnchangedPrice, appErr.Message)
	}
	if got := f.orders.get(orderID).Status; got != "received" {
		t.Fatalf("order must be untouched, got %q", got)
	}
	if len(f.notifier.names()) != 0 {
		t.Fatalf("no notification expected")
	}
}

func TestCreateRejectsBlankReason(t *testing.T) {
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	for _, reason := range []string{"", "   ", "\n\t", "<p> </p>"} {
		_, err := f.svc.CreateCounterOffer(context.Background(), createReq(orderID, 9000, reason), "Sam")
		appErr := assertKind(t, err, apperr.KindValidation)
		if appErr.Message != domain.MsgMissingReason {
			t.Fatalf("reason %q: expected %q, got %q", reason, domain.MsgMissingReason, appErr.Message)
		}
	}
}

func TestCreateUnknownOrder(t *testing.T) {
	f := newFixture(t, config.DefaultCounterOfferPolicy())

	_, err := f.svc.CreateCounterOffer(context.Background(), createReq(uuid.New(), 9000, "dent"), "Sam")
	assertKind(t, err, apperr.KindNotFound)
}

// Scenario C: expired offers cannot be resolved and leave the order alone.
func TestDeclineAfterExpiryConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	created, err := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "screen cracked"), "Sam")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	f.clock.Advance(domain.DefaultValidity + time.Second)

	view, err := f.svc.GetByToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if !view.IsExpired || view.CanTakeAction || view.Status != string(domain.StatusExpired) {
		t.Fatalf("expected expired view, got %+v", view)
	}

	_, err = f.svc.Decline(ctx, created.Token, transport.RespondRequest{})
	assertKind(t, err, apperr.KindConflict)
	_, err = f.svc.Accept(ctx, created.Token, transport.RespondRequest{})
	assertKind(t, err, apperr.KindConflict)

	if got := f.orders.get(orderID).PriceCents; got != 12000 {
		t.Fatalf("order price must be unchanged, got %d", got)
	}

	stored, _ := f.repo.GetByToken(ctx, created.Token)
	if stored.Status != domain.StatusPending || stored.RespondedAt != nil {
		t.Fatalf("expired offer must not be written: %+v", stored)
	}
}

// Scenario D: one open offer per order; a new one is allowed after resolution.
func TestSecondOfferBlockedUntilResolved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	first, err := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "screen cracked"), "Sam")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = f.svc.CreateCounterOffer(ctx, createReq(orderID, 9000, "battery too"), "Sam")
	appErr := assertKind(t, err, apperr.KindConflict)
	if appErr.Message != domain.MsgOfferPending {
		t.Fatalf("expected %q, got %q", domain.MsgOfferPending, appErr.Message)
	}

	if _, err := f.svc.Accept(ctx, first.Token, transport.RespondRequest{}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	second, err := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9000, "battery too"), "Sam")
	if err != nil {
		t.Fatalf("second create after resolution: %v", err)
	}
	if second.OriginalPriceCents != 9500 {
		t.Fatalf("original price must be read from the order, got %d", second.OriginalPriceCents)
	}
}

func TestExpiredOfferDoesNotBlockAndKeepsRestoreStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	if _, err := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "screen cracked"), "Sam"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	f.clock.Advance(domain.DefaultValidity + time.Minute)

	second, err := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9000, "second look"), "Sam")
	if err != nil {
		t.Fatalf("create after expiry: %v", err)
	}

	if _, err := f.svc.Decline(ctx, second.Token, transport.RespondRequest{}); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if got := f.orders.get(orderID).Status; got != "received" {
		t.Fatalf("expected original status restored, got %q", got)
	}
}

func TestGetByTokenIsPure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	created, err := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "screen cracked"), "Sam")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before, _ := f.repo.GetByToken(ctx, created.Token)

	for i := 0; i < 5; i++ {
		if _, err := f.svc.GetByToken(ctx, created.Token); err != nil {
			t.Fatalf("get: %v", err)
		}
		f.clock.Advance(3 * 24 * time.Hour)
	}

	after, _ := f.repo.GetByToken(ctx, created.Token)
	if after.Status != before.Status || after.RespondedAt != nil || !after.ExpiresAt.Equal(before.ExpiresAt) {
		t.Fatalf("reads changed stored state: before %+v after %+v", before, after)
	}
}

func TestGetByTokenUnknown(t *testing.T) {
	f := newFixture(t, config.DefaultCounterOfferPolicy())

	_, err := f.svc.GetByToken(context.Background(), "nope")
	appErr := assertKind(t, err, apperr.KindNotFound)
	if appErr.Message != domain.MsgNotFound {
		t.Fatalf("expected generic not found message, got %q", appErr.Message)
	}
}

func TestSecondResponseConflictsAndKeepsState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	created, _ := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "screen cracked"), "Sam")
	first, err := f.svc.Accept(ctx, created.Token, transport.RespondRequest{})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	f.clock.Advance(time.Minute)
	for _, respond := range []func(context.Context, string, transport.RespondRequest) (transport.PublicCounterOfferResponse, error){
		f.svc.Accept, f.svc.Decline,
	} {
		_, err := respond(ctx, created.Token, transport.RespondRequest{CustomerNotes: "changed my mind"})
		appErr := assertKind(t, err, apperr.KindConflict)
		if appErr.Message != domain.MsgAlreadyResponded {
			t.Fatalf("expected %q, got %q", domain.MsgAlreadyResponded, appErr.Message)
		}
		state, ok := appErr.Details.(domain.State)
		if !ok || state.Status != domain.StatusAccepted {
			t.Fatalf("expected current state in details, got %#v", appErr.Details)
		}
	}

	stored, _ := f.repo.GetByToken(ctx, created.Token)
	if stored.Status != domain.StatusAccepted || !stored.RespondedAt.Equal(*first.RespondedAt) || stored.CustomerNotes != nil {
		t.Fatalf("second response changed the record: %+v", stored)
	}
}

func TestDeclineLeavesPriceAndRestoresStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "inspected")

	created, _ := f.svc.CreateCounterOffer(ctx, createReq(orderID, 15000, "better than declared"), "Sam")
	if _, err := f.svc.Decline(ctx, created.Token, transport.RespondRequest{}); err != nil {
		t.Fatalf("decline: %v", err)
	}

	order := f.orders.get(orderID)
	if order.PriceCents != 12000 || order.Status != "inspected" {
		t.Fatalf("unexpected order after decline: %+v", order)
	}
}

func TestDeclineWithStatusPolicy(t *testing.T) {
	ctx := context.Background()
	policy := config.CounterOfferPolicy{
		PendingStatus:  "awaiting_customer",
		AcceptedStatus: "price_agreed",
		DeclinePolicy:  config.DeclinePolicyStatus,
		DeclinedStatus: "return_to_customer",
	}
	f := newFixture(t, policy)

	declineOrder := f.orders.add(12000, "inspected")
	d, _ := f.svc.CreateCounterOffer(ctx, createReq(declineOrder, 9000, "dent"), "Sam")
	if got := f.orders.get(declineOrder).Status; got != "awaiting_customer" {
		t.Fatalf("expected configured pending marker, got %q", got)
	}
	if _, err := f.svc.Decline(ctx, d.Token, transport.RespondRequest{}); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if got := f.orders.get(declineOrder).Status; got != "return_to_customer" {
		t.Fatalf("expected declined status, got %q", got)
	}

	acceptOrder := f.orders.add(12000, "inspected")
	a, _ := f.svc.CreateCounterOffer(ctx, createReq(acceptOrder, 9000, "dent"), "Sam")
	if _, err := f.svc.Accept(ctx, a.Token, transport.RespondRequest{}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got := f.orders.get(acceptOrder).Status; got != "price_agreed" {
		t.Fatalf("expected accepted status, got %q", got)
	}
}

func TestAcceptReportsPostCommitFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	created, _ := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "screen cracked"), "Sam")
	f.orders.failPrice = errors.New("orders database unreachable")

	resp, err := f.svc.Accept(ctx, created.Token, transport.RespondRequest{})
	assertKind(t, err, apperr.KindPostCommit)
	if resp.Status != string(domain.StatusAccepted) {
		t.Fatalf("expected committed state in response, got %+v", resp)
	}

	stored, _ := f.repo.GetByToken(ctx, created.Token)
	if stored.Status != domain.StatusAccepted {
		t.Fatalf("transition must stay committed, got %s", stored.Status)
	}
}

func TestCreateReportsPostCommitWhenMarkerFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")
	f.orders.failStatus = errors.New("timeout")

	resp, err := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "screen cracked"), "Sam")
	assertKind(t, err, apperr.KindPostCommit)
	if resp.Token == "" {
		t.Fatalf("expected created offer in response")
	}
	if _, err := f.repo.GetByToken(ctx, resp.Token); err != nil {
		t.Fatalf("offer must be persisted: %v", err)
	}
}

func TestNotifierFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	f.notifier.err = errors.New("smtp down")
	orderID := f.orders.add(12000, "received")

	created, err := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "screen cracked"), "Sam")
	if err != nil {
		t.Fatalf("create must succeed when notification fails: %v", err)
	}
	if _, err := f.svc.Decline(ctx, created.Token, transport.RespondRequest{}); err != nil {
		t.Fatalf("decline must succeed when notification fails: %v", err)
	}

	names := f.notifier.names()
	want := []string{events.CounterOfferCreatedName, events.CounterOfferDeclinedName}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, names)
	}
}

func TestCreatedEventCarriesRecipient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	created, _ := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "screen cracked"), "Sam")

	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	evt, ok := f.notifier.events[0].(events.CounterOfferCreated)
	if !ok {
		t.Fatalf("expected CounterOfferCreated, got %T", f.notifier.events[0])
	}
	if evt.Token != created.Token || evt.OrderID != orderID || evt.CustomerEmail != "jo@example.test" {
		t.Fatalf("unexpected event payload: %+v", evt)
	}
	if evt.CreatedByName != "Sam" {
		t.Fatalf("expected operator name, got %q", evt.CreatedByName)
	}
}

func TestConcurrentAcceptAndDeclineHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")
	created, _ := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "screen cracked"), "Sam")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = f.svc.Accept(ctx, created.Token, transport.RespondRequest{})
			} else {
				_, err = f.svc.Decline(ctx, created.Token, transport.RespondRequest{})
			}
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if apperr.Is(err, apperr.KindConflict) {
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 || conflicts != 9 {
		t.Fatalf("expected 1 success and 9 conflicts, got %d and %d", successes, conflicts)
	}
}

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n0000")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
)

func TestUploadEvidenceKeepsOrder(t *testing.T) {
	f := newFixture(t, config.DefaultCounterOfferPolicy())

	resp, err := f.svc.UploadEvidence(context.Background(), []EvidenceFile{
		{FileName: "front.png", Data: pngHeader},
		{FileName: "back.jpg", Data: jpegHeader},
		{FileName: "side.png", Data: pngHeader},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(resp.Items))
	}
	for i, name := range []string{"front.png", "back.jpg", "side.png"} {
		if resp.Items[i].EvidenceID != "ev-"+name {
			t.Fatalf("item %d: expected %s, got %s", i, "ev-"+name, resp.Items[i].EvidenceID)
		}
	}
}

func TestUploadEvidenceRejectsNonImageBeforeStoring(t *testing.T) {
	f := newFixture(t, config.DefaultCounterOfferPolicy())

	_, err := f.svc.UploadEvidence(context.Background(), []EvidenceFile{
		{FileName: "front.png", Data: pngHeader},
		{FileName: "invoice.pdf", Data: []byte("%PDF-1.7\n")},
	})
	appErr := assertKind(t, err, apperr.KindValidation)
	if appErr.Message != domain.MsgUnsupportedImage {
		t.Fatalf("expected %q, got %q", domain.MsgUnsupportedImage, appErr.Message)
	}
	if len(f.evidence.uploads) != 0 {
		t.Fatalf("nothing should be stored when a file is invalid")
	}
}

func TestUploadEvidenceRejectsOversizedFile(t *testing.T) {
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, int(domain.DefaultMaxEvidenceBytes))...)

	_, err := f.svc.UploadEvidence(context.Background(), []EvidenceFile{{FileName: "huge.png", Data: big}})
	appErr := assertKind(t, err, apperr.KindValidation)
	if appErr.Message != domain.MsgImageTooLarge {
		t.Fatalf("expected %q, got %q", domain.MsgImageTooLarge, appErr.Message)
	}
}

func TestUploadEvidenceStorageFailureIsRetryable(t *testing.T) {
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	f.evidence.fail = errors.New("connection reset")

	_, err := f.svc.UploadEvidence(context.Background(), []EvidenceFile{{FileName: "a.png", Data: pngHeader}})
	assertKind(t, err, apperr.KindUnavailable)
}

func TestUploadEvidenceRequiresFiles(t *testing.T) {
	f := newFixture(t, config.DefaultCounterOfferPolicy())

	_, err := f.svc.UploadEvidence(context.Background(), nil)
	assertKind(t, err, apperr.KindValidation)
}

func TestListForOrderNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	first, _ := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "screen cracked"), "Sam")
	f.clock.Advance(time.Hour)
	if _, err := f.svc.Decline(ctx, first.Token, transport.RespondRequest{}); err != nil {
		t.Fatalf("decline: %v", err)
	}
	f.clock.Advance(time.Hour)
	second, _ := f.svc.CreateCounterOffer(ctx, createReq(orderID, 10000, "second opinion"), "Sam")

	list, err := f.svc.ListForOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Items) != 2 || list.Items[0].Token != second.Token || list.Items[1].Status != string(domain.StatusDeclined) {
		t.Fatalf("unexpected history: %+v", list.Items)
	}

	byID, err := f.svc.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Token != first.Token || byID.PreviousOrderStatus != "received" {
		t.Fatalf("unexpected recycler view: %+v", byID)
	}
}

func TestReasonAndNotesAreStoredAsWritten(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	reason := "battery health <80%, housing dented >2mm"
	created, err := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "  "+reason+"\n"), "Sam")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := f.svc.GetByToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Reason != reason {
		t.Fatalf("expected reason %q, got %q", reason, view.Reason)
	}

	notes := "ok if <= 95 euro & paid today"
	resp, err := f.svc.Decline(ctx, created.Token, transport.RespondRequest{CustomerNotes: notes})
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if resp.CustomerNotes == nil || *resp.CustomerNotes != notes {
		t.Fatalf("expected notes %q, got %v", notes, resp.CustomerNotes)
	}
}

func TestBracketedReasonIsNotEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultCounterOfferPolicy())
	orderID := f.orders.add(12000, "received")

	created, err := f.svc.CreateCounterOffer(ctx, createReq(orderID, 9500, "<screen cracked>"), "Sam")
	if err != nil {
		t.Fatalf("expected bracketed reason to be accepted, got %v", err)
	}
	stored, err := f.repo.GetByToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.Reason != "<screen cracked>" {
		t.Fatalf("expected reason kept as written, got %q", stored.Reason)
	}
}
