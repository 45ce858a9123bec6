package service

import (
	"context"
	"net/http"
	"strings"

	"recycle_portal_backend/internal/counteroffers/domain"
	"recycle_portal_backend/internal/counteroffers/transport"
	"recycle_portal_backend/internal/events"
	"recycle_portal_backend/platform/apperr"
	"recycle_portal_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// parallel evidence uploads per request
const evidenceUploadConcurrency = 4

// CreateCounterOffer records a recycler's revised price for an order, marks the
// order as awaiting the customer and announces the review link.
func (s *Service) CreateCounterOffer(ctx context.Context, req transport.CreateCounterOfferRequest, createdByName string) (transport.CreateCounterOfferResponse, error) {
	reason := sanitize.Text(req.Reason)
	if name := strings.TrimSpace(req.CreatedByName); name != "" {
		createdByName = name
	}

	order, err := s.orders.GetOrder(ctx, req.OrderID)
	if err != nil {
		return transport.CreateCounterOfferResponse{}, retryable("CreateCounterOffer", "order lookup failed", err)
	}

	rawToken, err := s.tokens.Issue()
	if err != nil {
		return transport.CreateCounterOfferResponse{}, err
	}

	now := s.now()
	offer, err := domain.NewCounterOffer(domain.NewCounterOfferParams{
		OrderID:             order.ID,
		Token:               rawToken,
		OriginalPriceCents:  order.PriceCents,
		AmendedPriceCents:   req.AmendedPriceCents,
		Reason:              reason,
		Images:              fromEvidenceRefs(req.Images),
		PreviousOrderStatus: s.resolvePreviousStatus(ctx, order),
		CreatedByName:       sanitize.Text(createdByName),
		Now:                 now,
		Validity:            s.validity,
	})
	if err != nil {
		return transport.CreateCounterOfferResponse{}, err
	}

	if err := s.repo.Create(ctx, offer, now); err != nil {
		return transport.CreateCounterOfferResponse{}, retryable("CreateCounterOffer", "counter offer storage failed", err)
	}

	resp := transport.CreateCounterOfferResponse{
		ID:                 offer.ID,
		OrderID:            offer.OrderID,
		Token:              offer.Token,
		ReviewURL:          s.ReviewURL(offer.Token),
		OriginalPriceCents: offer.OriginalPriceCents,
		AmendedPriceCents:  offer.AmendedPriceCents,
		Status:             string(offer.Status),
		CreatedAt:          offer.CreatedAt,
		ExpiresAt:          offer.ExpiresAt,
	}

	markErr := s.orders.SetOrderStatus(ctx, offer.OrderID, s.policy.PendingStatus)
	if markErr != nil && s.log != nil {
		s.log.WithContext(ctx).SideEffectFailure("mark order pending", offer.ID.String(), offer.OrderID.String(), markErr)
	}
	if markErr == nil && s.log != nil {
		s.log.WithContext(ctx).TransitionEvent(offer.ID.String(), offer.OrderID.String(), "", string(domain.StatusPending))
	}

	// The offer is a permanent record from here on, so the customer is told
	// about it even when the order marker could not be set.
	s.notify(ctx, events.CounterOfferCreated{
		BaseEvent:             events.NewBaseEvent(),
		CounterOfferRecipient: recipientFrom(order),
		CounterOfferID:        offer.ID,
		OrderID:               offer.OrderID,
		Token:                 offer.Token,
		OriginalPriceCents:    offer.OriginalPriceCents,
		AmendedPriceCents:     offer.AmendedPriceCents,
		Reason:                offer.Reason,
		CreatedByName:         offer.CreatedByName,
		ExpiresAt:             offer.ExpiresAt,
		EvidenceImageCount:    len(offer.Images),
	})

	if markErr != nil {
		return resp, apperr.PostCommit("counter offer created but order status was not updated", markErr).WithDetails(resp)
	}
	return resp, nil
}

// resolvePreviousStatus finds the order status to return to once the offer is
// resolved. An order still carrying the pending marker from an expired offer
// inherits that offer's saved status.
func (s *Service) resolvePreviousStatus(ctx context.Context, order Order) string {
	if order.Status != s.policy.PendingStatus {
		return order.Status
	}
	offers, err := s.repo.ListForOrder(ctx, order.ID)
	if err != nil {
		return order.Status
	}
	for _, o := range offers {
		if o.PreviousOrderStatus != "" && o.PreviousOrderStatus != s.policy.PendingStatus {
			return o.PreviousOrderStatus
		}
	}
	return order.Status
}

// GetByID returns the recycler view of an offer, including its review link.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.CounterOfferResponse, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CounterOfferResponse{}, retryable("GetByID", "counter offer lookup failed", err)
	}
	return s.toRecyclerResponse(offer, s.now()), nil
}

// ListForOrder returns the negotiation history of an order, newest first.
func (s *Service) ListForOrder(ctx context.Context, orderID uuid.UUID) (transport.ListCounterOffersResponse, error) {
	offers, err := s.repo.ListForOrder(ctx, orderID)
	if err != nil {
		return transport.ListCounterOffersResponse{}, retryable("ListForOrder", "counter offer lookup failed", err)
	}

	now := s.now()
	items := make([]transport.CounterOfferResponse, 0, len(offers))
	for _, o := range offers {
		items = append(items, s.toRecyclerResponse(o, now))
	}
	return transport.ListCounterOffersResponse{Items: items}, nil
}

// EvidenceFile is a raw file received from the recycler.
type EvidenceFile struct {
	FileName string
	Data     []byte
}

// UploadEvidence validates every file first, then stores them concurrently.
// The result keeps the input order. Nothing is stored if any file is invalid.
func (s *Service) UploadEvidence(ctx context.Context, files []EvidenceFile) (transport.UploadEvidenceResponse, error) {
	if len(files) == 0 {
		return transport.UploadEvidenceResponse{}, apperr.Validation(domain.MsgNoFiles)
	}
	if len(files) > domain.MaxEvidenceImages {
		return transport.UploadEvidenceResponse{}, apperr.Validation(domain.MsgTooManyImages).
			WithDetails(map[string]int{"max": domain.MaxEvidenceImages})
	}

	uploads := make([]EvidenceUpload, len(files))
	for i, f := range files {
		contentType := http.DetectContentType(f.Data)
		if err := domain.ValidateEvidenceFile(f.FileName, contentType, int64(len(f.Data)), s.maxEvidenceBytes); err != nil {
			return transport.UploadEvidenceResponse{}, err
		}
		uploads[i] = EvidenceUpload{FileName: f.FileName, ContentType: contentType, Data: f.Data}
	}

	stored := make([]domain.Evidence, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(evidenceUploadConcurrency)
	for i := range uploads {
		g.Go(func() error {
			ev, err := s.evidence.Upload(gctx, uploads[i])
			if err != nil {
				return err
			}
			stored[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return transport.UploadEvidenceResponse{}, retryable("UploadEvidence", "evidence upload failed", err)
	}

	return transport.UploadEvidenceResponse{Items: toEvidenceRefs(stored)}, nil
}
