package service

import (
	"context"

	"recycle_portal_backend/internal/counteroffers/domain"
	"recycle_portal_backend/internal/counteroffers/transport"
	"recycle_portal_backend/internal/events"
	"recycle_portal_backend/platform/apperr"
	"recycle_portal_backend/platform/config"
	"recycle_portal_backend/platform/sanitize"
)

// GetByToken returns the customer view of an offer with flags derived from
// the current time. It never writes.
func (s *Service) GetByToken(ctx context.Context, token string) (transport.PublicCounterOfferResponse, error) {
	offer, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return transport.PublicCounterOfferResponse{}, retryable("GetByToken", "counter offer lookup failed", err)
	}
	return toPublicResponse(offer, s.now()), nil
}

// Accept records the customer's acceptance and moves the order to the amended price.
func (s *Service) Accept(ctx context.Context, token string, req transport.RespondRequest) (transport.PublicCounterOfferResponse, error) {
	return s.respond(ctx, token, domain.OutcomeAccept, req)
}

// Decline records the customer's refusal. The order price is left untouched.
func (s *Service) Decline(ctx context.Context, token string, req transport.RespondRequest) (transport.PublicCounterOfferResponse, error) {
	return s.respond(ctx, token, domain.OutcomeDecline, req)
}

func (s *Service) respond(ctx context.Context, token string, outcome domain.Outcome, req transport.RespondRequest) (transport.PublicCounterOfferResponse, error) {
	notes, err := normalizeNotes(req.CustomerNotes)
	if err != nil {
		return transport.PublicCounterOfferResponse{}, err
	}

	now := s.now()
	offer, err := s.repo.Resolve(ctx, token, outcome, notes, now)
	if err != nil {
		return transport.PublicCounterOfferResponse{}, retryable("Respond", "counter offer storage failed", err)
	}

	resp := toPublicResponse(offer, now)
	offerID, orderID := offer.ID.String(), offer.OrderID.String()
	if s.log != nil {
		s.log.WithContext(ctx).TransitionEvent(offerID, orderID, string(domain.StatusPending), string(offer.Status))
	}

	if err := s.applyOrderSideEffect(ctx, offer, outcome); err != nil {
		if s.log != nil {
			s.log.WithContext(ctx).SideEffectFailure("apply "+string(outcome)+" to order", offerID, orderID, err)
		}
		return resp, apperr.PostCommit("counter offer recorded but order was not updated", err).WithDetails(resp)
	}

	s.notifyResolution(ctx, offer, outcome)
	return resp, nil
}

func (s *Service) applyOrderSideEffect(ctx context.Context, offer domain.CounterOffer, outcome domain.Outcome) error {
	if outcome == domain.OutcomeAccept {
		if err := s.orders.SetOrderPrice(ctx, offer.OrderID, offer.AmendedPriceCents); err != nil {
			return err
		}
	}
	return s.orders.SetOrderStatus(ctx, offer.OrderID, s.statusAfter(offer, outcome))
}

// statusAfter picks the order status that replaces the pending marker.
func (s *Service) statusAfter(offer domain.CounterOffer, outcome domain.Outcome) string {
	switch {
	case outcome == domain.OutcomeAccept && s.policy.AcceptedStatus != "":
		return s.policy.AcceptedStatus
	case outcome == domain.OutcomeDecline && s.policy.DeclinePolicy == config.DeclinePolicyStatus:
		return s.policy.DeclinedStatus
	default:
		return offer.PreviousOrderStatus
	}
}

func (s *Service) notifyResolution(ctx context.Context, offer domain.CounterOffer, outcome domain.Outcome) {
	order, err := s.orders.GetOrder(ctx, offer.OrderID)
	if err != nil {
		// Recipient unknown; the resolution itself already succeeded.
		if s.log != nil {
			s.log.WithContext(ctx).NotificationFailure("counter_offers."+string(offer.Status), err)
		}
		return
	}

	var notes string
	if offer.CustomerNotes != nil {
		notes = *offer.CustomerNotes
	}

	if outcome == domain.OutcomeAccept {
		s.notify(ctx, events.CounterOfferAccepted{
			BaseEvent:             events.NewBaseEvent(),
			CounterOfferRecipient: recipientFrom(order),
			CounterOfferID:        offer.ID,
			OrderID:               offer.OrderID,
			Token:                 offer.Token,
			OriginalPriceCents:    offer.OriginalPriceCents,
			AmendedPriceCents:     offer.AmendedPriceCents,
			CustomerNotes:         notes,
		})
		return
	}

	s.notify(ctx, events.CounterOfferDeclined{
		BaseEvent:             events.NewBaseEvent(),
		CounterOfferRecipient: recipientFrom(order),
		CounterOfferID:        offer.ID,
		OrderID:               offer.OrderID,
		Token:                 offer.Token,
		OriginalPriceCents:    offer.OriginalPriceCents,
		AmendedPriceCents:     offer.AmendedPriceCents,
		CustomerNotes:         notes,
	})
}

func normalizeNotes(raw string) (*string, error) {
	notes := sanitize.Text(raw)
	if notes == "" {
		return nil, nil
	}
	if len([]rune(notes)) > domain.MaxNotesLength {
		return nil, apperr.Validation("customer notes too long").WithDetails(map[string]int{"maxLength": domain.MaxNotesLength})
	}
	return &notes, nil
}
