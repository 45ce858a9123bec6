package service

import (
	"time"

	"recycle_portal_backend/internal/counteroffers/domain"
	"recycle_portal_backend/internal/counteroffers/transport"
	"recycle_portal_backend/internal/events"
)

func toEvidenceRefs(images []domain.Evidence) []transport.EvidenceRef {
	refs := make([]transport.EvidenceRef, 0, len(images))
	for _, img := range images {
		refs = append(refs, transport.EvidenceRef{URL: img.URL, EvidenceID: img.EvidenceID})
	}
	return refs
}

func fromEvidenceRefs(refs []transport.EvidenceRef) []domain.Evidence {
	images := make([]domain.Evidence, 0, len(refs))
	for _, ref := range refs {
		images = append(images, domain.Evidence{URL: ref.URL, EvidenceID: ref.EvidenceID})
	}
	return images
}

func toPublicResponse(o domain.CounterOffer, now time.Time) transport.PublicCounterOfferResponse {
	state := o.View(now)
	return transport.PublicCounterOfferResponse{
		ID:                 o.ID,
		OrderID:            o.OrderID,
		OriginalPriceCents: o.OriginalPriceCents,
		AmendedPriceCents:  o.AmendedPriceCents,
		Reason:             o.Reason,
		Images:             toEvidenceRefs(o.Images),
		Status:             string(state.Status),
		CreatedByName:      o.CreatedByName,
		CustomerNotes:      o.CustomerNotes,
		CreatedAt:          o.CreatedAt,
		ExpiresAt:          o.ExpiresAt,
		RespondedAt:        o.RespondedAt,
		IsExpired:          state.IsExpired,
		IsAlreadyActioned:  state.IsAlreadyActioned,
		CanTakeAction:      state.CanTakeAction,
	}
}

func (s *Service) toRecyclerResponse(o domain.CounterOffer, now time.Time) transport.CounterOfferResponse {
	return transport.CounterOfferResponse{
		PublicCounterOfferResponse: toPublicResponse(o, now),
		Token:                      o.Token,
		ReviewURL:                  s.ReviewURL(o.Token),
		PreviousOrderStatus:        o.PreviousOrderStatus,
	}
}

func recipientFrom(order Order) events.CounterOfferRecipient {
	return events.CounterOfferRecipient{
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		DeviceName:    order.DeviceName,
	}
}
