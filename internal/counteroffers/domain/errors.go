package domain

import (
	"time"

	"recycle_portal_backend/platform/apperr"
)

// Messages returned to callers. Kept stable because clients match on them.
const (
	MsgUnchangedPrice   = "unchanged price"
	MsgMissingReason    = "missing reason"
	MsgNegativePrice    = "amended price must not be negative"
	MsgTooManyImages    = "too many evidence images"
	MsgOfferPending     = "offer already pending"
	MsgAlreadyResponded = "already responded"
	MsgOfferExpired     = "offer expired"
	MsgNotFound         = "counter offer not found"
	MsgOrderNotFound    = "order not found"
	MsgUnsupportedImage = "unsupported file type"
	MsgImageTooLarge    = "file too large"
	MsgNoFiles          = "no files provided"
)

// ValidateCreate checks the price and reason rules for a new offer.
// reason is expected to be trimmed already.
func ValidateCreate(originalCents, amendedCents int64, reason string, imageCount int) error {
	if amendedCents < 0 {
		return apperr.Validation(MsgNegativePrice).WithDetails(map[string]string{"amendedPriceCents": "gte=0"})
	}
	if amendedCents == originalCents {
		return apperr.Validation(MsgUnchangedPrice).WithDetails(map[string]int64{
			"originalPriceCents": originalCents,
			"amendedPriceCents":  amendedCents,
		})
	}
	if reason == "" {
		return apperr.Validation(MsgMissingReason).WithDetails(map[string]string{"reason": "required"})
	}
	if len([]rune(reason)) > MaxReasonLength {
		return apperr.Validation("reason too long").WithDetails(map[string]int{"maxLength": MaxReasonLength})
	}
	if imageCount > MaxEvidenceImages {
		return apperr.Validation(MsgTooManyImages).WithDetails(map[string]int{"max": MaxEvidenceImages})
	}
	return nil
}

// ConflictFor explains why an offer can no longer be acted on.
// It returns nil when the offer is still actionable.
func ConflictFor(o CounterOffer, now time.Time) error {
	state := o.View(now)
	switch {
	case state.IsAlreadyActioned:
		return apperr.Conflict(MsgAlreadyResponded).WithDetails(state)
	case state.IsExpired:
		return apperr.Conflict(MsgOfferExpired).WithDetails(state)
	case !state.CanTakeAction:
		return apperr.Conflict(MsgAlreadyResponded).WithDetails(state)
	}
	return nil
}
