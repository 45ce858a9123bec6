package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decline policies for the linked order once a customer declines a counter offer.
const (
	// DeclinePolicyRestore puts the order back into the status it had before the counter offer.
	DeclinePolicyRestore = "restore"
	// DeclinePolicyStatus moves the order into DeclinedStatus.
	DeclinePolicyStatus = "status"
)

const defaultPendingStatus = "counter_offer_pending"

// CounterOfferPolicy describes how counter-offer outcomes move the linked order.
// The order lifecycle owns these statuses; this file only names them.
type CounterOfferPolicy struct {
	// PendingStatus is the marker the order carries while an offer awaits the customer.
	PendingStatus string `yaml:"pendingStatus"`
	// AcceptedStatus is applied on accept. Empty restores the pre-offer status.
	AcceptedStatus string `yaml:"acceptedStatus"`
	// DeclinePolicy is one of DeclinePolicyRestore or DeclinePolicyStatus.
	DeclinePolicy string `yaml:"declinePolicy"`
	// DeclinedStatus is applied on decline when DeclinePolicy is DeclinePolicyStatus.
	DeclinedStatus string `yaml:"declinedStatus"`
}

// DefaultCounterOfferPolicy restores the order's previous status on both outcomes.
func DefaultCounterOfferPolicy() CounterOfferPolicy {
	return CounterOfferPolicy{
		PendingStatus: defaultPendingStatus,
		DeclinePolicy: DeclinePolicyRestore,
	}
}

// LoadCounterOfferPolicy reads a YAML policy file. An empty path yields the default policy.
func LoadCounterOfferPolicy(path string) (CounterOfferPolicy, error) {
	policy := DefaultCounterOfferPolicy()
	if strings.TrimSpace(path) == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return CounterOfferPolicy{}, fmt.Errorf("read counter offer policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return CounterOfferPolicy{}, fmt.Errorf("parse counter offer policy: %w", err)
	}

	return policy.normalize()
}

func (p CounterOfferPolicy) normalize() (CounterOfferPolicy, error) {
	p.PendingStatus = strings.TrimSpace(p.PendingStatus)
	p.AcceptedStatus = strings.TrimSpace(p.AcceptedStatus)
	p.DeclinedStatus = strings.TrimSpace(p.DeclinedStatus)
	p.DeclinePolicy = strings.ToLower(strings.TrimSpace(p.DeclinePolicy))

	if p.PendingStatus == "" {
		p.PendingStatus = defaultPendingStatus
	}
	if p.DeclinePolicy == "" {
		p.DeclinePolicy = DeclinePolicyRestore
	}

	switch p.DeclinePolicy {
	case DeclinePolicyRestore:
	case DeclinePolicyStatus:
		if p.DeclinedStatus == "" {
			return CounterOfferPolicy{}, fmt.Errorf("declinedStatus is required when declinePolicy is %q", DeclinePolicyStatus)
		}
	default:
		return CounterOfferPolicy{}, fmt.Errorf("unknown declinePolicy %q", p.DeclinePolicy)
	}

	if p.AcceptedStatus == p.PendingStatus || (p.DeclinePolicy == DeclinePolicyStatus && p.DeclinedStatus == p.PendingStatus) {
		return CounterOfferPolicy{}, fmt.Errorf("resolution status must differ from pending marker %q", p.PendingStatus)
	}

	return p, nil
}
