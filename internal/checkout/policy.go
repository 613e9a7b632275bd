package checkout

import (
	"github.com/fjod/go_bakery/internal/domain"
	"github.com/fjod/go_bakery/internal/payment"
)

// FieldPolicy describes which checkout fields are enabled and required in a
// delivery mode, together with the payment methods that mode permits.
type FieldPolicy struct {
	AddressEnabled   bool                `json:"address_enabled"`
	AddressRequired  bool                `json:"address_required"`
	ScheduleVisible  bool                `json:"schedule_visible"`
	ScheduleRequired bool                `json:"schedule_required"`
	Eligibility      payment.Eligibility `json:"eligibility"`
}

var policies = map[domain.DeliveryMode]FieldPolicy{
	domain.DeliveryImmediate: {},
	domain.DeliveryScheduled: {
		AddressEnabled:   true,
		AddressRequired:  true,
		ScheduleVisible:  true,
		ScheduleRequired: true,
	},
}

func validMode(mode domain.DeliveryMode) bool {
	_, ok := policies[mode]
	return ok
}

// PolicyFor derives field enablement and payment eligibility from the same mode.
func PolicyFor(mode domain.DeliveryMode) FieldPolicy {
	p, ok := policies[mode]
	if !ok {
		mode = domain.DeliveryImmediate
		p = policies[mode]
	}
	p.Eligibility = payment.Resolve(mode)
	return p
}

// Toggle is the only transition of the delivery switch.
func Toggle(mode domain.DeliveryMode) domain.DeliveryMode {
	if mode == domain.DeliveryScheduled {
		return domain.DeliveryImmediate
	}
	return domain.DeliveryScheduled
}
