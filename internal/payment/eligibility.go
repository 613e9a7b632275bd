package payment

import (
	"slices"

	"github.com/fjod/go_bakery/internal/domain"
)

// Disabled reasons shown next to methods that cannot be picked.
const (
	ReasonComingSoon        = "Online payment is coming soon"
	ReasonOnlyScheduled     = "Cash on delivery is only available for scheduled deliveries"
	ReasonScheduledDelivery = "Scheduled deliveries are paid on delivery"
)

// Eligibility is the set of selectable payment methods for a delivery mode.
type Eligibility struct {
	Allowed     []domain.PaymentMethod `json:"allowed"`
	Preselected domain.PaymentMethod   `json:"preselected"`
}

func (e Eligibility) Allows(m domain.PaymentMethod) bool {
	return slices.Contains(e.Allowed, m)
}

type rule struct {
	eligibility Eligibility
	disabled    map[domain.PaymentMethod]string
}

// rules is the single source of truth for mode -> payment coupling.
// OnlinePayment is absent from every Allowed set.
var rules = map[domain.DeliveryMode]rule{
	domain.DeliveryImmediate: {
		eligibility: Eligibility{
			Allowed:     []domain.PaymentMethod{domain.InStoreCash},
			Preselected: domain.InStoreCash,
		},
		disabled: map[domain.PaymentMethod]string{
			domain.OnlinePayment:  ReasonComingSoon,
			domain.CashOnDelivery: ReasonOnlyScheduled,
		},
	},
	domain.DeliveryScheduled: {
		eligibility: Eligibility{
			Allowed:     []domain.PaymentMethod{domain.CashOnDelivery},
			Preselected: domain.CashOnDelivery,
		},
		disabled: map[domain.PaymentMethod]string{
			domain.OnlinePayment: ReasonComingSoon,
			domain.InStoreCash:   ReasonScheduledDelivery,
		},
	},
}

func lookup(mode domain.DeliveryMode) rule {
	r, ok := rules[mode]
	if !ok {
		return rules[domain.DeliveryImmediate]
	}
	return r
}

// Resolve is pure; the returned slice is a fresh copy.
func Resolve(mode domain.DeliveryMode) Eligibility {
	e := lookup(mode).eligibility
	return Eligibility{
		Allowed:     slices.Clone(e.Allowed),
		Preselected: e.Preselected,
	}
}

// Reconcile keeps selected when the mode still allows it, otherwise falls back
// to the mode's preselected method.
func Reconcile(mode domain.DeliveryMode, selected domain.PaymentMethod) domain.PaymentMethod {
	e := Resolve(mode)
	if e.Allows(selected) {
		return selected
	}
	return e.Preselected
}

// Option is one row of the payment method picker.
type Option struct {
	Method         domain.PaymentMethod `json:"method"`
	Enabled        bool                 `json:"enabled"`
	Selected       bool                 `json:"selected"`
	DisabledReason string               `json:"disabled_reason,omitempty"`
}

// Options lists every payment method for the picker in display order.
func Options(mode domain.DeliveryMode, selected domain.PaymentMethod) []Option {
	r := lookup(mode)
	selected = Reconcile(mode, selected)
	opts := make([]Option, 0, len(domain.AllPaymentMethods))
	for _, m := range domain.AllPaymentMethods {
		opts = append(opts, Option{
			Method:         m,
			Enabled:        r.eligibility.Allows(m),
			Selected:       m == selected,
			DisabledReason: r.disabled[m],
		})
	}
	return opts
}
