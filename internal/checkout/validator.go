package checkout

import (
	"errors"
	"strings"
	"time"

	"github.com/fjod/go_bakery/internal/domain"
	"github.com/fjod/go_bakery/internal/payment"
	"github.com/google/uuid"
)

// Validator checks a draft and a cart on submit.
type Validator struct {
	now func() time.Time
}

// NewValidator uses now as the reference clock for scheduled deliveries;
// nil means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Validate evaluates every rule and reports all failures at once. On failure
// the error is FieldErrors, joined with ErrEmptyCart when the cart has no items.
func (v *Validator) Validate(draft domain.OrderDraft, cart domain.Cart) (*domain.OrderPayload, error) {
	now := v.now()
	policy := PolicyFor(draft.DeliveryMode)
	fe := FieldErrors{}

	if blank(draft.CustomerName) {
		fe[FieldCustomerName] = MsgCustomerNameRequired
	}
	if blank(draft.Phone) {
		fe[FieldPhone] = MsgPhoneRequired
	}
	if blank(draft.Email) {
		fe[FieldEmail] = MsgEmailRequired
	}

	if policy.AddressRequired {
		if blank(draft.City) {
			fe[FieldCity] = MsgCityRequired
		}
		if blank(draft.Address) {
			fe[FieldAddress] = MsgAddressRequired
		}
		if blank(draft.Zip) {
			fe[FieldZip] = MsgZipRequired
		}
	}

	if policy.ScheduleRequired {
		switch {
		case draft.ScheduledAt == nil || draft.ScheduledAt.IsZero():
			fe[FieldScheduledAt] = MsgScheduledAtRequired
		case !draft.ScheduledAt.After(now):
			fe[FieldScheduledAt] = MsgScheduledAtPast
		}
	}

	if draft.IsCustomProduct() {
		if len(draft.AddedIngredients) == 0 {
			fe[FieldAddedIngredients] = MsgIngredientsRequired
		}
		if blank(draft.Product.Name) {
			fe[FieldName] = MsgNameRequired
		}
		if blank(draft.Product.Description) {
			fe[FieldDescription] = MsgDescriptionRequired
		}
		if blank(draft.Product.Category) {
			fe[FieldCategory] = MsgCategoryRequired
		}
		if draft.Product.Price.IsNegative() {
			fe[FieldPrice] = MsgPriceNegative
		}
	}

	emptyCart := cart.IsEmpty()
	if emptyCart {
		fe[FieldCart] = MsgCartEmpty
	}

	if len(fe) > 0 {
		if emptyCart {
			return nil, errors.Join(ErrEmptyCart, fe)
		}
		return nil, fe
	}

	return buildPayload(draft, cart, now), nil
}

func buildPayload(draft domain.OrderDraft, cart domain.Cart, now time.Time) *domain.OrderPayload {
	snapshot := cart.Clone()
	entries := make([]domain.CartEntry, 0, len(snapshot.Entries))
	for _, e := range snapshot.Entries {
		if e.Quantity >= 1 {
			entries = append(entries, e)
		}
	}
	priced := domain.Cart{Entries: entries}
	totals := priced.Totals()

	p := &domain.OrderPayload{
		ID:            uuid.New(),
		CustomerName:  strings.TrimSpace(draft.CustomerName),
		Phone:         strings.TrimSpace(draft.Phone),
		Email:         strings.TrimSpace(draft.Email),
		DeliveryMode:  draft.DeliveryMode,
		PaymentMethod: payment.Reconcile(draft.DeliveryMode, draft.SelectedPaymentMethod),
		Entries:       entries,
		ItemCount:     totals.ItemCount,
		GrandTotal:    totals.GrandTotal,
		Currency:      domain.Currency,
		SubmittedAt:   now.UTC(),
	}

	if draft.DeliveryMode == domain.DeliveryScheduled {
		at := draft.ScheduledAt.UTC()
		p.ScheduledAt = &at
		p.Delivery = &domain.DeliveryAddress{
			City:    strings.TrimSpace(draft.City),
			Address: strings.TrimSpace(draft.Address),
			Zip:     strings.TrimSpace(draft.Zip),
		}
	}

	if draft.IsCustomProduct() {
		cp := draft.Clone().Product
		cp.Price = domain.RoundMoney(cp.Price)
		p.CustomProduct = &cp
		p.Ingredients = append([]domain.Ingredient(nil), draft.AddedIngredients...)
	}

	return p
}
