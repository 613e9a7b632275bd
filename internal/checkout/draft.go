package checkout

import (
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_bakery/internal/domain"
	"github.com/fjod/go_bakery/internal/payment"
	"github.com/shopspring/decimal"
)

// Draft is the mutable checkout form of one session.
type Draft struct {
	mu sync.Mutex
	d  domain.OrderDraft
}

func NewDraft() *Draft {
	return &Draft{d: emptyDraft()}
}

func emptyDraft() domain.OrderDraft {
	return domain.OrderDraft{
		DeliveryMode:          domain.DeliveryImmediate,
		SelectedPaymentMethod: payment.Resolve(domain.DeliveryImmediate).Preselected,
	}
}

// Snapshot returns a copy safe to hand to the validator.
func (d *Draft) Snapshot() domain.OrderDraft {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.d.Clone()
}

func (d *Draft) Policy() FieldPolicy {
	d.mu.Lock()
	defer d.mu.Unlock()
	return PolicyFor(d.d.DeliveryMode)
}

func (d *Draft) PaymentOptions() []payment.Option {
	d.mu.Lock()
	defer d.mu.Unlock()
	return payment.Options(d.d.DeliveryMode, d.d.SelectedPaymentMethod)
}

// Reset discards every field and returns to the initial Immediate state.
func (d *Draft) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.d = emptyDraft()
}

func (d *Draft) SetCustomerName(v string) { d.set(func(o *domain.OrderDraft) { o.CustomerName = v }) }
func (d *Draft) SetPhone(v string) { d.set(func(o *domain.OrderDraft) { o.Phone = v }) }
func (d *Draft) SetEmail(v string) { d.set(func(o *domain.OrderDraft) { o.Email = v }) }
func (d *Draft) SetCity(v string) { d.set(func(o *domain.OrderDraft) { o.City = v }) }
func (d *Draft) SetAddress(v string) { d.set(func(o *domain.OrderDraft) { o.Address = v }) }
func (d *Draft) SetZip(v string) { d.set(func(o *domain.OrderDraft) { o.Zip = v }) }

func (d *Draft) SetScheduledAt(at *time.Time) {
	d.set(func(o *domain.OrderDraft) {
		if at == nil {
			o.ScheduledAt = nil
			return
		}
		v := *at
		o.ScheduledAt = &v
	})
}

func (d *Draft) SetProduct(p domain.CustomProduct) {
	d.set(func(o *domain.OrderDraft) {
		p.Images = append([]string(nil), p.Images...)
		o.Product = p
	})
}

// AddIngredient keeps set semantics: an ingredient with the same name is replaced.
func (d *Draft) AddIngredient(ing domain.Ingredient) {
	ing.Name = strings.TrimSpace(ing.Name)
	if ing.Name == "" {
		return
	}
	d.set(func(o *domain.OrderDraft) {
		for i := range o.AddedIngredients {
			if o.AddedIngredients[i].Name == ing.Name {
				o.AddedIngredients[i] = ing
				return
			}
		}
		o.AddedIngredients = append(o.AddedIngredients, ing)
	})
}

func (d *Draft) RemoveIngredient(name string) {
	d.set(func(o *domain.OrderDraft) {
		for i := range o.AddedIngredients {
			if o.AddedIngredients[i].Name == name {
				o.AddedIngredients = append(o.AddedIngredients[:i], o.AddedIngredients[i+1:]...)
				return
			}
		}
	})
}

// SetDeliveryMode switches the mode and reconciles the selected payment method.
func (d *Draft) SetDeliveryMode(mode domain.DeliveryMode) error {
	if !validMode(mode) {
		return ErrInvalidDeliveryMode
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setMode(mode)
	return nil
}

// ToggleDelivery flips the delivery switch and returns the new mode.
func (d *Draft) ToggleDelivery() domain.DeliveryMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setMode(Toggle(d.d.DeliveryMode))
	return d.d.DeliveryMode
}

func (d *Draft) SelectPaymentMethod(m domain.PaymentMethod) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !payment.Resolve(d.d.DeliveryMode).Allows(m) {
		return ErrPaymentMethodNotAllowed
	}
	d.d.SelectedPaymentMethod = m
	return nil
}

func (d *Draft) setMode(mode domain.DeliveryMode) {
	d.d.DeliveryMode = mode
	d.d.SelectedPaymentMethod = payment.Reconcile(mode, d.d.SelectedPaymentMethod)
}

func (d *Draft) set(fn func(*domain.OrderDraft)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.d)
}

// Update is a partial form edit; nil fields are left untouched.
type Update struct {
	CustomerName      *string               `json:"customer_name,omitempty"`
	Phone             *string               `json:"phone,omitempty"`
	Email             *string               `json:"email,omitempty"`
	City              *string               `json:"city,omitempty"`
	Address           *string               `json:"address,omitempty"`
	Zip               *string               `json:"zip,omitempty"`
	DeliveryMode      *domain.DeliveryMode  `json:"delivery_mode,omitempty"`
	ScheduledAt       *time.Time            `json:"scheduled_at,omitempty"`
	ClearSchedule     bool                  `json:"clear_schedule,omitempty"`
	PaymentMethod     *domain.PaymentMethod `json:"payment_method,omitempty"`
	Product           *ProductUpdate        `json:"product,omitempty"`
	AddIngredients    []domain.Ingredient   `json:"add_ingredients,omitempty"`
	RemoveIngredients []string              `json:"remove_ingredients,omitempty"`
}

type ProductUpdate struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
}

// Apply runs the setters in form order. The delivery mode is applied before
// the payment method so a selection is checked against the new mode.
func (d *Draft) Apply(u Update) error {
	if u.DeliveryMode != nil {
		if err := d.SetDeliveryMode(*u.DeliveryMode); err != nil {
			return err
		}
	}
	if u.PaymentMethod != nil {
		if err := d.SelectPaymentMethod(*u.PaymentMethod); err != nil {
			return err
		}
	}
	if u.CustomerName != nil {
		d.SetCustomerName(*u.CustomerName)
	}
	if u.Phone != nil {
		d.SetPhone(*u.Phone)
	}
	if u.Email != nil {
		d.SetEmail(*u.Email)
	}
	if u.City != nil {
		d.SetCity(*u.City)
	}
	if u.Address != nil {
		d.SetAddress(*u.Address)
	}
	if u.Zip != nil {
		d.SetZip(*u.Zip)
	}
	if u.ClearSchedule {
		d.SetScheduledAt(nil)
	} else if u.ScheduledAt != nil {
		d.SetScheduledAt(u.ScheduledAt)
	}
	if u.Product != nil {
		d.SetProduct(domain.CustomProduct{
			Name:        u.Product.Name,
			Description: u.Product.Description,
			Category:    u.Product.Category,
			Price:       u.Product.Price,
			Images:      u.Product.Images,
		})
	}
	for _, ing := range u.AddIngredients {
		d.AddIngredient(ing)
	}
	for _, name := range u.RemoveIngredients {
		d.RemoveIngredient(name)
	}
	return nil
}
