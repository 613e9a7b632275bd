package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DeliveryMode int

const (
	DeliveryImmediate DeliveryMode = iota
	DeliveryScheduled
)

func (m DeliveryMode) String() string {
	switch m {
	case DeliveryImmediate:
		return "immediate"
	case DeliveryScheduled:
		return "scheduled"
	default:
		return "unknown"
	}
}

func (m DeliveryMode) MarshalText() ([]byte, error) {
	if m != DeliveryImmediate && m != DeliveryScheduled {
		return nil, fmt.Errorf("invalid delivery mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *DeliveryMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "immediate", "":
		*m = DeliveryImmediate
	case "scheduled":
		*m = DeliveryScheduled
	default:
		return fmt.Errorf("invalid delivery mode %q", string(text))
	}
	return nil
}

type PaymentMethod int

const (
	// OnlinePayment is reserved and never selectable.
	OnlinePayment PaymentMethod = iota
	CashOnDelivery
	InStoreCash
)

// AllPaymentMethods in display order.
var AllPaymentMethods = []PaymentMethod{OnlinePayment, CashOnDelivery, InStoreCash}

func (p PaymentMethod) String() string {
	switch p {
	case OnlinePayment:
		return "online-payment"
	case CashOnDelivery:
		return "cash-on-delivery"
	case InStoreCash:
		return "in-store-cash"
	default:
		return "unknown"
	}
}

func (p PaymentMethod) MarshalText() ([]byte, error) {
	if p < OnlinePayment || p > InStoreCash {
		return nil, fmt.Errorf("invalid payment method %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *PaymentMethod) UnmarshalText(text []byte) error {
	for _, m := range AllPaymentMethods {
		if m.String() == string(text) {
			*p = m
			return nil
		}
	}
	return fmt.Errorf("invalid payment method %q", string(text))
}

// Ingredient is sourced from the ingredient catalog; identity is the name.
type Ingredient struct {
	Name       string `json:"name"`
	IsAllergen bool   `json:"is_allergen"`
}

// CustomProduct describes a made-to-order item assembled from ingredients.
type CustomProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
}

func (c CustomProduct) IsZero() bool {
	return c.Name == "" && c.Description == "" && c.Category == "" &&
		c.Price.IsZero() && len(c.Images) == 0
}

// OrderDraft is the in-progress, unvalidated checkout form state.
type OrderDraft struct {
	CustomerName          string        `json:"customer_name"`
	Phone                 string        `json:"phone"`
	Email                 string        `json:"email"`
	DeliveryMode          DeliveryMode  `json:"delivery_mode"`
	ScheduledAt           *time.Time    `json:"scheduled_at,omitempty"`
	City                  string        `json:"city"`
	Address               string        `json:"address"`
	Zip                   string        `json:"zip"`
	AddedIngredients      []Ingredient  `json:"added_ingredients"`
	Product               CustomProduct `json:"product"`
	SelectedPaymentMethod PaymentMethod `json:"selected_payment_method"`
}

// IsCustomProduct reports whether the draft orders a made-to-order item,
// which switches on the product and ingredient rules.
func (d OrderDraft) IsCustomProduct() bool {
	return !d.Product.IsZero() || len(d.AddedIngredients) > 0
}

// Clone copies the draft including its slices and scheduled time.
func (d OrderDraft) Clone() OrderDraft {
	out := d
	if d.ScheduledAt != nil {
		at := *d.ScheduledAt
		out.ScheduledAt = &at
	}
	if d.AddedIngredients != nil {
		out.AddedIngredients = append([]Ingredient(nil), d.AddedIngredients...)
	}
	if d.Product.Images != nil {
		out.Product.Images = append([]string(nil), d.Product.Images...)
	}
	return out
}

type DeliveryAddress struct {
	City    string `json:"city"`
	Address string `json:"address"`
	Zip     string `json:"zip"`
}

// OrderPayload is the immutable, validated order emitted on submission.
type OrderPayload struct {
	ID            uuid.UUID        `json:"id"`
	SessionID     string           `json:"session_id"`
	CustomerName  string           `json:"customer_name"`
	Phone         string           `json:"phone"`
	Email         string           `json:"email"`
	DeliveryMode  DeliveryMode     `json:"delivery_mode"`
	ScheduledAt   *time.Time       `json:"scheduled_at,omitempty"`
	Delivery      *DeliveryAddress `json:"delivery,omitempty"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	CustomProduct *CustomProduct   `json:"custom_product,omitempty"`
	Ingredients   []Ingredient     `json:"ingredients,omitempty"`
	Entries       []CartEntry      `json:"entries"`
	ItemCount     int              `json:"item_count"`
	GrandTotal    decimal.Decimal  `json:"grand_total"`
	Currency      string           `json:"currency"`
	SubmittedAt   time.Time        `json:"submitted_at"`
}
