package checkout

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrEmptyCart               = errors.New("cart is empty, nothing to checkout")
	ErrPaymentMethodNotAllowed = errors.New("payment method is not available for this delivery mode")
	ErrInvalidDeliveryMode     = errors.New("invalid delivery mode")
	ErrSubmissionFailed        = errors.New("order submission failed")
)

// Field names reported in FieldErrors.
const (
	FieldCustomerName     = "customerName"
	FieldPhone            = "phone"
	FieldEmail            = "email"
	FieldCity             = "city"
	FieldAddress          = "address"
	FieldZip              = "zip"
	FieldScheduledAt      = "scheduledAt"
	FieldAddedIngredients = "addedIngredients"
	FieldName             = "name"
	FieldDescription      = "description"
	FieldCategory         = "category"
	FieldPrice            = "price"
	FieldCart             = "cart"
)

// Messages rendered inline next to the form fields.
const (
	MsgCustomerNameRequired = "Full name is required"
	MsgPhoneRequired        = "Phone number is required"
	MsgEmailRequired        = "Email is required"
	MsgCityRequired         = "City is required for scheduled delivery"
	MsgAddressRequired      = "Address is required for scheduled delivery"
	MsgZipRequired          = "Postal code is required for scheduled delivery"
	MsgScheduledAtRequired  = "Delivery date and time is required"
	MsgScheduledAtPast      = "Delivery date and time must be in the future"
	MsgIngredientsRequired  = "At least one ingredient must be selected"
	MsgNameRequired         = "Product name is required"
	MsgDescriptionRequired  = "Product description is required"
	MsgCategoryRequired     = "Product category is required"
	MsgPriceNegative        = "Product price must be a positive number"
	MsgCartEmpty            = "Cart is empty"
)

// FieldErrors maps a form field to a human-readable message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "invalid order: " + strings.Join(parts, "; ")
}

func (f FieldErrors) Has(field string) bool {
	_, ok := f[field]
	return ok
}
