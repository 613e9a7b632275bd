package checkout

import (
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_bakery/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func testValidator() *Validator {
	return NewValidator(func() time.Time { return fixedNow })
}

func oneItemCart() domain.Cart {
	return domain.Cart{Entries: []domain.CartEntry{
		{ProductID: "A", Name: "Krempita", UnitPrice: decimal.NewFromInt(100), Quantity: 2},
	}}
}

func validImmediateDraft() domain.OrderDraft {
	return domain.OrderDraft{
		CustomerName:          "Ana Anić",
		Phone:                 "+381 64 123 4567",
		Email:                 "ana@example.com",
		DeliveryMode:          domain.DeliveryImmediate,
		SelectedPaymentMethod: domain.InStoreCash,
	}
}

func validScheduledDraft() domain.OrderDraft {
	d := validImmediateDraft()
	at := fixedNow.Add(48 * time.Hour)
	d.DeliveryMode = domain.DeliveryScheduled
	d.ScheduledAt = &at
	d.City = "Beograd"
	d.Address = "Knez Mihailova 1"
	d.Zip = "11000"
	d.SelectedPaymentMethod = domain.CashOnDelivery
	return d
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	var fe FieldErrors
	require.True(t, errors.As(err, &fe), "expected FieldErrors, got %v", err)
	return fe
}

func TestValidate_ImmediateScenario(t *testing.T) {
	payload, err := testValidator().Validate(validImmediateDraft(), oneItemCart())
	require.NoError(t, err)

	assert.Equal(t, domain.InStoreCash, payload.PaymentMethod)
	assert.Equal(t, 2, payload.ItemCount)
	assert.True(t, decimal.NewFromInt(200).Equal(payload.GrandTotal))
	assert.Nil(t, payload.Delivery)
	assert.Nil(t, payload.ScheduledAt)
	assert.Nil(t, payload.CustomProduct)
	assert.Equal(t, domain.Currency, payload.Currency)
	assert.Equal(t, fixedNow, payload.SubmittedAt)
}

func TestValidate_ScheduledSuccess(t *testing.T) {
	payload, err := testValidator().Validate(validScheduledDraft(), oneItemCart())
	require.NoError(t, err)

	assert.Equal(t, domain.CashOnDelivery, payload.PaymentMethod)
	require.NotNil(t, payload.Delivery)
	assert.Equal(t, "Beograd", payload.Delivery.City)
	require.NotNil(t, payload.ScheduledAt)
}

func TestValidate_AddressRequiredOnlyWhenScheduled(t *testing.T) {
	d := validScheduledDraft()
	d.Address = ""

	_, err := testValidator().Validate(d, oneItemCart())
	fe := fieldErrors(t, err)
	assert.Contains(t, fe, FieldAddress)

	d.DeliveryMode = domain.DeliveryImmediate
	_, err = testValidator().Validate(d, oneItemCart())
	assert.NoError(t, err)
}

func TestValidate_ImmediateIgnoresPopulatedAddress(t *testing.T) {
	d := validImmediateDraft()
	d.City = "Beograd"
	d.Address = "Knez Mihailova 1"

	payload, err := testValidator().Validate(d, oneItemCart())
	require.NoError(t, err)
	assert.Nil(t, payload.Delivery)
}

func TestValidate_ScheduledInPast(t *testing.T) {
	d := validScheduledDraft()
	past := fixedNow.Add(-time.Minute)
	d.ScheduledAt = &past

	_, err := testValidator().Validate(d, oneItemCart())
	fe := fieldErrors(t, err)
	assert.Equal(t, FieldErrors{FieldScheduledAt: MsgScheduledAtPast}, fe)
}

func TestValidate_ScheduledAtNowIsNotFuture(t *testing.T) {
	d := validScheduledDraft()
	now := fixedNow
	d.ScheduledAt = &now

	_, err := testValidator().Validate(d, oneItemCart())
	assert.Equal(t, MsgScheduledAtPast, fieldErrors(t, err)[FieldScheduledAt])
}

func TestValidate_ScheduledMissingDate(t *testing.T) {
	d := validScheduledDraft()
	d.ScheduledAt = nil

	_, err := testValidator().Validate(d, oneItemCart())
	assert.Equal(t, MsgScheduledAtRequired, fieldErrors(t, err)[FieldScheduledAt])
}

func TestValidate_AggregatesAllErrors(t *testing.T) {
	d := domain.OrderDraft{DeliveryMode: domain.DeliveryScheduled, CustomerName: "   "}

	_, err := testValidator().Validate(d, domain.Cart{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	fe := fieldErrors(t, err)
	for _, f := range []string{
		FieldCustomerName, FieldPhone, FieldEmail, FieldCity, FieldAddress,
		FieldZip, FieldScheduledAt, FieldCart,
	} {
		assert.Contains(t, fe, f)
	}
}

func TestValidate_EmptyCartOnly(t *testing.T) {
	_, err := testValidator().Validate(validImmediateDraft(), domain.Cart{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, FieldErrors{FieldCart: MsgCartEmpty}, fieldErrors(t, err))
}

func TestValidate_ZeroQuantityEntriesDoNotCount(t *testing.T) {
	c := domain.Cart{Entries: []domain.CartEntry{{ProductID: "A", Quantity: 0}}}
	_, err := testValidator().Validate(validImmediateDraft(), c)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestValidate_CustomProductRules(t *testing.T) {
	d := validImmediateDraft()
	d.Product = domain.CustomProduct{Price: decimal.NewFromInt(-1)}
	d.Product.Images = []string{"/x.jpg"}

	_, err := testValidator().Validate(d, oneItemCart())
	fe := fieldErrors(t, err)
	assert.Equal(t, MsgIngredientsRequired, fe[FieldAddedIngredients])
	assert.Equal(t, MsgNameRequired, fe[FieldName])
	assert.Equal(t, MsgDescriptionRequired, fe[FieldDescription])
	assert.Equal(t, MsgCategoryRequired, fe[FieldCategory])
	assert.Equal(t, MsgPriceNegative, fe[FieldPrice])
}

func TestValidate_CustomProductSuccess(t *testing.T) {
	d := validImmediateDraft()
	d.Product = domain.CustomProduct{
		Name:        "Rođendanska torta",
		Description: "Čokoladna torta sa jagodama",
		Category:    "torte",
		Price:       decimal.RequireFromString("3499.999"),
	}
	d.AddedIngredients = []domain.Ingredient{{Name: "Jagode"}, {Name: "Orasi", IsAllergen: true}}

	payload, err := testValidator().Validate(d, oneItemCart())
	require.NoError(t, err)
	require.NotNil(t, payload.CustomProduct)
	assert.Equal(t, "3500.00", payload.CustomProduct.Price.StringFixed(2))
	assert.Len(t, payload.Ingredients, 2)
}

func TestValidate_ResolvesStalePaymentSelection(t *testing.T) {
	d := validScheduledDraft()
	d.SelectedPaymentMethod = domain.InStoreCash

	payload, err := testValidator().Validate(d, oneItemCart())
	require.NoError(t, err)
	assert.Equal(t, domain.CashOnDelivery, payload.PaymentMethod)
}

func TestValidate_PayloadIsSnapshot(t *testing.T) {
	c := oneItemCart()
	payload, err := testValidator().Validate(validImmediateDraft(), c)
	require.NoError(t, err)

	c.Entries[0].Quantity = 99

	assert.Equal(t, 2, payload.Entries[0].Quantity)
	assert.True(t, decimal.NewFromInt(200).Equal(payload.GrandTotal))
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{FieldPhone: MsgPhoneRequired, FieldEmail: MsgEmailRequired}
	assert.Equal(t, "invalid order: email: Email is required; phone: Phone number is required", fe.Error())
	assert.True(t, fe.Has(FieldPhone))
	assert.False(t, fe.Has(FieldZip))
}
