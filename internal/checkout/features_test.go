package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/fjod/go_bakery/internal/cart"
	"github.com/fjod/go_bakery/internal/domain"
	"github.com/shopspring/decimal"
)

type checkoutTestContext struct {
	session *Session
	sink    *mockSink
	payload *domain.OrderPayload
	err     error
}

func (c *checkoutTestContext) reset() {
	c.sink = &mockSink{}
	store := cart.NewStore("feature", newMemoryPersistence(), nil)
	c.session = NewSession("feature", store, NewValidator(nil), c.sink, nil)
	c.payload = nil
	c.err = nil
}

func (c *checkoutTestContext) aCartWithProduct(id string, price, quantity int) error {
	return c.session.Cart.AddItem(context.Background(), id, decimal.NewFromInt(int64(price)), id, "", quantity)
}

func (c *checkoutTestContext) theCustomer(name, phone, email string) error {
	c.session.Draft.SetCustomerName(name)
	c.session.Draft.SetPhone(phone)
	c.session.Draft.SetEmail(email)
	return nil
}

func (c *checkoutTestContext) theCartHasItemsTotalling(count, total int) error {
	totals := c.session.Cart.Totals()
	if totals.ItemCount != count {
		return fmt.Errorf("expected %d items, got %d", count, totals.ItemCount)
	}
	if !totals.GrandTotal.Equal(decimal.NewFromInt(int64(total))) {
		return fmt.Errorf("expected total %d, got %s", total, totals.GrandTotal)
	}
	return nil
}

func (c *checkoutTestContext) theAllowedPaymentMethodsAre(methods string) error {
	allowed := c.session.Draft.Policy().Eligibility.Allowed
	names := make([]string, len(allowed))
	for i, m := range allowed {
		names[i] = m.String()
	}
	if got := strings.Join(names, ","); got != methods {
		return fmt.Errorf("expected allowed %q, got %q", methods, got)
	}
	return nil
}

func (c *checkoutTestContext) thePreselectedPaymentMethodIs(method string) error {
	if got := c.session.Draft.Policy().Eligibility.Preselected.String(); got != method {
		return fmt.Errorf("expected preselected %q, got %q", method, got)
	}
	return nil
}

func (c *checkoutTestContext) theSelectedPaymentMethodIs(method string) error {
	if got := c.session.Draft.Snapshot().SelectedPaymentMethod.String(); got != method {
		return fmt.Errorf("expected selected %q, got %q", method, got)
	}
	return nil
}

func (c *checkoutTestContext) iToggleTheDeliverySwitch() error {
	c.session.Draft.ToggleDelivery()
	return nil
}

func (c *checkoutTestContext) theDeliveryAddressIs(address, city, zip string) error {
	c.session.Draft.SetAddress(address)
	c.session.Draft.SetCity(city)
	c.session.Draft.SetZip(zip)
	return nil
}

func (c *checkoutTestContext) theDeliveryIsScheduledFromNow(hours int) error {
	at := time.Now().Add(time.Duration(hours) * time.Hour)
	c.session.Draft.SetScheduledAt(&at)
	return nil
}

func (c *checkoutTestContext) theDeliveryIsScheduledAgo(hours int) error {
	at := time.Now().Add(-time.Duration(hours) * time.Hour)
	c.session.Draft.SetScheduledAt(&at)
	return nil
}

func (c *checkoutTestContext) iSubmitTheOrder() error {
	c.payload, c.err = c.session.Submit(context.Background())
	return nil
}

func (c *checkoutTestContext) theOrderIsAcceptedWithPaymentMethod(method string) error {
	if c.err != nil {
		return fmt.Errorf("expected accepted order but got error: %v", c.err)
	}
	if got := c.payload.PaymentMethod.String(); got != method {
		return fmt.Errorf("expected payment method %q, got %q", method, got)
	}
	if c.sink.count() != 1 {
		return errors.New("expected the order to reach the sink")
	}
	return nil
}

func (c *checkoutTestContext) fieldErrors() (FieldErrors, error) {
	var fe FieldErrors
	if !errors.As(c.err, &fe) {
		return nil, fmt.Errorf("expected field errors, got %v", c.err)
	}
	return fe, nil
}

func (c *checkoutTestContext) theOrderIsRejectedWithAnErrorOn(field string) error {
	fe, err := c.fieldErrors()
	if err != nil {
		return err
	}
	if !fe.Has(field) {
		return fmt.Errorf("expected error on %q, got %v", field, fe)
	}
	return nil
}

func (c *checkoutTestContext) theOrderHasNoErrorOn(field string) error {
	fe, err := c.fieldErrors()
	if err != nil {
		return err
	}
	if fe.Has(field) {
		return fmt.Errorf("unexpected error on %q: %s", field, fe[field])
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a cart with product "([^"]*)" priced (\d+) and quantity (\d+)$`, tc.aCartWithProduct)
	ctx.Step(`^the customer "([^"]*)" with phone "([^"]*)" and email "([^"]*)"$`, tc.theCustomer)

	// When steps
	ctx.Step(`^I toggle the delivery switch$`, tc.iToggleTheDeliverySwitch)
	ctx.Step(`^the delivery address is "([^"]*)", "([^"]*)", "([^"]*)"$`, tc.theDeliveryAddressIs)
	ctx.Step(`^the delivery is scheduled (\d+) hours from now$`, tc.theDeliveryIsScheduledFromNow)
	ctx.Step(`^the delivery is scheduled (\d+) hours ago$`, tc.theDeliveryIsScheduledAgo)
	ctx.Step(`^I submit the order$`, tc.iSubmitTheOrder)

	// Then steps
	ctx.Step(`^the cart has (\d+) items totalling (\d+)$`, tc.theCartHasItemsTotalling)
	ctx.Step(`^the allowed payment methods are "([^"]*)"$`, tc.theAllowedPaymentMethodsAre)
	ctx.Step(`^the preselected payment method is "([^"]*)"$`, tc.thePreselectedPaymentMethodIs)
	ctx.Step(`^the selected payment method is "([^"]*)"$`, tc.theSelectedPaymentMethodIs)
	ctx.Step(`^the order is accepted with payment method "([^"]*)"$`, tc.theOrderIsAcceptedWithPaymentMethod)
	ctx.Step(`^the order is rejected with an error on "([^"]*)"$`, tc.theOrderIsRejectedWithAnErrorOn)
	ctx.Step(`^the order has no error on "([^"]*)"$`, tc.theOrderHasNoErrorOn)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
