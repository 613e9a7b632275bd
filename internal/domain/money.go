package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is the only currency the storefront prices in.
const Currency = "RSD"

// DefaultDisplayPrice is shown for catalog products that carry no price.
var DefaultDisplayPrice = decimal.NewFromInt(150)

// RoundMoney rounds half-up to two decimal places. Prices are never negative,
// so decimal's half-away-from-zero rounding is half-up here.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatDinara renders an amount the way the storefront displays prices.
func FormatDinara(d decimal.Decimal) string {
	return fmt.Sprintf("%s dinara", RoundMoney(d).StringFixed(2))
}
