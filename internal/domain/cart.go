package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartEntry is one product line inside a cart. The cart references the
// catalog by ProductID only and keeps just what it needs to price and render.
type CartEntry struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url"`
}

func (e CartEntry) LineTotal() decimal.Decimal {
	return e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Cart is an ordered list of entries; insertion order is display order.
type Cart struct {
	Entries []CartEntry `json:"entries"`
}

type Totals struct {
	ItemCount  int             `json:"item_count"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Totals is derived from the entries on every call and never stored.
func (c Cart) Totals() Totals {
	var t Totals
	t.GrandTotal = decimal.Zero
	for _, e := range c.Entries {
		t.ItemCount += e.Quantity
		t.GrandTotal = t.GrandTotal.Add(e.LineTotal())
	}
	t.GrandTotal = RoundMoney(t.GrandTotal)
	return t
}

func (c Cart) IndexOf(productID string) int {
	for i, e := range c.Entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) IsEmpty() bool {
	for _, e := range c.Entries {
		if e.Quantity >= 1 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy; later mutation of either cart does not affect the other.
func (c Cart) Clone() Cart {
	if c.Entries == nil {
		return Cart{}
	}
	entries := make([]CartEntry, len(c.Entries))
	copy(entries, c.Entries)
	return Cart{Entries: entries}
}

// CartSnapshot is the full cart state handed to the persistence adapter.
type CartSnapshot struct {
	SessionID string      `json:"session_id"`
	Entries   []CartEntry `json:"entries"`
	SavedAt   time.Time   `json:"saved_at"`
}

func (s CartSnapshot) Cart() Cart {
	return Cart{Entries: s.Entries}.Clone()
}
