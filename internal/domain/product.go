package domain

import "github.com/shopspring/decimal"

// PlaceholderImageURL is rendered for products without images.
const PlaceholderImageURL = "/placeholder-image-url"

// AllCategories selects every product regardless of category.
const AllCategories = "svi-proizvodi"

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	Category    string          `json:"category"`
}

// DisplayPrice falls back to DefaultDisplayPrice when the product has no price.
func (p Product) DisplayPrice() decimal.Decimal {
	if p.Price.IsZero() {
		return DefaultDisplayPrice
	}
	return RoundMoney(p.Price)
}

func (p Product) PrimaryImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return PlaceholderImageURL
}

var categoryNames = map[string]string{
	"kolaci":         "Kolači",
	"slani-ketering": "Slani Ketering",
	"torte":          "Torte",
	"poslastice":     "Poslastice",
	AllCategories:    "Svi Proizvodi",
}

// CategoryDisplayName maps a category key to its title; unknown keys are returned as is.
func CategoryDisplayName(key string) string {
	if name, ok := categoryNames[key]; ok {
		return name
	}
	return key
}

// IsAllCategories reports whether key asks for the full product list.
func IsAllCategories(key string) bool {
	return key == "" || key == "all" || key == AllCategories
}
