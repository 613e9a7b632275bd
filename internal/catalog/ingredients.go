package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/go_bakery/internal/domain"
)

// Ingredients is a read-only snapshot of the ingredient catalog.
type Ingredients struct {
	items  []domain.Ingredient
	byName map[string]domain.Ingredient
}

func NewIngredients(items []domain.Ingredient) *Ingredients {
	in := &Ingredients{
		items:  make([]domain.Ingredient, 0, len(items)),
		byName: make(map[string]domain.Ingredient, len(items)),
	}
	for _, ing := range items {
		key := strings.ToLower(strings.TrimSpace(ing.Name))
		if key == "" {
			continue
		}
		if _, dup := in.byName[key]; dup {
			continue
		}
		in.byName[key] = ing
		in.items = append(in.items, ing)
	}
	return in
}

// LoadIngredients reads the ingredient catalog once.
func LoadIngredients(ctx context.Context, q Querier) (*Ingredients, error) {
	items, err := q.ListIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	return NewIngredients(items), nil
}

func (in *Ingredients) All() []domain.Ingredient {
	out := make([]domain.Ingredient, len(in.items))
	copy(out, in.items)
	return out
}

// Lookup finds an ingredient by name, ignoring case and surrounding spaces.
func (in *Ingredients) Lookup(name string) (domain.Ingredient, bool) {
	ing, ok := in.byName[strings.ToLower(strings.TrimSpace(name))]
	return ing, ok
}

func (in *Ingredients) Allergens() []domain.Ingredient {
	var out []domain.Ingredient
	for _, ing := range in.items {
		if ing.IsAllergen {
			out = append(out, ing)
		}
	}
	return out
}
