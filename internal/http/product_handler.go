package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_bakery/internal/catalog"
	"github.com/fjod/go_bakery/internal/domain"
)

type ProductHandler struct {
	products    catalog.Querier
	ingredients *catalog.Ingredients
	timeout     time.Duration
}

func NewProductHandler(products catalog.Querier, ingredients *catalog.Ingredients, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		products:    products,
		ingredients: ingredients,
		timeout:     timeout,
	}
}

type ProductResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	PriceLabel  string   `json:"price_label"`
	ImageURL    string   `json:"image_url"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
}

type ProductsResponse struct {
	Category     string            `json:"category"`
	CategoryName string            `json:"category_name"`
	Products     []ProductResponse `json:"products"`
}

type IngredientsResponse struct {
	Ingredients []domain.Ingredient `json:"ingredients"`
}

// GET /api/v1/products?category=
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	category := r.URL.Query().Get("category")
	res, err := h.products.ListProducts(ctx, category)
	if err != nil {
		handleError(w, err)
		return
	}

	if domain.IsAllCategories(category) {
		category = domain.AllCategories
	}
	products := make([]ProductResponse, len(res))
	for i, p := range res {
		images := p.Images
		if images == nil {
			images = []string{}
		}
		products[i] = ProductResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.DisplayPrice().StringFixed(2),
			PriceLabel:  domain.FormatDinara(p.DisplayPrice()),
			ImageURL:    p.PrimaryImage(),
			Images:      images,
			Category:    p.Category,
		}
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{
		Category:     category,
		CategoryName: domain.CategoryDisplayName(category),
		Products:     products,
	})
}

// GET /api/v1/ingredients
func (h *ProductHandler) Ingredients(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &IngredientsResponse{Ingredients: h.ingredients.All()})
}
