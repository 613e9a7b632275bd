package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_bakery/internal/catalog"
	"github.com/fjod/go_bakery/internal/checkout"
	"github.com/fjod/go_bakery/internal/domain"
	"github.com/go-chi/chi/v5"
)

const maxQuantity = 99

// SessionProvider returns the live checkout session for an id.
type SessionProvider interface {
	Get(ctx context.Context, id string) *checkout.Session
}

type CartHandler struct {
	sessions SessionProvider
	products catalog.Querier
	timeout  time.Duration
}

func NewCartHandler(sessions SessionProvider, products catalog.Querier, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		products: products,
		timeout:  timeout,
	}
}

// AddItemRequestDTO adds one unit when quantity is omitted.
type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartEntryDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
	ImageURL  string `json:"image_url"`
}

type CartResponseDTO struct {
	SessionID  string         `json:"session_id"`
	Entries    []CartEntryDTO `json:"entries"`
	ItemCount  int            `json:"item_count"`
	GrandTotal string         `json:"grand_total"`
	Currency   string         `json:"currency"`
	Warning    string         `json:"warning,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := h.sessions.Get(ctx, getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, cartResponse(session))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity <= 0 || quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		handleError(w, err)
		return
	}

	session := h.sessions.Get(ctx, getSessionID(r.Context()))
	err = session.Cart.AddItem(ctx, product.ID, product.DisplayPrice(), product.Name, product.PrimaryImage(), quantity)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(session))
}

// UpdateQuantity sets the quantity of an entry; zero removes it.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	session := h.sessions.Get(ctx, getSessionID(r.Context()))
	if err := session.Cart.SetQuantity(ctx, productID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(session))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := h.sessions.Get(ctx, getSessionID(r.Context()))
	if err := session.Cart.RemoveItem(ctx, chi.URLParam(r, "product_id")); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(session))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := h.sessions.Get(ctx, getSessionID(r.Context()))
	if err := session.Cart.Clear(ctx); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(session))
}

func cartResponse(session *checkout.Session) CartResponseDTO {
	c := session.Cart.Cart()
	totals := c.Totals()

	resp := CartResponseDTO{
		SessionID:  session.ID,
		Entries:    make([]CartEntryDTO, 0, len(c.Entries)),
		ItemCount:  totals.ItemCount,
		GrandTotal: totals.GrandTotal.StringFixed(2),
		Currency:   domain.Currency,
	}
	for _, e := range c.Entries {
		resp.Entries = append(resp.Entries, CartEntryDTO{
			ProductID: e.ProductID,
			Name:      e.Name,
			UnitPrice: e.UnitPrice.StringFixed(2),
			Quantity:  e.Quantity,
			LineTotal: domain.RoundMoney(e.LineTotal()).StringFixed(2),
			ImageURL:  e.ImageURL,
		})
	}
	if err := session.Cart.LastPersistenceError(); err != nil {
		resp.Warning = "cart is not being saved"
	}
	return resp
}
