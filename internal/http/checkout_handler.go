package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_bakery/internal/catalog"
	"github.com/fjod/go_bakery/internal/checkout"
	"github.com/fjod/go_bakery/internal/domain"
	"github.com/fjod/go_bakery/internal/payment"
)

type CheckoutHandler struct {
	sessions    SessionProvider
	ingredients *catalog.Ingredients
	timeout     time.Duration
}

func NewCheckoutHandler(sessions SessionProvider, ingredients *catalog.Ingredients, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		sessions:    sessions,
		ingredients: ingredients,
		timeout:     timeout,
	}
}

type DraftResponseDTO struct {
	SessionID      string               `json:"session_id"`
	Draft          domain.OrderDraft    `json:"draft"`
	Policy         checkout.FieldPolicy `json:"policy"`
	PaymentOptions []payment.Option     `json:"payment_options"`
}

type PaymentMethodsResponseDTO struct {
	DeliveryMode domain.DeliveryMode `json:"delivery_mode"`
	Options      []payment.Option    `json:"options"`
}

type SubmitResponseDTO struct {
	Order *domain.OrderPayload `json:"order"`
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := h.sessions.Get(ctx, getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, draftResponse(session))
}

// PUT /api/v1/checkout
func (h *CheckoutHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req checkout.Update
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// allergen flags come from the catalog, not from the client
	for i, ing := range req.AddIngredients {
		known, ok := h.ingredients.Lookup(ing.Name)
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown_ingredient", "unknown ingredient: "+ing.Name)
			return
		}
		req.AddIngredients[i] = known
	}

	session := h.sessions.Get(ctx, getSessionID(r.Context()))
	if err := session.Draft.Apply(req); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, draftResponse(session))
}

// POST /api/v1/checkout/delivery
func (h *CheckoutHandler) ToggleDelivery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := h.sessions.Get(ctx, getSessionID(r.Context()))
	session.Draft.ToggleDelivery()

	respondJSON(w, http.StatusOK, draftResponse(session))
}

// GET /api/v1/checkout/payment-methods
func (h *CheckoutHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := h.sessions.Get(ctx, getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, PaymentMethodsResponseDTO{
		DeliveryMode: session.Draft.Snapshot().DeliveryMode,
		Options:      session.Draft.PaymentOptions(),
	})
}

// POST /api/v1/checkout/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := h.sessions.Get(ctx, getSessionID(r.Context()))
	payload, err := session.Submit(ctx)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SubmitResponseDTO{Order: payload})
}

func draftResponse(session *checkout.Session) DraftResponseDTO {
	return DraftResponseDTO{
		SessionID:      session.ID,
		Draft:          session.Draft.Snapshot(),
		Policy:         session.Draft.Policy(),
		PaymentOptions: session.Draft.PaymentOptions(),
	}
}
