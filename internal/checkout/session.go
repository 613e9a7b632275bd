package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_bakery/internal/cart"
	"github.com/fjod/go_bakery/internal/domain"
	"go.uber.org/zap"
)

// Sink receives every successfully validated order.
type Sink interface {
	Submit(ctx context.Context, payload domain.OrderPayload) error
}

// Session is one customer's checkout: a cart and an order draft that are
// combined only on submit.
type Session struct {
	ID    string
	Cart  *cart.Store
	Draft *Draft

	submitMu  sync.Mutex
	validator *Validator
	sink      Sink
	logger    *zap.Logger
}

func NewSession(id string, store *cart.Store, validator *Validator, sink Sink, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		ID:        id,
		Cart:      store,
		Draft:     NewDraft(),
		validator: validator,
		sink:      sink,
		logger:    logger.With(zap.String("session_id", id)),
	}
}

// Validate runs the validator without submitting.
func (s *Session) Validate() (*domain.OrderPayload, error) {
	return s.validator.Validate(s.Draft.Snapshot(), s.Cart.Cart())
}

// Submit validates, hands the payload to the sink and then takes the ordered
// entries out of the cart and resets the draft. Items added while the sink
// call was in flight are kept. A sink failure keeps both so the customer can
// retry.
func (s *Session) Submit(ctx context.Context) (*domain.OrderPayload, error) {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	payload, err := s.Validate()
	if err != nil {
		return nil, err
	}
	payload.SessionID = s.ID

	if s.sink != nil {
		if err := s.sink.Submit(ctx, *payload); err != nil {
			s.logger.Error("order submission failed", zap.String("order_id", payload.ID.String()), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
		}
	}

	s.logger.Info("order submitted",
		zap.String("order_id", payload.ID.String()),
		zap.Stringer("delivery_mode", payload.DeliveryMode),
		zap.Stringer("payment_method", payload.PaymentMethod),
		zap.String("grand_total", payload.GrandTotal.StringFixed(2)),
	)

	if err := s.Cart.Subtract(ctx, payload.Entries); err != nil {
		s.logger.Warn("failed to clear cart after submission", zap.Error(err))
	}
	s.Draft.Reset()

	return payload, nil
}
