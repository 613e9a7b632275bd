package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_bakery/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const saveTimeout = time.Second

// Persistence is the storage medium for cart snapshots. Load returns an empty
// snapshot for a session that has never been saved.
type Persistence interface {
	Save(ctx context.Context, snapshot domain.CartSnapshot) error
	Load(ctx context.Context, sessionID string) (*domain.CartSnapshot, error)
}

// Store owns the cart of one checkout session.
type Store struct {
	mu          sync.Mutex
	sessionID   string
	cart        domain.Cart
	persistence Persistence
	logger      *zap.Logger
	lastSaveErr error
}

func NewStore(sessionID string, persistence Persistence, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessionID:   sessionID,
		persistence: persistence,
		logger:      logger.With(zap.String("session_id", sessionID)),
	}
}

func (s *Store) SessionID() string {
	return s.sessionID
}

// Load restores the saved cart. Any failure leaves an empty in-memory cart and
// is reported as ErrPersistenceUnavailable.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = domain.Cart{}
	if s.persistence == nil {
		return nil
	}

	snapshot, err := s.persistence.Load(ctx, s.sessionID)
	if err != nil {
		s.logger.Warn("cart load failed, starting with empty cart", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	if snapshot != nil {
		s.cart = snapshot.Cart()
	}
	return nil
}

// AddItem appends a new entry or increments the quantity of an existing one.
func (s *Store) AddItem(ctx context.Context, productID string, unitPrice decimal.Decimal, name, imageURL string, quantity int) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ErrInvalidProduct
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.cart.IndexOf(productID); i >= 0 {
		e := &s.cart.Entries[i]
		e.Quantity += quantity
		e.UnitPrice = unitPrice
		e.Name = name
		e.ImageURL = imageURL
	} else {
		s.cart.Entries = append(s.cart.Entries, domain.CartEntry{
			ProductID: productID,
			Name:      name,
			UnitPrice: unitPrice,
			Quantity:  quantity,
			ImageURL:  imageURL,
		})
	}

	s.save(ctx)
	return nil
}

// RemoveItem is a no-op for products that are not in the cart.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remove(productID) {
		s.save(ctx)
	}
	return nil
}

// SetQuantity sets an exact quantity; zero removes the entry.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity == 0 {
		if s.remove(productID) {
			s.save(ctx)
		}
		return nil
	}

	i := s.cart.IndexOf(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	if s.cart.Entries[i].Quantity == quantity {
		return nil
	}
	s.cart.Entries[i].Quantity = quantity
	s.save(ctx)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = domain.Cart{}
	s.save(ctx)
	return nil
}

// Subtract removes the given quantities from the cart, dropping entries that
// reach zero. Entries added after the snapshot that produced ordered stay.
func (s *Store) Subtract(ctx context.Context, ordered []domain.CartEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, o := range ordered {
		i := s.cart.IndexOf(o.ProductID)
		if i < 0 {
			continue
		}
		changed = true
		if s.cart.Entries[i].Quantity <= o.Quantity {
			s.remove(o.ProductID)
			continue
		}
		s.cart.Entries[i].Quantity -= o.Quantity
	}

	if changed {
		s.save(ctx)
	}
	return nil
}

func (s *Store) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Totals()
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// LastPersistenceError reports the outcome of the most recent save.
func (s *Store) LastPersistenceError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveErr
}

func (s *Store) remove(productID string) bool {
	i := s.cart.IndexOf(productID)
	if i < 0 {
		return false
	}
	s.cart.Entries = append(s.cart.Entries[:i], s.cart.Entries[i+1:]...)
	return true
}

func (s *Store) snapshot() domain.CartSnapshot {
	return domain.CartSnapshot{
		SessionID: s.sessionID,
		Entries:   s.cart.Clone().Entries,
		SavedAt:   time.Now().UTC(),
	}
}

// save writes a full snapshot. Failures never roll back the in-memory cart.
// Must be called with s.mu held.
func (s *Store) save(ctx context.Context) {
	if s.persistence == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	err := s.persistence.Save(ctx, s.snapshot())
	if err != nil {
		if !errors.Is(err, ErrPersistenceUnavailable) {
			err = fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
		}
		s.logger.Warn("cart save failed, continuing in memory", zap.Error(err))
	}
	s.lastSaveErr = err
}
