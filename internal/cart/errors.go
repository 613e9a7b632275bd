package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrInvalidProduct  = errors.New("product id is required")
	ErrItemNotFound    = errors.New("item not found in cart")

	// ErrPersistenceUnavailable means the cart keeps working in memory but is
	// not being saved.
	ErrPersistenceUnavailable = errors.New("cart persistence unavailable")
)
