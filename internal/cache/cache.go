package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_bakery/internal/domain"
)

type SnapshotCache interface {
	Get(ctx context.Context, sessionID string) (*domain.CartSnapshot, error)
	Set(ctx context.Context, snapshot domain.CartSnapshot) error
	// SetIfAbsent never replaces an existing entry.
	SetIfAbsent(ctx context.Context, snapshot domain.CartSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
