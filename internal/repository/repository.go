package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_bakery/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// SnapshotRepository is the durable store for cart snapshots, one per session.
type SnapshotRepository interface {
	GetSnapshot(ctx context.Context, sessionID string) (*domain.CartSnapshot, error)
	UpsertSnapshot(ctx context.Context, snapshot domain.CartSnapshot) error
	// DeleteSnapshot removes the session's cart only if it was last saved
	// before savedBefore. ErrCartNotFound covers both a missing and a newer cart.
	DeleteSnapshot(ctx context.Context, sessionID string, savedBefore time.Time) error
}
