package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_bakery/internal/cache"
	"github.com/fjod/go_bakery/internal/domain"
	"github.com/fjod/go_bakery/internal/repository"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const cacheTimeout = time.Second

// SnapshotService persists cart snapshots in the repository behind a
// write-through cache. It implements cart.Persistence.
type SnapshotService struct {
	repo    repository.SnapshotRepository
	cache   cache.SnapshotCache
	sfg     singleflight.Group // Prevents cache stampede
	breaker *gobreaker.CircuitBreaker[any]
	logger  *zap.Logger
}

func NewSnapshotService(repo repository.SnapshotRepository, cache cache.SnapshotCache, cfg BreakerConfig, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		repo:    repo,
		cache:   cache,
		breaker: newBreaker(cfg, logger),
		logger:  logger,
	}
}

// Load returns the saved snapshot, or an empty one for a session that has
// never been saved.
func (s *SnapshotService) Load(ctx context.Context, sessionID string) (*domain.CartSnapshot, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (any, error) {
		snapshot, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return snapshot, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache get error", zap.String("session_id", sessionID), zap.Error(err))
		}

		res, err := s.breaker.Execute(func() (any, error) {
			return s.repo.GetSnapshot(ctx, sessionID)
		})
		if errors.Is(err, repository.ErrCartNotFound) {
			return &domain.CartSnapshot{SessionID: sessionID}, nil
		}
		if err != nil {
			return nil, unavailable(err)
		}

		snapshot = res.(*domain.CartSnapshot)
		// a Save that raced this read has already cached a newer snapshot
		s.fillCache(*snapshot)

		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}

	snapshot := v.(*domain.CartSnapshot)
	// callers sharing a flight must not share entries
	return &domain.CartSnapshot{
		SessionID: snapshot.SessionID,
		Entries:   snapshot.Cart().Entries,
		SavedAt:   snapshot.SavedAt,
	}, nil
}

// Save writes the whole snapshot to the repository and then to the cache.
func (s *SnapshotService) Save(ctx context.Context, snapshot domain.CartSnapshot) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.repo.UpsertSnapshot(ctx, snapshot)
	})
	if err != nil {
		s.logger.Warn("repo upsert cart error", zap.String("session_id", snapshot.SessionID), zap.Error(err))
		return unavailable(err)
	}

	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()
	if err := s.cache.Set(cacheCtx, snapshot); err != nil {
		s.logger.Warn("cache set error", zap.String("session_id", snapshot.SessionID), zap.Error(err))
		s.invalidateCache(snapshot.SessionID)
	}
	return nil
}

// DeleteSavedBefore removes the saved snapshot if it was last written before
// savedBefore. A missing or newer cart is left alone and is not an error.
func (s *SnapshotService) DeleteSavedBefore(ctx context.Context, sessionID string, savedBefore time.Time) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.repo.DeleteSnapshot(ctx, sessionID, savedBefore)
	})
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("repo delete cart error", zap.String("session_id", sessionID), zap.Error(err))
		return unavailable(err)
	}

	s.invalidateCache(sessionID)
	return nil
}

func (s *SnapshotService) fillCache(snapshot domain.CartSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := s.cache.SetIfAbsent(ctx, snapshot); err != nil {
		s.logger.Warn("cache fill error", zap.String("session_id", snapshot.SessionID), zap.Error(err))
	}
}

func (s *SnapshotService) invalidateCache(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("cache invalidate error", zap.String("session_id", sessionID), zap.Error(err))
	}
}
