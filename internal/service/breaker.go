package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_bakery/internal/cart"
	"github.com/fjod/go_bakery/internal/repository"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
	// HalfOpenRequests is how many trial requests are let through while half-open.
	HalfOpenRequests uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		HalfOpenRequests:    1,
	}
}

func newBreaker(cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "cart-persistence",
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, repository.ErrCartNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})
}

// unavailable reports a rejected call as cart.ErrPersistenceUnavailable.
func unavailable(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", cart.ErrPersistenceUnavailable, err)
	}
	return err
}
