package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_bakery/internal/cart"
	"go.uber.org/zap"
)

const (
	// SessionTTL is how long an untouched session is kept in memory.
	SessionTTL = 2 * time.Hour

	// CleanupInterval is how often idle sessions are evicted.
	CleanupInterval = 5 * time.Minute
)

type registryEntry struct {
	session  *Session
	lastSeen time.Time
}

// Registry keeps the live checkout sessions. A session's cart is loaded from
// persistence once, when the session is first used.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*registryEntry

	persistence cart.Persistence
	validator   *Validator
	sink        Sink
	logger      *zap.Logger
	ttl         time.Duration

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewRegistry(persistence cart.Persistence, validator *Validator, sink Sink, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		sessions:    make(map[string]*registryEntry),
		persistence: persistence,
		validator:   validator,
		sink:        sink,
		logger:      logger,
		ttl:         SessionTTL,
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// Get returns the session for id, creating and loading it on first use.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	r.mu.Lock()
	if e, ok := r.sessions[id]; ok {
		e.lastSeen = time.Now()
		r.mu.Unlock()
		return e.session
	}
	r.mu.Unlock()

	store := cart.NewStore(id, r.persistence, r.logger)
	if err := store.Load(ctx); err != nil {
		r.logger.Warn("session started without saved cart", zap.String("session_id", id), zap.Error(err))
	}
	s := NewSession(id, store, r.validator, r.sink, r.logger)

	r.mu.Lock()
	defer r.mu.Unlock()
	// another request may have created it while the cart was loading
	if e, ok := r.sessions[id]; ok {
		e.lastSeen = time.Now()
		return e.session
	}
	r.sessions[id] = &registryEntry{session: s, lastSeen: time.Now()}
	return s
}

// Forget drops a session from memory; its saved cart is untouched.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) Close() {
	close(r.stopCleanup)
	r.wg.Wait()
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle(time.Now())
		case <-r.stopCleanup:
			return
		}
	}
}

func (r *Registry) evictIdle(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.sessions, id)
		}
	}
}
