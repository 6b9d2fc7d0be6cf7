package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rentflow/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore keeps keys for one process only
type InMemoryIdempotencyStore struct {
	mu     sync.Mutex
	until  map[string]time.Time
	now    func() time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return newInMemoryIdempotencyStore(5 * time.Minute)
}

// newInMemoryIdempotencyStore sweeps expired keys every interval until Close
func newInMemoryIdempotencyStore(interval time.Duration) *InMemoryIdempotencyStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &InMemoryIdempotencyStore{
		until:  make(map[string]time.Time),
		now:    time.Now,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.sweep(ctx, interval)
	return s
}

func (s *InMemoryIdempotencyStore) live(key string) bool {
	until, ok := s.until[key]
	return ok && s.now().Before(until)
}

// MarkProcessed claims key for ttl; false means another caller holds it
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live(key) {
		return false, nil
	}
	s.until[key] = s.now().Add(ttl)
	return true, nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(key), nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.until, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper and may be called more than once
func (s *InMemoryIdempotencyStore) Close() error {
	s.cancel()
	<-s.done
	return nil
}

func (s *InMemoryIdempotencyStore) sweep(ctx context.Context, interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			for key := range s.until {
				if !s.live(key) {
					delete(s.until, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Size counts stored keys, including expired ones not yet swept
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.until)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
