package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryBus is an in-process Bus for single-node deployments and tests.
// Callbacks run on the publishing goroutine.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[string]map[string]func() // topic -> sub id -> callback
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[string]func())}
}

func (b *MemoryBus) Publish(_ context.Context, table string, userID uint) error {
	key := topic(table, userID)
	b.mu.RLock()
	callbacks := make([]func(), 0, len(b.subs[key]))
	for _, fn := range b.subs[key] {
		callbacks = append(callbacks, fn)
	}
	b.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, table string, userID uint, onChange func()) (Subscription, error) {
	key := topic(table, userID)
	id := uuid.NewString()
	b.mu.Lock()
	if b.subs[key] == nil {
		b.subs[key] = make(map[string]func())
	}
	b.subs[key][id] = onChange
	b.mu.Unlock()
	return &memorySub{bus: b, key: key, id: id}, nil
}

type memorySub struct {
	bus  *MemoryBus
	key  string
	id   string
	once sync.Once
}

func (s *memorySub) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		if m := s.bus.subs[s.key]; m != nil {
			delete(m, s.id)
			if len(m) == 0 {
				delete(s.bus.subs, s.key)
			}
		}
	})
}
