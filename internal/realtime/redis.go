package realtime

import (
	"context"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
)

// RedisBus carries change events over redis pub/sub so that every node
// serving one half of a pair sees the other half's writes.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Publish(ctx context.Context, table string, userID uint) error {
	return b.client.Publish(ctx, topic(table, userID), "1").Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, table string, userID uint, onChange func()) (Subscription, error) {
	ps := b.client.Subscribe(ctx, topic(table, userID))
	// Force the subscription onto the wire before returning.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	sub := &redisSub{ps: ps}
	go func() {
		for range ps.Channel() {
			onChange()
		}
	}()
	return sub, nil
}

type redisSub struct {
	ps   *redis.PubSub
	once sync.Once
}

func (s *redisSub) Unsubscribe() {
	s.once.Do(func() {
		if err := s.ps.Close(); err != nil {
			log.Printf("[realtime] unsubscribe: %v", err)
		}
	})
}
