package realtime

import (
	"context"
	"testing"
)

func TestMemoryBusDeliversToMatchingSubscriber(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	var locHits, userHits int
	subA, err := bus.Subscribe(ctx, "user_locations", 1, func() { locHits++ })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer subA.Unsubscribe()
	subB, err := bus.Subscribe(ctx, "users", 1, func() { userHits++ })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer subB.Unsubscribe()

	if err := bus.Publish(ctx, "user_locations", 1); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if locHits != 1 || userHits != 0 {
		t.Fatalf("hits = (%d,%d), want (1,0)", locHits, userHits)
	}

	// Different user id on the same table must not match.
	if err := bus.Publish(ctx, "user_locations", 2); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if locHits != 1 {
		t.Fatalf("cross-user delivery: hits = %d", locHits)
	}
}

func TestMemoryBusUnsubscribeIdempotent(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	hits := 0
	sub, err := bus.Subscribe(ctx, "user_locations", 1, func() { hits++ })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	sub.Unsubscribe()
	sub.Unsubscribe()
	sub.Unsubscribe()

	if err := bus.Publish(ctx, "user_locations", 1); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if hits != 0 {
		t.Fatalf("delivered after unsubscribe: hits = %d", hits)
	}
}

func TestMemoryBusMultipleSubscribersSameTopic(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	var a, b int
	s1, _ := bus.Subscribe(ctx, "users", 7, func() { a++ })
	s2, _ := bus.Subscribe(ctx, "users", 7, func() { b++ })
	defer s1.Unsubscribe()
	defer s2.Unsubscribe()

	if err := bus.Publish(ctx, "users", 7); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if a != 1 || b != 1 {
		t.Fatalf("hits = (%d,%d), want (1,1)", a, b)
	}
}
