package service

import (
	"context"
	"log"
	"time"
)

// DefaultHeartbeatInterval is the cadence of "I am alive" writes.
const DefaultHeartbeatInterval = 15 * time.Second

type lastSeenWriter interface {
	TouchLastSeen(userID uint) error
}

// HeartbeatPublisher periodically writes the local user's liveness timestamp.
// Best-effort: a failed write only means the peer sees us go offline once the
// online threshold elapses.
type HeartbeatPublisher struct {
	repo     lastSeenWriter
	interval time.Duration
}

func NewHeartbeatPublisher(repo lastSeenWriter, interval time.Duration) *HeartbeatPublisher {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &HeartbeatPublisher{repo: repo, interval: interval}
}

// Run beats immediately and then on every tick until ctx is cancelled.
func (h *HeartbeatPublisher) Run(ctx context.Context, userID uint) {
	h.beat(userID)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.beat(userID)
		}
	}
}

func (h *HeartbeatPublisher) beat(userID uint) {
	if err := h.repo.TouchLastSeen(userID); err != nil {
		log.Printf("[heartbeat] user %d: %v", userID, err)
	}
}
