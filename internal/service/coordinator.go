package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"paired/internal/geo"
	"paired/internal/models"
	"paired/internal/realtime"
	"paired/pkg/location"
	"paired/pkg/presence"
)

// DefaultPresencePollInterval is the cadence of the local presence
// recomputation. Purely local, no I/O.
const DefaultPresencePollInterval = 5 * time.Second

// SessionState is the coordinator lifecycle.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateLoading
	StateReady
	// StateDegraded is terminal: location permission is gone, self-derived
	// metrics freeze, partner-derived metrics keep updating.
	StateDegraded
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return "uninitialized"
	}
}

// LocationReader is the slice of the location store the coordinator reads.
type LocationReader interface {
	GetByUserID(userID uint) (*models.UserLocation, error)
}

// PresenceSource reads a peer's heartbeat timestamp.
type PresenceSource interface {
	LastSeen(userID uint) (*time.Time, error)
}

// Coordinator owns one pair session: cached self and partner locations,
// the partner's heartbeat, the three periodic loops and the realtime
// subscriptions, with a single teardown path.
//
// The session only ever writes its own user's records; the partner side is
// read-only here, refreshed via the change feed.
type Coordinator struct {
	selfID    uint
	partnerID uint

	locations LocationReader
	presences PresenceSource
	heartbeat *HeartbeatPublisher
	poller    *geo.Poller
	bus       realtime.Bus

	pollInterval    time.Duration
	onlineThreshold time.Duration
	now             func() time.Time

	// OnUpdate, when set before Start, is invoked after every state refresh
	// so the transport layer can push to connected clients.
	OnUpdate func()

	mu          sync.RWMutex
	state       SessionState
	selfLoc     *models.UserLocation
	partnerLoc  *models.UserLocation
	partnerSeen *time.Time

	cancel   context.CancelFunc
	subs     []realtime.Subscription
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// CoordinatorConfig carries the tunables; zero values fall back to defaults.
type CoordinatorConfig struct {
	PollInterval    time.Duration
	OnlineThreshold time.Duration
}

func NewCoordinator(selfID, partnerID uint, locations LocationReader, presences PresenceSource, heartbeat *HeartbeatPublisher, poller *geo.Poller, bus realtime.Bus, cfg CoordinatorConfig) *Coordinator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPresencePollInterval
	}
	if cfg.OnlineThreshold <= 0 {
		cfg.OnlineThreshold = presence.DefaultOnlineThreshold
	}
	return &Coordinator{
		selfID:          selfID,
		partnerID:       partnerID,
		locations:       locations,
		presences:       presences,
		heartbeat:       heartbeat,
		poller:          poller,
		bus:             bus,
		pollInterval:    cfg.PollInterval,
		onlineThreshold: cfg.OnlineThreshold,
		now:             time.Now,
		state:           StateUninitialized,
	}
}

// Start loads both sides, wires the realtime subscriptions and launches the
// heartbeat, presence-poll and geo-refresh loops. Load or subscribe failures
// for either side are non-fatal; the feed and the loops will converge state.
func (c *Coordinator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.state != StateUninitialized {
		c.mu.Unlock()
		cancel()
		return errors.New("coordinator already started")
	}
	c.state = StateLoading
	c.cancel = cancel
	c.mu.Unlock()

	c.refetchLocation(c.selfID)
	c.refetchLocation(c.partnerID)
	c.refetchPartnerSeen()

	locTable := models.UserLocation{}.TableName()
	userTable := models.User{}.TableName()
	c.subscribe(ctx, locTable, c.selfID, func() { c.refetchLocation(c.selfID); c.notify() })
	c.subscribe(ctx, locTable, c.partnerID, func() { c.refetchLocation(c.partnerID); c.notify() })
	c.subscribe(ctx, userTable, c.partnerID, func() { c.refetchPartnerSeen(); c.notify() })

	if c.heartbeat != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.heartbeat.Run(ctx, c.selfID)
		}()
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.presencePollLoop(ctx)
	}()

	if c.poller != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			err := c.poller.AutoRefresh(ctx, c.selfID)
			if errors.Is(err, geo.ErrPermissionDenied) {
				log.Printf("[coordinator] user %d: location permission lost, session degraded", c.selfID)
				c.setState(StateDegraded)
			}
		}()
	}

	c.mu.Lock()
	if c.state == StateLoading {
		c.state = StateReady
	}
	c.mu.Unlock()
	return nil
}

// Stop tears everything down: timers cancelled, subscriptions removed.
// Idempotent. In-flight fixes finish on their own and are discarded.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		cancel := c.cancel
		subs := c.subs
		c.subs = nil
		c.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		for _, s := range subs {
			s.Unsubscribe()
		}
		c.wg.Wait()
	})
}

// State reports the session lifecycle state.
func (c *Coordinator) State() SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Distance is the live distance in km between the pair, nil until both
// positions are known.
func (c *Coordinator) Distance() *float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selfLoc == nil || c.partnerLoc == nil {
		return nil
	}
	km := location.HaversineKm(c.selfLoc.Latitude, c.selfLoc.Longitude,
		c.partnerLoc.Latitude, c.partnerLoc.Longitude)
	return &km
}

// DistanceToSelfHome is the distance from the local user's position to their
// home anchor, nil when either is unknown.
func (c *Coordinator) DistanceToSelfHome() *float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return homeDistance(c.selfLoc)
}

// DistanceToPartnerHome mirrors DistanceToSelfHome for the partner.
func (c *Coordinator) DistanceToPartnerHome() *float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return homeDistance(c.partnerLoc)
}

// PartnerPresence derives the partner's online verdict from their heartbeat.
func (c *Coordinator) PartnerPresence() presence.State {
	c.mu.RLock()
	seen := c.partnerSeen
	c.mu.RUnlock()
	return presence.Evaluate(seen, c.now(), c.onlineThreshold)
}

// PartnerLocation returns the last fetched partner record, nil if unknown.
func (c *Coordinator) PartnerLocation() *models.UserLocation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.partnerLoc
}

func homeDistance(loc *models.UserLocation) *float64 {
	if loc == nil || !loc.HasHome() {
		return nil
	}
	km := location.HaversineKm(loc.Latitude, loc.Longitude, *loc.HomeLatitude, *loc.HomeLongitude)
	return &km
}

func (c *Coordinator) subscribe(ctx context.Context, table string, userID uint, onChange func()) {
	if c.bus == nil {
		return
	}
	sub, err := c.bus.Subscribe(ctx, table, userID, onChange)
	if err != nil {
		log.Printf("[coordinator] subscribe %s/%d: %v", table, userID, err)
		return
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
}

// refetchLocation pulls full current state for one side. The change feed
// carries no payload, so a notification always means a full refetch.
func (c *Coordinator) refetchLocation(userID uint) {
	loc, err := c.locations.GetByUserID(userID)
	if err != nil {
		// Keep last-known state; the next notification or tick retries.
		return
	}
	c.mu.Lock()
	if userID == c.selfID {
		c.selfLoc = loc
	} else {
		c.partnerLoc = loc
	}
	c.mu.Unlock()
}

func (c *Coordinator) refetchPartnerSeen() {
	seen, err := c.presences.LastSeen(c.partnerID)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.partnerSeen = seen
	c.mu.Unlock()
}

func (c *Coordinator) presencePollLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Local recomputation only; the verdict ages even with no new
			// heartbeat, so clients must be re-notified.
			c.notify()
		}
	}
}

func (c *Coordinator) notify() {
	if c.OnUpdate != nil {
		c.OnUpdate()
	}
}

func (c *Coordinator) setState(s SessionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.notify()
}
