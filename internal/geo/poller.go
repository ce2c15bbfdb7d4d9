package geo

import (
	"context"
	"errors"
	"log"
	"time"

	"paired/internal/models"
)

// DefaultFixTimeout bounds a single position request.
const DefaultFixTimeout = 10 * time.Second

// DefaultRefreshInterval is the auto-refresh cadence.
const DefaultRefreshInterval = 30 * time.Second

// LocationWriter is the slice of the location store the poller needs.
type LocationWriter interface {
	UpsertCurrent(userID uint, lat, lng float64, address *string) (*models.UserLocation, error)
}

// Poller obtains fresh fixes from a Provider and drives the periodic
// auto-refresh of a user's live position.
type Poller struct {
	provider Provider
	store    LocationWriter
	timeout  time.Duration
	interval time.Duration
}

func NewPoller(provider Provider, store LocationWriter, timeout, interval time.Duration) *Poller {
	if timeout <= 0 {
		timeout = DefaultFixTimeout
	}
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Poller{provider: provider, store: store, timeout: timeout, interval: interval}
}

// Current requests one fresh fix, hard-bounded by the fix timeout. No
// caching, no retry.
func (p *Poller) Current(ctx context.Context) (Position, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	pos, err := p.provider.Current(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Position{}, ErrTimeout
		}
		return Position{}, err
	}
	return pos, nil
}

// AutoRefresh performs one immediate fix and, only if it succeeds, runs the
// recurring refresh loop until ctx is cancelled. Each successful fix is
// written through the location store.
//
// Permission denial, whether on the first fix or any later tick, terminates
// the loop permanently and is returned to the caller; it will not
// self-resolve without user action outside this system. Timeouts and other
// transient failures are logged and the next tick proceeds normally.
func (p *Poller) AutoRefresh(ctx context.Context, userID uint) error {
	pos, err := p.Current(ctx)
	if err != nil {
		// No loop without an initial successful fix.
		return err
	}
	p.write(ctx, userID, pos)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := p.refreshOnce(ctx, userID)
			if errors.Is(err, ErrPermissionDenied) {
				return ErrPermissionDenied
			}
			if err != nil {
				log.Printf("[geo] refresh for user %d: %v", userID, err)
			}
		}
	}
}

func (p *Poller) refreshOnce(ctx context.Context, userID uint) error {
	pos, err := p.Current(ctx)
	if err != nil {
		return err
	}
	p.write(ctx, userID, pos)
	return nil
}

// write persists a fix; a failed write is a transient network condition and
// only gets logged. Late results after teardown are discarded.
func (p *Poller) write(ctx context.Context, userID uint, pos Position) {
	if ctx.Err() != nil {
		return
	}
	if _, err := p.store.UpsertCurrent(userID, pos.Latitude, pos.Longitude, nil); err != nil {
		log.Printf("[geo] store position for user %d: %v", userID, err)
	}
}
