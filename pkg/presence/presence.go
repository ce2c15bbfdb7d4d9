package presence

import (
	"fmt"
	"time"
)

// DefaultOnlineThreshold is the maximum heartbeat age before a peer is
// considered offline.
const DefaultOnlineThreshold = 30 * time.Second

// State is the derived presence verdict for a peer. It is recomputed on
// demand and never persisted; the stored is_online flag is advisory only.
type State struct {
	Online     bool       `json:"online"`
	LastSeenAt *time.Time `json:"last_seen_at"`
	StatusText string     `json:"status_text"`
}

// Evaluate maps a last-seen timestamp and the current time to a presence
// verdict. A nil lastSeen means the peer has never been observed (or the
// deployment lacks the last_seen_at column) and reads as plain Offline.
func Evaluate(lastSeen *time.Time, now time.Time, threshold time.Duration) State {
	if threshold <= 0 {
		threshold = DefaultOnlineThreshold
	}
	if lastSeen == nil {
		return State{Online: false, StatusText: "Offline"}
	}
	elapsed := now.Sub(*lastSeen)
	if elapsed < threshold {
		return State{Online: true, LastSeenAt: lastSeen, StatusText: "Online • Active now"}
	}
	return State{Online: false, LastSeenAt: lastSeen, StatusText: humanize(elapsed)}
}

// humanize buckets an elapsed duration from most to least granular.
func humanize(elapsed time.Duration) string {
	switch {
	case elapsed >= 24*time.Hour:
		return lastSeen(int(elapsed.Hours()/24), "day")
	case elapsed >= time.Hour:
		return lastSeen(int(elapsed.Hours()), "hour")
	case elapsed >= time.Minute:
		return lastSeen(int(elapsed.Minutes()), "minute")
	default:
		return "Last seen just now"
	}
}

func lastSeen(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("Last seen 1 %s ago", unit)
	}
	return fmt.Sprintf("Last seen %d %ss ago", n, unit)
}
