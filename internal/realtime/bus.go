package realtime

import (
	"context"
	"fmt"
)

// Bus is the change feed over the storage layer. An event carries no payload
// beyond "the row for this user in this table changed"; delivery is
// at-least-once and possibly incomplete, so consumers must refetch full state
// on notify rather than trust anything about the event itself.
type Bus interface {
	// Publish signals that the row keyed by userID in table changed.
	Publish(ctx context.Context, table string, userID uint) error
	// Subscribe registers onChange for changes to the row keyed by userID in
	// table. onChange may be invoked from an internal goroutine.
	Subscribe(ctx context.Context, table string, userID uint, onChange func()) (Subscription, error)
}

// Subscription is a live feed registration. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

func topic(table string, userID uint) string {
	return fmt.Sprintf("paired:changes:%s:%d", table, userID)
}
