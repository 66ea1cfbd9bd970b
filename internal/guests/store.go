package guests

import (
	"context"
	"time"

	"resume-insights/internal/identity"
)

// Store persists guest usage records.
type Store interface {
	// Consume atomically checks the most recently used record matching id by network
	// address or hardware tag and, when it has fewer than quota uses, records one more.
	// A new record with newID is created when nothing matches. It returns the record as
	// it stands afterwards and whether the use was admitted.
	Consume(ctx context.Context, id identity.Identity, quota int, newID string, now time.Time) (Record, bool, error)
	// Lookup returns the most recently used matching record without modifying it.
	Lookup(ctx context.Context, id identity.Identity) (Record, bool, error)
	// DeleteOlderThan removes records last used before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

func matches(rec Record, id identity.Identity) bool {
	if rec.NetworkAddress == id.NetworkAddress {
		return true
	}
	return id.HardwareTag != "" && rec.HardwareTag == id.HardwareTag
}
