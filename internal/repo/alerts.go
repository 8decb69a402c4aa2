package repo

import (
	"context"
	"time"
)

// AlertRecord holds the last banner kind we saw for a key and the last
// time a notification was sent for it (used for cooldown).
type AlertRecord struct {
	Key        string
	LastKind   string
	LastSentAt *time.Time
}

// AlertStore keeps alert state between scans.
type AlertStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, key string) (*AlertRecord, error)
	// Set upserts the record. If sentAt.IsZero() the previous send time is kept.
	Set(ctx context.Context, key, lastKind string, sentAt time.Time) error
}
