package repo

import (
	"context"
	"time"
)

// AlertRecord is what the alerter last told operators about a target.
// LastSentAt drives the down-alert cooldown and is nil until something was sent.
type AlertRecord struct {
	Target     string
	LastUp     bool
	LastSentAt *time.Time
}

type AlertStore interface {
	// Get returns nil, nil for a target never seen.
	Get(ctx context.Context, target string) (*AlertRecord, error)
	// Set upserts the record. A zero sentAt leaves LastSentAt nil.
	Set(ctx context.Context, target string, lastUp bool, sentAt time.Time) error
}
