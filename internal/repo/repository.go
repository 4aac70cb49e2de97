package repo

import (
	"context"

	"github.com/hamed0406/pingmonitor/internal/domain"
)

// SnapshotStore hands the latest session snapshot from the monitor loop to
// concurrent readers (status API, alerter). Publish must not block for long.
type SnapshotStore interface {
	Publish(ctx context.Context, s domain.Snapshot) error
	// Latest returns nil, nil before the first publish.
	Latest(ctx context.Context) (*domain.Snapshot, error)
}
