package ports

import (
	"context"

	"github.com/aretw0/tradecoin/pkg/domain"
)

// SnapshotStore defines the interface for persisting the ledger.
// Save is called once per committed operation with the complete state; a failing
// Save aborts the operation.
type SnapshotStore interface {
	// Save persists the snapshot, replacing the previous one.
	Save(ctx context.Context, snapshot *domain.Snapshot) error

	// Load retrieves the latest snapshot.
	// Returns domain.ErrSnapshotNotFound if nothing was saved yet.
	Load(ctx context.Context) (*domain.Snapshot, error)
}

// VersionReader is implemented by stores that can report the stored version without
// loading the whole snapshot. Replicas use it to decide whether to refresh.
type VersionReader interface {
	Version(ctx context.Context) (uint64, error)
}

// Journal is implemented by stores that keep the committed events queryable, so the
// history of one asset can be read without restoring the whole ledger.
type Journal interface {
	// EventsSince returns the events with a sequence number above seq.
	EventsSince(ctx context.Context, seq uint64) ([]domain.Event, error)

	// Journey returns the events touching asset id of ledger l, in sequence order.
	Journey(ctx context.Context, l domain.Ledger, id uint64) ([]domain.Event, error)
}
