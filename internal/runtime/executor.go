// Package runtime serializes ledger operations against the in-memory world and
// makes each one atomic: it commits, persists and announces the events of an
// operation, or leaves no trace of it at all.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tradecoin/internal/logging"
	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/aretw0/tradecoin/pkg/ports"
	"github.com/google/uuid"
)

// LockKey is the distributed lock shared by every replica of one ledger.
const LockKey = "tradecoin:ledger"

// DefaultLockTTL bounds how long a crashed replica can hold the distributed lock.
const DefaultLockTTL = 30 * time.Second

// Executor owns the world. Writes are serialized; reads share a read lock.
type Executor struct {
	mu    sync.RWMutex
	world *state.World

	store   ports.SnapshotStore
	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   domain.Hooks
	logger  *slog.Logger
	clock   func() time.Time
	newID   func() string
}

// Option configures the Executor.
type Option func(*Executor)

// WithStore persists a snapshot after every committed operation.
func WithStore(store ports.SnapshotStore) Option {
	return func(e *Executor) {
		e.store = store
	}
}

// WithLocker enables distributed locking between replicas sharing a store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Executor) {
		e.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Executor) {
		e.lockTTL = ttl
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Executor) {
		e.hooks = hooks
	}
}

// WithLogger configures a logger for the Executor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithClock overrides the timestamp source of events.
func WithClock(clock func() time.Time) Option {
	return func(e *Executor) {
		e.clock = clock
	}
}

// New creates an Executor over an empty world.
func New(opts ...Option) *Executor {
	e := &Executor{
		world:   state.NewWorld(),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		clock:   time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open loads the latest snapshot from the configured store, if any.
func (e *Executor) Open(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, err := e.store.Load(ctx)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		e.logger.DebugContext(ctx, "no snapshot found, starting empty ledger")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	e.world.Restore(snap)
	e.logger.InfoContext(ctx, "ledger restored", "version", snap.Version, "events", len(snap.Events))
	return nil
}

// Execute runs fn as one atomic operation on behalf of caller.
// If fn fails, or the resulting snapshot cannot be persisted, every mutation is
// unwound and no event is published.
func (e *Executor) Execute(ctx context.Context, op string, caller domain.Address, fn func(*state.Tx) error) error {
	start := time.Now()
	events, err := e.execute(ctx, op, caller, fn)

	if e.hooks.OnEvent != nil {
		for _, ev := range events {
			e.hooks.OnEvent(ctx, ev)
		}
	}
	if e.hooks.OnOperation != nil {
		e.hooks.OnOperation(ctx, domain.OperationEvent{
			Op:       op,
			Caller:   caller,
			Duration: time.Since(start),
			Events:   len(events),
			Err:      err,
		})
	}
	return err
}

func (e *Executor) execute(ctx context.Context, op string, caller domain.Address, fn func(*state.Tx) error) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if caller.IsCustodian() {
		return nil, domain.ErrCustodianCaller
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, LockKey, e.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				e.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"op", op,
					"err", err,
				)
			}
		}()
		if err := e.refresh(ctx); err != nil {
			return nil, err
		}
	}

	tx := e.world.Begin()
	if err := fn(tx); err != nil {
		tx.Rollback()
		e.logger.DebugContext(ctx, "operation rejected", "op", op, "caller", caller, "err", err)
		return nil, err
	}

	now := e.clock().UTC()
	seq := e.world.LastSeq()
	events := tx.Pending()
	stamped := make([]domain.Event, len(events))
	for i, ev := range events {
		seq++
		ev.ID = e.newID()
		ev.Seq = seq
		ev.Timestamp = now
		stamped[i] = ev
	}
	revert := tx.Commit(stamped)

	if e.store != nil {
		if err := e.store.Save(ctx, e.world.Snapshot()); err != nil {
			revert()
			e.logger.ErrorContext(ctx, "failed to persist ledger, operation reverted", "op", op, "err", err)
			return nil, fmt.Errorf("failed to persist ledger: %w", err)
		}
	}

	e.logger.InfoContext(ctx, "operation committed",
		"op", op,
		"caller", caller,
		"version", e.world.Version(),
		"events", len(stamped),
	)
	return stamped, nil
}

// refresh reloads the world when another replica committed since our last write.
// The caller must hold both locks.
func (e *Executor) refresh(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	if vr, ok := e.store.(ports.VersionReader); ok {
		v, err := vr.Version(ctx)
		if err != nil {
			return fmt.Errorf("failed to read stored version: %w", err)
		}
		if v <= e.world.Version() {
			return nil
		}
	}
	snap, err := e.store.Load(ctx)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to refresh ledger: %w", err)
	}
	if snap.Version > e.world.Version() {
		e.logger.DebugContext(ctx, "refreshing ledger from store", "from", e.world.Version(), "to", snap.Version)
		e.world.Restore(snap)
	}
	return nil
}

// View runs a read-only query.
func (e *Executor) View(fn func(*state.World)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.world)
}

// Snapshot returns a copy of the current state.
func (e *Executor) Snapshot() *domain.Snapshot {
	var s *domain.Snapshot
	e.View(func(w *state.World) { s = w.Snapshot() })
	return s
}
