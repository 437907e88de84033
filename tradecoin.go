package tradecoin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/tradecoin/internal/logging"
	"github.com/aretw0/tradecoin/internal/runtime"
	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/access"
	"github.com/aretw0/tradecoin/pkg/commodity"
	"github.com/aretw0/tradecoin/pkg/composition"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/aretw0/tradecoin/pkg/ports"
	"github.com/aretw0/tradecoin/pkg/tokenizer"
)

// Ledger is the high-level entry point. It wires the four components around one
// shared executor.
type Ledger struct {
	exec *runtime.Executor

	commodityAccess   *access.Control
	compositionAccess *access.Control
	tokens            *tokenizer.Ledger
	commodities       *commodity.Ledger
	compositions      *composition.Ledger

	admins  []domain.Address
	logger  *slog.Logger
	runtime []runtime.Option
}

// Option defines a functional option for configuring the Ledger.
type Option func(*Ledger)

// WithAdmin makes addr an admin of both registries when the ledger has no admin yet.
func WithAdmin(addr domain.Address) Option {
	return func(l *Ledger) {
		l.admins = append(l.admins, addr.Normalize())
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithHooks registers observability hooks. Use domain.Merge to combine several.
func WithHooks(hooks domain.Hooks) Option {
	return func(l *Ledger) {
		l.runtime = append(l.runtime, runtime.WithHooks(hooks))
	}
}

// WithStore persists the ledger after every committed operation.
func WithStore(store ports.SnapshotStore) Option {
	return func(l *Ledger) {
		l.runtime = append(l.runtime, runtime.WithStore(store))
	}
}

// WithLocker serializes operations across replicas sharing a store.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(l *Ledger) {
		l.runtime = append(l.runtime, runtime.WithLocker(locker))
		if ttl > 0 {
			l.runtime = append(l.runtime, runtime.WithLockTTL(ttl))
		}
	}
}

// WithClock overrides the timestamp source of events.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		l.runtime = append(l.runtime, runtime.WithClock(clock))
	}
}

// New creates an empty ledger. A configured store is written to but not read;
// use Open to restore a persisted ledger.
func New(opts ...Option) *Ledger {
	l := build(opts)
	if err := l.bootstrap(context.Background()); err != nil {
		l.logger.Error("failed to bootstrap admins", "err", err)
	}
	return l
}

// Open creates a ledger and restores it from the configured store, if any.
func Open(ctx context.Context, opts ...Option) (*Ledger, error) {
	l := build(opts)
	if err := l.exec.Open(ctx); err != nil {
		return nil, err
	}
	if err := l.bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("failed to bootstrap admins: %w", err)
	}
	return l, nil
}

func build(opts []Option) *Ledger {
	l := &Ledger{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	l.exec = runtime.New(append([]runtime.Option{runtime.WithLogger(l.logger)}, l.runtime...)...)
	l.commodityAccess = access.New(l.exec, domain.RegistryCommodity)
	l.compositionAccess = access.New(l.exec, domain.RegistryComposition)
	l.tokens = tokenizer.New(l.exec)
	l.commodities = commodity.New(l.exec)
	l.compositions = composition.New(l.exec)
	return l
}

// bootstrap grants the configured admins on a fresh ledger. A restored ledger keeps
// its own admins.
func (l *Ledger) bootstrap(ctx context.Context) error {
	if len(l.admins) == 0 {
		return nil
	}
	var fresh bool
	l.exec.View(func(w *state.World) { fresh = w.Version() == 0 })
	if !fresh {
		return nil
	}
	return l.exec.Execute(ctx, "bootstrap", l.admins[0], func(tx *state.Tx) error {
		for _, r := range []domain.Registry{domain.RegistryCommodity, domain.RegistryComposition} {
			for _, a := range l.admins {
				access.Grant(tx, r, domain.RoleAdmin, a, a)
			}
		}
		return nil
	})
}

// Access returns one of the two role registries.
func (l *Ledger) Access(r domain.Registry) *access.Control {
	if r == domain.RegistryComposition {
		return l.compositionAccess
	}
	return l.commodityAccess
}

// Tokenizer returns the claim ledger.
func (l *Ledger) Tokenizer() *tokenizer.Ledger { return l.tokens }

// Commodities returns the commodity ledger.
func (l *Ledger) Commodities() *commodity.Ledger { return l.commodities }

// Compositions returns the composition ledger.
func (l *Ledger) Compositions() *composition.Ledger { return l.compositions }

// Journey replays the committed events touching one asset, in commit order.
func (l *Ledger) Journey(ledger domain.Ledger, id uint64) []domain.Event {
	var out []domain.Event
	l.exec.View(func(w *state.World) { out = w.Journey(ledger, id) })
	return out
}

// Events returns the events committed after seq.
func (l *Ledger) Events(since uint64) []domain.Event {
	var out []domain.Event
	l.exec.View(func(w *state.World) { out = w.EventsSince(since) })
	return out
}

// Snapshot returns a copy of the whole ledger.
func (l *Ledger) Snapshot() *domain.Snapshot {
	return l.exec.Snapshot()
}
