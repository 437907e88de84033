package runtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/aretw0/tradecoin/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu    sync.Mutex
	snap  *domain.Snapshot
	fail  error
	saves int
}

func (s *fakeStore) Save(_ context.Context, snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.saves++
	s.snap = snap
	return nil
}

func (s *fakeStore) Load(_ context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return s.snap, nil
}

type fakeLocker struct {
	locks, unlocks int
}

func (l *fakeLocker) Lock(_ context.Context, _ string, _ time.Duration) (ports.UnlockFunc, error) {
	l.locks++
	return func(context.Context) error {
		l.unlocks++
		return nil
	}, nil
}

func mintClaim(id uint64) func(*state.Tx) error {
	return func(tx *state.Tx) error {
		tx.PutClaim(domain.Claim{ID: id, CommodityName: "rice", Amount: 1, Owner: "0xa"})
		tx.Emit(domain.Event{Ledger: domain.LedgerTokenizer, Name: domain.EventMintToken, AssetID: id})
		return nil
	}
}

func TestExecutor_StampsEvents(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var got []domain.Event
	var ops []domain.OperationEvent
	e := New(
		WithClock(func() time.Time { return fixed }),
		WithHooks(domain.Hooks{
			OnEvent:     func(_ context.Context, ev domain.Event) { got = append(got, ev) },
			OnOperation: func(_ context.Context, op domain.OperationEvent) { ops = append(ops, op) },
		}),
	)

	require.NoError(t, e.Execute(context.Background(), "mint", "0xa", mintClaim(0)))
	require.NoError(t, e.Execute(context.Background(), "mint", "0xa", mintClaim(1)))

	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].Seq)
	assert.Equal(t, uint64(2), got[1].Seq)
	assert.Equal(t, fixed, got[0].Timestamp)
	assert.NotEmpty(t, got[0].ID)
	assert.NotEqual(t, got[0].ID, got[1].ID)

	require.Len(t, ops, 2)
	assert.Equal(t, "mint", ops[0].Op)
	assert.Equal(t, 1, ops[0].Events)
	assert.NoError(t, ops[0].Err)

	snap := e.Snapshot()
	assert.Equal(t, uint64(2), snap.Version)
	assert.Len(t, snap.Events, 2)
}

func TestExecutor_FailedOperationLeavesNoTrace(t *testing.T) {
	var events int
	var opErr error
	e := New(WithHooks(domain.Hooks{
		OnEvent:     func(context.Context, domain.Event) { events++ },
		OnOperation: func(_ context.Context, op domain.OperationEvent) { opErr = op.Err },
	}))

	err := e.Execute(context.Background(), "bad", "0xa", func(tx *state.Tx) error {
		if err := mintClaim(0)(tx); err != nil {
			return err
		}
		return domain.ErrNotOwner
	})
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.ErrorIs(t, opErr, domain.ErrNotOwner)
	assert.Zero(t, events)

	e.View(func(w *state.World) {
		_, ok := w.Claim(0)
		assert.False(t, ok)
		assert.Zero(t, w.Version())
	})
}

func TestExecutor_PersistFailureReverts(t *testing.T) {
	store := &fakeStore{}
	e := New(WithStore(store))
	ctx := context.Background()

	require.NoError(t, e.Execute(ctx, "mint", "0xa", mintClaim(0)))
	assert.Equal(t, 1, store.saves)

	store.fail = errors.New("disk full")
	err := e.Execute(ctx, "mint", "0xa", mintClaim(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	e.View(func(w *state.World) {
		_, ok := w.Claim(1)
		assert.False(t, ok, "claim must be reverted")
		assert.Equal(t, uint64(1), w.Version())
		assert.Len(t, w.Events(), 1)
	})
}

func TestExecutor_OpenRestores(t *testing.T) {
	store := &fakeStore{}
	ctx := context.Background()
	first := New(WithStore(store))
	require.NoError(t, first.Open(ctx))
	require.NoError(t, first.Execute(ctx, "mint", "0xa", mintClaim(0)))

	second := New(WithStore(store))
	require.NoError(t, second.Open(ctx))
	second.View(func(w *state.World) {
		_, ok := w.Claim(0)
		assert.True(t, ok)
		assert.Equal(t, uint64(1), w.LastSeq())
	})
}

func TestExecutor_RefreshesUnderDistributedLock(t *testing.T) {
	store := &fakeStore{}
	locker := &fakeLocker{}
	ctx := context.Background()
	a := New(WithStore(store), WithLocker(locker))
	b := New(WithStore(store), WithLocker(locker))

	require.NoError(t, a.Execute(ctx, "mint", "0xa", mintClaim(0)))
	require.NoError(t, b.Execute(ctx, "mint", "0xa", mintClaim(1)))

	b.View(func(w *state.World) {
		_, ok := w.Claim(0)
		assert.True(t, ok, "b must see a's write")
		assert.Equal(t, uint64(2), w.Version())
		assert.Equal(t, uint64(2), w.LastSeq())
	})
	assert.Equal(t, 2, locker.locks)
	assert.Equal(t, 2, locker.unlocks)
}

func TestExecutor_CanceledContext(t *testing.T) {
	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.Execute(ctx, "mint", "0xa", mintClaim(0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutor_RejectsCustodianCaller(t *testing.T) {
	e := New()
	for _, caller := range []domain.Address{domain.CommodityLedgerAddress, domain.CompositionLedgerAddress, " ledger:composition "} {
		var ran bool
		err := e.Execute(context.Background(), "transfer_commodity", caller, func(tx *state.Tx) error {
			ran = true
			return mintClaim(0)(tx)
		})
		assert.ErrorIs(t, err, domain.ErrCustodianCaller, "caller %q", caller)
		assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))
		assert.False(t, ran)
	}
	e.View(func(w *state.World) { assert.Zero(t, w.Version()) })
}
