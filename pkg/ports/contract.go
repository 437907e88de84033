package ports

import (
	"context"
	"testing"

	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract. The store must be empty.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Save and Load", func(t *testing.T) {
		stored := domain.StateStored
		snap := &domain.Snapshot{
			Version:  3,
			Counters: map[domain.Ledger]uint64{domain.LedgerCommodity: 2},
			Roles: map[domain.Registry]domain.RoleSet{
				domain.RegistryCommodity: {domain.RoleAdmin: {"0xadmin"}},
			},
			Commodities: []domain.Commodity{{
				ID: 1, Name: "cashew", Amount: 30, Unit: "kg", State: stored,
				PropertiesHash: domain.OriginHash("cashew", "kg"),
				CurrentHandler: "0xhandler", Owner: "0xowner",
			}},
			Events: []domain.Event{{
				Seq: 1, Ledger: domain.LedgerCommodity, Name: domain.EventChangeStateAndHandler,
				AssetID: 1, Actor: "0xowner", State: &stored,
			}},
		}
		require.NoError(t, store.Save(ctx, snap), "Save should not return error")

		loaded, err := store.Load(ctx)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, uint64(3), loaded.Version)
		assert.Equal(t, uint64(2), loaded.Counters[domain.LedgerCommodity])
		assert.Equal(t, []domain.Address{"0xadmin"}, loaded.Roles[domain.RegistryCommodity][domain.RoleAdmin])
		require.Len(t, loaded.Commodities, 1)
		assert.Equal(t, uint64(30), loaded.Commodities[0].Amount)
		assert.Equal(t, snap.Commodities[0].PropertiesHash, loaded.Commodities[0].PropertiesHash)
		require.Len(t, loaded.Events, 1)
		require.NotNil(t, loaded.Events[0].State)
		assert.Equal(t, domain.StateStored, *loaded.Events[0].State)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.Snapshot{Version: 4}))
		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), loaded.Version)
		assert.Empty(t, loaded.Commodities)

		if vr, ok := store.(VersionReader); ok {
			v, err := vr.Version(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint64(4), v)
		}
	})
}
