package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/tradecoin/pkg/adapters/memory"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/aretw0/tradecoin/pkg/persistence/middleware"
	"github.com/aretw0/tradecoin/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func secretSnapshot(version uint64, name string) *domain.Snapshot {
	return &domain.Snapshot{
		Version:     version,
		Commodities: []domain.Commodity{{ID: 0, Name: name, Amount: 10, Unit: "kg", Owner: "0xowner"}},
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunSnapshotStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, secretSnapshot(7, "cashew")))

	// The wrapped store only sees the envelope.
	stored, err := underlying.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored.Commodities)
	assert.NotEmpty(t, stored.Sealed)
	assert.Equal(t, uint64(7), stored.Version)

	loaded, err := secure.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Commodities, 1)
	assert.Equal(t, "cashew", loaded.Commodities[0].Name)

	v, err := secure.(ports.VersionReader).Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, secureOld.Save(ctx, secretSnapshot(1, "sealed-with-old-key")))

	secureNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := secureNew.Load(ctx)
	require.NoError(t, err, "fallback key should open the old envelope")
	assert.Equal(t, "sealed-with-old-key", loaded.Commodities[0].Name)

	require.NoError(t, secureNew.Save(ctx, secretSnapshot(2, "sealed-with-new-key")))

	_, err = secureOld.Load(ctx)
	assert.Error(t, err, "old key alone must not open the new envelope")
}

func TestEncryptionMiddleware_RejectsPlainSnapshot(t *testing.T) {
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), secretSnapshot(1, "plain")))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(context.Background())
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestChain_OutermostFirst(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.SnapshotStore) ports.SnapshotStore {
			return recordingStore{SnapshotStore: next, name: name, order: &order}
		}
	}
	store := middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	require.NoError(t, store.Save(context.Background(), &domain.Snapshot{Version: 1}))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type recordingStore struct {
	ports.SnapshotStore
	name  string
	order *[]string
}

func (r recordingStore) Save(ctx context.Context, s *domain.Snapshot) error {
	*r.order = append(*r.order, r.name)
	return r.SnapshotStore.Save(ctx, s)
}
