package config

import (
	"context"
	"fmt"

	"github.com/aretw0/tradecoin/pkg/adapters/file"
	"github.com/aretw0/tradecoin/pkg/adapters/memory"
	"github.com/aretw0/tradecoin/pkg/adapters/redis"
	"github.com/aretw0/tradecoin/pkg/adapters/sqlite"
	"github.com/aretw0/tradecoin/pkg/codec"
	"github.com/aretw0/tradecoin/pkg/persistence/middleware"
	"github.com/aretw0/tradecoin/pkg/ports"
)

// Backend is an opened persistence configuration.
type Backend struct {
	Store  ports.SnapshotStore
	Locker ports.DistributedLocker // nil unless redis locking is enabled
	// Journal is set when the store keeps its events queryable in plain form.
	Journal ports.Journal
	close   func() error
}

// Close releases the connections held by the backend.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open builds the snapshot store described by the configuration.
func (s StoreConfig) Open(ctx context.Context) (*Backend, error) {
	c, err := codec.ByName(s.Codec)
	if err != nil {
		return nil, err
	}

	b := &Backend{}
	switch s.Kind {
	case StoreMemory, "":
		b.Store = memory.NewStore()
	case StoreFile:
		b.Store = file.New(s.Path, file.WithCodec(c))
	case StoreSQLite:
		st, err := sqlite.Open(s.Path, sqlite.WithCodec(c))
		if err != nil {
			return nil, err
		}
		b.Store, b.Journal, b.close = st, st, st.Close
	case StoreRedis:
		prefix := s.Redis.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		st := redis.New(s.Redis.Addr, s.Redis.Password, s.Redis.DB, redis.WithPrefix(prefix), redis.WithCodec(c))
		if err := st.Client().Ping(ctx).Err(); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", s.Redis.Addr, err)
		}
		b.Store, b.close = st, st.Close
		if s.Redis.Lock {
			b.Locker = redis.NewLocker(st.Client(), prefix)
		}
	default:
		return nil, fmt.Errorf("unknown store kind %q", s.Kind)
	}

	key, err := s.Key()
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	if key != nil {
		// Sealed snapshots reach the store without their events.
		b.Journal = nil
		b.Store = middleware.Chain(b.Store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return b, nil
}
