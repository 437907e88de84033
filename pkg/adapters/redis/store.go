// Package redis provides a snapshot store and a distributed locker backed by Redis,
// allowing several ledger replicas to share one state.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aretw0/tradecoin/pkg/codec"
	"github.com/aretw0/tradecoin/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key of the store.
const DefaultPrefix = "tradecoin:"

// Store implements ports.SnapshotStore using Redis.
type Store struct {
	client backend.UniversalClient
	prefix string
	codec  codec.Codec
}

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithCodec selects the snapshot encoding (JSON by default).
func WithCodec(c codec.Codec) Option {
	return func(s *Store) {
		s.codec = c
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		codec:  codec.JSON{},
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to build a Locker on the same connection.
func (s *Store) Client() backend.UniversalClient { return s.client }

func (s *Store) snapshotKey() string { return s.prefix + "snapshot" }

func (s *Store) versionKey() string { return s.prefix + "version" }

// Save writes the snapshot and its version in one MULTI/EXEC.
func (s *Store) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := s.codec.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.snapshotKey(), data, 0)
	pipe.Set(ctx, s.versionKey(), snapshot.Version, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the snapshot from Redis.
func (s *Store) Load(ctx context.Context) (*domain.Snapshot, error) {
	val, err := s.client.Get(ctx, s.snapshotKey()).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var snap domain.Snapshot
	if err := s.codec.Unmarshal(val, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Version reads the stored version without fetching the snapshot. Zero means empty.
func (s *Store) Version(ctx context.Context) (uint64, error) {
	val, err := s.client.Get(ctx, s.versionKey()).Result()
	if errors.Is(err, backend.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get version from redis: %w", err)
	}
	return strconv.ParseUint(val, 10, 64)
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
