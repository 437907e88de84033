// Package memory provides an in-memory snapshot store, mostly for tests and
// single-process deployments that want restore-on-restart semantics within a process.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/tradecoin/pkg/codec"
	"github.com/aretw0/tradecoin/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	data    []byte
	version uint64
	codec   codec.Codec
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{codec: codec.JSON{}}
}

// Save keeps an encoded copy so that later mutations of snapshot cannot leak in.
func (s *Store) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := s.codec.Marshal(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.version = snapshot.Version
	return nil
}

// Load decodes a fresh copy of the last snapshot.
func (s *Store) Load(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	var snap domain.Snapshot
	if err := s.codec.Unmarshal(s.data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Version reports the version of the last saved snapshot.
func (s *Store) Version(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, nil
}
