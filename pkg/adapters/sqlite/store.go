// Package sqlite persists the ledger in SQLite: the current state as one encoded row
// and the audit trail as a queryable, append-only event table.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/tradecoin/pkg/codec"
	"github.com/aretw0/tradecoin/pkg/domain"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Store implements ports.SnapshotStore in SQLite.
type Store struct {
	sqlDB *sql.DB
	codec codec.Codec
}

// Option configures the Store.
type Option func(*Store)

// WithCodec selects the encoding of the state row (JSON by default).
func WithCodec(c codec.Codec) Option {
	return func(s *Store) {
		s.codec = c
	}
}

// Open opens a SQLite ledger store and applies the schema.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	s := &Store{sqlDB: sqlDB, codec: codec.JSON{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save replaces the state row and appends the events not yet journaled, in one
// transaction. Journaled events beyond the snapshot are dropped.
func (s *Store) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	state := *snapshot
	events := state.Events
	state.Events = nil
	body, err := s.codec.Marshal(&state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_state (id, version, codec, body, updated_at) VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET version = excluded.version, codec = excluded.codec,
		   body = excluded.body, updated_at = excluded.updated_at`,
		int64(snapshot.Version), s.codec.Name(), body, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}

	var lastSeq uint64
	if n := len(events); n > 0 {
		lastSeq = events[n-1].Seq
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_events WHERE seq > ?`, int64(lastSeq)); err != nil {
		return fmt.Errorf("truncate journal: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_event_assets WHERE seq > ?`, int64(lastSeq)); err != nil {
		return fmt.Errorf("truncate journal index: %w", err)
	}
	var journaled int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM ledger_events`).Scan(&journaled); err != nil {
		return fmt.Errorf("read journal head: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ledger_events (seq, event_id, ledger, name, asset_id, actor, occurred_at, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare journal insert: %w", err)
	}
	defer stmt.Close()
	index, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO ledger_event_assets (ledger, asset_id, seq) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare journal index: %w", err)
	}
	defer index.Close()

	for _, e := range events {
		if int64(e.Seq) <= journaled {
			continue
		}
		raw, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event %d: %w", e.Seq, err)
		}
		_, err = stmt.ExecContext(ctx, int64(e.Seq), e.ID, string(e.Ledger), string(e.Name),
			int64(e.AssetID), string(e.Actor), e.Timestamp.UTC().UnixMilli(), raw)
		if err != nil {
			return fmt.Errorf("journal event %d: %w", e.Seq, err)
		}
		for _, a := range e.Assets() {
			if _, err := index.ExecContext(ctx, string(a.Ledger), int64(a.ID), int64(e.Seq)); err != nil {
				return fmt.Errorf("index event %d: %w", e.Seq, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load rebuilds the snapshot from the state row and the journal.
func (s *Store) Load(ctx context.Context) (*domain.Snapshot, error) {
	var (
		codecName string
		body      []byte
	)
	err := s.sqlDB.QueryRowContext(ctx, `SELECT codec, body FROM ledger_state WHERE id = 1`).Scan(&codecName, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	c, err := codec.ByName(codecName)
	if err != nil {
		return nil, err
	}
	var snap domain.Snapshot
	if err := c.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}

	snap.Events, err = s.EventsSince(ctx, 0)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Version reads the stored version without decoding the state. Zero means empty.
func (s *Store) Version(ctx context.Context) (uint64, error) {
	var v int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT version FROM ledger_state WHERE id = 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return uint64(v), nil
}

// EventsSince returns the journaled events with a sequence number above seq.
func (s *Store) EventsSince(ctx context.Context, seq uint64) ([]domain.Event, error) {
	return s.queryEvents(ctx, `SELECT body FROM ledger_events WHERE seq > ? ORDER BY seq`, int64(seq))
}

// Journey returns the journaled events touching asset id of ledger l, as subject or
// as a related id, in sequence order.
func (s *Store) Journey(ctx context.Context, l domain.Ledger, id uint64) ([]domain.Event, error) {
	return s.queryEvents(ctx,
		`SELECT e.body FROM ledger_events e
		 JOIN ledger_event_assets a ON a.seq = e.seq
		 WHERE a.ledger = ? AND a.asset_id = ? ORDER BY e.seq`, string(l), int64(id))
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		var e domain.Event
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
