// Package sqlite provides a SQLite-backed persistent store that mirrors the
// in-memory semantics and snapshots the full state after every successful
// mutation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"assetcore/internal/infra/persistence/memory"
	"assetcore/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ domain.Store = (*Store)(nil)

// DefaultPath is used when NewStore receives an empty path.
const DefaultPath = "assetcore.db"

// Store persists the in-memory state to a single SQLite table as JSON blobs,
// one bucket per collection.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens a snapshotting SQLite-backed store at path and hydrates the
// in-memory store from any existing snapshot. Memory store options (audit
// sink, logger, clock) pass through unchanged.
func NewStore(path string, engine *domain.RulesEngine, opts ...memory.Option) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	mem := memory.NewStore(engine, opts...)
	s := &Store{Store: mem, db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := memory.Snapshot{Collections: map[string][]domain.Record{}}
	loaded := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan state: %w", err)
		}
		if _, ok := domain.SchemaFor(bucket); !ok {
			continue
		}
		if len(payload) == 0 {
			continue
		}
		var records []domain.Record
		if err := json.Unmarshal(payload, &records); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
		snapshot.Collections[bucket] = records
		loaded = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if loaded {
		s.ImportState(snapshot)
	}
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, schema := range domain.Collections() {
		data, err := json.Marshal(snapshot.Collections[schema.Name])
		if err != nil {
			retErr = fmt.Errorf("encode %s: %w", schema.Name, err)
			return retErr
		}
		if _, err := tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, schema.Name, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", schema.Name, err)
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Insert applies the mutation in memory, then snapshots state to SQLite.
func (s *Store) Insert(ctx context.Context, collection string, record domain.Record) (domain.Record, error) {
	row, err := s.Store.Insert(ctx, collection, record)
	if err != nil {
		return nil, err
	}
	if err := s.persist(); err != nil {
		return row, err
	}
	return row, nil
}

// Update applies the mutation in memory, then snapshots state to SQLite.
func (s *Store) Update(ctx context.Context, collection, column string, value any, patch domain.Record) (domain.Record, error) {
	row, err := s.Store.Update(ctx, collection, column, value, patch)
	if err != nil {
		return nil, err
	}
	if err := s.persist(); err != nil {
		return row, err
	}
	return row, nil
}

// Delete applies the mutation in memory, then snapshots state to SQLite.
func (s *Store) Delete(ctx context.Context, collection, column string, value any) (domain.Record, error) {
	row, err := s.Store.Delete(ctx, collection, column, value)
	if err != nil {
		return nil, err
	}
	if err := s.persist(); err != nil {
		return row, err
	}
	return row, nil
}

// NextSequence advances the counter in memory, then snapshots state to SQLite.
func (s *Store) NextSequence(ctx context.Context, name string, start int64) (int64, error) {
	next, err := s.Store.NextSequence(ctx, name, start)
	if err != nil {
		return 0, err
	}
	if err := s.persist(); err != nil {
		return next, err
	}
	return next, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
