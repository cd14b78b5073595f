// Package postgres provides a Postgres-backed persistent store that mirrors
// the in-memory semantics and snapshots the full state after every successful
// mutation.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"assetcore/internal/infra/persistence/memory"
	"assetcore/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

var _ domain.Store = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// DefaultDSN keeps parity with storage.Open defaults while allowing
	// overrides via env.
	DefaultDSN = "postgres://localhost/assetcore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists state to Postgres while reusing the in-memory implementation
// for mutations.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to DefaultDSN), ensures the snapshot table exists, and hydrates the
// in-memory store from any existing snapshot.
func NewStore(dsn string, engine *domain.RulesEngine, opts ...memory.Option) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureStateTable(ctx, db); err != nil {
		return nil, err
	}
	snapshot, err := loadSnapshot(ctx, db)
	if err != nil {
		return nil, err
	}
	mem := memory.NewStore(engine, opts...)
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db}, nil
}

func ensureStateTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure state table: %w", err)
	}
	return nil
}

func loadSnapshot(ctx context.Context, db *sql.DB) (memory.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := memory.Snapshot{Collections: map[string][]domain.Record{}}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return memory.Snapshot{}, fmt.Errorf("scan state: %w", err)
		}
		if _, ok := domain.SchemaFor(bucket); !ok {
			continue
		}
		if len(payload) == 0 {
			continue
		}
		var records []domain.Record
		if err := json.Unmarshal(payload, &records); err != nil {
			return memory.Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
		}
		snapshot.Collections[bucket] = records
	}
	if err := rows.Err(); err != nil {
		return memory.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return snapshot, nil
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, schema := range domain.Collections() {
		data, err := json.Marshal(snapshot.Collections[schema.Name])
		if err != nil {
			return fmt.Errorf("encode %s: %w", schema.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`, schema.Name, data); err != nil {
			return fmt.Errorf("upsert %s: %w", schema.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Insert applies the mutation in memory, then snapshots state to Postgres.
func (s *Store) Insert(ctx context.Context, collection string, record domain.Record) (domain.Record, error) {
	row, err := s.Store.Insert(ctx, collection, record)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx); err != nil {
		return row, err
	}
	return row, nil
}

// Update applies the mutation in memory, then snapshots state to Postgres.
func (s *Store) Update(ctx context.Context, collection, column string, value any, patch domain.Record) (domain.Record, error) {
	row, err := s.Store.Update(ctx, collection, column, value, patch)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx); err != nil {
		return row, err
	}
	return row, nil
}

// Delete applies the mutation in memory, then snapshots state to Postgres.
func (s *Store) Delete(ctx context.Context, collection, column string, value any) (domain.Record, error) {
	row, err := s.Store.Delete(ctx, collection, column, value)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx); err != nil {
		return row, err
	}
	return row, nil
}

// NextSequence advances the counter in memory, then snapshots state to Postgres.
func (s *Store) NextSequence(ctx context.Context, name string, start int64) (int64, error) {
	next, err := s.Store.NextSequence(ctx, name, start)
	if err != nil {
		return 0, err
	}
	if err := s.persist(ctx); err != nil {
		return next, err
	}
	return next, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore
// function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
