package core

import (
	"fmt"
	"os"

	"assetcore/internal/infra/persistence/memory"
	"assetcore/internal/infra/persistence/postgres"
	"assetcore/internal/infra/persistence/sqlite"
	"assetcore/pkg/domain"
)

// StorageDriver identifies a concrete store implementation.
type StorageDriver string

// Supported storage drivers.
const (
	StorageMemory   StorageDriver = "memory"   // ephemeral, tests and demos
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// NewSQLiteStore opens the sqlite-backed store at path (empty for the
// default file). Memory store options pass through unchanged.
func NewSQLiteStore(path string, engine *domain.RulesEngine, opts ...memory.Option) (*sqlite.Store, error) {
	return sqlite.NewStore(path, engine, opts...)
}

// NewPostgresStore opens a Postgres-backed store from the DSN.
func NewPostgresStore(dsn string, engine *domain.RulesEngine, opts ...memory.Option) (*postgres.Store, error) {
	return postgres.NewStore(dsn, engine, opts...)
}

// OpenStore selects a store backend from the environment. Defaults to sqlite
// when unset.
//
//	ASSETCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	ASSETCORE_SQLITE_PATH: path to the sqlite file (default ./assetcore.db)
//	ASSETCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenStore(engine *domain.RulesEngine, opts ...memory.Option) (domain.Store, error) {
	driver := os.Getenv("ASSETCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine, opts...), nil
	case StorageSQLite:
		return NewSQLiteStore(os.Getenv("ASSETCORE_SQLITE_PATH"), engine, opts...)
	case StoragePostgres:
		return NewPostgresStore(os.Getenv("ASSETCORE_POSTGRES_DSN"), engine, opts...)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
