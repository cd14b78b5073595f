package domain

import "context"

// View provides read-only access to collection state for rule evaluation.
// Implementations return cloned records; callers may mutate them freely.
type View interface {
	List(collection string) []Record
	Find(collection, column string, value any) (Record, bool)
}

// Store is the tabular persistence contract shared by all drivers. Every
// mutation is atomic, stamps system columns from the actor carried in ctx,
// evaluates registered rules, and emits a best-effort audit entry.
type Store interface {
	// GetAll returns every row of the collection in insertion order.
	GetAll(ctx context.Context, collection string) ([]Record, error)
	// GetOne returns the first row whose column equals value.
	GetOne(ctx context.Context, collection, column string, value any) (Record, bool, error)
	// Insert materializes every declared column, enforces key uniqueness,
	// and appends the row.
	Insert(ctx context.Context, collection string, record Record) (Record, error)
	// Update patches the first row whose column equals value, writing only
	// the fields present in patch.
	Update(ctx context.Context, collection, column string, value any, patch Record) (Record, error)
	// Delete removes the first row whose column equals value and returns
	// the removed snapshot.
	Delete(ctx context.Context, collection, column string, value any) (Record, error)
	// Search filters rows: string filter values match as case-insensitive
	// substrings, other scalars match exactly, filters combine with AND.
	// A non-empty freeText additionally requires some field to contain it.
	Search(ctx context.Context, collection string, filters Record, freeText string) ([]Record, error)
	// NextSequence atomically advances the named counter, seeding it at
	// start on first use.
	NextSequence(ctx context.Context, name string, start int64) (int64, error)
}
