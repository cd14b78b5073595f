// Package memory provides the in-memory implementation of the tabular record
// store. It is the reference driver: the durable drivers embed it and add
// snapshot persistence on top.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"assetcore/pkg/domain"

	"github.com/google/uuid"
)

// Compile-time contract assertion ensuring memory.Store implements the domain
// persistence interface.
var _ domain.Store = (*Store)(nil)

type (
	// Record aliases domain.Record for in-memory persistence operations.
	Record = domain.Record
	// Schema aliases domain.Schema.
	Schema = domain.Schema
	// Change aliases domain.Change captured per mutation.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
)

type memoryState struct {
	collections map[string][]Record
}

func newMemoryState() memoryState {
	state := memoryState{collections: make(map[string][]Record)}
	for _, schema := range domain.Collections() {
		state.collections[schema.Name] = nil
	}
	return state
}

func (s memoryState) clone() memoryState {
	cloned := memoryState{collections: make(map[string][]Record, len(s.collections))}
	for name, rows := range s.collections {
		copied := make([]Record, len(rows))
		for i, row := range rows {
			copied[i] = row.Clone()
		}
		cloned.collections[name] = copied
	}
	return cloned
}

// Snapshot captures a point-in-time clone of every collection, keyed by
// collection name. Row order is insertion order.
type Snapshot struct {
	Collections map[string][]Record `json:"collections"`
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	snapshot := Snapshot{Collections: make(map[string][]Record, len(state.collections))}
	for name, rows := range state.collections {
		copied := make([]Record, len(rows))
		for i, row := range rows {
			copied[i] = row.Clone()
		}
		snapshot.Collections[name] = copied
	}
	return snapshot
}

func memoryStateFromSnapshot(snapshot Snapshot) memoryState {
	state := newMemoryState()
	for name, rows := range snapshot.Collections {
		copied := make([]Record, len(rows))
		for i, row := range rows {
			copied[i] = row.Clone()
		}
		state.collections[name] = copied
	}
	return state
}

// migrateSnapshot normalizes a loaded snapshot against the declared schemas:
// unknown collections and columns are dropped, missing columns materialize as
// empty strings, and rows with a missing or duplicate key are discarded.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	out := Snapshot{Collections: make(map[string][]Record)}
	for _, schema := range domain.Collections() {
		rows := snapshot.Collections[schema.Name]
		kept := make([]Record, 0, len(rows))
		seen := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			cleaned := make(Record, len(schema.Columns))
			for _, col := range schema.Columns {
				value, ok := row[col]
				if !ok {
					cleaned[col] = ""
					continue
				}
				normalized, ok := domain.NormalizeValue(value)
				if !ok {
					cleaned[col] = ""
					continue
				}
				cleaned[col] = normalized
			}
			key := cleaned.String(schema.Key)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, cleaned)
		}
		out.Collections[schema.Name] = kept
	}
	return out
}

// Store provides the in-memory tabular record store. A single mutex
// serializes mutations; every mutation is atomic, evaluates the registered
// rules against the candidate state, and emits a best-effort audit entry
// after commit.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	audit  domain.AuditSink
	logger domain.Logger
	nowFn  func() time.Time
}

// Option customizes store construction.
type Option func(*Store)

// WithAuditSink attaches the sink receiving an entry for every committed
// mutation. Sink failures are logged, never propagated.
func WithAuditSink(sink domain.AuditSink) Option {
	return func(s *Store) { s.audit = sink }
}

// WithLogger attaches the logger used for best-effort failure reporting.
func WithLogger(logger domain.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNowFunc overrides the store's time source.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	store := &Store{
		state:  newMemoryState(),
		engine: engine,
		logger: domain.NopLogger(),
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// RulesEngine exposes the configured engine for integration points.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// stateView adapts a memoryState to the read-only view rules evaluate
// against.
type stateView struct {
	state *memoryState
}

// List returns every row of the collection in insertion order.
func (v stateView) List(collection string) []Record {
	rows := v.state.collections[collection]
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}

// Find returns the first row whose column equals value.
func (v stateView) Find(collection, column string, value any) (Record, bool) {
	for _, row := range v.state.collections[collection] {
		if domain.EqualValues(row[column], value) {
			return row.Clone(), true
		}
	}
	return nil, false
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.View) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.state.clone()
	return fn(stateView{state: &snapshot})
}

// GetAll returns every row of the collection in insertion order.
func (s *Store) GetAll(_ context.Context, collection string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := domain.SchemaFor(collection); !ok {
		return nil, domain.NotFoundError{Entity: "collection", Key: collection}
	}
	rows := s.state.collections[collection]
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out, nil
}

// GetOne returns the first row whose column equals value.
func (s *Store) GetOne(_ context.Context, collection, column string, value any) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, ok := domain.SchemaFor(collection)
	if !ok {
		return nil, false, domain.NotFoundError{Entity: "collection", Key: collection}
	}
	if !schema.HasColumn(column) {
		return nil, false, domain.NotFoundError{Entity: "column", Key: column}
	}
	needle, ok := domain.NormalizeValue(value)
	if !ok {
		return nil, false, domain.ValidationError{Message: fmt.Sprintf("unsupported lookup value for column %s", column)}
	}
	for _, row := range s.state.collections[collection] {
		if row[column] == needle {
			return row.Clone(), true, nil
		}
	}
	return nil, false, nil
}

// Insert materializes every declared column, stamps system columns from the
// actor carried in ctx, enforces key uniqueness, and appends the row.
func (s *Store) Insert(ctx context.Context, collection string, record Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, ok := domain.SchemaFor(collection)
	if !ok {
		return nil, domain.NotFoundError{Entity: "collection", Key: collection}
	}
	for col := range record {
		if !schema.HasColumn(col) {
			return nil, domain.NotFoundError{Entity: "column", Key: col}
		}
	}
	row := make(Record, len(schema.Columns))
	for _, col := range schema.Columns {
		value, present := record[col]
		if !present {
			row[col] = ""
			continue
		}
		normalized, ok := domain.NormalizeValue(value)
		if !ok {
			return nil, domain.ValidationError{Message: fmt.Sprintf("unsupported value for column %s", col)}
		}
		row[col] = normalized
	}
	now := s.nowFn()
	actor := domain.ActorFrom(ctx)
	stampCreate(row, actor, now)
	key := row.String(schema.Key)
	if key == "" {
		return nil, domain.MissingField(schema.Key)
	}
	for _, existing := range s.state.collections[collection] {
		if existing.String(schema.Key) == key {
			return nil, domain.DuplicateError{Collection: collection, Column: schema.Key, Value: key}
		}
	}
	next := s.state.clone()
	next.collections[collection] = append(next.collections[collection], row.Clone())
	change := Change{Collection: collection, Action: domain.ActionCreate, Key: key, After: row.Clone()}
	if err := s.evaluate(ctx, &next, change); err != nil {
		return nil, err
	}
	s.state = next
	s.emitAudit(ctx, change, actor, now)
	return row.Clone(), nil
}

// Update patches the first row whose column equals value, writing only the
// fields present in patch and restamping the update columns. The first match
// wins when the column is not the collection key.
func (s *Store) Update(ctx context.Context, collection, column string, value any, patch Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, ok := domain.SchemaFor(collection)
	if !ok {
		return nil, domain.NotFoundError{Entity: "collection", Key: collection}
	}
	if !schema.HasColumn(column) {
		return nil, domain.NotFoundError{Entity: "column", Key: column}
	}
	for col := range patch {
		if !schema.HasColumn(col) {
			return nil, domain.NotFoundError{Entity: "column", Key: col}
		}
	}
	needle, ok := domain.NormalizeValue(value)
	if !ok {
		return nil, domain.ValidationError{Message: fmt.Sprintf("unsupported lookup value for column %s", column)}
	}
	next := s.state.clone()
	idx := indexOf(next.collections[collection], column, needle)
	if idx < 0 {
		return nil, domain.NotFoundError{Entity: "record", Key: valueString(needle)}
	}
	row := next.collections[collection][idx]
	before := row.Clone()
	for col, raw := range patch {
		if isSystemColumn(col) {
			continue
		}
		normalized, ok := domain.NormalizeValue(raw)
		if !ok {
			return nil, domain.ValidationError{Message: fmt.Sprintf("unsupported value for column %s", col)}
		}
		row[col] = normalized
	}
	now := s.nowFn()
	actor := domain.ActorFrom(ctx)
	stampUpdate(row, actor, now)
	key := row.String(schema.Key)
	if key == "" {
		return nil, domain.MissingField(schema.Key)
	}
	if key != before.String(schema.Key) {
		for i, existing := range next.collections[collection] {
			if i != idx && existing.String(schema.Key) == key {
				return nil, domain.DuplicateError{Collection: collection, Column: schema.Key, Value: key}
			}
		}
	}
	change := Change{Collection: collection, Action: domain.ActionUpdate, Key: key, Before: before, After: row.Clone()}
	if err := s.evaluate(ctx, &next, change); err != nil {
		return nil, err
	}
	s.state = next
	s.emitAudit(ctx, change, actor, now)
	return row.Clone(), nil
}

// Delete removes the first row whose column equals value and returns the
// removed snapshot.
func (s *Store) Delete(ctx context.Context, collection, column string, value any) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, ok := domain.SchemaFor(collection)
	if !ok {
		return nil, domain.NotFoundError{Entity: "collection", Key: collection}
	}
	if !schema.HasColumn(column) {
		return nil, domain.NotFoundError{Entity: "column", Key: column}
	}
	needle, ok := domain.NormalizeValue(value)
	if !ok {
		return nil, domain.ValidationError{Message: fmt.Sprintf("unsupported lookup value for column %s", column)}
	}
	next := s.state.clone()
	idx := indexOf(next.collections[collection], column, needle)
	if idx < 0 {
		return nil, domain.NotFoundError{Entity: "record", Key: valueString(needle)}
	}
	removed := next.collections[collection][idx]
	next.collections[collection] = append(next.collections[collection][:idx], next.collections[collection][idx+1:]...)
	change := Change{Collection: collection, Action: domain.ActionDelete, Key: removed.String(schema.Key), Before: removed.Clone()}
	if err := s.evaluate(ctx, &next, change); err != nil {
		return nil, err
	}
	now := s.nowFn()
	actor := domain.ActorFrom(ctx)
	s.state = next
	s.emitAudit(ctx, change, actor, now)
	return removed.Clone(), nil
}

// Search filters rows. String filter values match as case-insensitive
// substrings against the stringified column, other scalars match exactly, and
// filters combine with AND. A non-empty freeText additionally requires some
// column to contain it, case-insensitively.
func (s *Store) Search(_ context.Context, collection string, filters Record, freeText string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, ok := domain.SchemaFor(collection)
	if !ok {
		return nil, domain.NotFoundError{Entity: "collection", Key: collection}
	}
	normalized := make(Record, len(filters))
	for col, raw := range filters {
		if !schema.HasColumn(col) {
			return nil, domain.NotFoundError{Entity: "column", Key: col}
		}
		value, ok := domain.NormalizeValue(raw)
		if !ok {
			return nil, domain.ValidationError{Message: fmt.Sprintf("unsupported filter value for column %s", col)}
		}
		normalized[col] = value
	}
	needle := strings.ToLower(freeText)
	var out []Record
	for _, row := range s.state.collections[collection] {
		if !matchesFilters(row, normalized) {
			continue
		}
		if needle != "" && !matchesFreeText(row, needle) {
			continue
		}
		out = append(out, row.Clone())
	}
	return out, nil
}

// NextSequence atomically advances the named counter held in the settings
// collection, seeding it at start on first use. Counter advances are
// bookkeeping: they are neither rule-checked nor audited.
func (s *Store) NextSequence(ctx context.Context, name string, start int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	actor := domain.ActorFrom(ctx)
	rows := s.state.collections[domain.CollectionSettings]
	for _, row := range rows {
		if row.String(domain.FieldKey) != name {
			continue
		}
		current, err := strconv.ParseInt(row.String(domain.FieldValue), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("sequence %s: malformed value %q", name, row.String(domain.FieldValue))
		}
		next := current + 1
		row[domain.FieldValue] = strconv.FormatInt(next, 10)
		stampUpdate(row, actor, now)
		return next, nil
	}
	row := Record{
		domain.FieldKey:   name,
		domain.FieldValue: strconv.FormatInt(start, 10),
	}
	stampCreate(row, actor, now)
	s.state.collections[domain.CollectionSettings] = append(rows, row)
	return start, nil
}

func (s *Store) evaluate(ctx context.Context, next *memoryState, change Change) error {
	if s.engine == nil {
		return nil
	}
	res, err := s.engine.Evaluate(ctx, stateView{state: next}, []Change{change})
	if err != nil {
		return err
	}
	for _, violation := range res.Violations {
		if violation.Severity == domain.SeverityBlock {
			continue
		}
		s.logger.Warn("rule violation", "rule", violation.Rule, "severity", string(violation.Severity), "message", violation.Message)
	}
	if res.HasBlocking() {
		return domain.RuleViolationError{Result: res}
	}
	return nil
}

// auditEnabled reads the persisted toggle from the settings collection. It
// runs under the store mutex, so it reads committed state directly; an absent
// or unparsable row leaves the trail on.
func (s *Store) auditEnabled() bool {
	for _, row := range s.state.collections[domain.CollectionSettings] {
		if row.String(domain.FieldKey) != domain.SettingAuditEnabled {
			continue
		}
		enabled, err := strconv.ParseBool(row.String(domain.FieldValue))
		if err != nil {
			return true
		}
		return enabled
	}
	return true
}

func (s *Store) emitAudit(ctx context.Context, change Change, actor string, now time.Time) {
	if s.audit == nil || !s.auditEnabled() {
		return
	}
	entry := domain.AuditEntry{
		ID:         uuid.NewString(),
		Collection: change.Collection,
		Action:     change.Action,
		Key:        change.Key,
		Actor:      actor,
		Before:     change.Before,
		After:      change.After,
		OccurredAt: now,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit sink failed", "collection", change.Collection, "action", string(change.Action), "error", err)
	}
}

func stampCreate(row Record, actor string, now time.Time) {
	row.SetTime(domain.FieldCreatedAt, now)
	row[domain.FieldCreatedBy] = actor
	row.SetTime(domain.FieldUpdatedAt, now)
	row[domain.FieldUpdatedBy] = actor
}

func stampUpdate(row Record, actor string, now time.Time) {
	row.SetTime(domain.FieldUpdatedAt, now)
	row[domain.FieldUpdatedBy] = actor
}

func isSystemColumn(col string) bool {
	switch col {
	case domain.FieldCreatedAt, domain.FieldCreatedBy, domain.FieldUpdatedAt, domain.FieldUpdatedBy:
		return true
	}
	return false
}

func indexOf(rows []Record, column string, needle any) int {
	for i, row := range rows {
		if row[column] == needle {
			return i
		}
	}
	return -1
}

func matchesFilters(row, filters Record) bool {
	for col, want := range filters {
		got := row[col]
		if s, ok := want.(string); ok {
			if !strings.Contains(strings.ToLower(valueString(got)), strings.ToLower(s)) {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func matchesFreeText(row Record, needle string) bool {
	for _, value := range row {
		if strings.Contains(strings.ToLower(valueString(value)), needle) {
			return true
		}
	}
	return false
}

func valueString(value any) string {
	switch t := value.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}
