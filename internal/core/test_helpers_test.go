package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"assetcore/internal/archive"
	"assetcore/internal/infra/persistence/memory"
	"assetcore/pkg/domain"
)

// captureLogger records log calls with a level prefix for assertions.
type captureLogger struct {
	mu    sync.Mutex
	calls []string
}

func (l *captureLogger) log(prefix, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf("%s:%s %v", prefix, msg, args))
}

func (l *captureLogger) Debug(msg string, args ...any) { l.log("d", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.log("i", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.log("w", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.log("e", msg, args) }

func (l *captureLogger) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

// testClock is a mutable frozen clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start.UTC()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var fixtureStart = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// workflowFixture bundles a service wired for deterministic workflow tests:
// frozen clock, inline dispatcher, capture notifier, in-memory archive.
type workflowFixture struct {
	svc      *Service
	store    domain.Store
	clock    *testClock
	notifier *MemoryNotifier
	archive  archive.Store
	sink     *MemoryAuditSink
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	clock := newTestClock(fixtureStart)
	sink := NewMemoryAuditSink(0)
	store := memory.NewStore(NewDefaultRulesEngine(),
		memory.WithNowFunc(clock.Now),
		memory.WithAuditSink(sink),
	)
	arch := archive.NewMemory()
	notifier := NewMemoryNotifier()
	dispatcher := NewInlineDispatcher(store, notifier, NewArchiveRenderer(arch),
		WithDispatchClock(clock),
	)
	svc := NewService(store,
		WithClock(clock),
		WithDispatcher(dispatcher),
	)
	return &workflowFixture{
		svc:      svc,
		store:    store,
		clock:    clock,
		notifier: notifier,
		archive:  arch,
		sink:     sink,
	}
}

func (fx *workflowFixture) addAsset(t *testing.T, serial string) domain.Asset {
	t.Helper()
	asset, err := fx.svc.AddAsset(context.Background(), AssetInput{
		SerialNumber: serial,
		Category:     "Laptop",
		Brand:        "Lenovo",
		Model:        "T14",
		Condition:    string(domain.ConditionGood),
		Location:     "HQ",
		DateReceived: fixtureStart.Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("add asset %s: %v", serial, err)
	}
	return asset
}

// staticView is a fixed rule view for direct rule evaluation tests.
type staticView struct {
	lists map[string][]domain.Record
}

func (v staticView) List(collection string) []domain.Record {
	return v.lists[collection]
}

func (v staticView) Find(collection, column string, value any) (domain.Record, bool) {
	for _, rec := range v.lists[collection] {
		if domain.EqualValues(rec[column], value) {
			return rec, true
		}
	}
	return nil, false
}
