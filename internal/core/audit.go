package core

import (
	"context"
	"sync"

	"assetcore/pkg/domain"
)

// MemoryAuditSink retains the most recent audit entries in a bounded ring.
// It is the default sink for in-memory services and doubles as a capture
// helper in tests.
type MemoryAuditSink struct {
	mu      sync.Mutex
	limit   int
	entries []domain.AuditEntry
}

// NewMemoryAuditSink constructs a sink retaining up to limit entries. A
// non-positive limit keeps every entry.
func NewMemoryAuditSink(limit int) *MemoryAuditSink {
	return &MemoryAuditSink{limit: limit}
}

// Record implements domain.AuditSink.
func (s *MemoryAuditSink) Record(_ context.Context, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if s.limit > 0 && len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
	return nil
}

// Entries returns a copy of the retained entries, oldest first.
func (s *MemoryAuditSink) Entries() []domain.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// LogAuditSink forwards audit entries to a structured logger.
type LogAuditSink struct {
	logger domain.Logger
}

// NewLogAuditSink constructs a sink logging each entry at info level.
func NewLogAuditSink(logger domain.Logger) *LogAuditSink {
	if logger == nil {
		logger = domain.NopLogger()
	}
	return &LogAuditSink{logger: logger}
}

// Record implements domain.AuditSink.
func (s *LogAuditSink) Record(_ context.Context, entry domain.AuditEntry) error {
	s.logger.Info("audit",
		"collection", entry.Collection,
		"action", string(entry.Action),
		"key", entry.Key,
		"actor", entry.Actor,
		"occurred_at", entry.OccurredAt,
	)
	return nil
}
