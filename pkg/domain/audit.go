package domain

import (
	"context"
	"time"
)

// AuditEntry is one recorded mutation: who changed which row, with before and
// after snapshots. Entries mirror Change values enriched with actor and time.
type AuditEntry struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Action     Action    `json:"action"`
	Key        string    `json:"key"`
	Actor      string    `json:"actor"`
	Before     Record    `json:"before,omitempty"`
	After      Record    `json:"after,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditSink receives audit entries emitted by the store. Delivery is best
// effort: a sink failure is logged by the emitter and never fails the
// mutation that produced the entry.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}
