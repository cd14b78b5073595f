package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"assetcore/internal/archive"
	"assetcore/pkg/domain"
)

// DocumentKind names a renderable workflow document.
type DocumentKind string

// Document kinds produced by the workflows.
const (
	DocumentAccountabilityForm  DocumentKind = "accountability-form"
	DocumentReturnReceipt       DocumentKind = "return-receipt"
	DocumentDisposalCertificate DocumentKind = "disposal-certificate"
)

// DocumentData is the payload handed to a renderer: the workflow record the
// document describes plus a human title.
type DocumentData struct {
	Title     string
	RecordKey string
	Fields    domain.Record
}

// DocumentRenderer produces a durable document for a workflow record and
// returns an opaque reference to it.
type DocumentRenderer interface {
	Render(ctx context.Context, kind DocumentKind, data DocumentData) (string, error)
}

// ArchiveRenderer writes canonical JSON documents into an archive store and
// returns the archive key as the reference.
type ArchiveRenderer struct {
	store archive.Store
	now   func() time.Time
}

// NewArchiveRenderer constructs a renderer over the given archive store.
func NewArchiveRenderer(store archive.Store) *ArchiveRenderer {
	return &ArchiveRenderer{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Render implements DocumentRenderer.
func (r *ArchiveRenderer) Render(ctx context.Context, kind DocumentKind, data DocumentData) (string, error) {
	if r.store == nil {
		return "", fmt.Errorf("archive store not configured")
	}
	if data.RecordKey == "" {
		return "", fmt.Errorf("document data missing record key")
	}
	payload := map[string]any{
		"kind":         string(kind),
		"title":        data.Title,
		"record_key":   data.RecordKey,
		"generated_at": r.now().Format(domain.TimeLayout),
		"fields":       data.Fields,
	}
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	// Keys embed a fresh id so re-rendering after a retry never collides
	// with the create-only archive contract.
	key := fmt.Sprintf("%s/%s-%s.json", kind, sanitizeKeyPart(data.RecordKey), uuid.NewString())
	if _, err := r.store.Put(ctx, key, bytes.NewReader(body), archive.PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			"kind":       string(kind),
			"record_key": data.RecordKey,
		},
	}); err != nil {
		return "", fmt.Errorf("archive document: %w", err)
	}
	return key, nil
}

func sanitizeKeyPart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
