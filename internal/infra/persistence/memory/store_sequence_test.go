package memory

import (
	"context"
	"strings"
	"testing"

	"assetcore/pkg/domain"
)

func TestNextSequenceSeedsAtStartAndAdvances(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	for i, want := range []int64{1000, 1001, 1002} {
		got, err := store.NextSequence(ctx, "assetTagSequence", 1000)
		if err != nil {
			t.Fatalf("next sequence %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("next sequence %d = %d, want %d", i, got, want)
		}
	}
}

func TestNextSequencePersistsAsSettingsRow(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	if _, err := store.NextSequence(ctx, "assetTagSequence", 1000); err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	row, found, err := store.GetOne(ctx, domain.CollectionSettings, domain.FieldKey, "assetTagSequence")
	if err != nil || !found {
		t.Fatalf("settings row: found=%v err=%v", found, err)
	}
	if row.String(domain.FieldValue) != "1000" {
		t.Fatalf("counter value = %q", row.String(domain.FieldValue))
	}
	if _, err := store.NextSequence(ctx, "assetTagSequence", 1000); err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	row, _, err = store.GetOne(ctx, domain.CollectionSettings, domain.FieldKey, "assetTagSequence")
	if err != nil {
		t.Fatalf("settings row: %v", err)
	}
	if row.String(domain.FieldValue) != "1001" {
		t.Fatalf("counter value after advance = %q", row.String(domain.FieldValue))
	}
}

func TestNextSequenceSurvivesExportImport(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := store.NextSequence(ctx, "assetTagSequence", 1000); err != nil {
			t.Fatalf("next sequence: %v", err)
		}
	}
	snapshot := store.ExportState()
	reloaded := newTestStore()
	reloaded.ImportState(snapshot)
	got, err := reloaded.NextSequence(ctx, "assetTagSequence", 1000)
	if err != nil {
		t.Fatalf("next sequence after import: %v", err)
	}
	if got != 1003 {
		t.Fatalf("sequence after import = %d, want 1003", got)
	}
}

func TestNextSequenceIndependentCounters(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	if got, err := store.NextSequence(ctx, "assetTagSequence", 1000); err != nil || got != 1000 {
		t.Fatalf("asset counter = %d err=%v", got, err)
	}
	if got, err := store.NextSequence(ctx, "formSequence", 1); err != nil || got != 1 {
		t.Fatalf("form counter = %d err=%v", got, err)
	}
	if got, err := store.NextSequence(ctx, "assetTagSequence", 1000); err != nil || got != 1001 {
		t.Fatalf("asset counter advance = %d err=%v", got, err)
	}
}

func TestNextSequenceRejectsMalformedCounterValue(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	if _, err := store.Insert(ctx, domain.CollectionSettings, Record{
		domain.FieldKey:   "assetTagSequence",
		domain.FieldValue: "not-a-number",
	}); err != nil {
		t.Fatalf("insert malformed counter: %v", err)
	}
	_, err := store.NextSequence(ctx, "assetTagSequence", 1000)
	if err == nil || !strings.Contains(err.Error(), "malformed value") {
		t.Fatalf("malformed counter error = %v", err)
	}
}
