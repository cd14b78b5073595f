package core

import (
	"strings"
	"testing"
	"time"
)

func TestFormAndDisposalIDs(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	formID := NewFormID(now)
	if !strings.HasPrefix(formID, "ACC-1709283600000-") {
		t.Fatalf("form id = %q", formID)
	}
	disposalID := NewDisposalID(now)
	if !strings.HasPrefix(disposalID, "DSP-1709283600000-") {
		t.Fatalf("disposal id = %q", disposalID)
	}

	// The random suffix disambiguates same-instant mints.
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		id := NewFormID(now)
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestNewIDUnique(t *testing.T) {
	a, b := newID(), newID()
	if a == b || len(a) != 32 {
		t.Fatalf("ids = %q, %q", a, b)
	}
}
