package domain

import (
	"testing"
	"time"
)

func TestRecordCloneIsIndependent(t *testing.T) {
	original := Record{FieldAssetTag: "IT-1000", FieldPurchasePrice: 499.0}
	clone := original.Clone()
	clone[FieldAssetTag] = "IT-1001"
	if original.String(FieldAssetTag) != "IT-1000" {
		t.Fatalf("clone mutation leaked into original: %v", original)
	}
	var nilRecord Record
	if nilRecord.Clone() != nil {
		t.Fatalf("expected nil clone for nil record")
	}
}

func TestRecordAccessorsTolerateMissingAndMistyped(t *testing.T) {
	rec := Record{FieldNotes: 42.0, FieldPurchasePrice: "oops"}
	if got := rec.String(FieldNotes); got != "" {
		t.Fatalf("String on number = %q", got)
	}
	if got := rec.Float(FieldPurchasePrice); got != 0 {
		t.Fatalf("Float on string = %v", got)
	}
	if got := rec.Bool("absent"); got {
		t.Fatalf("Bool on absent column = true")
	}
	if got := rec.Int(FieldNotes); got != 42 {
		t.Fatalf("Int = %d", got)
	}
}

func TestRecordTimeRoundTrip(t *testing.T) {
	rec := Record{}
	when := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
	rec.SetTime(FieldDateReceived, when)
	if got := rec.Time(FieldDateReceived); !got.Equal(when) {
		t.Fatalf("round trip: got %v want %v", got, when)
	}
	rec.SetTime(FieldDateReceived, time.Time{})
	if rec.String(FieldDateReceived) != "" {
		t.Fatalf("zero time should store empty string, got %q", rec.String(FieldDateReceived))
	}
	if !rec.Time(FieldDateReceived).IsZero() {
		t.Fatalf("empty column should parse to zero time")
	}
	rec[FieldDateReceived] = "not-a-timestamp"
	if !rec.Time(FieldDateReceived).IsZero() {
		t.Fatalf("malformed column should parse to zero time")
	}
}

func TestNormalizeValue(t *testing.T) {
	when := time.Date(2024, 5, 17, 9, 30, 0, 0, time.FixedZone("X", 3600))
	cases := []struct {
		name  string
		in    any
		want  any
		valid bool
	}{
		{"nil", nil, nil, true},
		{"string", "Laptop", "Laptop", true},
		{"bool", true, true, true},
		{"float64", 12.5, 12.5, true},
		{"int", 7, 7.0, true},
		{"int64", int64(7), 7.0, true},
		{"uint32", uint32(7), 7.0, true},
		{"time", when, "2024-05-17T08:30:00Z", true},
		{"zero time", time.Time{}, "", true},
		{"slice", []string{"x"}, nil, false},
		{"map", map[string]any{}, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeValue(tc.in)
			if ok != tc.valid {
				t.Fatalf("valid = %v, want %v", ok, tc.valid)
			}
			if tc.valid && got != tc.want {
				t.Fatalf("normalized = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestEqualValuesNormalizesNumbers(t *testing.T) {
	if !EqualValues(int64(3), 3.0) {
		t.Fatalf("int64 and float64 should compare equal")
	}
	if EqualValues("3", 3.0) {
		t.Fatalf("string and number must not compare equal")
	}
	if EqualValues([]string{"x"}, []string{"x"}) {
		t.Fatalf("unsupported types must not compare equal")
	}
	when := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
	if !EqualValues(when, when.Format(TimeLayout)) {
		t.Fatalf("time and its canonical string should compare equal")
	}
}
