package domain

import "time"

// TimeLayout is the canonical encoding for timestamp column values. Records
// keep timestamps as strings so stored state survives JSON snapshots without
// type drift between drivers.
const TimeLayout = time.RFC3339Nano

// Record is a single row in a collection: a flat map from column name to a
// scalar value. Canonical value types are string, float64, bool, and nil;
// timestamps are RFC 3339 strings (see TimeLayout).
type Record map[string]any

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the named column as a string, or "" when absent or not a
// string.
func (r Record) String(column string) string {
	v, _ := r[column].(string)
	return v
}

// Bool returns the named column as a bool, or false when absent or not a bool.
func (r Record) Bool(column string) bool {
	v, _ := r[column].(bool)
	return v
}

// Float returns the named column as a float64, or 0 when absent or not a
// number.
func (r Record) Float(column string) float64 {
	v, _ := r[column].(float64)
	return v
}

// Int returns the named column as an integer, truncating the stored number.
func (r Record) Int(column string) int64 {
	return int64(r.Float(column))
}

// Time parses the named column as an RFC 3339 timestamp. It returns the zero
// time when the column is absent, empty, or malformed.
func (r Record) Time(column string) time.Time {
	raw := r.String(column)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SetTime stores t in the named column using TimeLayout. The zero time is
// stored as the empty string.
func (r Record) SetTime(column string, t time.Time) {
	if t.IsZero() {
		r[column] = ""
		return
	}
	r[column] = t.UTC().Format(TimeLayout)
}

// NormalizeValue coerces v into a canonical record scalar. The second return
// is false for unsupported types such as maps, slices, and structs.
func NormalizeValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case string:
		return t, true
	case bool:
		return t, true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case time.Time:
		if t.IsZero() {
			return "", true
		}
		return t.UTC().Format(TimeLayout), true
	}
	return nil, false
}

// EqualValues reports whether two scalars compare equal after normalization.
func EqualValues(a, b any) bool {
	na, ok := NormalizeValue(a)
	if !ok {
		return false
	}
	nb, ok := NormalizeValue(b)
	if !ok {
		return false
	}
	return na == nb
}
