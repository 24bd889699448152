package record

import (
	"fmt"

	"datarecon/core/utils"
)

// Record is one dataset row: an arbitrary mapping from field name to value.
// Nested mappings and sequences are permitted.
type Record map[string]any

// ID extracts the record's identifier from the given field and normalizes it
// to a string key.
func ID(rec Record, field string) (string, error) {
	val, ok := rec[field]
	if !ok {
		return "", fmt.Errorf("record has no %q field", field)
	}

	id, ok := Key(val)
	if !ok {
		return "", fmt.Errorf("record %q field is empty", field)
	}
	return id, nil
}

// Key normalizes an identifier value to its string key. Numeric ids from
// different drivers (int64, float64, json.Number) must land on the same key,
// so numbers go through the same decimal normalization as canonical forms.
// ok is false for nil or empty identifiers.
func Key(val any) (string, bool) {
	if val == nil {
		return "", false
	}
	key, ok := normalizeNumber(val)
	if !ok {
		key = utils.ToString(val)
	}
	return key, key != ""
}
