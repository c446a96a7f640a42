package docstore

import (
	"encoding/json"
	"fmt"
	"time"
)

type appendTransform struct{ values []any }

type serverTimestamp struct{}

// Append appends values to an array field without removing duplicates.
// A missing field is treated as an empty array.
func Append(values ...any) any { return appendTransform{values: values} }

// ServerTimestamp is replaced by the store's clock when the write is applied.
func ServerTimestamp() any { return serverTimestamp{} }

func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

func AppendValues(v any) ([]any, bool) {
	t, ok := v.(appendTransform)
	if !ok {
		return nil, false
	}
	return t.values, true
}

// Split separates a patch into plain values, appended values and server
// timestamp fields. Adapters that push transforms down to the database use it.
func Split(patch Record) (plain Record, appends map[string][]any, timestamps []string) {
	plain = Record{}
	appends = map[string][]any{}
	for k, v := range patch {
		if IsServerTimestamp(v) {
			timestamps = append(timestamps, k)
			continue
		}
		if vals, ok := AppendValues(v); ok {
			appends[k] = vals
			continue
		}
		plain[k] = v
	}
	return plain, appends, timestamps
}

// FormatTimestamp is the stored representation of server timestamps.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ApplyPatch merges patch into a copy of current, resolving transforms with now.
// The result is normalized through JSON so every adapter stores the same shapes.
func ApplyPatch(current, patch Record, now time.Time) (Record, error) {
	out := Record{}
	for k, v := range current {
		out[k] = v
	}
	for k, v := range patch {
		switch {
		case IsServerTimestamp(v):
			out[k] = FormatTimestamp(now)
		default:
			vals, ok := AppendValues(v)
			if !ok {
				out[k] = v
				continue
			}
			var existing []any
			if cur, found := out[k]; found && cur != nil {
				arr, isArr := cur.([]any)
				if !isArr {
					return nil, fmt.Errorf("docstore: field %q is not an array", k)
				}
				existing = arr
			}
			merged := make([]any, 0, len(existing)+len(vals))
			merged = append(merged, existing...)
			merged = append(merged, vals...)
			out[k] = merged
		}
	}
	return Normalize(out)
}

// Normalize deep-copies r through a JSON round trip.
func Normalize(r Record) (Record, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode record: %w", err)
	}
	return Unmarshal(b)
}

func Unmarshal(b []byte) (Record, error) {
	out := Record{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("docstore: decode record: %w", err)
	}
	return out, nil
}
