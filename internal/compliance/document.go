package compliance

import (
	"fmt"
	"strings"
	"time"
)

// Document is a documentation record submitted for validation: an open
// string-keyed payload from the request layer. The engine imposes no schema
// beyond the distinguished fields it reads.
type Document map[string]any

// Distinguished document fields.
const (
	FieldType              = "type"
	FieldRequiresSignature = "requiresSignature"
	FieldSignature         = "signature"
	FieldTimestamp         = "timestamp"
)

// fieldFilled reports whether a required field carries a usable value:
// present, non-nil, and for strings non-empty after trimming.
func fieldFilled(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// valueSet reports whether a record value is set at all. Unlike fieldFilled
// it does not trim: only nil and the exact empty string count as unset.
func valueSet(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseInstant interprets a document value as a point in time. It accepts
// time.Time, common timestamp string layouts, and numeric epoch seconds
// (JSON numbers decode as float64). Only instants strictly after the Unix
// epoch are valid.
func parseInstant(v any) (time.Time, bool) {
	var ts time.Time
	switch t := v.(type) {
	case time.Time:
		ts = t
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		ts = *t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range instantLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				ts = parsed
				break
			}
		}
		if ts.IsZero() {
			return time.Time{}, false
		}
	case float64:
		ts = time.Unix(int64(t), 0)
	case int64:
		ts = time.Unix(t, 0)
	case int:
		ts = time.Unix(int64(t), 0)
	default:
		return time.Time{}, false
	}

	if !ts.After(time.Unix(0, 0)) {
		return time.Time{}, false
	}
	return ts, true
}

// boolField interprets a document value as a flag. JSON payloads may carry
// booleans or their string forms.
func boolField(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}

// stringOf renders a submitted form value for string-based checks.
func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
