package document

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MappingError reports a document whose stored shape does not match the
// entity it is read as.
type MappingError struct {
	Collection string
	ID         string
	Field      string
	Reason     string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("malformed %s/%s: field %q %s", e.Collection, e.ID, e.Field, e.Reason)
}

// FieldReader reads typed fields out of a document. The first failure is
// kept and returned by Err; later reads return zero values.
type FieldReader struct {
	doc Document
	err *MappingError
}

// Read starts reading doc.
func Read(doc Document) *FieldReader {
	return &FieldReader{doc: doc}
}

// Err returns the first mapping failure, if any.
func (r *FieldReader) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

func (r *FieldReader) fail(field, reason string) {
	if r.err == nil {
		r.err = &MappingError{Collection: r.doc.Collection, ID: r.doc.ID, Field: field, Reason: reason}
	}
}

func (r *FieldReader) value(field string, required bool) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.doc.Fields[field]
	if !ok || v == nil {
		if required {
			r.fail(field, "is missing")
		}
		return nil, false
	}
	return v, true
}

// String reads a required, non-empty string.
func (r *FieldReader) String(field string) string {
	v, ok := r.value(field, true)
	if !ok {
		return ""
	}
	s, isString := v.(string)
	if !isString {
		r.fail(field, fmt.Sprintf("must be a string, got %T", v))
		return ""
	}
	if s == "" {
		r.fail(field, "must not be empty")
	}
	return s
}

// OptionalString reads a string that may be absent or empty. Numbers are
// rendered in their shortest form since some clients write budgets as numbers.
func (r *FieldReader) OptionalString(field string) string {
	v, ok := r.value(field, false)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case json.Number:
		return s.String()
	}
	r.fail(field, fmt.Sprintf("must be a string, got %T", v))
	return ""
}

// Email reads an optional string that must be a valid address when present.
func (r *FieldReader) Email(field string) string {
	s := r.OptionalString(field)
	if s != "" && validate.Var(s, "email") != nil {
		r.fail(field, "must be a valid email address")
		return ""
	}
	return s
}

// OneOf reads a required string restricted to allowed values.
func (r *FieldReader) OneOf(field string, allowed ...string) string {
	s := r.String(field)
	if r.err != nil {
		return ""
	}
	if !slices.Contains(allowed, s) {
		r.fail(field, fmt.Sprintf("must be one of %v, got %q", allowed, s))
		return ""
	}
	return s
}

// OptionalOneOf is OneOf with a default for absent fields.
func (r *FieldReader) OptionalOneOf(field, def string, allowed ...string) string {
	if _, ok := r.value(field, false); !ok {
		return def
	}
	return r.OneOf(field, allowed...)
}

// Bool reads an optional boolean, defaulting to false.
func (r *FieldReader) Bool(field string) bool {
	v, ok := r.value(field, false)
	if !ok {
		return false
	}
	b, isBool := v.(bool)
	if !isBool {
		r.fail(field, fmt.Sprintf("must be a boolean, got %T", v))
	}
	return b
}

// Int reads an optional whole number, defaulting to def.
func (r *FieldReader) Int(field string, def int) int {
	v, ok := r.value(field, false)
	if !ok {
		return def
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			r.fail(field, "must be a number")
			return def
		}
		f = parsed
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			r.fail(field, fmt.Sprintf("must be a whole number, got %q", n))
			return def
		}
		return parsed
	default:
		r.fail(field, fmt.Sprintf("must be a number, got %T", v))
		return def
	}
	if f != math.Trunc(f) {
		r.fail(field, fmt.Sprintf("must be a whole number, got %v", f))
		return def
	}
	return int(f)
}

// IntRange reads a whole number and checks it against a validator tag such as
// "min=0,max=100".
func (r *FieldReader) IntRange(field string, def int, tag string) int {
	n := r.Int(field, def)
	if r.err != nil {
		return def
	}
	if err := validate.Var(n, tag); err != nil {
		r.fail(field, fmt.Sprintf("out of range (%s), got %d", tag, n))
		return def
	}
	return n
}

// Time reads an optional timestamp stored as RFC 3339 text, epoch
// milliseconds or a time.Time, falling back to def.
func (r *FieldReader) Time(field string, def time.Time) time.Time {
	v, ok := r.value(field, false)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			r.fail(field, fmt.Sprintf("must be an RFC 3339 timestamp, got %q", t))
			return def
		}
		return parsed
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	case int64:
		return time.UnixMilli(t).UTC()
	case int:
		return time.UnixMilli(int64(t)).UTC()
	}
	r.fail(field, fmt.Sprintf("must be a timestamp, got %T", v))
	return def
}

// Slice reads an optional list of nested maps.
func (r *FieldReader) Slice(field string) []map[string]any {
	v, ok := r.value(field, false)
	if !ok {
		return nil
	}
	items, isSlice := v.([]any)
	if !isSlice {
		if typed, isTyped := v.([]map[string]any); isTyped {
			return typed
		}
		r.fail(field, fmt.Sprintf("must be a list, got %T", v))
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, isMap := item.(map[string]any)
		if !isMap {
			r.fail(fmt.Sprintf("%s[%d]", field, i), fmt.Sprintf("must be an object, got %T", item))
			return nil
		}
		out = append(out, m)
	}
	return out
}

// Map reads an optional nested object.
func (r *FieldReader) Map(field string) map[string]any {
	v, ok := r.value(field, false)
	if !ok {
		return nil
	}
	m, isMap := v.(map[string]any)
	if !isMap {
		r.fail(field, fmt.Sprintf("must be an object, got %T", v))
		return nil
	}
	return m
}

// MapAll maps every document of a snapshot, failing on the first malformed
// document.
func MapAll[T any](snap Snapshot, mapper func(Document) (T, error)) ([]T, error) {
	out := make([]T, 0, len(snap.Docs))
	for _, d := range snap.Docs {
		item, err := mapper(d)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
