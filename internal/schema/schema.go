// Package schema declares request shapes as ordered lists of typed fields and
// validates untyped input against them.
//
// A Schema is built once at startup and shared by every call; Bind produces a
// fresh Request per call. Validation is exhaustive: every field is checked and
// every failure is kept, in declaration order.
package schema

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Schema is an immutable, ordered set of uniquely named fields.
type Schema struct {
	name   string
	fields []Field
	index  map[string]int
}

// New builds a schema. It panics on an empty or duplicate field name, since
// schemas are declared at package init and a bad declaration is a programming error.
func New(name string, fields ...Field) *Schema {
	s := &Schema{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.name == "" {
			panic(fmt.Sprintf("schema %s: field with empty name", name))
		}
		if _, dup := s.index[f.name]; dup {
			panic(fmt.Sprintf("schema %s: duplicate field %q", name, f.name))
		}
		s.index[f.name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s
}

func (s *Schema) Name() string { return s.name }

// Fields returns the declared fields in order.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Bind validates raw against every declared field and returns the populated request.
// A nil mapping is treated as an empty one.
func (s *Schema) Bind(ctx context.Context, raw map[string]any) *Request {
	req := &Request{
		schema: s,
		values: make(map[string]any, len(s.fields)),
	}
	for _, f := range s.fields {
		v, present := raw[f.name]
		value, err := f.Validate(ctx, v, present)
		if err != nil {
			if verr, ok := err.(*ValidationError); ok {
				req.errs = append(req.errs, verr)
			} else {
				req.errs = append(req.errs, &ValidationError{Field: f.name, Message: err.Error()})
			}
			continue
		}
		if value != nil {
			req.values[f.name] = value
		}
	}
	return req
}

// Request is one validated instance of a schema. It is built per call and
// must not be shared between calls.
type Request struct {
	schema *Schema
	values map[string]any
	errs   []*ValidationError
}

// Valid reports whether every field passed validation.
func (r *Request) Valid() bool {
	return len(r.errs) == 0
}

// Errors returns the validation failures in declaration order.
func (r *Request) Errors() []*ValidationError {
	return append([]*ValidationError(nil), r.errs...)
}

// Error joins every failure message, one per line.
func (r *Request) Error() string {
	msgs := make([]string, len(r.errs))
	for i, e := range r.errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "\n")
}

// Value returns the validated value of a field; ok is false when the field
// resolved to null.
func (r *Request) Value(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// IsSet reports whether a field holds a non-null value.
func (r *Request) IsSet(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Present lists the non-null fields in declaration order.
func (r *Request) Present() []string {
	names := make([]string, 0, len(r.values))
	for _, f := range r.schema.fields {
		if _, ok := r.values[f.name]; ok {
			names = append(names, f.name)
		}
	}
	return names
}

// String returns a text field, or "" when null or not text.
func (r *Request) String(name string) string {
	s, _ := r.values[name].(string)
	return s
}

// Map returns a mapping field, or nil.
func (r *Request) Map(name string) map[string]any {
	m, _ := r.values[name].(map[string]any)
	return m
}

// Int returns an integer field.
func (r *Request) Int(name string) (int64, bool) {
	return asInt(r.values[name])
}

// Time returns a calendar-date field (Birthday).
func (r *Request) Time(name string) (time.Time, bool) {
	t, ok := r.values[name].(time.Time)
	return t, ok
}

// IntSlice returns an integer-sequence field (ClientIDs).
func (r *Request) IntSlice(name string) []int64 {
	ids, _ := r.values[name].([]int64)
	return append([]int64(nil), ids...)
}
