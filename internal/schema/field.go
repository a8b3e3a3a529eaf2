package schema

import (
	"context"
	"fmt"
)

// Rule validates a present, non-empty raw value and returns its canonical form.
// The returned error carries a message fragment ("is not a valid phone number");
// the field prefixes it with its own name.
type Rule func(ctx context.Context, raw any) (any, error)

// Field is a single schema cell: presence policy plus a type rule.
type Field struct {
	name     string
	kind     string
	required bool
	nullable bool
	rule     Rule
}

// FieldOption configures presence policy on a Field.
type FieldOption func(*Field)

// Required rejects absent and null values.
func Required() FieldOption {
	return func(f *Field) {
		f.required = true
	}
}

// Nullable accepts empty values ("", {}, [], 0) and stores them as-is.
func Nullable() FieldOption {
	return func(f *Field) {
		f.nullable = true
	}
}

func newField(name, kind string, rule Rule, opts ...FieldOption) Field {
	f := Field{name: name, kind: kind, rule: rule}
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

func (f Field) Name() string   { return f.name }
func (f Field) Kind() string   { return f.kind }
func (f Field) Required() bool { return f.required }
func (f Field) Nullable() bool { return f.nullable }

// Validate applies the presence policy and, for non-empty values, the type rule.
// present reports whether the key existed in the input mapping at all. A nil
// value with a nil error means the field resolved to null.
func (f Field) Validate(ctx context.Context, raw any, present bool) (any, error) {
	if !present || raw == nil {
		if f.required {
			return nil, f.errorf("must be present")
		}
		return nil, nil
	}
	if isEmpty(raw) {
		if !f.nullable {
			return nil, f.errorf("must be not nullable")
		}
		return raw, nil
	}
	value, err := f.rule(ctx, raw)
	if err != nil {
		return nil, f.errorf("%s", err.Error())
	}
	return value, nil
}

func (f Field) errorf(format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   f.name,
		Message: fmt.Sprintf("Field %s ", f.name) + fmt.Sprintf(format, args...),
	}
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
