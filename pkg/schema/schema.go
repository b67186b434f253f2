// Package schema is the validation boundary for every externally sourced value:
// remote payloads and persisted local state are checked field by field against
// a declared Schema before they are decoded into Go types.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Type is the declared shape of a single field.
type Type uint8

const (
	// String is a JSON string.
	String Type = iota + 1
	// Number is any JSON number.
	Number
	// Integer is a JSON number with no fractional part.
	Integer
	// Bool is a JSON boolean.
	Bool
	// Text is an object mapping language codes to strings.
	Text
	// NumberText is an object mapping language codes to numbers.
	NumberText
	// StringSlice is an array of strings.
	StringSlice
	// Set is an object mapping values to booleans (true includes, false excludes).
	Set
	// Range is an object with optional numeric "min" and "max" bounds.
	Range
	// Object is any JSON object.
	Object
)

var typeNames = map[Type]string{
	String:      "string",
	Number:      "number",
	Integer:     "integer",
	Bool:        "bool",
	Text:        "text",
	NumberText:  "number text",
	StringSlice: "string slice",
	Set:         "set",
	Range:       "range",
	Object:      "object",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// AssertValue reports whether v, as produced by encoding/json decoding into an
// interface{}, has the shape t.
func (t Type) AssertValue(v interface{}) bool {
	switch t {
	case String:
		_, ok := v.(string)
		return ok
	case Number:
		_, ok := v.(float64)
		return ok
	case Integer:
		f, ok := v.(float64)
		return ok && f == math.Trunc(f)
	case Bool:
		_, ok := v.(bool)
		return ok
	case Text:
		return assertObject[string](v)
	case NumberText:
		return assertObject[float64](v)
	case StringSlice:
		arr, ok := v.([]interface{})
		if !ok {
			return false
		}
		for _, e := range arr {
			if _, ok := e.(string); !ok {
				return false
			}
		}
		return true
	case Set:
		return assertObject[bool](v)
	case Range:
		m, ok := v.(map[string]interface{})
		if !ok {
			return false
		}
		for k, b := range m {
			if k != "min" && k != "max" {
				return false
			}
			if _, ok := b.(float64); !ok && b != nil {
				return false
			}
		}
		return true
	case Object:
		_, ok := v.(map[string]interface{})
		return ok
	}
	return false
}

func assertObject[E any](v interface{}) bool {
	m, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	for _, e := range m {
		if _, ok := e.(E); !ok {
			return false
		}
	}
	return true
}

// Field declares a single field of a Schema.
type Field struct {
	Type Type
	// Required fields must be present and non-null.
	Required bool
	// Enum, when set, restricts String values, StringSlice elements, and Set
	// keys to the listed values.
	Enum []string
}

// Schema declares the fields of a JSON object. Fields not declared are ignored.
type Schema struct {
	Name   string
	Fields map[string]Field
}

// New creates a Schema with the given name and fields.
func New(name string, fields map[string]Field) *Schema {
	return &Schema{Name: name, Fields: fields}
}

// Extend returns a new Schema holding the fields of s plus fields, which take
// precedence on conflicts. s is left untouched.
func (s *Schema) Extend(name string, fields map[string]Field) *Schema {
	out := &Schema{Name: name, Fields: make(map[string]Field, len(s.Fields)+len(fields))}
	for k, f := range s.Fields {
		out.Fields[k] = f
	}
	for k, f := range fields {
		out.Fields[k] = f
	}
	return out
}

// Validate checks data against the schema and returns a *ValidationError
// listing every failing field.
func (s *Schema) Validate(data map[string]interface{}) error {
	var failures []FieldError
	for _, name := range s.fieldNames() {
		f := s.Fields[name]
		v, ok := data[name]
		if !ok || v == nil {
			if f.Required {
				failures = append(failures, FieldError{Field: name, Reason: "required"})
			}
			continue
		}
		if !f.Type.AssertValue(v) {
			failures = append(failures, FieldError{
				Field:  name,
				Reason: fmt.Sprintf("expected %s", f.Type),
			})
			continue
		}
		if bad, ok := f.checkEnum(v); !ok {
			failures = append(failures, FieldError{
				Field:  name,
				Reason: fmt.Sprintf("%q is not one of %s", bad, strings.Join(f.Enum, ", ")),
			})
		}
	}
	if len(failures) > 0 {
		return &ValidationError{Schema: s.Name, Fields: failures}
	}
	return nil
}

func (f Field) checkEnum(v interface{}) (string, bool) {
	if len(f.Enum) == 0 {
		return "", true
	}
	allowed := func(s string) bool {
		for _, e := range f.Enum {
			if e == s {
				return true
			}
		}
		return false
	}
	switch t := v.(type) {
	case string:
		return t, allowed(t)
	case []interface{}:
		for _, e := range t {
			if s := e.(string); !allowed(s) {
				return s, false
			}
		}
	case map[string]interface{}:
		for k := range t {
			if !allowed(k) {
				return k, false
			}
		}
	}
	return "", true
}

func (s *Schema) fieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FieldError describes why a single field failed validation.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError is returned when a value does not match its Schema.
type ValidationError struct {
	Schema string
	Fields []FieldError
	// Cause is set when the value could not be decoded at all.
	Cause error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[schema] - %s: %v", e.Schema, e.Cause)
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return fmt.Sprintf("[schema] - %s: %s", e.Schema, strings.Join(parts, "; "))
}

// Parse validates raw against s and decodes it into a T.
func Parse[T any](s *Schema, raw []byte) (T, error) {
	var (
		v    T
		data map[string]interface{}
	)
	if err := json.Unmarshal(raw, &data); err != nil {
		return v, &ValidationError{Schema: s.Name, Cause: err}
	}
	if data == nil {
		return v, &ValidationError{Schema: s.Name, Cause: errors.New("null value")}
	}
	if err := s.Validate(data); err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &ValidationError{Schema: s.Name, Cause: err}
	}
	return v, nil
}

// ParseOr is Parse with an explicit fallback: any validation failure yields def.
func ParseOr[T any](s *Schema, raw []byte, def T) T {
	v, err := Parse[T](s, raw)
	if err != nil {
		return def
	}
	return v
}

// ParseSlice validates every element of a JSON array against s. A single
// invalid element fails the whole slice.
func ParseSlice[T any](s *Schema, raw []byte) ([]T, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &ValidationError{Schema: s.Name, Cause: err}
	}
	out := make([]T, 0, len(elems))
	for i, e := range elems {
		v, err := Parse[T](s, e)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

// Check encodes v and validates it against s. It is used to verify Go values,
// such as configured defaults, that must round-trip through the schema.
func Check[T any](s *Schema, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &ValidationError{Schema: s.Name, Cause: err}
	}
	_, err = Parse[T](s, raw)
	return err
}
