package tweak

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindNumber
	KindText
)

// ErrInvalidValue is returned when a raw value cannot be mapped to a Kind.
var ErrInvalidValue = errors.New("invalid tweak value")

// String returns the lowercase kind name used in manifests and output.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "invalid"
	}
}

// ParseKind maps a kind name ("bool", "number", "text") back to a Kind.
// A few common aliases are accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bool", "boolean":
		return KindBool, nil
	case "number", "float", "int":
		return KindNumber, nil
	case "text", "string":
		return KindText, nil
	}
	return KindInvalid, fmt.Errorf("unknown kind %q", s)
}

// Value is a tagged variant holding a boolean, a number or a text value.
// The zero Value is invalid.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Text returns a text Value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds any variant.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// BoolValue returns the boolean and whether v is a Bool.
func (v Value) BoolValue() (bool, bool) { return v.b, v.kind == KindBool }

// NumberValue returns the number and whether v is a Number.
func (v Value) NumberValue() (float64, bool) { return v.n, v.kind == KindNumber }

// TextValue returns the text and whether v is a Text.
func (v Value) TextValue() (string, bool) { return v.s, v.kind == KindText }

// Interface returns the held value as bool, float64 or string (nil if invalid).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindText:
		return v.s
	}
	return nil
}

// Equal reports whether both values hold the same variant and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindText:
		return v.s == o.s
	}
	return true
}

// String formats the value for display. Numbers use the shortest
// representation that round-trips.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindText:
		return v.s
	}
	return ""
}

// FromAny converts a decoded YAML/JSON scalar into a Value.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case Value:
		if !x.IsValid() {
			return Value{}, ErrInvalidValue
		}
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return Text(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return Number(f), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		f, err := cast.ToFloat64E(x)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("%w: non-finite number", ErrInvalidValue)
		}
		return Number(f), nil
	case nil:
		return Value{}, fmt.Errorf("%w: null", ErrInvalidValue)
	}
	return Value{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, raw)
}

// Parse converts user input into a Value of the requested kind.
func Parse(s string, kind Kind) (Value, error) {
	switch kind {
	case KindBool:
		b, err := cast.ToBoolE(strings.TrimSpace(s))
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
		}
		return Bool(b), nil
	case KindNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
		}
		return Number(f), nil
	case KindText:
		return Text(s), nil
	}
	return Value{}, fmt.Errorf("%w: unknown kind", ErrInvalidValue)
}

// Infer guesses the kind of untyped input: "true"/"false" become Bool,
// anything that parses as a finite float becomes Number, the rest is Text.
func Infer(s string) Value {
	t := strings.TrimSpace(s)
	switch strings.ToLower(t) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Number(f)
	}
	return Text(s)
}

// MarshalJSON encodes the held value as a plain JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.IsValid() {
		return []byte("null"), nil
	}
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a plain JSON scalar.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML encodes the held value as a plain YAML scalar.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}
