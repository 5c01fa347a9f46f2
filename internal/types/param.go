package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParamKind identifies which field of a ParamValue is populated.
type ParamKind int

const (
	ParamNull ParamKind = iota
	ParamBool
	ParamInt
	ParamFloat
	ParamString
	ParamList
)

// ParamValue is a single node parameter: a boolean, integer, floating-point
// number, string or ordered list of strings. The zero value is null.
type ParamValue struct {
	kind ParamKind
	b    bool
	i    int64
	f    float64
	s    string
	list []string
}

// Bool returns a boolean parameter value.
func Bool(v bool) ParamValue {
	return ParamValue{kind: ParamBool, b: v}
}

// Int returns an integer parameter value.
func Int(v int64) ParamValue {
	return ParamValue{kind: ParamInt, i: v}
}

// Float returns a floating-point parameter value.
func Float(v float64) ParamValue {
	return ParamValue{kind: ParamFloat, f: v}
}

// String returns a string parameter value.
func String(v string) ParamValue {
	return ParamValue{kind: ParamString, s: v}
}

// List returns a string-list parameter value.
func List(values ...string) ParamValue {
	return ParamValue{kind: ParamList, list: slices.Clone(values)}
}

// Null returns the null parameter value.
func Null() ParamValue {
	return ParamValue{}
}

// Kind returns the kind of the value.
func (v ParamValue) Kind() ParamKind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v ParamValue) IsNull() bool {
	return v.kind == ParamNull
}

// AsBool converts the value to a boolean. Strings "true"/"false" and
// non-zero numbers are accepted.
func (v ParamValue) AsBool() (bool, bool) {
	switch v.kind {
	case ParamBool:
		return v.b, true
	case ParamInt:
		return v.i != 0, true
	case ParamFloat:
		return v.f != 0, true
	case ParamString:
		b, err := strconv.ParseBool(strings.TrimSpace(v.s))
		if err != nil {
			return false, false
		}

		return b, true
	default:
		return false, false
	}
}

// AsInt converts the value to an integer. Floats are truncated toward zero.
func (v ParamValue) AsInt() (int64, bool) {
	switch v.kind {
	case ParamInt:
		return v.i, true
	case ParamFloat:
		if !finite(v.f) {
			return 0, false
		}

		return int64(v.f), true
	case ParamString:
		s := strings.TrimSpace(v.s)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}

		if f, err := strconv.ParseFloat(s, 64); err == nil && finite(f) {
			return int64(f), true
		}

		return 0, false
	default:
		return 0, false
	}
}

// AsFloat converts the value to a float. NaN and infinities are not
// convertible.
func (v ParamValue) AsFloat() (float64, bool) {
	switch v.kind {
	case ParamInt:
		return float64(v.i), true
	case ParamFloat:
		return v.f, finite(v.f)
	case ParamString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil || !finite(f) {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

// AsString returns the value as a string. Numbers and booleans are formatted;
// lists and null are not convertible.
func (v ParamValue) AsString() (string, bool) {
	switch v.kind {
	case ParamString:
		return v.s, true
	case ParamInt:
		return strconv.FormatInt(v.i, 10), true
	case ParamFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64), true
	case ParamBool:
		return strconv.FormatBool(v.b), true
	default:
		return "", false
	}
}

// AsList returns the value as a list of strings. A single string becomes a
// one-element list.
func (v ParamValue) AsList() ([]string, bool) {
	switch v.kind {
	case ParamList:
		return slices.Clone(v.list), true
	case ParamString:
		return []string{v.s}, true
	default:
		return nil, false
	}
}

// Interface returns the value as a plain Go value.
func (v ParamValue) Interface() any {
	switch v.kind {
	case ParamBool:
		return v.b
	case ParamInt:
		return v.i
	case ParamFloat:
		return v.f
	case ParamString:
		return v.s
	case ParamList:
		return append([]string{}, v.list...)
	default:
		return nil
	}
}

// Equal reports whether two values have the same kind and content.
func (v ParamValue) Equal(other ParamValue) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case ParamBool:
		return v.b == other.b
	case ParamInt:
		return v.i == other.i
	case ParamFloat:
		return v.f == other.f
	case ParamString:
		return v.s == other.s
	case ParamList:
		return slices.Equal(v.list, other.list)
	default:
		return true
	}
}

func (v ParamValue) String() string {
	if v.kind == ParamList {
		return "[" + strings.Join(v.list, ", ") + "]"
	}

	if s, ok := v.AsString(); ok {
		return s
	}

	return "null"
}

// ParamFromAny converts a decoded JSON/YAML value into a ParamValue.
func ParamFromAny(raw any) (ParamValue, error) {
	switch value := raw.(type) {
	case nil:
		return Null(), nil
	case ParamValue:
		return value, nil
	case bool:
		return Bool(value), nil
	case int:
		return Int(int64(value)), nil
	case int32:
		return Int(int64(value)), nil
	case int64:
		return Int(value), nil
	case uint64:
		return Int(int64(value)), nil
	case float32:
		return Float(float64(value)), nil
	case float64:
		return Float(value), nil
	case json.Number:
		text := value.String()
		if !strings.ContainsAny(text, ".eE") {
			if i, err := value.Int64(); err == nil {
				return Int(i), nil
			}
		}

		f, err := value.Float64()
		if err != nil {
			return Null(), fmt.Errorf("invalid number %q: %w", text, err)
		}

		return Float(f), nil
	case string:
		return String(value), nil
	case []string:
		return List(value...), nil
	case []any:
		list := make([]string, 0, len(value))

		for _, item := range value {
			p, err := ParamFromAny(item)
			if err != nil {
				return Null(), err
			}

			s, ok := p.AsString()
			if !ok {
				return Null(), fmt.Errorf("list items must be scalar, got %T", item)
			}

			list = append(list, s)
		}

		return List(list...), nil
	default:
		return Null(), fmt.Errorf("unsupported parameter value of type %T", raw)
	}
}

// MarshalJSON implements json.Marshaler. Integral floats keep a trailing
// ".0" so they decode back as floats.
func (v ParamValue) MarshalJSON() ([]byte, error) {
	if v.kind == ParamFloat {
		if !finite(v.f) {
			return []byte("null"), nil
		}

		return []byte(floatLiteral(v.f)), nil
	}

	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler. Integer literals stay integers.
func (v *ParamValue) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return err
	}

	parsed, err := ParamFromAny(raw)
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v ParamValue) MarshalYAML() (any, error) {
	if v.kind == ParamFloat && finite(v.f) {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: floatLiteral(v.f)}, nil
	}

	return v.Interface(), nil
}

func floatLiteral(f float64) string {
	text := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(text, ".eE") {
		text += ".0"
	}

	return text
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *ParamValue) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	parsed, err := ParamFromAny(raw)
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

// Parameters is a read-only snapshot of a node's parameter map. Lookups take
// a fallback used when the key is absent, null or not convertible.
type Parameters struct {
	values map[string]ParamValue
}

// NewParameters copies values into a new snapshot.
func NewParameters(values map[string]ParamValue) Parameters {
	return Parameters{values: maps.Clone(values)}
}

// Len returns the number of parameters.
func (p Parameters) Len() int {
	return len(p.values)
}

// Keys returns the parameter names in sorted order.
func (p Parameters) Keys() []string {
	return slices.Sorted(maps.Keys(p.values))
}

// Get returns the raw value for key.
func (p Parameters) Get(key string) (ParamValue, bool) {
	v, ok := p.values[key]

	return v, ok
}

// Has reports whether key is present and not null.
func (p Parameters) Has(key string) bool {
	v, ok := p.values[key]

	return ok && !v.IsNull()
}

func (p Parameters) String(key, fallback string) string {
	if v, ok := p.values[key]; ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}

	return fallback
}

func (p Parameters) Int(key string, fallback int64) int64 {
	if v, ok := p.values[key]; ok {
		if i, ok := v.AsInt(); ok {
			return i
		}
	}

	return fallback
}

func (p Parameters) Float(key string, fallback float64) float64 {
	if v, ok := p.values[key]; ok {
		if f, ok := v.AsFloat(); ok {
			return f
		}
	}

	return fallback
}

func (p Parameters) Bool(key string, fallback bool) bool {
	if v, ok := p.values[key]; ok {
		if b, ok := v.AsBool(); ok {
			return b
		}
	}

	return fallback
}

func (p Parameters) List(key string) []string {
	if v, ok := p.values[key]; ok {
		if list, ok := v.AsList(); ok {
			return list
		}
	}

	return nil
}

// Map returns a copy of the underlying values.
func (p Parameters) Map() map[string]ParamValue {
	return maps.Clone(p.values)
}

// With returns a new snapshot with key set to value.
func (p Parameters) With(key string, value ParamValue) Parameters {
	values := maps.Clone(p.values)
	if values == nil {
		values = make(map[string]ParamValue, 1)
	}

	values[key] = value

	return Parameters{values: values}
}

// MarshalJSON implements json.Marshaler.
func (p Parameters) MarshalJSON() ([]byte, error) {
	if p.values == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(p.values)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
