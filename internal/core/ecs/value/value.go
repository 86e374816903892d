// Package value implements the structured-value tree described in
// SPEC_FULL.md §2 item 3: a JSON-shaped recursive variant used as the
// engine's serialization-neutral interchange format between the entity
// loader, the network/save-load translation layer, and component data.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind discriminates a Value's payload, matching the single-byte
// discriminator used by the binary codec (the tag constants in package
// codec have the same numbering).
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindReal
	KindString
	KindArray
	KindObject
)

// Value is the structured-value tree node. Exactly one of the typed
// fields is meaningful, selected by Kind; Array and Object are only
// populated for their respective kinds.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Real   float64
	Str    string
	Array  []Value
	Object map[string]Value
}

func Null() Value               { return Value{Kind: KindNull} }
func Bool(b bool) Value         { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value         { return Value{Kind: KindInt, Int: i} }
func Real(f float64) Value      { return Value{Kind: KindReal, Real: f} }
func String(s string) Value     { return Value{Kind: KindString, Str: s} }
func Array(items ...Value) Value {
	return Value{Kind: KindArray, Array: items}
}
func Object(m map[string]Value) Value {
	return Value{Kind: KindObject, Object: m}
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Get looks up a key in an object-kind value, returning (zero, false)
// for any other kind or a missing key.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}
	got, ok := v.Object[key]
	return got, ok
}

// Keys returns an object-kind value's keys in sorted order, for
// deterministic iteration (diagnostics, golden-file tests).
func (v Value) Keys() []string {
	if v.Kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.Object))
	for k := range v.Object {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON implements the text codec half of the structured-value
// tree, delegating to encoding/json the way the rest of this codebase's
// config-shaped types already do (json struct tags throughout the core
// package) rather than hand-rolling a recursive-descent parser.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.Bool)
	case KindInt:
		return json.Marshal(v.Int)
	case KindReal:
		return json.Marshal(v.Real)
	case KindString:
		return json.Marshal(v.Str)
	case KindArray:
		return json.Marshal(v.Array)
	case KindObject:
		return json.Marshal(v.Object)
	default:
		return nil, fmt.Errorf("value: unknown kind %d", v.Kind)
	}
}

// UnmarshalJSON reconstructs a Value tree from arbitrary JSON text,
// inferring Kind from the decoded Go type the same way encoding/json's
// own `any` decode does, except that numbers are decoded as json.Number
// and become Int when the literal parses as an int64, Real otherwise.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

func fromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		f, _ := t.Float64()
		return Real(f)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = fromAny(e)
		}
		return Array(items...)
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			obj[k] = fromAny(e)
		}
		return Object(obj)
	default:
		return Null()
	}
}

// ToAny converts v to the plain any tree mapstructure/json expect on
// the decode side (map[string]any, []any, and Go scalar types).
func (v Value) ToAny() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindReal:
		return v.Real
	case KindString:
		return v.Str
	case KindArray:
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = e.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.Object))
		for k, e := range v.Object {
			out[k] = e.ToAny()
		}
		return out
	default:
		return nil
	}
}

// FromAny builds a Value tree out of a decoded any (the inverse of
// ToAny), used when component initializers hand back plain Go maps.
func FromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Real(t)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromAny(e)
		}
		return Array(items...)
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			obj[k] = FromAny(e)
		}
		return Object(obj)
	default:
		return Null()
	}
}
