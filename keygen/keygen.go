// Package keygen derives canonical cache keys from structured raw keys.
//
// A raw key is either a plain string (used verbatim) or a string-keyed mapping
// of typed values. Mappings canonicalize order-insensitively (keys sorted
// lexicographically); list values are order-sensitive. Every value carries a
// type tag in its encoding so representation-equal but type-distinct values
// ("123" vs 123) never collide.
package keygen

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidKey is returned when a raw key is neither a string nor a
// string-keyed mapping.
var ErrInvalidKey = errors.New("keygen: key must be a string or a string-keyed map")

type kind uint8

const (
	kindNull kind = iota
	kindString
	kindInt
	kindFloat
	kindBool
	kindList
	kindMap
	kindOpaque
)

// Value is a closed tagged variant covering every shape a mapping value may
// take. Canonicalization over Value is total; there is no runtime type
// inspection past construction.
type Value struct {
	kind kind
	str  string // kindString, kindOpaque
	i    int64
	f    float64
	b    bool
	list []Value
	m    map[string]Value
}

func Null() Value                  { return Value{kind: kindNull} }
func String(s string) Value        { return Value{kind: kindString, str: s} }
func Int(i int64) Value            { return Value{kind: kindInt, i: i} }
func Float(f float64) Value        { return Value{kind: kindFloat, f: f} }
func Bool(b bool) Value            { return Value{kind: kindBool, b: b} }
func List(vs ...Value) Value       { return Value{kind: kindList, list: vs} }
func Map(m map[string]Value) Value { return Value{kind: kindMap, m: m} }

// Opaque wraps an arbitrary value by its string form. Opaque values encode as
// "o:<form>" and should only appear when no structured representation exists.
func Opaque(v any) Value { return Value{kind: kindOpaque, str: fmt.Sprint(v)} }

// Canonicalize turns a raw key into its canonical string.
//
// Accepted inputs: string (returned unchanged), map[string]Value,
// map[string]any (converted through the closed variant), or a map-kinded
// Value. Anything else fails with ErrInvalidKey.
func Canonicalize(raw any) (string, error) {
	switch k := raw.(type) {
	case string:
		return k, nil
	case map[string]Value:
		return encodeTopLevel(k), nil
	case map[string]any:
		return encodeTopLevel(fromAnyMap(k)), nil
	case Value:
		if k.kind != kindMap {
			return "", ErrInvalidKey
		}
		return encodeTopLevel(k.m), nil
	default:
		return "", ErrInvalidKey
	}
}

// WithPrefix canonicalizes a mapping under a namespace prefix. A nil or empty
// mapping yields the prefix unchanged; otherwise "prefix:<canonical>".
func WithPrefix(prefix string, raw any) (string, error) {
	if raw == nil {
		return prefix, nil
	}
	canon, err := Canonicalize(raw)
	if err != nil {
		return "", err
	}
	if canon == "" {
		return prefix, nil
	}
	return prefix + ":" + canon, nil
}

// encodeTopLevel renders "k1:v1|k2:v2|..." with keys sorted ascending.
// An empty mapping renders as the empty string.
func encodeTopLevel(m map[string]Value) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(k)
		sb.WriteByte(':')
		encodeValue(&sb, m[k])
	}
	return sb.String()
}

func encodeValue(sb *strings.Builder, v Value) {
	switch v.kind {
	case kindNull:
		sb.WriteString("null:")
	case kindString:
		sb.WriteString("s:")
		sb.WriteString(v.str)
	case kindInt:
		sb.WriteString("i:")
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case kindFloat:
		// shortest round-trip form; numerically equal floats share one encoding
		sb.WriteString("d:")
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case kindBool:
		sb.WriteString("b:")
		sb.WriteString(strconv.FormatBool(v.b))
	case kindList:
		sb.WriteString("l:[")
		for i, e := range v.list {
			if i > 0 {
				sb.WriteByte(',')
			}
			encodeValue(sb, e)
		}
		sb.WriteByte(']')
	case kindMap:
		sb.WriteString("m:{")
		sb.WriteString(encodeTopLevel(v.m))
		sb.WriteByte('}')
	default:
		sb.WriteString("o:")
		sb.WriteString(v.str)
	}
}

func fromAnyMap(m map[string]any) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = fromAny(v)
	}
	return out
}

// fromAny converts a dynamic value into the closed variant. Unknown types fall
// back to their opaque string form rather than failing; only the top-level key
// shape is validated.
func fromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Int(int64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		if t > math.MaxInt64 {
			return Opaque(strconv.FormatUint(t, 10))
		}
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case []Value:
		return List(t...)
	case []any:
		vs := make([]Value, len(t))
		for i, e := range t {
			vs[i] = fromAny(e)
		}
		return List(vs...)
	case map[string]Value:
		return Map(t)
	case map[string]any:
		return Map(fromAnyMap(t))
	default:
		return Opaque(t)
	}
}
