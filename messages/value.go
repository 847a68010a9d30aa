package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a [Value] holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns the lowercase name of the kind, for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a self-describing JSON value. It is used wherever the wire format
// does not statically constrain shape — most importantly tool-use input,
// whose schema is chosen by the model at generation time.
//
// Decoding tries variants in a fixed precedence order at every node:
// integer → float → string → boolean → null → array → object. The order
// makes literal forms unambiguous: the JSON number 3 decodes as an integer
// (never a float), and the JSON string "3" decodes as a string (never a
// number). JSON null matches only the null variant, so checking it does not
// interact with the precedence of the other variants.
//
// The zero Value is the null value. Values are compared with [Value.Equal];
// map key order is not significant, array order is.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null [Value]. Identical to the zero value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean [Value].
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int returns an integer [Value].
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float returns a floating-point [Value].
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String returns a string [Value].
func String(v string) Value { return Value{kind: KindString, s: v} }

// Array returns an array [Value] holding elems. The slice is used as-is; the
// caller must not mutate it afterwards.
func Array(elems ...Value) Value { return Value{kind: KindArray, arr: elems} }

// Object returns an object [Value] holding fields. The map is used as-is; the
// caller must not mutate it afterwards.
func Object(fields map[string]Value) Value { return Value{kind: KindObject, obj: fields} }

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload. The second result is false when the
// value is not a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer payload. The second result is false when the
// value is not an integer.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the numeric payload as a float64. Integer values are
// widened so callers doing arithmetic can accept either numeric variant.
// The second result is false for non-numeric values.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsString returns the string payload. The second result is false when the
// value is not a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsArray returns the element slice. The second result is false when the
// value is not an array. The slice must be treated as read-only.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// AsObject returns the field map. The second result is false when the value
// is not an object. The map must be treated as read-only.
func (v Value) AsObject() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// Interface converts the value to untyped Go data: nil, bool, int64,
// float64, string, []any, or map[string]any. Useful for logging and for
// handing tool input to reflection-based consumers.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		elems := make([]any, len(v.arr))
		for i, elem := range v.arr {
			elems[i] = elem.Interface()
		}
		return elems
	case KindObject:
		fields := make(map[string]any, len(v.obj))
		for key, field := range v.obj {
			fields[key] = field.Interface()
		}
		return fields
	default:
		return nil
	}
}

// Equal reports whether two values are deeply equal. Arrays compare
// element-wise in order; objects compare by key set and per-key value.
// Int and Float never compare equal even when numerically identical,
// because they are distinct variants.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for key, field := range v.obj {
			otherField, ok := other.obj[key]
			if !ok || !field.Equal(otherField) {
				return false
			}
		}
		return true
	}
	return false
}

// jsonNull is the literal JSON null token.
var jsonNull = []byte("null")

// UnmarshalJSON decodes any valid JSON node into the matching variant using
// the precedence order documented on [Value]. It fails when data is not valid
// JSON, and for one representability gap: a well-formed number outside both
// int64 and float64 range (such as 1e400) matches no variant and is rejected
// rather than silently rounded.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	// null must be recognised explicitly: encoding/json treats null as a
	// successful no-op for every target type, which would otherwise make the
	// first trial below match it.
	if bytes.Equal(trimmed, jsonNull) {
		*v = Value{kind: KindNull}
		return nil
	}

	var i int64
	if err := json.Unmarshal(trimmed, &i); err == nil {
		*v = Value{kind: KindInt, i: i}
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err == nil {
		*v = Value{kind: KindFloat, f: f}
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		*v = Value{kind: KindString, s: s}
		return nil
	}

	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		*v = Value{kind: KindBool, b: b}
		return nil
	}

	var arr []Value
	if err := json.Unmarshal(trimmed, &arr); err == nil {
		*v = Value{kind: KindArray, arr: arr}
		return nil
	}

	var obj map[string]Value
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		*v = Value{kind: KindObject, obj: obj}
		return nil
	}

	return &DecodeError{Expected: "JSON value", Err: fmt.Errorf("invalid JSON: %s", truncateForError(trimmed))}
}

// MarshalJSON encodes the value back to its wire form. It is the exact
// inverse of UnmarshalJSON for every variant except the numeric-literal
// ambiguity: an integer always serialises without a decimal point, and a
// float that happens to hold a whole number serialises as that whole number
// and would re-decode as an integer.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return jsonNull, nil
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		// Emit keys in sorted order so encoding is deterministic. Key order
		// carries no meaning on the wire.
		keys := make([]string, 0, len(v.obj))
		for key := range v.obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyBytes, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			buf.Write(keyBytes)
			buf.WriteByte(':')
			fieldBytes, err := json.Marshal(v.obj[key])
			if err != nil {
				return nil, err
			}
			buf.Write(fieldBytes)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("messages: cannot marshal value of %s", v.kind)
	}
}

// truncateForError shortens raw input embedded in error messages.
func truncateForError(data []byte) string {
	const max = 120
	s := string(data)
	if len(s) <= max {
		return s
	}
	return s[:max] + "... (" + strconv.Itoa(len(s)) + " bytes)"
}

// GoString implements fmt.GoStringer so %#v output stays readable in test
// failures despite the unexported fields.
func (v Value) GoString() string {
	var sb strings.Builder
	writeValueGoString(&sb, v)
	return sb.String()
}

func writeValueGoString(sb *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		sb.WriteString("messages.Null()")
	case KindBool:
		fmt.Fprintf(sb, "messages.Bool(%t)", v.b)
	case KindInt:
		fmt.Fprintf(sb, "messages.Int(%d)", v.i)
	case KindFloat:
		fmt.Fprintf(sb, "messages.Float(%g)", v.f)
	case KindString:
		fmt.Fprintf(sb, "messages.String(%q)", v.s)
	case KindArray:
		sb.WriteString("messages.Array(")
		for i, elem := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValueGoString(sb, elem)
		}
		sb.WriteString(")")
	case KindObject:
		sb.WriteString("messages.Object(map[string]messages.Value{")
		keys := make([]string, 0, len(v.obj))
		for key := range v.obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for i, key := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%q: ", key)
			writeValueGoString(sb, v.obj[key])
		}
		sb.WriteString("})")
	}
}
