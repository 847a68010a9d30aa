package messages

import (
	"encoding/json"
	"errors"
	"testing"
)

// mustDecodeValue parses raw JSON into a Value, failing the test on error.
func mustDecodeValue(t *testing.T, raw string) Value {
	t.Helper()
	var v Value
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", raw, err)
	}
	return v
}

// TestValue_NumericPrecedence verifies the literal-precedence rules: a bare
// integer literal decodes as an integer (never a float), a quoted number
// stays a string, and a fractional literal decodes as a float.
func TestValue_NumericPrecedence(t *testing.T) {
	intValue := mustDecodeValue(t, `3`)
	if got, ok := intValue.AsInt(); !ok || got != 3 {
		t.Errorf("decoding 3: got %#v, want Int(3)", intValue)
	}
	if intValue.Kind() != KindInt {
		t.Errorf("decoding 3: kind %s, want int", intValue.Kind())
	}

	stringValue := mustDecodeValue(t, `"3"`)
	if got, ok := stringValue.AsString(); !ok || got != "3" {
		t.Errorf("decoding \"3\": got %#v, want String(\"3\")", stringValue)
	}

	floatValue := mustDecodeValue(t, `3.5`)
	if got, ok := floatValue.AsFloat(); !ok || got != 3.5 {
		t.Errorf("decoding 3.5: got %#v, want Float(3.5)", floatValue)
	}

	// Exponent forms are not representable as int64 literals and must fall
	// through to the float variant.
	exponentValue := mustDecodeValue(t, `1e3`)
	if exponentValue.Kind() != KindFloat {
		t.Errorf("decoding 1e3: kind %s, want float", exponentValue.Kind())
	}
}

// TestValue_DecodeVariants covers one representative literal per variant.
func TestValue_DecodeVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Value
	}{
		{"null", `null`, Null()},
		{"true", `true`, Bool(true)},
		{"false", `false`, Bool(false)},
		{"negative int", `-42`, Int(-42)},
		{"string", `"hello"`, String("hello")},
		{"empty string", `""`, String("")},
		{"array", `[1, "two", null]`, Array(Int(1), String("two"), Null())},
		{"empty array", `[]`, Array()},
		{"object", `{"city": "NYC", "units": 2}`, Object(map[string]Value{
			"city":  String("NYC"),
			"units": Int(2),
		})},
		{"empty object", `{}`, Object(map[string]Value{})},
		{"nested", `{"coords": [1.5, -2.5], "meta": {"ok": true}}`, Object(map[string]Value{
			"coords": Array(Float(1.5), Float(-2.5)),
			"meta":   Object(map[string]Value{"ok": Bool(true)}),
		})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mustDecodeValue(t, tc.raw)
			if !got.Equal(tc.want) {
				t.Errorf("decoding %s: got %#v, want %#v", tc.raw, got, tc.want)
			}
		})
	}
}

// TestValue_RoundTrip verifies decode(encode(v)) == v for constructible
// values, excluding the documented Int/Float literal asymmetry.
func TestValue_RoundTrip(t *testing.T) {
	values := []Value{
		Null(),
		Bool(true),
		Int(0),
		Int(-9007199254740993), // beyond float64 integer precision
		Float(2.75),
		String("with \"quotes\" and \n newline"),
		Array(Int(1), Array(String("nested")), Null()),
		Object(map[string]Value{
			"a": Int(1),
			"b": Array(Bool(false)),
			"c": Object(map[string]Value{"d": String("deep")}),
		}),
	}

	for _, original := range values {
		encoded, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("encode %#v: %v", original, err)
		}
		var decoded Value
		if err := json.Unmarshal(encoded, &decoded); err != nil {
			t.Fatalf("decode %s: %v", encoded, err)
		}
		if !decoded.Equal(original) {
			t.Errorf("round trip of %#v via %s: got %#v", original, encoded, decoded)
		}
	}
}

// TestValue_IntEncodesWithoutDecimalPoint pins the wire form: integers never
// gain a decimal point, so they re-decode as integers.
func TestValue_IntEncodesWithoutDecimalPoint(t *testing.T) {
	encoded, err := json.Marshal(Int(7))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(encoded) != "7" {
		t.Errorf("encoding Int(7): got %s, want 7", encoded)
	}
}

// TestValue_IntFloatDistinct verifies that numerically identical Int and
// Float values are still distinct variants.
func TestValue_IntFloatDistinct(t *testing.T) {
	if Int(3).Equal(Float(3)) {
		t.Error("Int(3) and Float(3) must not compare equal")
	}
}

// TestValue_InvalidJSON verifies that non-JSON input fails with DecodeError.
// The codec is invoked directly because a top-level json.Unmarshal call
// rejects malformed syntax itself, before any custom unmarshaler runs.
func TestValue_InvalidJSON(t *testing.T) {
	var v Value
	err := v.UnmarshalJSON([]byte(`{"unterminated": `))
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected *DecodeError, got %T: %v", err, err)
	}
}

// TestValue_OutOfRangeNumber pins the one representability gap in the
// decode contract: a number beyond both int64 and float64 range matches no
// variant and is rejected rather than rounded to infinity.
func TestValue_OutOfRangeNumber(t *testing.T) {
	var v Value
	err := v.UnmarshalJSON([]byte(`1e400`))
	if err == nil {
		t.Fatal("expected error for out-of-range number, got nil")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected *DecodeError, got %T: %v", err, err)
	}
}

// TestValue_Interface verifies conversion to untyped Go data.
func TestValue_Interface(t *testing.T) {
	v := Object(map[string]Value{
		"n":    Int(1),
		"list": Array(String("a"), Float(0.5)),
	})

	got, ok := v.Interface().(map[string]any)
	if !ok {
		t.Fatalf("Interface() returned %T, want map[string]any", v.Interface())
	}
	if got["n"] != int64(1) {
		t.Errorf("n: got %v (%T), want int64(1)", got["n"], got["n"])
	}
	list, ok := got["list"].([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("list: got %v, want 2-element []any", got["list"])
	}
	if list[0] != "a" || list[1] != 0.5 {
		t.Errorf("list contents: got %v", list)
	}
}

// TestValue_ObjectKeyOrderIrrelevant verifies that key order does not affect
// equality or the (deterministic) encoded form.
func TestValue_ObjectKeyOrderIrrelevant(t *testing.T) {
	first := mustDecodeValue(t, `{"a": 1, "b": 2}`)
	second := mustDecodeValue(t, `{"b": 2, "a": 1}`)
	if !first.Equal(second) {
		t.Error("object equality must ignore key order")
	}

	firstEncoded, _ := json.Marshal(first)
	secondEncoded, _ := json.Marshal(second)
	if string(firstEncoded) != string(secondEncoded) {
		t.Errorf("encoded forms differ: %s vs %s", firstEncoded, secondEncoded)
	}
}

// TestValue_ArrayOrderPreserved verifies that array order is meaningful.
func TestValue_ArrayOrderPreserved(t *testing.T) {
	if Array(Int(1), Int(2)).Equal(Array(Int(2), Int(1))) {
		t.Error("array equality must respect element order")
	}
}
