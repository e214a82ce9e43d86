// Package values holds the tagged-variant value model that crosses the
// boundary between the record extractor and the statistics accumulators.
package values

import "fmt"

// Kind discriminates the variant carried by a RawField.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// RawField is the polymorphic value a record extractor emits for one
// (row, column) cell. Exactly one of the typed accessors is meaningful for
// a given Kind; Null carries no payload.
//
// "" is always a non-missing empty string (KindBytes with a zero-length
// slice); a missing or JSON-null cell is always KindNull. Every extractor
// must construct RawField through the helpers below so this policy holds
// uniformly regardless of source format.
type RawField struct {
	kind  Kind
	i     int64
	f     float64
	b     bool
	bytes []byte
}

// Null returns the missing-value variant.
func Null() RawField { return RawField{kind: KindNull} }

// Bool wraps a boolean cell.
func Bool(v bool) RawField { return RawField{kind: KindBool, b: v} }

// Int64 wraps an integral numeric cell.
func Int64(v int64) RawField { return RawField{kind: KindInt64, i: v} }

// Float64 wraps a floating-point numeric cell.
func Float64(v float64) RawField { return RawField{kind: KindFloat64, f: v} }

// Bytes wraps a raw textual/byte cell. A nil slice is normalized to an
// empty, non-nil slice so Bytes(nil) and Bytes([]byte{}) are equivalent and
// distinct from Null().
func Bytes(v []byte) RawField {
	if v == nil {
		v = []byte{}
	}
	return RawField{kind: KindBytes, bytes: v}
}

// String wraps a string cell as bytes.
func String(s string) RawField { return Bytes([]byte(s)) }

// Kind reports the variant carried by f.
func (f RawField) Kind() Kind { return f.kind }

// IsNull reports whether f is the missing/null variant.
func (f RawField) IsNull() bool { return f.kind == KindNull }

// Int64Value returns the int64 payload and whether f carries one.
func (f RawField) Int64Value() (int64, bool) { return f.i, f.kind == KindInt64 }

// Float64Value returns the float64 payload and whether f carries one,
// widening KindInt64 to float64 for numeric-path consumers.
func (f RawField) Float64Value() (float64, bool) {
	switch f.kind {
	case KindFloat64:
		return f.f, true
	case KindInt64:
		return float64(f.i), true
	default:
		return 0, false
	}
}

// BoolValue returns the bool payload and whether f carries one.
func (f RawField) BoolValue() (bool, bool) { return f.b, f.kind == KindBool }

// BytesValue returns the byte payload and whether f carries one.
func (f RawField) BytesValue() ([]byte, bool) { return f.bytes, f.kind == KindBytes }

// StringValue returns the byte payload decoded as a string, and whether f
// carries a bytes payload.
func (f RawField) StringValue() (string, bool) {
	if f.kind != KindBytes {
		return "", false
	}
	return string(f.bytes), true
}

// IsNumeric reports whether f carries an int64 or float64 payload.
func (f RawField) IsNumeric() bool { return f.kind == KindInt64 || f.kind == KindFloat64 }

// String renders f for logging/debugging.
func (f RawField) String() string {
	switch f.kind {
	case KindNull:
		return "<null>"
	case KindBool:
		return fmt.Sprintf("%t", f.b)
	case KindInt64:
		return fmt.Sprintf("%d", f.i)
	case KindFloat64:
		return fmt.Sprintf("%g", f.f)
	case KindBytes:
		return string(f.bytes)
	default:
		return "<invalid>"
	}
}
