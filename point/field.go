package point

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Kind identifies which member of FieldData is set.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindUint
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// FieldData is a field value restricted to the kinds a metric backend can store.
// The zero value has KindInvalid.
type FieldData struct {
	kind Kind
	s    string
	i    int64
	u    uint64
	f    float64
	b    bool
}

// Scalar is the set of Go types that can become field data.
type Scalar interface {
	~string | ~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// StringData creates a string field value.
func StringData(s string) FieldData { return FieldData{kind: KindString, s: s} }

// IntData creates a signed integer field value.
func IntData(n int64) FieldData { return FieldData{kind: KindInt, i: n} }

// UintData creates an unsigned integer field value.
func UintData(n uint64) FieldData { return FieldData{kind: KindUint, u: n} }

// FloatData creates a floating point field value.
func FloatData(f float64) FieldData { return FieldData{kind: KindFloat, f: f} }

// BoolData creates a boolean field value.
func BoolData(b bool) FieldData { return FieldData{kind: KindBool, b: b} }

// FieldOf converts v to FieldData by its underlying kind, so named types such as
// `type Celsius float64` keep their numeric kind.
func FieldOf[T Scalar](v T) FieldData {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return StringData(rv.String())
	case reflect.Bool:
		return BoolData(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntData(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return UintData(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return FloatData(rv.Float())
	}
	// unreachable for types satisfying Scalar
	panic(fmt.Sprintf("point: unsupported field kind %s", rv.Kind()))
}

// Kind reports which value is held.
func (d FieldData) Kind() Kind { return d.kind }

// Str returns the string value and whether d holds a string.
func (d FieldData) Str() (string, bool) { return d.s, d.kind == KindString }

// Int returns the signed integer value and whether d holds one.
func (d FieldData) Int() (int64, bool) { return d.i, d.kind == KindInt }

// Uint returns the unsigned integer value and whether d holds one.
func (d FieldData) Uint() (uint64, bool) { return d.u, d.kind == KindUint }

// Float returns the float value and whether d holds one.
func (d FieldData) Float() (float64, bool) { return d.f, d.kind == KindFloat }

// Bool returns the boolean value and whether d holds one.
func (d FieldData) Bool() (bool, bool) { return d.b, d.kind == KindBool }

// Any returns the held value as an interface, nil for KindInvalid.
func (d FieldData) Any() any {
	switch d.kind {
	case KindString:
		return d.s
	case KindInt:
		return d.i
	case KindUint:
		return d.u
	case KindFloat:
		return d.f
	case KindBool:
		return d.b
	default:
		return nil
	}
}

func (d FieldData) String() string {
	switch d.kind {
	case KindString:
		return strconv.Quote(d.s)
	case KindInt:
		return strconv.FormatInt(d.i, 10) + "i"
	case KindUint:
		return strconv.FormatUint(d.u, 10) + "u"
	case KindFloat:
		return strconv.FormatFloat(d.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(d.b)
	default:
		return "<invalid>"
	}
}

// TagValue formats v with %v. fmt.Stringer implementations are honored.
func TagValue(v any) string {
	return fmt.Sprint(v)
}

// TimestampSource is the set of types a timestamp field may have.
// Integers are taken as-is; time.Time is converted to Unix nanoseconds.
type TimestampSource interface {
	time.Time |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// TimestampOf converts v into the point's timestamp representation.
// Negative values and times before the epoch clamp to zero.
func TimestampOf[T TimestampSource](v T) *uint64 {
	var ts uint64
	if t, ok := any(v).(time.Time); ok {
		if n := t.UnixNano(); n > 0 {
			ts = uint64(n)
		}
		return &ts
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n := rv.Int(); n > 0 {
			ts = uint64(n)
		}
	default:
		ts = rv.Uint()
	}
	return &ts
}
