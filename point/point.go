// Package point is the runtime representation produced by telegen-generated code.
//
// A Point is a measurement name, an ordered list of string tags, an ordered list
// of typed fields and an optional timestamp. Order is the declaration order of the
// source struct; nothing here sorts.
//
// Generated code only calls New, TagValue, FieldOf and TimestampOf. Encoding a
// point for a particular backend is left to the caller.
package point

import (
	"fmt"
	"strings"
)

// Metric is implemented by every type telegen generates a conversion for.
type Metric interface {
	ToPoint() Point
}

// Tag is a single tag key/value pair. Tag values are always strings.
type Tag struct {
	Key   string
	Value string
}

// Field is a single field key/value pair.
type Field struct {
	Key   string
	Value FieldData
}

// Point is a normalized metric point.
type Point struct {
	Measurement string
	Tags        []Tag
	Fields      []Field
	Timestamp   *uint64 // nil when no timestamp field was present
}

// New builds a Point from the accumulators used by generated code.
func New(measurement string, tags []Tag, fields []Field, ts *uint64) Point {
	return Point{
		Measurement: measurement,
		Tags:        tags,
		Fields:      fields,
		Timestamp:   ts,
	}
}

// Tag returns the value of the first tag with the given key.
func (p Point) Tag(key string) (string, bool) {
	for _, t := range p.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// Field returns the value of the first field with the given key.
func (p Point) Field(key string) (FieldData, bool) {
	for _, f := range p.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return FieldData{}, false
}

// String renders the point for debugging. It is not a wire format.
func (p Point) String() string {
	var b strings.Builder
	b.WriteString(p.Measurement)
	for _, t := range p.Tags {
		fmt.Fprintf(&b, ",%s=%s", t.Key, t.Value)
	}
	for i, f := range p.Fields {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%s", f.Key, f.Value)
	}
	if p.Timestamp != nil {
		fmt.Fprintf(&b, " %d", *p.Timestamp)
	}
	return b.String()
}
