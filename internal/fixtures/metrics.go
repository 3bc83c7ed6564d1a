// Package fixtures holds annotated metric types together with the conversions
// telegen generates for them. fixtures_telegen.go is checked in and kept in sync
// by the loader and codegen tests.
package fixtures

import (
	"time"

	"github.com/roach88/telegen/point"
)

//go:generate go run github.com/roach88/telegen/cmd/telegen generate .

// Option is the optional wrapper recognized by name.
type Option[T any] = point.Option[T]

// CPU is a host CPU sample.
//
//telegraf:metric
//telegraf:measurement "cpu"
type CPU struct {
	Host     string         `telegraf:"tag"`
	Region   Option[string] `telegraf:"tag"`
	Usage    float64
	Idle     Option[float64]
	At       time.Time `telegraf:"timestamp"`
	Fallback int64     `telegraf:"timestamp"`
}

// Disk has no annotations and is named after its type.
//
//telegraf:metric
type Disk struct {
	Free uint64
	Used uint64
	Path string
}

// Number is the field kinds Labeled accepts.
type Number interface {
	~int64 | ~float64
}

// Celsius is a temperature reading. It is a metric on its own, so it can
// also stand in for Labeled's type parameter.
type Celsius float64

func (c Celsius) ToPoint() point.Point {
	return point.New("celsius", nil, []point.Field{{Key: "value", Value: point.FieldOf(c)}}, nil)
}

// Labeled attaches a host tag to a single reading.
//
//telegraf:metric
//telegraf:measurement "labeled"
type Labeled[T Number] struct {
	Host  string `telegraf:"tag"`
	Inner T
	At    Option[int64] `telegraf:"timestamp"`
}

// Untracked is not marked and gets no conversion.
type Untracked struct {
	Name string
}
