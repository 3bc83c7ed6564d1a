// Package analysis derives per-record generation decisions from a schema
// description: field roles, optionality, the measurement name and the
// propagated type parameter bounds. Every function here is pure.
package analysis

import (
	"errors"
	"fmt"

	"github.com/roach88/telegen/internal/ir"
)

// DefaultCapability is the constraint added to every type parameter.
const DefaultCapability = "point.Metric"

// Analyzer holds the policy knobs of the analysis.
type Analyzer struct {
	// OptionalNames lists wrapper type names treated as optional.
	OptionalNames []string
	// Capability is the constraint name injected on type parameters.
	Capability string
}

// New returns an Analyzer with the default policy.
func New() *Analyzer {
	return &Analyzer{
		OptionalNames: DefaultOptionalNames,
		Capability:    DefaultCapability,
	}
}

// Result is the analysis of one record.
type Result struct {
	Measurement string
	Plans       []ir.FieldPlan // declaration order
	TypeParams  []ir.GenericParameter
}

// Analyze validates a record and computes its field plans. The first
// diagnostic aborts; there is no partial result.
func (a *Analyzer) Analyze(rec ir.RecordDefinition) (*Result, error) {
	if err := Validate(rec); err != nil {
		return nil, err
	}

	measurement, err := ResolveMeasurement(rec)
	if err != nil {
		return nil, err
	}

	plans := make([]ir.FieldPlan, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		role, err := Classify(f)
		if err != nil {
			var diag *DiagnosticError
			if errors.As(err, &diag) {
				diag.Record = rec.Name
			}
			return nil, err
		}
		plans = append(plans, ir.FieldPlan{
			Field:    f,
			Role:     role,
			Optional: IsOptional(f.Type, a.optionalNames()),
		})
	}

	capability := a.Capability
	if capability == "" {
		capability = DefaultCapability
	}

	return &Result{
		Measurement: measurement,
		Plans:       plans,
		TypeParams:  PropagateBounds(rec.TypeParams, capability),
	}, nil
}

func (a *Analyzer) optionalNames() []string {
	if len(a.OptionalNames) == 0 {
		return DefaultOptionalNames
	}
	return a.OptionalNames
}

// Validate rejects records that are not structs with uniquely named fields.
func Validate(rec ir.RecordDefinition) error {
	if rec.Name == "" {
		return &DiagnosticError{Code: ErrInvalidRecord, Message: "record has no name", Pos: rec.Pos}
	}

	switch rec.Shape {
	case ir.ShapeStruct:
	case ir.ShapeSum:
		return shapeError(rec, "cannot generate a conversion for a sum type")
	case ir.ShapeTuple:
		return shapeError(rec, "only named fields are supported")
	default:
		return shapeError(rec, fmt.Sprintf("cannot generate a conversion for shape %q", rec.Shape))
	}

	seen := make(map[string]bool, len(rec.Fields))
	for i, f := range rec.Fields {
		if f.Name == "" {
			return &DiagnosticError{
				Code:    ErrMalformedShape,
				Record:  rec.Name,
				Message: fmt.Sprintf("field %d (%s) is unnamed: only named fields are supported", i, f.Type),
				Pos:     f.Pos,
			}
		}
		if f.Name == "_" {
			return &DiagnosticError{
				Code:    ErrInvalidRecord,
				Record:  rec.Name,
				Field:   f.Name,
				Message: "blank field name: the value cannot be read",
				Pos:     f.Pos,
			}
		}
		if seen[f.Name] {
			return &DiagnosticError{
				Code:    ErrInvalidRecord,
				Record:  rec.Name,
				Field:   f.Name,
				Message: "duplicate field name",
				Pos:     f.Pos,
			}
		}
		seen[f.Name] = true
	}
	return nil
}

func shapeError(rec ir.RecordDefinition, msg string) *DiagnosticError {
	return &DiagnosticError{Code: ErrMalformedShape, Record: rec.Name, Message: msg, Pos: rec.Pos}
}
