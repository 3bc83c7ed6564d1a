package loader

import (
	"fmt"

	"github.com/roach88/telegen/internal/analysis"
	"github.com/roach88/telegen/internal/ir"
)

// RecordSpec is a record declared in a schema file. CUE and YAML decode into
// the same shape.
type RecordSpec struct {
	Name        string
	Doc         string
	Measurement *ir.Token // nil when the record has no measurement key
	TypeParams  []ir.GenericParameter
	Fields      []FieldSpec
	Variants    []string // non-empty for a sum type
	Pos         ir.Position
}

// FieldSpec is one field of a RecordSpec.
type FieldSpec struct {
	Name string
	Type string
	Role *string // nil when the field has no role key
	Pos  ir.Position
}

// Record converts r into a RecordDefinition. Only structural problems
// (an unparsable type, a malformed annotation) fail here; everything else is
// left to analysis.
func (r RecordSpec) Record() (ir.RecordDefinition, error) {
	b := ir.NewRecord(r.Name).At(r.Pos).Doc(r.Doc)
	if len(r.Variants) > 0 {
		b.Shape(ir.ShapeSum)
	}
	if r.Measurement != nil {
		b.Annotate(ir.Annotation{
			Namespace: ir.NamespaceMeasurement,
			Tokens:    []ir.Token{*r.Measurement},
			Pos:       r.Pos,
		})
	}
	for _, p := range r.TypeParams {
		b.TypeParam(p.Name, p.Constraint)
	}

	rec := b.Build()
	for _, f := range r.Fields {
		typ, err := ir.ParseType(f.Type)
		if err != nil {
			return ir.RecordDefinition{}, &LoadError{
				Code:    ErrCodeSchema,
				Message: fmt.Sprintf("record %s field %s: %v", r.Name, f.Name, err),
				Pos:     f.Pos,
			}
		}
		def := ir.FieldDefinition{Name: f.Name, Type: typ, Pos: f.Pos}
		if f.Role != nil {
			a, err := RoleAnnotation(r.Name, f.Name, *f.Role, f.Pos)
			if err != nil {
				return ir.RecordDefinition{}, err
			}
			def.Annotations = append(def.Annotations, a)
		}
		rec.Fields = append(rec.Fields, def)
	}
	return rec, nil
}

// RoleAnnotation tokenizes the text of a telegraf role annotation. Text that
// is not valid Go tokens is a malformed role.
func RoleAnnotation(record, field, text string, pos ir.Position) (ir.Annotation, error) {
	tokens, err := ir.Tokenize(text)
	if err != nil {
		return ir.Annotation{}, &analysis.DiagnosticError{
			Code:    analysis.ErrMalformedRole,
			Record:  record,
			Field:   field,
			Message: err.Error(),
			Pos:     pos,
		}
	}
	return ir.Annotation{Namespace: ir.NamespaceTelegraf, Tokens: tokens, Pos: pos}, nil
}

// MeasurementAnnotation tokenizes the argument text of a measurement
// annotation.
func MeasurementAnnotation(record, text string, pos ir.Position) (ir.Annotation, error) {
	tokens, err := ir.Tokenize(text)
	if err != nil {
		return ir.Annotation{}, &analysis.DiagnosticError{
			Code:    analysis.ErrMalformedMeasurement,
			Record:  record,
			Message: err.Error(),
			Pos:     pos,
		}
	}
	return ir.Annotation{Namespace: ir.NamespaceMeasurement, Tokens: tokens, Pos: pos}, nil
}
