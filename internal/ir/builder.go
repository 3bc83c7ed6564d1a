package ir

import "strconv"

// Namespaces recognized on records and fields.
const (
	NamespaceTelegraf    = "telegraf"
	NamespaceMeasurement = "measurement"
)

// Builder constructs a RecordDefinition without going through a source file.
// Schema loaders and tests use it; field order is the order of calls.
//
//	rec := ir.NewRecord("CPU").
//		Measurement("cpu").
//		Tag("Host", ir.Named("string")).
//		Field("Usage", ir.Named("float64")).
//		Build()
type Builder struct {
	rec RecordDefinition
}

// NewRecord starts a struct-shaped record.
func NewRecord(name string) *Builder {
	return &Builder{rec: RecordDefinition{Name: name, Shape: ShapeStruct}}
}

// Shape overrides the record shape.
func (b *Builder) Shape(s Shape) *Builder {
	b.rec.Shape = s
	return b
}

// At sets the record position.
func (b *Builder) At(pos Position) *Builder {
	b.rec.Pos = pos
	return b
}

// Doc sets the record documentation.
func (b *Builder) Doc(doc string) *Builder {
	b.rec.Doc = doc
	return b
}

// Measurement adds a measurement annotation with a string literal argument.
func (b *Builder) Measurement(name string) *Builder {
	return b.Annotate(Annotation{
		Namespace: NamespaceMeasurement,
		Tokens:    []Token{{Kind: TokenString, Text: strconv.Quote(name)}},
	})
}

// Annotate appends a raw record-level annotation.
func (b *Builder) Annotate(a Annotation) *Builder {
	b.rec.Annotations = append(b.rec.Annotations, a)
	return b
}

// TypeParam appends a type parameter.
func (b *Builder) TypeParam(name, constraint string) *Builder {
	b.rec.TypeParams = append(b.rec.TypeParams, GenericParameter{Name: name, Constraint: constraint})
	return b
}

// Field appends a field with the default role.
func (b *Builder) Field(name string, typ TypeExpr, annotations ...Annotation) *Builder {
	b.rec.Fields = append(b.rec.Fields, FieldDefinition{Name: name, Type: typ, Annotations: annotations})
	return b
}

// Tag appends a field annotated telegraf(tag).
func (b *Builder) Tag(name string, typ TypeExpr) *Builder {
	return b.Field(name, typ, RoleAnnotation(RoleTag))
}

// Timestamp appends a field annotated telegraf(timestamp).
func (b *Builder) Timestamp(name string, typ TypeExpr) *Builder {
	return b.Field(name, typ, RoleAnnotation(RoleTimestamp))
}

// Build returns the record. The builder may be reused.
func (b *Builder) Build() RecordDefinition {
	rec := b.rec
	rec.Fields = append([]FieldDefinition(nil), b.rec.Fields...)
	rec.TypeParams = append([]GenericParameter(nil), b.rec.TypeParams...)
	rec.Annotations = append([]Annotation(nil), b.rec.Annotations...)
	return rec
}

// RoleAnnotation returns the telegraf annotation for a role. RoleField yields
// telegraf(field), which classifies as the default.
func RoleAnnotation(role FieldRole) Annotation {
	return Annotation{
		Namespace: NamespaceTelegraf,
		Tokens:    []Token{{Kind: TokenIdent, Text: role.String()}},
	}
}
