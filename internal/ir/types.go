package ir

import (
	"fmt"
	"strings"
)

// Shape classifies the declared form of a record.
type Shape string

const (
	ShapeStruct Shape = "struct" // named fields
	ShapeTuple  Shape = "tuple"  // positional fields
	ShapeSum    Shape = "sum"    // variants (sealed interface, enum)
	ShapeOther  Shape = "other"  // anything else (alias, basic, func)
)

// Position locates a definition in its source file.
type Position struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// IsValid reports whether the position carries a line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// RecordDefinition is an annotated type to generate a conversion for.
type RecordDefinition struct {
	Name        string             `json:"name"`
	Shape       Shape              `json:"shape"`
	Fields      []FieldDefinition  `json:"fields"`
	TypeParams  []GenericParameter `json:"type_params,omitempty"`
	Annotations []Annotation       `json:"annotations,omitempty"`
	Doc         string             `json:"doc,omitempty"`
	Pos         Position           `json:"-"`
}

// FieldDefinition is one member of a RecordDefinition.
type FieldDefinition struct {
	Name        string       `json:"name"` // empty for unnamed fields
	Type        TypeExpr     `json:"type"`
	Annotations []Annotation `json:"annotations,omitempty"`
	Pos         Position     `json:"-"`
}

// GenericParameter is a type parameter and its declared constraint.
type GenericParameter struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint"`
}

// TypeKind is the syntactic category of a TypeExpr.
type TypeKind string

const (
	TypePath    TypeKind = "path" // Name, pkg.Name, Name[Args]
	TypePointer TypeKind = "pointer"
	TypeSlice   TypeKind = "slice"
	TypeMap     TypeKind = "map"
	TypeOther   TypeKind = "other" // func, chan, inline struct...
)

// TypeExpr is a declared field type as written, not as resolved.
type TypeExpr struct {
	Kind      TypeKind   `json:"kind"`
	Qualifier string     `json:"qualifier,omitempty"` // package selector, e.g. "time"
	Name      string     `json:"name,omitempty"`
	Args      []TypeExpr `json:"args,omitempty"` // type arguments, or map key/value
	Elem      *TypeExpr  `json:"elem,omitempty"`
	Raw       string     `json:"raw,omitempty"` // source text for TypeOther
}

// Named returns an unqualified path type with optional type arguments.
func Named(name string, args ...TypeExpr) TypeExpr {
	return TypeExpr{Kind: TypePath, Name: name, Args: args}
}

// Qualified returns a package-qualified path type.
func Qualified(pkg, name string) TypeExpr {
	return TypeExpr{Kind: TypePath, Qualifier: pkg, Name: name}
}

// PointerTo returns *elem.
func PointerTo(elem TypeExpr) TypeExpr {
	return TypeExpr{Kind: TypePointer, Elem: &elem}
}

// String prints the type in Go syntax.
func (t TypeExpr) String() string {
	switch t.Kind {
	case TypePath:
		var b strings.Builder
		if t.Qualifier != "" {
			b.WriteString(t.Qualifier)
			b.WriteByte('.')
		}
		b.WriteString(t.Name)
		if len(t.Args) > 0 {
			b.WriteByte('[')
			for i, a := range t.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(a.String())
			}
			b.WriteByte(']')
		}
		return b.String()
	case TypePointer:
		return "*" + t.elemString()
	case TypeSlice:
		return "[]" + t.elemString()
	case TypeMap:
		if len(t.Args) == 2 {
			return "map[" + t.Args[0].String() + "]" + t.Args[1].String()
		}
		return t.Raw
	default:
		return t.Raw
	}
}

func (t TypeExpr) elemString() string {
	if t.Elem == nil {
		return "?"
	}
	return t.Elem.String()
}

// TokenKind classifies an annotation token.
type TokenKind string

const (
	TokenIdent  TokenKind = "ident"
	TokenString TokenKind = "string"
	TokenChar   TokenKind = "char"
	TokenInt    TokenKind = "int"
	TokenFloat  TokenKind = "float"
	TokenPunct  TokenKind = "punct"
)

// Token is one lexical element of an annotation argument list.
// Text is the source spelling, quotes included for literals.
type Token struct {
	Kind TokenKind `json:"kind"`
	Text string    `json:"text"`
}

// Annotation is metadata attached to a record or field, e.g. the struct tag
// `telegraf:"tag"` is Annotation{Namespace: "telegraf", Tokens: [tag]}.
type Annotation struct {
	Namespace string   `json:"namespace"`
	Tokens    []Token  `json:"tokens,omitempty"`
	Pos       Position `json:"-"`
}

// Find returns the first annotation with the given namespace.
func Find(annotations []Annotation, namespace string) (Annotation, bool) {
	for _, a := range annotations {
		if a.Namespace == namespace {
			return a, true
		}
	}
	return Annotation{}, false
}

// FieldRole is the derived role of a field in the output point.
type FieldRole int

const (
	RoleField FieldRole = iota // default
	RoleTag
	RoleTimestamp
)

func (r FieldRole) String() string {
	switch r {
	case RoleTag:
		return "tag"
	case RoleTimestamp:
		return "timestamp"
	default:
		return "field"
	}
}

// FieldPlan is the per-field decision handed to the synthesizer.
type FieldPlan struct {
	Field    FieldDefinition
	Role     FieldRole
	Optional bool
}

// Statement is one emitted fragment of Go source.
type Statement string

// GeneratedDecl is everything emitted for one record.
type GeneratedDecl struct {
	Record      RecordDefinition
	Measurement string
	Plans       []FieldPlan
	TypeParams  []GenericParameter // bounds already propagated
	Body        []Statement
	Source      string // formatted declarations, without package clause or imports
}
