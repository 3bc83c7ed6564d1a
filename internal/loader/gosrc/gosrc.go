// Package gosrc loads records from a Go package directory.
//
// A type is a record when its doc comment carries the //telegraf:metric
// directive. The measurement comes from a //telegraf:measurement directive and
// field roles from the telegraf struct tag:
//
//	// CPU is a CPU sample.
//	//
//	//telegraf:metric
//	//telegraf:measurement "cpu"
//	type CPU struct {
//		Host  string `telegraf:"tag"`
//		Usage float64
//	}
//
// Marked types that are not structs still load; analysis rejects them.
package gosrc

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"reflect"
	"strconv"
	"strings"

	"github.com/roach88/telegen/internal/ir"
	"github.com/roach88/telegen/internal/loader"
)

// Directive names, written //telegraf:<name> in a type's doc comment.
const (
	directivePrefix      = "//telegraf:"
	directiveMetric      = "metric"
	directiveMeasurement = "measurement"
)

// Options configures Load.
type Options struct {
	// SkipSuffix excludes generated files, e.g. "_telegen.go".
	SkipSuffix string
}

// Load parses the non-test Go files in dir and returns the marked records in
// file name order, then declaration order.
func Load(dir string, opts Options) (*loader.Package, error) {
	if err := loader.CheckDir(dir); err != nil {
		return nil, err
	}
	files, err := loader.FindFiles(dir, ".go")
	if err != nil {
		return nil, err
	}

	pkg := &loader.Package{Dir: dir}
	fset := token.NewFileSet()
	for _, path := range files {
		if strings.HasSuffix(path, "_test.go") {
			continue
		}
		if opts.SkipSuffix != "" && strings.HasSuffix(path, opts.SkipSuffix) {
			continue
		}

		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, &loader.LoadError{Code: loader.ErrCodeLoadFailed, Message: err.Error()}
		}
		if pkg.Name == "" {
			pkg.Name = file.Name.Name
		} else if file.Name.Name != pkg.Name {
			return nil, &loader.LoadError{
				Code:    loader.ErrCodeLoadFailed,
				Message: fmt.Sprintf("found packages %s and %s in %s", pkg.Name, file.Name.Name, dir),
				Pos:     position(fset, file.Name.Pos()),
			}
		}
		pkg.Files = append(pkg.Files, path)

		recs, err := fileRecords(fset, file)
		if err != nil {
			return nil, err
		}
		pkg.Records = append(pkg.Records, recs...)
	}

	if len(pkg.Files) == 0 {
		return nil, &loader.LoadError{Code: loader.ErrCodeNoFiles, Message: fmt.Sprintf("no Go files found in %s", dir)}
	}
	return pkg, nil
}

// LoadSource parses a single file from memory. Tests and the inspect command
// use it.
func LoadSource(filename string, src []byte) (*loader.Package, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, &loader.LoadError{Code: loader.ErrCodeLoadFailed, Message: err.Error()}
	}
	recs, err := fileRecords(fset, file)
	if err != nil {
		return nil, err
	}
	return &loader.Package{Name: file.Name.Name, Records: recs, Files: []string{filename}}, nil
}

func fileRecords(fset *token.FileSet, file *ast.File) ([]ir.RecordDefinition, error) {
	var recs []ir.RecordDefinition
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			doc := ts.Doc
			if doc == nil && len(gen.Specs) == 1 {
				doc = gen.Doc
			}
			d := parseDirectives(doc)
			if !d.metric {
				continue
			}
			rec, err := record(fset, ts, d)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

type directives struct {
	metric      bool
	measurement *directive
	doc         string
}

type directive struct {
	args string
	pos  token.Pos
}

func parseDirectives(doc *ast.CommentGroup) directives {
	var d directives
	if doc == nil {
		return d
	}
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, directivePrefix)
		if !ok {
			continue
		}
		name, args, _ := strings.Cut(rest, " ")
		// //telegraf:measurement("cpu") has no space before its argument.
		if i := strings.IndexAny(name, "(="); i >= 0 {
			name, args = name[:i], name[i:]+" "+args
		}
		switch name {
		case directiveMetric:
			d.metric = true
		case directiveMeasurement:
			d.measurement = &directive{args: strings.TrimSpace(args), pos: c.Pos()}
		}
	}
	// Text() drops directive lines.
	d.doc = strings.TrimSpace(doc.Text())
	return d
}

func record(fset *token.FileSet, ts *ast.TypeSpec, d directives) (ir.RecordDefinition, error) {
	name := ts.Name.Name
	b := ir.NewRecord(name).
		At(position(fset, ts.Name.Pos())).
		Doc(d.doc)

	if d.measurement != nil {
		a, err := loader.MeasurementAnnotation(name, d.measurement.args, position(fset, d.measurement.pos))
		if err != nil {
			return ir.RecordDefinition{}, err
		}
		b.Annotate(a)
	}

	if ts.TypeParams != nil {
		for _, field := range ts.TypeParams.List {
			constraint := types.ExprString(field.Type)
			for _, n := range field.Names {
				b.TypeParam(n.Name, constraint)
			}
		}
	}

	st, ok := ts.Type.(*ast.StructType)
	if !ok {
		if _, isIface := ts.Type.(*ast.InterfaceType); isIface {
			b.Shape(ir.ShapeSum)
		} else {
			b.Shape(ir.ShapeOther)
		}
		return b.Build(), nil
	}

	rec := b.Build()
	for _, field := range st.Fields.List {
		defs, err := fieldDefinitions(fset, name, field)
		if err != nil {
			return ir.RecordDefinition{}, err
		}
		rec.Fields = append(rec.Fields, defs...)
	}
	return rec, nil
}

// fieldDefinitions expands one struct field entry. `A, B int` yields two
// definitions; an embedded field yields one without a name.
func fieldDefinitions(fset *token.FileSet, record string, field *ast.Field) ([]ir.FieldDefinition, error) {
	typ := ir.TypeFromExpr(field.Type)
	if field.Tag == nil {
		return expand(fset, record, field, typ, nil)
	}

	raw, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return nil, &loader.LoadError{
			Code:    loader.ErrCodeLoadFailed,
			Message: fmt.Sprintf("record %s: invalid struct tag %s", record, field.Tag.Value),
			Pos:     position(fset, field.Tag.Pos()),
		}
	}
	if value, ok := reflect.StructTag(raw).Lookup(ir.NamespaceTelegraf); ok {
		return expand(fset, record, field, typ, &value)
	}
	return expand(fset, record, field, typ, nil)
}

func expand(fset *token.FileSet, record string, field *ast.Field, typ ir.TypeExpr, role *string) ([]ir.FieldDefinition, error) {
	if len(field.Names) == 0 {
		def := ir.FieldDefinition{Type: typ, Pos: position(fset, field.Type.Pos())}
		return []ir.FieldDefinition{def}, nil
	}

	defs := make([]ir.FieldDefinition, 0, len(field.Names))
	for _, n := range field.Names {
		pos := position(fset, n.Pos())
		def := ir.FieldDefinition{Name: n.Name, Type: typ, Pos: pos}
		if role != nil {
			tagPos := position(fset, field.Tag.Pos())
			a, err := loader.RoleAnnotation(record, n.Name, *role, tagPos)
			if err != nil {
				return nil, err
			}
			def.Annotations = []ir.Annotation{a}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func position(fset *token.FileSet, pos token.Pos) ir.Position {
	p := fset.Position(pos)
	return ir.Position{File: p.Filename, Line: p.Line, Column: p.Column}
}
