// Package codegen turns analyzed records into Go source implementing
// point.Metric.
//
// Generate produces one declaration per record; Render assembles declarations
// into a gofmt'd file. A record that fails analysis produces no declaration,
// and Render never sees partial input.
package codegen

import (
	"fmt"
	"go/format"
	"io"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/telegen/internal/analysis"
	"github.com/roach88/telegen/internal/ir"
)

// DefaultRuntimeImport is the import path of the point package.
const DefaultRuntimeImport = "github.com/roach88/telegen/point"

// Header is the first line of every generated file.
const Header = "// Code generated by telegen. DO NOT EDIT."

// Options configures a Generator. Zero values select the defaults.
type Options struct {
	// RuntimeImport is the import path of the point package.
	RuntimeImport string
	// Receiver is the receiver name of generated methods.
	Receiver string
	// EmitTypes also declares the record struct types. Used for schema inputs
	// where no Go declaration exists yet.
	EmitTypes bool
	// Analyzer carries the optionality and bound policy. An empty Capability
	// becomes Metric in the runtime package, e.g. point.Metric.
	Analyzer *analysis.Analyzer
	// Logger receives debug output; nil discards.
	Logger *slog.Logger
}

// Generator emits ToPoint conversions.
type Generator struct {
	runtimeImport string
	pkg           string
	recv          string
	emitTypes     bool
	analyzer      *analysis.Analyzer
	logger        *slog.Logger
}

// New creates a Generator.
func New(opts Options) *Generator {
	g := &Generator{
		runtimeImport: opts.RuntimeImport,
		recv:          opts.Receiver,
		emitTypes:     opts.EmitTypes,
		logger:        opts.Logger,
	}
	if g.runtimeImport == "" {
		g.runtimeImport = DefaultRuntimeImport
	}
	if g.recv == "" {
		g.recv = "r"
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g.pkg = RuntimeQualifier(g.runtimeImport)

	// The bound must name the runtime package the way the rendered file
	// imports it.
	var a analysis.Analyzer
	if opts.Analyzer != nil {
		a = *opts.Analyzer
	}
	if a.Capability == "" {
		a.Capability = g.pkg + ".Metric"
	}
	g.analyzer = &a
	return g
}

// Generate analyzes rec and emits its declarations.
func (g *Generator) Generate(rec ir.RecordDefinition) (*ir.GeneratedDecl, error) {
	res, err := g.analyzer.Analyze(rec)
	if err != nil {
		return nil, err
	}

	body := make([]ir.Statement, 0, len(res.Plans))
	for _, plan := range res.Plans {
		body = append(body, Synthesize(g.recv, g.pkg, plan))
	}

	decl := &ir.GeneratedDecl{
		Record:      rec,
		Measurement: res.Measurement,
		Plans:       res.Plans,
		TypeParams:  res.TypeParams,
		Body:        body,
	}

	var b strings.Builder
	if g.emitTypes {
		g.writeType(&b, decl)
		b.WriteByte('\n')
	}
	g.writeConversion(&b, decl)
	decl.Source = b.String()

	g.logger.Debug("generated record",
		"record", rec.Name,
		"measurement", res.Measurement,
		"fields", len(res.Plans),
		"generic", len(res.TypeParams) > 0)

	return decl, nil
}

// Render assembles declarations into a formatted Go file for package pkgName.
// imports are added to the runtime import; for emitted types, the "time"
// import is added automatically when a field uses it.
func (g *Generator) Render(pkgName string, decls []ir.GeneratedDecl, imports ...string) ([]byte, error) {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkgName)

	specs := g.importSpecs(decls, imports)
	if len(specs) == 1 {
		fmt.Fprintf(&b, "import %s\n", specs[0])
	} else {
		b.WriteString("import (\n")
		for _, s := range specs {
			fmt.Fprintf(&b, "\t%s\n", s)
		}
		b.WriteString(")\n")
	}

	for _, d := range decls {
		b.WriteByte('\n')
		b.WriteString(d.Source)
	}

	src, err := format.Source([]byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("format generated source for package %s: %w", pkgName, err)
	}
	return src, nil
}

func (g *Generator) importSpecs(decls []ir.GeneratedDecl, extra []string) []string {
	paths := slices.Clone(extra)
	paths = append(paths, g.runtimeImport)
	if g.emitTypes && usesQualifier(decls, "time") {
		paths = append(paths, "time")
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)

	specs := make([]string, 0, len(paths))
	for _, p := range paths {
		spec := strconv.Quote(p)
		if p == g.runtimeImport && g.pkg != path.Base(p) {
			spec = g.pkg + " " + spec
		}
		specs = append(specs, spec)
	}
	return specs
}

// RuntimeQualifier returns the package qualifier for an import path, skipping
// a major version suffix: example.com/point/v2 -> point.
func RuntimeQualifier(importPath string) string {
	base := path.Base(importPath)
	if len(base) > 1 && base[0] == 'v' && strings.Trim(base[1:], "0123456789") == "" {
		return path.Base(path.Dir(importPath))
	}
	return base
}

func usesQualifier(decls []ir.GeneratedDecl, qualifier string) bool {
	for _, d := range decls {
		for _, f := range d.Record.Fields {
			if typeUsesQualifier(f.Type, qualifier) {
				return true
			}
		}
	}
	return false
}

func typeUsesQualifier(t ir.TypeExpr, qualifier string) bool {
	if t.Qualifier == qualifier {
		return true
	}
	if t.Elem != nil && typeUsesQualifier(*t.Elem, qualifier) {
		return true
	}
	for _, a := range t.Args {
		if typeUsesQualifier(a, qualifier) {
			return true
		}
	}
	return false
}

func (g *Generator) writeType(b *strings.Builder, d *ir.GeneratedDecl) {
	rec := d.Record
	if rec.Doc != "" {
		for _, line := range strings.Split(strings.TrimRight(rec.Doc, "\n"), "\n") {
			fmt.Fprintf(b, "// %s\n", line)
		}
	}
	fmt.Fprintf(b, "type %s%s struct {\n", rec.Name, typeParamList(d.TypeParams, true))
	for _, plan := range d.Plans {
		fmt.Fprintf(b, "\t%s %s", plan.Field.Name, plan.Field.Type)
		if plan.Role != ir.RoleField {
			fmt.Fprintf(b, " `telegraf:%q`", plan.Role.String())
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
}

func (g *Generator) writeConversion(b *strings.Builder, d *ir.GeneratedDecl) {
	rec := d.Record
	recvType := rec.Name + typeParamList(d.TypeParams, false)

	fmt.Fprintf(b, "// ToPoint converts %s into a metric point.\n", rec.Name)
	if len(d.TypeParams) == 0 {
		fmt.Fprintf(b, "func (%s %s) ToPoint() %s.Point {\n", g.recv, recvType, g.pkg)
		g.writeBody(b, d)
		b.WriteString("}\n")
		return
	}

	// Methods cannot add constraints, so the body lives in a helper whose type
	// parameters carry the propagated bounds. Instantiating it from the method
	// only type-checks when the record's own parameters satisfy them.
	helper := helperName(rec.Name)
	fmt.Fprintf(b, "func (%s %s) ToPoint() %s.Point {\n", g.recv, recvType, g.pkg)
	fmt.Fprintf(b, "\treturn %s(%s)\n", helper, g.recv)
	b.WriteString("}\n\n")
	fmt.Fprintf(b, "func %s%s(%s %s) %s.Point {\n",
		helper, typeParamList(d.TypeParams, true), g.recv, recvType, g.pkg)
	g.writeBody(b, d)
	b.WriteString("}\n")
}

func (g *Generator) writeBody(b *strings.Builder, d *ir.GeneratedDecl) {
	fmt.Fprintf(b, "\tvar %s []%s.Tag\n", tagsVar, g.pkg)
	fmt.Fprintf(b, "\tvar %s []%s.Field\n", fieldsVar, g.pkg)
	fmt.Fprintf(b, "\tvar %s *uint64\n", tsVar)
	if len(d.Body) > 0 {
		b.WriteByte('\n')
	}
	for _, stmt := range d.Body {
		for _, line := range strings.Split(string(stmt), "\n") {
			b.WriteByte('\t')
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	b.WriteByte('\n')
	fmt.Fprintf(b, "\treturn %s.New(%s, %s, %s, %s)\n",
		g.pkg, strconv.Quote(d.Measurement), tagsVar, fieldsVar, tsVar)
}

// typeParamList renders [T, U] or, with constraints, [T point.Metric, U point.Metric].
func typeParamList(params []ir.GenericParameter, withConstraints bool) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		if withConstraints {
			parts[i] = p.Name + " " + p.Constraint
		} else {
			parts[i] = p.Name
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// helperName returns the unexported helper for a generic record: Wrapper -> toPointWrapper.
// The record name is kept verbatim so Foo and foo get distinct helpers.
func helperName(record string) string {
	return "toPoint" + record
}
