package codegen

import (
	"errors"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/telegen/internal/analysis"
	"github.com/roach88/telegen/internal/ir"
)

func option(arg ir.TypeExpr) ir.TypeExpr {
	return ir.Named("Option", arg)
}

// fixtureRecords mirrors the declarations in internal/fixtures/metrics.go.
func fixtureRecords() []ir.RecordDefinition {
	cpu := ir.NewRecord("CPU").
		Measurement("cpu").
		Tag("Host", ir.Named("string")).
		Tag("Region", option(ir.Named("string"))).
		Field("Usage", ir.Named("float64")).
		Field("Idle", option(ir.Named("float64"))).
		Timestamp("At", ir.Qualified("time", "Time")).
		Timestamp("Fallback", ir.Named("int64")).
		Build()

	disk := ir.NewRecord("Disk").
		Field("Free", ir.Named("uint64")).
		Field("Used", ir.Named("uint64")).
		Field("Path", ir.Named("string")).
		Build()

	labeled := ir.NewRecord("Labeled").
		Measurement("labeled").
		TypeParam("T", "Number").
		Tag("Host", ir.Named("string")).
		Field("Inner", ir.Named("T")).
		Timestamp("At", option(ir.Named("int64"))).
		Build()

	return []ir.RecordDefinition{cpu, disk, labeled}
}

func generateAll(t *testing.T, g *Generator, recs []ir.RecordDefinition) []ir.GeneratedDecl {
	t.Helper()
	decls := make([]ir.GeneratedDecl, 0, len(recs))
	for _, rec := range recs {
		d, err := g.Generate(rec)
		require.NoError(t, err, rec.Name)
		decls = append(decls, *d)
	}
	return decls
}

func TestRenderMatchesCheckedInFixtures(t *testing.T) {
	g := New(Options{})
	src, err := g.Render("fixtures", generateAll(t, g, fixtureRecords()))
	require.NoError(t, err)

	want, err := os.ReadFile("../fixtures/fixtures_telegen.go")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(src))
}

func TestRenderEmitTypesGolden(t *testing.T) {
	tests := []struct {
		name string
		rec  ir.RecordDefinition
	}{
		{
			name: "mem",
			rec: ir.NewRecord("Mem").
				Doc("Mem is a memory sample.").
				Measurement("mem").
				Tag("Host", ir.Named("string")).
				Timestamp("At", ir.Qualified("time", "Time")).
				Field("Total", ir.Named("uint64")).
				Build(),
		},
		{
			name: "envelope",
			rec: ir.NewRecord("Envelope").
				TypeParam("T", "any").
				Tag("Source", ir.Named("T")).
				Field("Size", ir.Named("int64")).
				Build(),
		},
	}

	gold := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(Options{EmitTypes: true})
			src, err := g.Render("metrics", generateAll(t, g, []ir.RecordDefinition{tt.rec}))
			require.NoError(t, err)
			gold.Assert(t, tt.name, src)
		})
	}
}

func TestGenerateDeclarationOrder(t *testing.T) {
	rec := ir.NewRecord("M").
		Field("B", ir.Named("int")).
		Tag("A", ir.Named("string")).
		Field("C", ir.Named("int")).
		Build()

	d, err := New(Options{}).Generate(rec)
	require.NoError(t, err)
	require.Len(t, d.Body, 3)
	assert.Contains(t, string(d.Body[0]), `"B"`)
	assert.Contains(t, string(d.Body[1]), `"A"`)
	assert.Contains(t, string(d.Body[2]), `"C"`)
	assert.Equal(t, "M", d.Measurement)
}

func TestGenerateGenericAddsCapabilityBound(t *testing.T) {
	rec := ir.NewRecord("Wrapper").
		TypeParam("T", "any").
		TypeParam("K", "comparable").
		Field("Inner", ir.Named("T")).
		Tag("Key", ir.Named("K")).
		Build()

	d, err := New(Options{}).Generate(rec)
	require.NoError(t, err)

	assert.Equal(t, []ir.GenericParameter{
		{Name: "T", Constraint: "point.Metric"},
		{Name: "K", Constraint: "interface{ comparable; point.Metric }"},
	}, d.TypeParams)
	assert.Contains(t, d.Source, "func (r Wrapper[T, K]) ToPoint() point.Point {")
	assert.Contains(t, d.Source, "func toPointWrapper[T point.Metric, K interface{ comparable; point.Metric }](r Wrapper[T, K]) point.Point {")
}

func TestGenerateRejectedRecordProducesNothing(t *testing.T) {
	rec := ir.NewRecord("Event").Shape(ir.ShapeSum).Build()

	d, err := New(Options{}).Generate(rec)
	assert.Nil(t, d)

	var diag *analysis.DiagnosticError
	require.True(t, errors.As(err, &diag))
	assert.Equal(t, analysis.ErrMalformedShape, diag.Code)
}

func TestGenerateEmptyRecord(t *testing.T) {
	g := New(Options{})
	d, err := g.Generate(ir.NewRecord("Empty").Build())
	require.NoError(t, err)
	assert.Empty(t, d.Body)

	src, err := g.Render("metrics", []ir.GeneratedDecl{*d})
	require.NoError(t, err)
	assert.Contains(t, string(src), "\tvar ts *uint64\n\n\treturn point.New(\"Empty\", tags, fields, ts)\n")
}

func TestRenderCustomRuntimeImport(t *testing.T) {
	g := New(Options{RuntimeImport: "example.com/metrics/point/v2", Receiver: "m"})
	d, err := g.Generate(ir.NewRecord("Up").Field("Ok", ir.Named("bool")).Build())
	require.NoError(t, err)

	src, err := g.Render("sensors", []ir.GeneratedDecl{*d}, "fmt")
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "import (\n\tpoint \"example.com/metrics/point/v2\"\n\t\"fmt\"\n)\n")
	assert.Contains(t, out, "func (m Up) ToPoint() point.Point {")
	assert.Contains(t, out, "point.FieldOf(m.Ok)")
}

func TestRenderCustomRuntimeImportGeneric(t *testing.T) {
	g := New(Options{RuntimeImport: "example.com/metrics/v2"})
	rec := ir.NewRecord("W").
		TypeParam("T", "any").
		TypeParam("K", "comparable").
		Tag("Key", ir.Named("K")).
		Tag("Source", ir.Named("T")).
		Build()
	d, err := g.Generate(rec)
	require.NoError(t, err)

	src, err := g.Render("sensors", []ir.GeneratedDecl{*d})
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "import metrics \"example.com/metrics/v2\"\n")
	assert.Contains(t, out, "func toPointW[T metrics.Metric, K interface")
	assert.Contains(t, out, "](r W[T, K]) metrics.Point {")
	assert.Contains(t, out, "metrics.Metric")
	assert.NotContains(t, out, "point.")
}

func TestGenerateExplicitCapability(t *testing.T) {
	a := analysis.New()
	a.Capability = "custom.Metric"
	g := New(Options{Analyzer: a})

	d, err := g.Generate(ir.NewRecord("W").TypeParam("T", "any").Build())
	require.NoError(t, err)
	assert.Equal(t, "custom.Metric", d.TypeParams[0].Constraint)
	assert.Equal(t, "custom.Metric", a.Capability)
}

func TestRuntimeQualifier(t *testing.T) {
	assert.Equal(t, "point", RuntimeQualifier("github.com/roach88/telegen/point"))
	assert.Equal(t, "point", RuntimeQualifier("example.com/point/v2"))
	assert.Equal(t, "v", RuntimeQualifier("example.com/v"))
}

func TestHelperName(t *testing.T) {
	assert.Equal(t, "toPointWrapper", helperName("Wrapper"))
	assert.Equal(t, "toPointsample", helperName("sample"))
	assert.NotEqual(t, helperName("Foo"), helperName("foo"))
}
