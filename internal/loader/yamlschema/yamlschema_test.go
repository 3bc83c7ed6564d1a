package yamlschema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/telegen/internal/analysis"
	"github.com/roach88/telegen/internal/ir"
	"github.com/roach88/telegen/internal/loader"
)

const metricsYAML = `package: metrics
records:
  - name: CPU
    doc: CPU is a host CPU sample.
    measurement: cpu
    fields:
      - {name: Host, type: string, role: tag}
      - {name: Idle, type: "Option[float64]"}
      - {name: At, type: time.Time, role: timestamp}
  - name: Envelope
    type_params:
      - name: T
    fields:
      - name: Body
        type: T
`

func TestDecodeRecords(t *testing.T) {
	pkg, err := Decode("metrics.yaml", []byte(metricsYAML))
	require.NoError(t, err)

	assert.Equal(t, "metrics", pkg.Name)
	require.Len(t, pkg.Records, 2)

	cpu := pkg.Records[0]
	assert.Equal(t, "CPU", cpu.Name)
	assert.Equal(t, "CPU is a host CPU sample.", cpu.Doc)
	assert.Equal(t, ir.Position{File: "metrics.yaml", Line: 3, Column: 5}, cpu.Pos)
	require.Len(t, cpu.Fields, 3)
	assert.Equal(t, 7, cpu.Fields[0].Pos.Line)

	res, err := analysis.New().Analyze(cpu)
	require.NoError(t, err)
	assert.Equal(t, "cpu", res.Measurement)
	assert.Equal(t, []ir.FieldRole{ir.RoleTag, ir.RoleField, ir.RoleTimestamp},
		[]ir.FieldRole{res.Plans[0].Role, res.Plans[1].Role, res.Plans[2].Role})
	assert.True(t, res.Plans[1].Optional)

	env := pkg.Records[1]
	assert.Equal(t, []ir.GenericParameter{{Name: "T", Constraint: "any"}}, env.TypeParams)
}

func TestDecodeMeasurementLiteralKinds(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  ir.Token
	}{
		{"plain string", "cpu", ir.Token{Kind: ir.TokenString, Text: `"cpu"`}},
		{"quoted number", `"42"`, ir.Token{Kind: ir.TokenString, Text: `"42"`}},
		{"int", "42", ir.Token{Kind: ir.TokenInt, Text: "42"}},
		{"float", "1.5", ir.Token{Kind: ir.TokenFloat, Text: "1.5"}},
		{"bool", "true", ir.Token{Kind: ir.TokenIdent, Text: "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "records:\n  - name: M\n    measurement: " + tt.value + "\n"
			pkg, err := Decode("m.yaml", []byte(src))
			require.NoError(t, err)

			a, ok := ir.Find(pkg.Records[0].Annotations, ir.NamespaceMeasurement)
			require.True(t, ok)
			assert.Equal(t, []ir.Token{tt.want}, a.Tokens)
		})
	}
}

func TestDecodeNonStringMeasurementFailsAnalysis(t *testing.T) {
	pkg, err := Decode("m.yaml", []byte("records:\n  - name: M\n    measurement: 42\n"))
	require.NoError(t, err)

	_, err = analysis.New().Analyze(pkg.Records[0])
	var diag *analysis.DiagnosticError
	require.True(t, errors.As(err, &diag))
	assert.Equal(t, analysis.ErrMalformedMeasurement, diag.Code)
}

func TestDecodeUnknownTopLevelKey(t *testing.T) {
	_, err := Decode("m.yaml", []byte("pakage: metrics\n"))

	var loadErr *loader.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, loader.ErrCodeSchema, loadErr.Code)
}

func TestDecodeUnknownNestedKeys(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "record",
			doc:  "records:\n  - name: CPU\n    measurment: cpu\n",
			want: `line 3: unknown record key "measurment"`,
		},
		{
			name: "field",
			doc:  "records:\n  - name: CPU\n    fields:\n      - {name: Host, type: string, rol: tag}\n",
			want: `line 4: unknown field key "rol"`,
		},
		{
			name: "type parameter",
			doc:  "records:\n  - name: W\n    type_params:\n      - {name: T, bound: any}\n",
			want: `line 4: unknown type parameter key "bound"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, err := Decode("m.yaml", []byte(tt.doc))
			assert.Nil(t, pkg)

			var loadErr *loader.LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, loader.ErrCodeSchema, loadErr.Code)
			assert.Contains(t, loadErr.Message, tt.want)
		})
	}
}

func TestDecodeEmptyDocument(t *testing.T) {
	pkg, err := Decode("empty.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, pkg.Records)
}

func TestLoadMergesFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(metricsYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"),
		[]byte("records:\n  - name: Disk\n    fields:\n      - {name: Free, type: uint64}\n"), 0o644))

	pkg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "metrics", pkg.Name)
	require.Len(t, pkg.Records, 3)
	assert.Equal(t, "Disk", pkg.Records[2].Name)
	assert.Equal(t, filepath.Join(dir, "b.yml"), pkg.Records[2].Pos.File)
}

func TestLoadConflictingPackages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("package: a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("package: b\n"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found packages a and b")
}
