package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/telegen/internal/analysis"
	"github.com/roach88/telegen/internal/ir"
)

func TestCheckDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(file, []byte("package a\n"), 0o644))

	assert.NoError(t, CheckDir(dir))

	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing", filepath.Join(dir, "missing"), "directory not found"},
		{"file", file, "not a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDir(tt.path)
			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, ErrCodeNotFound, loadErr.Code)
			assert.Contains(t, loadErr.Message, tt.want)
		})
	}
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "c.cue", ".telegen.yaml", "_draft.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755))

	files, err := FindFiles(dir, ".yaml", ".yml")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}, files)

	files, err = FindFiles(dir, ".go")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindFilesMissingDir(t *testing.T) {
	_, err := FindFiles(filepath.Join(t.TempDir(), "missing"), ".go")
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeScanError, loadErr.Code)
}

func TestLoadErrorString(t *testing.T) {
	err := &LoadError{Code: ErrCodeSchema, Message: "bad", Pos: ir.Position{File: "m.yaml", Line: 3, Column: 5}}
	assert.Equal(t, "m.yaml:3:5: E007: bad", err.Error())

	err = &LoadError{Code: ErrCodeNoFiles, Message: "none"}
	assert.Equal(t, "E003: none", err.Error())
}

func TestRecordSpecRecord(t *testing.T) {
	tag := "tag"
	spec := RecordSpec{
		Name:        "Mem",
		Doc:         "Mem is a memory sample.",
		Measurement: &ir.Token{Kind: ir.TokenString, Text: `"mem"`},
		TypeParams:  []ir.GenericParameter{{Name: "T", Constraint: "any"}},
		Fields: []FieldSpec{
			{Name: "Host", Type: "string", Role: &tag},
			{Name: "Extra", Type: "Option[T]"},
		},
		Pos: ir.Position{File: "m.yaml", Line: 2, Column: 3},
	}

	rec, err := spec.Record()
	require.NoError(t, err)
	assert.Equal(t, "Mem", rec.Name)
	assert.Equal(t, ir.ShapeStruct, rec.Shape)
	assert.Equal(t, "Mem is a memory sample.", rec.Doc)
	require.Len(t, rec.TypeParams, 1)

	measurement, err := analysis.ResolveMeasurement(rec)
	require.NoError(t, err)
	assert.Equal(t, "mem", measurement)

	require.Len(t, rec.Fields, 2)
	role, err := analysis.Classify(rec.Fields[0])
	require.NoError(t, err)
	assert.Equal(t, ir.RoleTag, role)
	assert.Empty(t, rec.Fields[1].Annotations)
	assert.Equal(t, "Option", rec.Fields[1].Type.Name)
}

func TestRecordSpecVariants(t *testing.T) {
	rec, err := RecordSpec{Name: "Event", Variants: []string{"Start", "Stop"}}.Record()
	require.NoError(t, err)
	assert.Equal(t, ir.ShapeSum, rec.Shape)
}

func TestRecordSpecErrors(t *testing.T) {
	_, err := RecordSpec{Name: "Mem", Fields: []FieldSpec{{Name: "X", Type: "map["}}}.Record()
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeSchema, loadErr.Code)
	assert.Contains(t, loadErr.Message, "record Mem field X")

	role := `"open`
	_, err = RecordSpec{Name: "Mem", Fields: []FieldSpec{{Name: "X", Type: "int", Role: &role}}}.Record()
	var diag *analysis.DiagnosticError
	require.True(t, errors.As(err, &diag))
	assert.Equal(t, analysis.ErrMalformedRole, diag.Code)
	assert.Equal(t, "X", diag.Field)
}

func TestMeasurementAnnotation(t *testing.T) {
	a, err := MeasurementAnnotation("CPU", `("cpu")`, ir.Position{})
	require.NoError(t, err)
	assert.Equal(t, ir.NamespaceMeasurement, a.Namespace)
	assert.Equal(t, []ir.Token{{Kind: ir.TokenString, Text: `"cpu"`}}, a.Tokens)

	_, err = MeasurementAnnotation("CPU", `"cpu`, ir.Position{})
	var diag *analysis.DiagnosticError
	require.True(t, errors.As(err, &diag))
	assert.Equal(t, analysis.ErrMalformedMeasurement, diag.Code)
	assert.Equal(t, "CPU", diag.Record)
}
