// Package cueschema loads records declared in CUE files.
//
//	go_package: "metrics"
//
//	record: CPU: {
//		measurement: "cpu"
//		fields: [
//			{name: "Host", type: "string", role: "tag"},
//			{name: "Usage", type: "float64"},
//			{name: "At", type: "time.Time", role: "timestamp"},
//		]
//	}
//
// Records keep their CUE declaration order. Each record is checked against
// a closed schema before conversion, so misspelled keys fail with a position.
package cueschema

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/telegen/internal/ir"
	"github.com/roach88/telegen/internal/loader"
)

const recordSchema = `
#Field: {
	name:  string
	type:  string
	role?: string
}

#TypeParam: {
	name:       string
	constraint: *"any" | string
}

#Record: {
	doc?:         string
	measurement?: _
	type_params?: [...#TypeParam]
	fields?: [...#Field]
	variants?: [...string]
}
`

// Load reads the CUE package in dir.
func Load(dir string) (*loader.Package, error) {
	if err := loader.CheckDir(dir); err != nil {
		return nil, err
	}
	files, err := loader.FindFiles(dir, ".cue")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &loader.LoadError{Code: loader.ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &loader.LoadError{Code: loader.ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &loader.LoadError{Code: loader.ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &loader.LoadError{Code: loader.ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	pkg, err := Decode(value)
	if err != nil {
		return nil, err
	}
	pkg.Dir = dir
	pkg.Files = files
	return pkg, nil
}

// Decode extracts the package settings and records from a built CUE value.
func Decode(value cue.Value) (*loader.Package, error) {
	pkg := &loader.Package{}

	if v := value.LookupPath(cue.ParsePath("go_package")); v.Exists() {
		name, err := v.String()
		if err != nil {
			return nil, formatCUEError(err, loader.ErrCodeSchema)
		}
		pkg.Name = name
	}

	if v := value.LookupPath(cue.ParsePath("imports")); v.Exists() {
		if err := v.Decode(&pkg.Imports); err != nil {
			return nil, formatCUEError(err, loader.ErrCodeSchema)
		}
	}

	records := value.LookupPath(cue.ParsePath("record"))
	if !records.Exists() {
		return pkg, nil
	}

	schema := value.Context().CompileString(recordSchema).LookupPath(cue.ParsePath("#Record"))
	iter, err := records.Fields()
	if err != nil {
		return nil, formatCUEError(err, loader.ErrCodeSchema)
	}
	for iter.Next() {
		spec, err := CompileRecord(iter.Value(), schema)
		if err != nil {
			return nil, err
		}
		rec, err := spec.Record()
		if err != nil {
			return nil, err
		}
		pkg.Records = append(pkg.Records, rec)
	}
	return pkg, nil
}

// CompileRecord validates v against schema and reads it into a RecordSpec. The
// record name is the last path selector of v.
func CompileRecord(v cue.Value, schema cue.Value) (loader.RecordSpec, error) {
	spec := loader.RecordSpec{Pos: position(v.Pos())}
	if labels := v.Path().Selectors(); len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	checked := schema.Unify(v)
	if err := checked.Validate(cue.Concrete(true)); err != nil {
		return spec, formatCUEError(err, loader.ErrCodeSchema)
	}

	if d := v.LookupPath(cue.ParsePath("doc")); d.Exists() {
		spec.Doc, _ = d.String()
	}

	if m := v.LookupPath(cue.ParsePath("measurement")); m.Exists() {
		tok := measurementToken(m)
		spec.Measurement = &tok
	}

	// Read from the checked value so constraints pick up the schema default.
	if tp := checked.LookupPath(cue.ParsePath("type_params")); tp.Exists() {
		var params []struct {
			Name       string `json:"name"`
			Constraint string `json:"constraint"`
		}
		if err := tp.Decode(&params); err != nil {
			return spec, formatCUEError(err, loader.ErrCodeSchema)
		}
		for _, p := range params {
			spec.TypeParams = append(spec.TypeParams, ir.GenericParameter{Name: p.Name, Constraint: p.Constraint})
		}
	}

	if vs := v.LookupPath(cue.ParsePath("variants")); vs.Exists() {
		if err := vs.Decode(&spec.Variants); err != nil {
			return spec, formatCUEError(err, loader.ErrCodeSchema)
		}
	}

	fields, err := parseFields(v)
	if err != nil {
		return spec, err
	}
	spec.Fields = fields
	return spec, nil
}

func parseFields(v cue.Value) ([]loader.FieldSpec, error) {
	list := v.LookupPath(cue.ParsePath("fields"))
	if !list.Exists() {
		return nil, nil
	}
	iter, err := list.List()
	if err != nil {
		return nil, formatCUEError(err, loader.ErrCodeSchema)
	}

	var fields []loader.FieldSpec
	for iter.Next() {
		fv := iter.Value()
		f := loader.FieldSpec{Pos: position(fv.Pos())}
		f.Name, _ = fv.LookupPath(cue.ParsePath("name")).String()
		f.Type, _ = fv.LookupPath(cue.ParsePath("type")).String()
		if rv := fv.LookupPath(cue.ParsePath("role")); rv.Exists() {
			role, err := rv.String()
			if err != nil {
				return nil, formatCUEError(err, loader.ErrCodeSchema)
			}
			f.Role = &role
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// measurementToken maps the measurement value onto the literal token it would
// be in Go source. Anything but a string is rejected later by analysis.
func measurementToken(v cue.Value) ir.Token {
	switch v.Kind() {
	case cue.StringKind:
		s, _ := v.String()
		return ir.Token{Kind: ir.TokenString, Text: strconv.Quote(s)}
	case cue.IntKind:
		n, _ := v.Int64()
		return ir.Token{Kind: ir.TokenInt, Text: strconv.FormatInt(n, 10)}
	case cue.FloatKind:
		f, _ := v.Float64()
		return ir.Token{Kind: ir.TokenFloat, Text: strconv.FormatFloat(f, 'g', -1, 64)}
	case cue.BoolKind:
		b, _ := v.Bool()
		return ir.Token{Kind: ir.TokenIdent, Text: strconv.FormatBool(b)}
	default:
		return ir.Token{Kind: ir.TokenPunct, Text: v.Kind().String()}
	}
}

// formatCUEError converts the first CUE error into a LoadError with its position.
func formatCUEError(err error, code string) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &loader.LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &loader.LoadError{Code: code, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = position(positions[0])
	}
	return le
}

func position(pos token.Pos) ir.Position {
	if !pos.IsValid() {
		return ir.Position{}
	}
	return ir.Position{File: pos.Filename(), Line: pos.Line(), Column: pos.Column()}
}
