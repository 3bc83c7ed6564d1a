// Package yamlschema loads records declared in YAML files.
//
//	package: metrics
//	records:
//	  - name: CPU
//	    measurement: cpu
//	    fields:
//	      - {name: Host, type: string, role: tag}
//	      - {name: Usage, type: float64}
//	      - {name: At, type: time.Time, role: timestamp}
//
// Files are read in name order and their records concatenated.
package yamlschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/telegen/internal/ir"
	"github.com/roach88/telegen/internal/loader"
)

type document struct {
	Package string       `yaml:"package"`
	Imports []string     `yaml:"imports"`
	Records []recordNode `yaml:"records"`
}

type recordNode struct {
	Name        string      `yaml:"name"`
	Doc         string      `yaml:"doc"`
	Measurement *yaml.Node  `yaml:"measurement"`
	TypeParams  []typeParam `yaml:"type_params"`
	Fields      []fieldNode `yaml:"fields"`
	Variants    []string    `yaml:"variants"`
	line        int
	column      int
}

type typeParam struct {
	Name       string `yaml:"name"`
	Constraint string `yaml:"constraint"`
}

type fieldNode struct {
	Name   string  `yaml:"name"`
	Type   string  `yaml:"type"`
	Role   *string `yaml:"role"`
	line   int
	column int
}

// Node.Decode does not inherit KnownFields from the document decoder, so
// nested mappings check their own keys.
var (
	recordKeys    = []string{"name", "doc", "measurement", "type_params", "fields", "variants"}
	fieldKeys     = []string{"name", "type", "role"}
	typeParamKeys = []string{"name", "constraint"}
)

// UnmarshalYAML records the node position alongside the decoded record.
func (r *recordNode) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys(value, "record", recordKeys); err != nil {
		return err
	}
	type plain recordNode
	if err := value.Decode((*plain)(r)); err != nil {
		return err
	}
	r.line, r.column = value.Line, value.Column
	return nil
}

// UnmarshalYAML records the node position alongside the decoded field.
func (f *fieldNode) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys(value, "field", fieldKeys); err != nil {
		return err
	}
	type plain fieldNode
	if err := value.Decode((*plain)(f)); err != nil {
		return err
	}
	f.line, f.column = value.Line, value.Column
	return nil
}

func (p *typeParam) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys(value, "type parameter", typeParamKeys); err != nil {
		return err
	}
	type plain typeParam
	return value.Decode((*plain)(p))
}

func checkKeys(value *yaml.Node, what string, allowed []string) error {
	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i]
		if !slices.Contains(allowed, key.Value) {
			return fmt.Errorf("line %d: unknown %s key %q", key.Line, what, key.Value)
		}
	}
	return nil
}

// Load reads every .yaml and .yml file in dir.
func Load(dir string) (*loader.Package, error) {
	if err := loader.CheckDir(dir); err != nil {
		return nil, err
	}
	files, err := loader.FindFiles(dir, ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &loader.LoadError{Code: loader.ErrCodeNoFiles, Message: fmt.Sprintf("no YAML files found in %s", dir)}
	}

	pkg := &loader.Package{Dir: dir, Files: files}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &loader.LoadError{Code: loader.ErrCodeLoadFailed, Message: err.Error()}
		}
		part, err := Decode(path, data)
		if err != nil {
			return nil, err
		}
		if part.Name != "" {
			if pkg.Name != "" && pkg.Name != part.Name {
				return nil, &loader.LoadError{
					Code:    loader.ErrCodeSchema,
					Message: fmt.Sprintf("found packages %s and %s in %s", pkg.Name, part.Name, dir),
				}
			}
			pkg.Name = part.Name
		}
		pkg.Imports = append(pkg.Imports, part.Imports...)
		pkg.Records = append(pkg.Records, part.Records...)
	}
	return pkg, nil
}

// Decode parses one YAML document. filename is used for positions only.
func Decode(filename string, data []byte) (*loader.Package, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &loader.Package{}, nil
		}
		return nil, &loader.LoadError{
			Code:    loader.ErrCodeSchema,
			Message: fmt.Sprintf("%s: %v", filename, err),
		}
	}

	pkg := &loader.Package{Name: doc.Package, Imports: doc.Imports}
	for _, rn := range doc.Records {
		rec, err := rn.spec(filename).Record()
		if err != nil {
			return nil, err
		}
		pkg.Records = append(pkg.Records, rec)
	}
	return pkg, nil
}

func (r recordNode) spec(filename string) loader.RecordSpec {
	spec := loader.RecordSpec{
		Name:     r.Name,
		Doc:      r.Doc,
		Variants: r.Variants,
		Pos:      ir.Position{File: filename, Line: r.line, Column: r.column},
	}
	if r.Measurement != nil {
		tok := measurementToken(r.Measurement)
		spec.Measurement = &tok
	}
	for _, p := range r.TypeParams {
		constraint := p.Constraint
		if constraint == "" {
			constraint = "any"
		}
		spec.TypeParams = append(spec.TypeParams, ir.GenericParameter{Name: p.Name, Constraint: constraint})
	}
	for _, f := range r.Fields {
		spec.Fields = append(spec.Fields, loader.FieldSpec{
			Name: f.Name,
			Type: f.Type,
			Role: f.Role,
			Pos:  ir.Position{File: filename, Line: f.line, Column: f.column},
		})
	}
	return spec
}

// measurementToken maps a scalar onto the Go literal token it stands for.
// Only strings survive analysis.
func measurementToken(n *yaml.Node) ir.Token {
	if n.Kind != yaml.ScalarNode {
		return ir.Token{Kind: ir.TokenPunct, Text: n.ShortTag()}
	}
	switch n.ShortTag() {
	case "!!str":
		return ir.Token{Kind: ir.TokenString, Text: strconv.Quote(n.Value)}
	case "!!int":
		return ir.Token{Kind: ir.TokenInt, Text: n.Value}
	case "!!float":
		return ir.Token{Kind: ir.TokenFloat, Text: n.Value}
	default:
		return ir.Token{Kind: ir.TokenIdent, Text: n.Value}
	}
}
