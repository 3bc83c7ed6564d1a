package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/telegen/internal/analysis"
	"github.com/roach88/telegen/internal/codegen"
	"github.com/roach88/telegen/internal/ir"
	"github.com/roach88/telegen/internal/loader"
	"github.com/roach88/telegen/internal/loader/gosrc"
	"github.com/roach88/telegen/internal/loader/yamlschema"
)

// Harness is the scenario execution engine.
type Harness struct {
	generator *codegen.Generator
	emitTypes bool
	logger    *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the records from the scenario's source or schema
//  2. Generate every record, keeping each outcome and diagnostic
//  3. Render the file when no record was rejected
//  4. Evaluate the assertions
//
// The returned error covers inputs that cannot be loaded at all; a rejected
// record is an outcome, not an error.
func Run(scenario *Scenario) (*Result, error) {
	pkg, err := load(scenario)
	result := NewResult()
	var diag *analysis.DiagnosticError
	switch {
	case errors.As(err, &diag):
		// Loaders reject malformed annotations before analysis runs.
		result.Records = append(result.Records, RecordOutcome{Name: diag.Record, Diagnostic: diag})
		evaluate(result, scenario.Assertions)
		return result, nil
	case err != nil:
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	h := &Harness{
		emitTypes: scenario.Schema != "",
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	h.generator = codegen.New(codegen.Options{EmitTypes: h.emitTypes, Logger: h.logger})

	if err := h.generate(pkg, result); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	evaluate(result, scenario.Assertions)
	return result, nil
}

func load(s *Scenario) (*loader.Package, error) {
	if s.Schema != "" {
		pkg, err := yamlschema.Decode(s.Name+".yaml", []byte(s.Schema))
		if err != nil {
			return nil, err
		}
		if pkg.Name == "" {
			pkg.Name = "scenario"
		}
		return pkg, nil
	}
	return gosrc.LoadSource(s.Name+".go", []byte(s.Source))
}

func (h *Harness) generate(pkg *loader.Package, result *Result) error {
	decls := make([]ir.GeneratedDecl, 0, len(pkg.Records))
	failed := false
	for _, rec := range pkg.Records {
		d, err := h.generator.Generate(rec)
		var diag *analysis.DiagnosticError
		switch {
		case errors.As(err, &diag):
			failed = true
			result.Records = append(result.Records, RecordOutcome{Name: rec.Name, Diagnostic: diag})
			continue
		case err != nil:
			return err
		}
		decls = append(decls, *d)
		result.Records = append(result.Records, RecordOutcome{
			Name:        rec.Name,
			Measurement: d.Measurement,
			Plans:       d.Plans,
			TypeParams:  d.TypeParams,
		})
	}
	if failed || len(decls) == 0 {
		return nil
	}

	src, err := h.generator.Render(pkg.Name, decls, pkg.Imports...)
	if err != nil {
		return err
	}
	result.Output = string(src)
	return nil
}
