package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/telegen/internal/codegen"
	"github.com/roach88/telegen/internal/config"
	"github.com/roach88/telegen/internal/ir"
	"github.com/roach88/telegen/internal/loader"
	"github.com/roach88/telegen/internal/store"
)

// Statuses of a generation result.
const (
	StatusWritten  = "written"    // output file written
	StatusSkipped  = "skipped"    // ledger shows nothing changed since the last run
	StatusUpToDate = "up-to-date" // --check: file on disk matches
	StatusEmpty    = "empty"      // no records; nothing written
)

// GenerationResult is the outcome of generate and compile.
type GenerationResult struct {
	Package string          `json:"package"`
	Source  string          `json:"source"`
	Output  string          `json:"output,omitempty"`
	Status  string          `json:"status"`
	RunID   string          `json:"run_id,omitempty"`
	Records []RecordSummary `json:"records"`
}

// RecordSummary describes one generated conversion.
type RecordSummary struct {
	Name        string `json:"name"`
	Measurement string `json:"measurement"`
	Tags        int    `json:"tags"`
	Fields      int    `json:"fields"`
	Timestamps  int    `json:"timestamps"`
	Generic     bool   `json:"generic,omitempty"`
}

// job is one package to turn into an output file.
type job struct {
	action    string // "Generation" | "Compilation", used in messages
	kind      string // store.KindGo, ...
	pkg       *loader.Package
	emitTypes bool
	output    string // empty: <dir>/<package><suffix>
	database  string
	check     bool
}

// pipeline carries what every generating command shares.
type pipeline struct {
	opts      *RootOptions
	formatter *OutputFormatter
	logger    *slog.Logger
	cfg       config.Config
}

func newPipeline(opts *RootOptions, cmd *cobra.Command, dir string) (*pipeline, error) {
	formatter := newFormatter(opts, cmd)
	cfg, err := config.Resolve(opts.Config, dir)
	if err != nil {
		return nil, outputCommandError(formatter, ErrCodeConfig, err.Error(), nil)
	}
	return &pipeline{
		opts:      opts,
		formatter: formatter,
		logger:    newLogger(opts, cmd.ErrOrStderr()),
		cfg:       cfg,
	}, nil
}

func (p *pipeline) generator(emitTypes bool) *codegen.Generator {
	return p.cfg.Generator(codegen.Options{EmitTypes: emitTypes, Logger: p.logger})
}

// generateDecls generates every record, collecting all diagnostics. Callers
// must not use the declarations when any error is returned.
func generateDecls(gen *codegen.Generator, recs []ir.RecordDefinition) ([]ir.GeneratedDecl, []error) {
	decls := make([]ir.GeneratedDecl, 0, len(recs))
	var errs []error
	for _, rec := range recs {
		d, err := gen.Generate(rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		decls = append(decls, *d)
	}
	return decls, errs
}

func (p *pipeline) run(ctx context.Context, j job) error {
	f := p.formatter
	f.VerboseLog("Loaded %d record(s) from %d file(s) in %s", len(j.pkg.Records), len(j.pkg.Files), j.pkg.Dir)

	gen := p.generator(j.emitTypes)
	decls, errs := generateDecls(gen, j.pkg.Records)
	if len(errs) > 0 {
		return outputDiagnostics(f, j.action, errs)
	}

	result := &GenerationResult{
		Package: j.pkg.Name,
		Source:  j.pkg.Dir,
		Records: summarize(decls),
	}
	if len(decls) == 0 {
		result.Status = StatusEmpty
		return p.outputResult(j, result)
	}

	src, err := gen.Render(j.pkg.Name, decls, j.pkg.Imports...)
	if err != nil {
		return outputCommandError(f, loader.ErrCodeGeneric, err.Error(), nil)
	}

	result.Output = j.output
	if result.Output == "" {
		result.Output = filepath.Join(j.pkg.Dir, j.pkg.Name+p.cfg.OutputSuffix)
	}

	if j.check {
		if err := p.check(result.Output, src); err != nil {
			return err
		}
		result.Status = StatusUpToDate
		return p.outputResult(j, result)
	}

	if err := p.emit(ctx, j, result, decls, src); err != nil {
		return err
	}
	return p.outputResult(j, result)
}

// check compares the file on disk with src.
func (p *pipeline) check(output string, src []byte) error {
	current, err := os.ReadFile(output)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return outputCommandError(p.formatter, ErrCodeWriteFailed, fmt.Sprintf("reading %s: %v", output, err), nil)
	}
	if !bytes.Equal(current, src) {
		msg := fmt.Sprintf("%s is out of date; run telegen to regenerate it", output)
		_ = p.formatter.Error(ErrCodeOutOfDate, msg, nil)
		return NewExitError(ExitFailure, msg)
	}
	return nil
}

// emit writes the output file and, with a database, records the run. A run
// whose records, generator version and output all match the previous run for
// the same source is skipped entirely.
func (p *pipeline) emit(ctx context.Context, j job, result *GenerationResult, decls []ir.GeneratedDecl, src []byte) error {
	f := p.formatter

	var st *store.Store
	var gens []store.Generation
	source, output := absPath(result.Source), absPath(result.Output)
	if j.database != "" {
		var err error
		st, err = store.Open(j.database)
		if err != nil {
			return outputCommandError(f, ErrCodeDatabase, err.Error(), nil)
		}
		defer st.Close()

		gens = make([]store.Generation, 0, len(decls))
		for _, d := range decls {
			g, err := store.NewGeneration(d)
			if err != nil {
				return outputCommandError(f, loader.ErrCodeGeneric, err.Error(), nil)
			}
			gens = append(gens, g)
		}

		latest, ok, err := st.LatestRun(ctx, source)
		if err != nil {
			return outputCommandError(f, ErrCodeDatabase, err.Error(), nil)
		}
		if ok && unchangedSince(latest, gens, output, src) {
			p.logger.Info("output unchanged; skipping", "source", source, "run", latest.ID)
			result.Status = StatusSkipped
			result.RunID = latest.ID
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(result.Output), 0o755); err != nil {
		return outputCommandError(f, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
	}
	if err := os.WriteFile(result.Output, src, 0o644); err != nil {
		return outputCommandError(f, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
	}
	result.Status = StatusWritten
	p.logger.Debug("wrote output", "path", result.Output, "bytes", len(src))

	if st == nil {
		return nil
	}
	run, err := st.WriteRun(ctx, store.Run{
		ID:               p.opts.idGenerator().Generate(),
		Source:           source,
		Kind:             j.kind,
		Output:           output,
		OutputHash:       ir.OutputHash(src),
		GeneratorVersion: ir.GeneratorVersion,
		IRVersion:        ir.SchemaVersion,
		Generations:      gens,
	})
	if err != nil {
		return outputCommandError(f, ErrCodeDatabase, err.Error(), nil)
	}
	result.RunID = run.ID
	p.logger.Info("recorded run", "run", run.ID, "seq", run.Seq, "records", len(gens))
	return nil
}

// unchangedSince reports whether writing src would repeat the latest run: same
// records, same generator, same output, and the file on disk untouched.
func unchangedSince(latest store.Run, gens []store.Generation, output string, src []byte) bool {
	if !latest.Unchanged(gens) || latest.GeneratorVersion != ir.GeneratorVersion {
		return false
	}
	if latest.Output != output || latest.OutputHash != ir.OutputHash(src) {
		return false
	}
	current, err := os.ReadFile(output)
	if err != nil {
		return false
	}
	return ir.OutputHash(current) == latest.OutputHash
}

func (p *pipeline) outputResult(j job, result *GenerationResult) error {
	f := p.formatter
	if f.Format == "json" {
		return f.Success(result)
	}

	w := f.Writer
	if result.Status == StatusEmpty {
		fmt.Fprintf(w, "No records found in %s\n", result.Source)
		return nil
	}

	verb := "Generated"
	if j.action == "Compilation" {
		verb = "Compiled"
	}
	fmt.Fprintf(w, "✓ %s %d record(s) for package %s\n\n", verb, len(result.Records), result.Package)
	for _, r := range result.Records {
		name := r.Name
		if r.Generic {
			name += "[...]"
		}
		fmt.Fprintf(w, "  %s → %s: %d tag(s), %d field(s), %d timestamp(s)\n",
			name, r.Measurement, r.Tags, r.Fields, r.Timestamps)
	}
	fmt.Fprintln(w)

	switch result.Status {
	case StatusWritten:
		fmt.Fprintf(w, "Wrote %s\n", result.Output)
	case StatusSkipped:
		fmt.Fprintf(w, "Unchanged since run %s; left %s as is\n", result.RunID, result.Output)
	case StatusUpToDate:
		fmt.Fprintf(w, "%s is up to date\n", result.Output)
	}
	if result.Status == StatusWritten && result.RunID != "" {
		fmt.Fprintf(w, "Recorded run %s\n", result.RunID)
	}
	return nil
}

func summarize(decls []ir.GeneratedDecl) []RecordSummary {
	out := make([]RecordSummary, 0, len(decls))
	for _, d := range decls {
		s := RecordSummary{
			Name:        d.Record.Name,
			Measurement: d.Measurement,
			Generic:     len(d.TypeParams) > 0,
		}
		for _, plan := range d.Plans {
			switch plan.Role {
			case ir.RoleTag:
				s.Tags++
			case ir.RoleTimestamp:
				s.Timestamps++
			default:
				s.Fields++
			}
		}
		out = append(out, s)
	}
	return out
}

// absPath returns path made absolute, or path unchanged if that fails.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
