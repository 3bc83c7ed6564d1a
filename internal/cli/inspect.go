package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/telegen/internal/analysis"
	"github.com/roach88/telegen/internal/ir"
	"github.com/roach88/telegen/internal/loader"
	"github.com/roach88/telegen/internal/loader/gosrc"
	"github.com/roach88/telegen/internal/store"
)

// InspectResult is the analysis of every record in a directory.
type InspectResult struct {
	Package string             `json:"package"`
	Kind    string             `json:"kind"`
	Records []RecordInspection `json:"records"`
}

// RecordInspection is what generation would decide for one record.
type RecordInspection struct {
	Name        string                `json:"name"`
	Measurement string                `json:"measurement,omitempty"`
	TypeParams  []ir.GenericParameter `json:"type_params,omitempty"` // propagated bounds
	Fields      []FieldInspection     `json:"fields,omitempty"`
	Diagnostic  *CLIError             `json:"diagnostic,omitempty"`
}

// FieldInspection is one field plan.
type FieldInspection struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Role     string `json:"role"`
	Optional bool   `json:"optional"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <pkg-dir|schema-dir>",
		Short: "Show the measurement, roles and optionality of each record",
		Long: `Inspect analyzes every record in a Go package or schema directory and
prints the decisions generation would make, without writing anything.
Records with diagnostics are listed with their error; the exit code is 1
if there are any.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, dir string, cmd *cobra.Command) error {
	p, err := newPipeline(opts, cmd, dir)
	if err != nil {
		return err
	}

	pkg, kind, err := loadAny(dir, p.cfg.OutputSuffix)
	if err != nil {
		return outputLoadError(p.formatter, "Inspection", err)
	}

	result := InspectResult{Package: pkg.Name, Kind: kind, Records: []RecordInspection{}}
	failed := 0
	analyzer := p.cfg.Analyzer()
	for _, rec := range pkg.Records {
		ri := inspectRecord(analyzer, rec)
		if ri.Diagnostic != nil {
			failed++
		}
		result.Records = append(result.Records, ri)
	}

	if p.formatter.Format == "json" {
		if err := p.formatter.Success(result); err != nil {
			return err
		}
	} else {
		writeInspection(p.formatter, result)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d record(s) have diagnostics", failed))
	}
	return nil
}

func inspectRecord(analyzer *analysis.Analyzer, rec ir.RecordDefinition) RecordInspection {
	ri := RecordInspection{Name: rec.Name}
	res, err := analyzer.Analyze(rec)
	if err != nil {
		e := describeError(err)
		ri.Diagnostic = &e
		return ri
	}
	ri.Measurement = res.Measurement
	ri.TypeParams = res.TypeParams
	for _, plan := range res.Plans {
		ri.Fields = append(ri.Fields, FieldInspection{
			Name:     plan.Field.Name,
			Type:     plan.Field.Type.String(),
			Role:     plan.Role.String(),
			Optional: plan.Optional,
		})
	}
	return ri
}

func writeInspection(f *OutputFormatter, result InspectResult) {
	fmt.Fprintf(f.Writer, "Package %s (%s)\n", result.Package, result.Kind)
	if len(result.Records) == 0 {
		fmt.Fprintln(f.Writer, "\nNo records found.")
		return
	}

	for _, r := range result.Records {
		fmt.Fprintln(f.Writer)
		if r.Diagnostic != nil {
			fmt.Fprintf(f.Writer, "✗ %s: %s: %s\n", r.Name, r.Diagnostic.Code, r.Diagnostic.Message)
			if r.Diagnostic.Position != nil {
				fmt.Fprintf(f.Writer, "  at %s\n", r.Diagnostic.Position)
			}
			continue
		}

		name := r.Name
		if len(r.TypeParams) > 0 {
			params := make([]string, len(r.TypeParams))
			for i, tp := range r.TypeParams {
				params[i] = tp.Name + " " + tp.Constraint
			}
			name += "[" + strings.Join(params, ", ") + "]"
		}
		fmt.Fprintf(f.Writer, "%s → %s\n", name, r.Measurement)

		tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
		for _, fi := range r.Fields {
			var flag string
			if fi.Optional {
				flag = "optional"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", fi.Name, fi.Type, fi.Role, flag)
		}
		tw.Flush()
	}
}

// loadAny loads dir as a Go package when it has Go files, otherwise as a
// schema directory.
func loadAny(dir, skipSuffix string) (*loader.Package, string, error) {
	if err := loader.CheckDir(dir); err != nil {
		return nil, "", err
	}
	goFiles, err := loader.FindFiles(dir, ".go")
	if err != nil {
		return nil, "", err
	}
	if len(goFiles) > 0 {
		pkg, err := gosrc.Load(dir, gosrc.Options{SkipSuffix: skipSuffix})
		return pkg, store.KindGo, err
	}
	return loadSchema(dir)
}
