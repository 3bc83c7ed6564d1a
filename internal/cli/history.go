package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/telegen/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Record   string // optional - one record's schema history
	Source   string // optional - runs for one input directory
}

// RunSummary is one ledger run in history output.
type RunSummary struct {
	ID               string   `json:"id"`
	Seq              int64    `json:"seq"`
	Source           string   `json:"source"`
	Kind             string   `json:"kind"`
	Output           string   `json:"output"`
	GeneratorVersion string   `json:"generator_version"`
	Records          []string `json:"records"`
}

// RecordVersion is one generation of a record in history output.
type RecordVersion struct {
	RunID       string `json:"run_id"`
	Seq         int64  `json:"seq"`
	Source      string `json:"source"`
	Measurement string `json:"measurement"`
	SchemaHash  string `json:"schema_hash"`
	Changed     bool   `json:"changed"` // schema differs from the previous entry
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past generation runs from the ledger",
		Long: `List the runs recorded by generate --db and compile --db.

With --record, list every generation of one record instead and mark the
runs where its schema changed.

Examples:
  telegen history --db telegen.db
  telegen history --db telegen.db --source ./metrics
  telegen history --db telegen.db --record CPU --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Record, "record", "", "show one record's history")
	cmd.Flags().StringVar(&opts.Source, "source", "", "only runs for this input directory")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	if opts.Record != "" {
		entries, err := st.RecordHistory(ctx, opts.Record)
		if err != nil {
			return outputCommandError(formatter, ErrCodeDatabase, err.Error(), nil)
		}
		versions := recordVersions(entries)
		if opts.Format == "json" {
			return formatter.Success(versions)
		}
		outputRecordHistoryText(formatter, opts.Record, versions)
		return nil
	}

	source := opts.Source
	if source != "" {
		source = absPath(source)
	}
	runs, err := st.ListRuns(ctx, source)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, err.Error(), nil)
	}
	summaries := make([]RunSummary, len(runs))
	for i, r := range runs {
		summaries[i] = summarizeRun(r)
	}
	if opts.Format == "json" {
		return formatter.Success(summaries)
	}
	outputRunsText(formatter, summaries)
	return nil
}

func summarizeRun(r store.Run) RunSummary {
	s := RunSummary{
		ID:               r.ID,
		Seq:              r.Seq,
		Source:           r.Source,
		Kind:             r.Kind,
		Output:           r.Output,
		GeneratorVersion: r.GeneratorVersion,
		Records:          make([]string, len(r.Generations)),
	}
	for i, g := range r.Generations {
		s.Records[i] = g.Record
	}
	return s
}

func recordVersions(entries []store.RecordEntry) []RecordVersion {
	versions := make([]RecordVersion, len(entries))
	for i, e := range entries {
		versions[i] = RecordVersion{
			RunID:       e.RunID,
			Seq:         e.Seq,
			Source:      e.Source,
			Measurement: e.Generation.Measurement,
			SchemaHash:  e.Generation.SchemaHash,
			Changed:     i == 0 || entries[i-1].Generation.SchemaHash != e.Generation.SchemaHash,
		}
	}
	return versions
}

func outputRunsText(f *OutputFormatter, runs []RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return
	}
	fmt.Fprintf(f.Writer, "%d run(s)\n\n", len(runs))
	for _, r := range runs {
		fmt.Fprintf(f.Writer, "#%d %s (%s, telegen %s)\n", r.Seq, r.ID, r.Kind, r.GeneratorVersion)
		fmt.Fprintf(f.Writer, "  %s → %s\n", r.Source, r.Output)
		fmt.Fprintf(f.Writer, "  %d record(s)", len(r.Records))
		if len(r.Records) > 0 && f.Verbose {
			fmt.Fprintf(f.Writer, ": %v", r.Records)
		}
		fmt.Fprintln(f.Writer)
	}
}

func outputRecordHistoryText(f *OutputFormatter, record string, versions []RecordVersion) {
	if len(versions) == 0 {
		fmt.Fprintf(f.Writer, "No history for record %s.\n", record)
		return
	}
	fmt.Fprintf(f.Writer, "%s: %d generation(s)\n\n", record, len(versions))
	for _, v := range versions {
		marker := " "
		if v.Changed {
			marker = "*"
		}
		fmt.Fprintf(f.Writer, "%s #%d %s %s → %s\n", marker, v.Seq, v.RunID, shortHash(v.SchemaHash), v.Measurement)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
