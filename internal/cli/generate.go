package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/telegen/internal/loader/gosrc"
	"github.com/roach88/telegen/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Output   string // output file path
	Database string // ledger path; empty disables the ledger
	Check    bool   // compare instead of write
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <pkg-dir>",
		Short: "Generate ToPoint methods for a Go package",
		Long: `Generate ToPoint methods for every //telegraf:metric type in a Go package.

The output is written next to the sources as <package>_telegen.go unless
--output is given. Generation is all-or-nothing: if any record has a
diagnostic, no file is written.

Exit codes:
  0 - Output written, skipped as unchanged, or up to date (--check)
  1 - Record diagnostics, or --check found a stale file
  2 - Command error (directory not found, unreadable config, etc.)

Examples:
  telegen generate ./metrics
  telegen generate ./metrics --db telegen.db
  telegen generate ./metrics --check`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite ledger")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "fail if the generated file is out of date instead of writing it")

	return cmd
}

func runGenerate(opts *GenerateOptions, dir string, cmd *cobra.Command) error {
	p, err := newPipeline(opts.RootOptions, cmd, dir)
	if err != nil {
		return err
	}

	pkg, err := gosrc.Load(dir, gosrc.Options{SkipSuffix: p.cfg.OutputSuffix})
	if err != nil {
		return outputLoadError(p.formatter, "Generation", err)
	}

	return p.run(cmd.Context(), job{
		action:   "Generation",
		kind:     store.KindGo,
		pkg:      pkg,
		output:   opts.Output,
		database: opts.Database,
		check:    opts.Check,
	})
}
