package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/telegen/internal/loader"
	"github.com/roach88/telegen/internal/loader/cueschema"
	"github.com/roach88/telegen/internal/loader/yamlschema"
	"github.com/roach88/telegen/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output   string // output file path
	Database string // ledger path; empty disables the ledger
	Package  string // overrides the schema's package name
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <schema-dir>",
		Short: "Compile CUE or YAML record schemas to Go",
		Long: `Compile record schemas to Go source.

The directory holds either CUE (.cue) or YAML (.yaml, .yml) schema files,
not both. Each record becomes a struct declaration and its ToPoint method.
The package name comes from go_package (CUE) or package (YAML) unless
--package is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite ledger")
	cmd.Flags().StringVar(&opts.Package, "package", "", "Go package name of the output file")

	return cmd
}

func runCompile(opts *CompileOptions, schemaDir string, cmd *cobra.Command) error {
	p, err := newPipeline(opts.RootOptions, cmd, schemaDir)
	if err != nil {
		return err
	}

	pkg, kind, err := loadSchema(schemaDir)
	if err != nil {
		return outputLoadError(p.formatter, "Compilation", err)
	}
	p.formatter.VerboseLog("Found %d %s file(s) in %s", len(pkg.Files), kind, schemaDir)

	if opts.Package != "" {
		pkg.Name = opts.Package
	}
	if pkg.Name == "" {
		return outputCommandError(p.formatter, loader.ErrCodeSchema,
			fmt.Sprintf("no package name for %s: set it in the schema or pass --package", schemaDir), nil)
	}

	return p.run(cmd.Context(), job{
		action:    "Compilation",
		kind:      kind,
		pkg:       pkg,
		emitTypes: true,
		output:    opts.Output,
		database:  opts.Database,
	})
}

// loadSchema loads the CUE or YAML schema files in dir and reports which kind
// it found.
func loadSchema(dir string) (*loader.Package, string, error) {
	if err := loader.CheckDir(dir); err != nil {
		return nil, "", err
	}
	cueFiles, err := loader.FindFiles(dir, ".cue")
	if err != nil {
		return nil, "", err
	}
	yamlFiles, err := loader.FindFiles(dir, ".yaml", ".yml")
	if err != nil {
		return nil, "", err
	}

	switch {
	case len(cueFiles) > 0 && len(yamlFiles) > 0:
		return nil, "", &loader.LoadError{
			Code:    loader.ErrCodeGeneric,
			Message: fmt.Sprintf("found both CUE and YAML schema files in %s", dir),
		}
	case len(cueFiles) > 0:
		pkg, err := cueschema.Load(dir)
		return pkg, store.KindCUE, err
	case len(yamlFiles) > 0:
		pkg, err := yamlschema.Load(dir)
		return pkg, store.KindYAML, err
	default:
		return nil, "", &loader.LoadError{
			Code:    loader.ErrCodeNoFiles,
			Message: fmt.Sprintf("no CUE or YAML schema files found in %s", dir),
		}
	}
}
