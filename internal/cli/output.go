package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/telegen/internal/analysis"
	"github.com/roach88/telegen/internal/ir"
	"github.com/roach88/telegen/internal/loader"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Record diagnostics, or --check found a stale file
	ExitCommandError = 2 // Command error (invalid paths, unreadable input, database errors)
)

// Error codes raised by the commands themselves. Loader codes are E001-E007,
// record diagnostics E201-E204.
const (
	ErrCodeWriteFailed = "E008" // output file write error
	ErrCodeDatabase    = "E009" // ledger open/read/write error
	ErrCodeOutOfDate   = "E010" // --check: file on disk differs
	ErrCodeConfig      = "E011" // .telegen.yaml unreadable or invalid
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload, or every error on failure
	Error  *CLIError `json:"error,omitempty"` // first error
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code     string       `json:"code"`               // "E005", "E201", etc.
	Message  string       `json:"message"`            // human-readable message
	Record   string       `json:"record,omitempty"`   // record diagnostics only
	Field    string       `json:"field,omitempty"`    // field-level diagnostics only
	Position *ir.Position `json:"position,omitempty"` // source location when known
	Details  any          `json:"details,omitempty"`  // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// describeError maps loader and analysis errors onto a CLIError.
func describeError(err error) CLIError {
	var diag *analysis.DiagnosticError
	if errors.As(err, &diag) {
		e := CLIError{Code: diag.Code, Message: diag.Message, Record: diag.Record, Field: diag.Field}
		if diag.Pos.IsValid() {
			pos := diag.Pos
			e.Position = &pos
		}
		return e
	}
	var loadErr *loader.LoadError
	if errors.As(err, &loadErr) {
		e := CLIError{Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			pos := loadErr.Pos
			e.Position = &pos
		}
		return e
	}
	return CLIError{Code: loader.ErrCodeGeneric, Message: err.Error()}
}

// isDiagnostic reports whether err is a problem with a record rather than
// with the command's input.
func isDiagnostic(err error) bool {
	var diag *analysis.DiagnosticError
	return errors.As(err, &diag)
}

// outputCommandError reports a single command-level error (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputLoadError reports a loader error. A record diagnostic raised while
// loading is reported like any other diagnostic.
func outputLoadError(formatter *OutputFormatter, action string, err error) error {
	if isDiagnostic(err) {
		return outputDiagnostics(formatter, action, []error{err})
	}
	e := describeError(err)
	if e.Position != nil && formatter.Format != "json" {
		return outputCommandError(formatter, e.Code, fmt.Sprintf("%s: %s", e.Position, e.Message), nil)
	}
	return outputCommandError(formatter, e.Code, e.Message, nil)
}

// outputDiagnostics reports every record diagnostic of a run. Nothing has been
// written when this is called.
func outputDiagnostics(formatter *OutputFormatter, action string, errs []error) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("%s failed with %d error(s)", action, len(errs)))

	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			cliErrors[i] = describeError(err)
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintf(formatter.Writer, "✗ %s failed\n\n", action)
	for _, err := range errs {
		e := describeError(err)
		if e.Position != nil {
			fmt.Fprintln(formatter.Writer, e.Position)
		}
		subject := e.Record
		if e.Field != "" {
			subject += "." + e.Field
		}
		if subject != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", e.Code, subject, e.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", e.Code, e.Message)
		}
	}
	return exitErr
}
