package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/telegen/internal/analysis"
	"github.com/roach88/telegen/internal/ir"
	"github.com/roach88/telegen/internal/loader"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E005", "directory not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
	assert.Equal(t, "directory not found", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"file": "metrics.cue", "line": "42"}
	err := formatter.Error("E007", "field not allowed", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("Wrote metrics_telegen.go")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Wrote metrics_telegen.go")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E005", "directory not found", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E005]")
	assert.Contains(t, buf.String(), "directory not found")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"file": "metrics.cue"}
	err := formatter.Error("E007", "field not allowed", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E007]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Loaded %d record(s)", 3)

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Loaded 3 record(s)")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "E203",
		Message: "expected role identifier",
		Record:  "CPU",
		Field:   "Host",
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "E203", decoded.Code)
	assert.Equal(t, "Host", decoded.Field)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))

	wrapped := fmt.Errorf("running: %w", WrapExitError(ExitFailure, "diagnostics", errors.New("E201")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "running: diagnostics: E201", wrapped.Error())
}

func TestDescribeError(t *testing.T) {
	diag := &analysis.DiagnosticError{
		Code:    analysis.ErrMalformedRole,
		Record:  "CPU",
		Field:   "Host",
		Message: "expected role identifier",
		Pos:     ir.Position{File: "metrics.go", Line: 7, Column: 2},
	}
	got := describeError(fmt.Errorf("generate: %w", diag))
	assert.Equal(t, analysis.ErrMalformedRole, got.Code)
	assert.Equal(t, "CPU", got.Record)
	assert.Equal(t, "Host", got.Field)
	require.NotNil(t, got.Position)
	assert.Equal(t, 7, got.Position.Line)

	got = describeError(&loader.LoadError{Code: loader.ErrCodeNoFiles, Message: "no Go files"})
	assert.Equal(t, CLIError{Code: loader.ErrCodeNoFiles, Message: "no Go files"}, got)

	got = describeError(errors.New("boom"))
	assert.Equal(t, loader.ErrCodeGeneric, got.Code)
}

func TestOutputDiagnosticsText(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := outputDiagnostics(formatter, "Generation", []error{
		&analysis.DiagnosticError{Code: analysis.ErrMalformedShape, Record: "Event", Message: "sum types are not supported"},
		&analysis.DiagnosticError{
			Code: analysis.ErrInvalidRecord, Record: "CPU", Field: "Host", Message: "duplicate field",
			Pos: ir.Position{File: "metrics.go", Line: 9, Column: 2},
		},
	})
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out := buf.String()
	assert.Contains(t, out, "✗ Generation failed")
	assert.Contains(t, out, "  E201: Event: sum types are not supported")
	assert.Contains(t, out, "metrics.go:9:2\n  E204: CPU.Host: duplicate field")
}
