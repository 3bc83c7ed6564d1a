package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/telegen/internal/testutil"
)

const cpuSource = `package metrics

import "time"

// CPU is a host CPU sample.
//
//telegraf:metric
//telegraf:measurement "cpu"
type CPU struct {
	Host  string ` + "`telegraf:\"tag\"`" + `
	Usage float64
	At    time.Time ` + "`telegraf:\"timestamp\"`" + `
}

// Untracked has no marker.
type Untracked struct {
	Name string
}
`

const badSource = `package metrics

//telegraf:metric
type Event interface {
	isEvent()
}

//telegraf:metric
type Sample struct {
	Value int ` + "`telegraf:\"42\"`" + `
}
`

// writeFiles writes name -> content pairs into a new temp dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	if opts == nil {
		opts = &RootOptions{}
	}
	if opts.IDs == nil {
		opts.IDs = testutil.NewSeqIDGenerator("run")
	}
	cmd := newRootCommand(opts)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
