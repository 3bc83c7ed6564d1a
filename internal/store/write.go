package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/telegen/internal/ir"
)

// Input kinds recorded on a run.
const (
	KindGo   = "go"
	KindCUE  = "cue"
	KindYAML = "yaml"
)

// Run is one invocation of telegen that wrote an output file.
type Run struct {
	ID               string
	Seq              int64 // assigned by WriteRun
	Source           string
	Kind             string
	Output           string
	OutputHash       string
	GeneratorVersion string
	IRVersion        string
	Generations      []Generation // declaration order
}

// Generation is one record converted in a run.
type Generation struct {
	Record      string
	Measurement string
	SchemaHash  string
	Definition  string // canonical JSON of the record definition
}

// NewGeneration builds the ledger entry for a generated declaration.
func NewGeneration(d ir.GeneratedDecl) (Generation, error) {
	hash, err := ir.SchemaHash(d.Record)
	if err != nil {
		return Generation{}, err
	}
	def, err := ir.MarshalCanonical(d.Record.Canonical())
	if err != nil {
		return Generation{}, fmt.Errorf("marshal definition of %s: %w", d.Record.Name, err)
	}
	return Generation{
		Record:      d.Record.Name,
		Measurement: d.Measurement,
		SchemaHash:  hash,
		Definition:  string(def),
	}, nil
}

// WriteRun inserts a run and its generations in one transaction and returns
// the run with its assigned seq. Writing the same run ID twice is an error.
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return run, fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	var last sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM runs`).Scan(&last); err != nil {
		return run, fmt.Errorf("write run: next seq: %w", err)
	}
	run.Seq = last.Int64 + 1

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, source, kind, output, output_hash, generator_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Source,
		run.Kind,
		run.Output,
		run.OutputHash,
		run.GeneratorVersion,
		run.IRVersion,
	)
	if err != nil {
		return run, fmt.Errorf("write run %s: %w", run.ID, err)
	}

	for i, g := range run.Generations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO generations
			(run_id, ordinal, record, measurement, schema_hash, definition)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, i, g.Record, g.Measurement, g.SchemaHash, g.Definition)
		if err != nil {
			return run, fmt.Errorf("write generation %s: %w", g.Record, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return run, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}
