package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RecordEntry is one generation of a record, joined with its run.
type RecordEntry struct {
	RunID      string
	Seq        int64
	Source     string
	Generation Generation
}

// LatestRun returns the most recent run for source. ok is false when the
// source has never been generated.
func (s *Store) LatestRun(ctx context.Context, source string) (run Run, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, source, kind, output, output_hash, generator_version, ir_version
		FROM runs
		WHERE source = ?
		ORDER BY seq DESC
		LIMIT 1
	`, source)
	run, err = scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("latest run for %s: %w", source, err)
	}

	run.Generations, err = s.readGenerations(ctx, run.ID)
	if err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

// ListRuns returns runs in seq order, with their generations. An empty source
// lists every run.
func (s *Store) ListRuns(ctx context.Context, source string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, source, kind, output, output_hash, generator_version, ir_version
		FROM runs
		WHERE ? = '' OR source = ?
		ORDER BY seq ASC
	`, source, source)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Generations are read after rows is closed; the pool has one connection.
	for i := range runs {
		runs[i].Generations, err = s.readGenerations(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// RecordHistory returns every generation of the named record in seq order.
func (s *Store) RecordHistory(ctx context.Context, record string) ([]RecordEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.seq, r.source, g.record, g.measurement, g.schema_hash, g.definition
		FROM generations g
		JOIN runs r ON g.run_id = r.id
		WHERE g.record = ?
		ORDER BY r.seq ASC, g.ordinal ASC
	`, record)
	if err != nil {
		return nil, fmt.Errorf("query record history: %w", err)
	}
	defer rows.Close()

	entries := []RecordEntry{}
	for rows.Next() {
		var e RecordEntry
		g := &e.Generation
		if err := rows.Scan(&e.RunID, &e.Seq, &e.Source, &g.Record, &g.Measurement, &g.SchemaHash, &g.Definition); err != nil {
			return nil, fmt.Errorf("scan record history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record history: %w", err)
	}
	return entries, nil
}

func (s *Store) readGenerations(ctx context.Context, runID string) ([]Generation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record, measurement, schema_hash, definition
		FROM generations
		WHERE run_id = ?
		ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	gens := []Generation{}
	for rows.Next() {
		var g Generation
		if err := rows.Scan(&g.Record, &g.Measurement, &g.SchemaHash, &g.Definition); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return gens, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.Seq, &r.Source, &r.Kind, &r.Output, &r.OutputHash, &r.GeneratorVersion, &r.IRVersion)
	return r, err
}

// Unchanged reports whether gens is the same sequence of records, with the
// same schema hashes, as the run's generations.
func (r Run) Unchanged(gens []Generation) bool {
	if len(r.Generations) != len(gens) {
		return false
	}
	for i, g := range gens {
		prev := r.Generations[i]
		if prev.Record != g.Record || prev.SchemaHash != g.SchemaHash {
			return false
		}
	}
	return true
}
