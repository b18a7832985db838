package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gofmask/internal/dispatch"
	"gofmask/internal/services"
)

// timeLayout has a fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one recorded batch.
type Run struct {
	ID        string
	Command   string
	OutDir    string
	Workers   int
	StartedAt time.Time
	Duration  time.Duration
	Succeeded int
	Failed    int
	Skipped   int
	Jobs      []Job
}

// Job is one recorded job outcome.
type Job struct {
	Ordinal      int
	Source       string
	WorkDir      string
	Artifact     string
	Status       string
	ToolExit     int
	ErrorKind    string
	ErrorMessage string
	Duration     time.Duration
}

// FromSummary converts a batch summary into a Run. command names the CLI
// command that produced it.
func FromSummary(summary dispatch.Summary, command, outDir string) Run {
	run := Run{
		ID:        summary.RunID,
		Command:   command,
		OutDir:    outDir,
		Workers:   summary.Workers,
		StartedAt: summary.Started,
		Duration:  summary.Duration,
		Succeeded: summary.Count(dispatch.StatusSucceeded),
		Failed:    summary.Count(dispatch.StatusFailed),
		Skipped:   summary.Count(dispatch.StatusSkipped),
		Jobs:      make([]Job, 0, len(summary.Results)),
	}
	for _, r := range summary.Results {
		job := Job{
			Ordinal:  r.Job.Ordinal,
			Source:   r.Job.Source,
			WorkDir:  r.WorkDir,
			Artifact: r.Artifact,
			Status:   string(r.Status),
			ToolExit: r.ToolExit,
			Duration: r.Duration,
		}
		if r.Err != nil {
			job.ErrorKind = services.Kind(r.Err)
			if errors.Is(r.Err, dispatch.ErrSkipped) {
				job.ErrorKind = string(dispatch.StatusSkipped)
			}
			job.ErrorMessage = r.Err.Error()
		}
		run.Jobs = append(run.Jobs, job)
	}
	return run
}

// Record stores a run and its jobs in a single transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id is empty")
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `INSERT INTO runs
			(id, command, out_dir, workers, started_at, duration_ms, succeeded, failed, skipped)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.Command, run.OutDir, run.Workers,
			run.StartedAt.UTC().Format(timeLayout), run.Duration.Milliseconds(),
			run.Succeeded, run.Failed, run.Skipped,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for i, job := range run.Jobs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO jobs
				(run_id, position, ordinal, source, work_dir, artifact, status, tool_exit, error_kind, error_message, duration_ms)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				run.ID, i, job.Ordinal, job.Source, job.WorkDir, job.Artifact, job.Status,
				job.ToolExit, job.ErrorKind, job.ErrorMessage, job.Duration.Milliseconds(),
			); err != nil {
				return fmt.Errorf("insert job %d: %w", i, err)
			}
		}
		return tx.Commit()
	})
}

// Recent returns up to limit runs, newest first, without their jobs.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, command, out_dir, workers, started_at, duration_ms, succeeded, failed, skipped
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run with its jobs in input order. A missing run returns
// sql.ErrNoRows.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, command, out_dir, workers, started_at, duration_ms, succeeded, failed, skipped
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT ordinal, source, work_dir, artifact, status, tool_exit, error_kind, error_message, duration_ms
		FROM jobs WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return Run{}, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			job        Job
			durationMS int64
		)
		if err := rows.Scan(&job.Ordinal, &job.Source, &job.WorkDir, &job.Artifact, &job.Status,
			&job.ToolExit, &job.ErrorKind, &job.ErrorMessage, &durationMS); err != nil {
			return Run{}, fmt.Errorf("scan job: %w", err)
		}
		job.Duration = time.Duration(durationMS) * time.Millisecond
		run.Jobs = append(run.Jobs, job)
	}
	return run, rows.Err()
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id NOT IN
			(SELECT id FROM runs ORDER BY started_at DESC LIMIT ?)`, keep)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		startedAt  string
		durationMS int64
	)
	if err := row.Scan(&run.ID, &run.Command, &run.OutDir, &run.Workers, &startedAt, &durationMS,
		&run.Succeeded, &run.Failed, &run.Skipped); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	parsed, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	run.StartedAt = parsed
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}
