package dispatch

import (
	"errors"
	"fmt"
	"time"

	"gofmask/internal/services/fmask"
)

// ErrSkipped marks jobs that never started because an earlier sequential job
// failed or the batch was cancelled.
var ErrSkipped = errors.New("skipped")

// Status is the terminal state of a job.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Job is one product to mask. It is immutable once created.
type Job struct {
	// Ordinal is 1-based on the concurrent path and 0 on the sequential path.
	Ordinal int
	Source  string
	OutDir  string
	Command fmask.Command
}

// Result reports how a job ended.
type Result struct {
	Job      Job
	Status   Status
	WorkDir  string
	Artifact string
	// ToolExit is the Fmask exit status, or -1 when it never ran to completion.
	ToolExit int
	Err      error
	Started  time.Time
	Duration time.Duration
}

// Summary collects the results of one batch, in input order.
type Summary struct {
	RunID    string
	Workers  int
	Started  time.Time
	Duration time.Duration
	Results  []Result
}

// Count returns how many results ended with status.
func (s Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Failed returns the number of failed jobs.
func (s Summary) Failed() int {
	return s.Count(StatusFailed)
}

// Err joins every job failure, or returns nil when all jobs that ran succeeded.
func (s Summary) Err() error {
	var errs []error
	for _, r := range s.Results {
		if r.Status == StatusFailed && r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Job.Source, r.Err))
		}
	}
	return errors.Join(errs...)
}
