package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gofmask/internal/logging"
	"gofmask/internal/relocate"
	"gofmask/internal/services"
	"gofmask/internal/services/fmask"
	"gofmask/internal/staging"
)

// Runner runs Fmask in a working directory.
type Runner interface {
	Run(ctx context.Context, cmd fmask.Command, workDir string, ordinal int) fmask.Outcome
}

// Stager extracts an archive into a job-owned directory.
type Stager interface {
	Stage(ctx context.Context, archivePath string) (*staging.Context, error)
}

// Option configures optional Scheduler behavior.
type Option func(*Scheduler)

// WithProgress sets the writer plain progress lines are printed to.
func WithProgress(w io.Writer) Option {
	return func(s *Scheduler) {
		if w != nil {
			s.progress = w
		}
	}
}

// WithHome overrides the directory cloud masks fall back to when no output
// directory is given.
func WithHome(dir string) Option {
	return func(s *Scheduler) {
		s.home = dir
	}
}

// WithPhysicalCPUs overrides the physical core probe.
func WithPhysicalCPUs(fn func() int) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.physicalCPUs = fn
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// Scheduler fans a batch of products out to jobs.
type Scheduler struct {
	runner       Runner
	stager       Stager
	relocator    *relocate.Relocator
	progress     io.Writer
	home         string
	physicalCPUs func() int
	logger       *slog.Logger
}

// New constructs a Scheduler.
func New(runner Runner, stager Stager, opts ...Option) *Scheduler {
	home, _ := os.UserHomeDir()
	s := &Scheduler{
		runner:       runner,
		stager:       stager,
		progress:     os.Stdout,
		home:         home,
		physicalCPUs: PhysicalCPUs,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "dispatch")
	s.relocator = relocate.New(s.progress, s.logger)
	return s
}

// Dispatch processes every product and blocks until all jobs have finished.
// With more than one worker the jobs run concurrently and every outcome is
// collected. With a single worker they run in input order and the first
// failure skips the rest.
func (s *Scheduler) Dispatch(ctx context.Context, products []string, outDir string, override int, cmd fmask.Command) Summary {
	summary := Summary{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Results: make([]Result, len(products)),
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, s.logger)

	summary.Workers = WorkerCount(s.physicalCPUs(), len(products), override)
	logger.Info("dispatching batch",
		logging.Int("products", len(products)),
		logging.Int("workers", summary.Workers),
		logging.String("out_dir", outDir),
	)

	if summary.Workers > 1 {
		s.dispatchConcurrent(ctx, products, outDir, cmd, summary.Workers, summary.Results)
	} else {
		s.dispatchSequential(ctx, products, outDir, cmd, summary.Results)
	}

	summary.Duration = time.Since(summary.Started)
	logger.Info("batch finished",
		logging.Int("succeeded", summary.Count(StatusSucceeded)),
		logging.Int("failed", summary.Count(StatusFailed)),
		logging.Int("skipped", summary.Count(StatusSkipped)),
		logging.Duration("duration", summary.Duration),
	)
	return summary
}

func (s *Scheduler) dispatchSequential(ctx context.Context, products []string, outDir string, cmd fmask.Command, results []Result) {
	var abort error
	for i, source := range products {
		job := Job{Source: source, OutDir: outDir, Command: cmd}
		if abort == nil {
			abort = ctx.Err()
		}
		if abort != nil {
			results[i] = skipped(job, abort)
			continue
		}
		results[i] = s.runJob(ctx, job)
		if results[i].Status == StatusFailed {
			abort = results[i].Err
		}
	}
}

func (s *Scheduler) dispatchConcurrent(ctx context.Context, products []string, outDir string, cmd fmask.Command, workers int, results []Result) {
	var g errgroup.Group
	g.SetLimit(workers)
	for i, source := range products {
		job := Job{Ordinal: i + 1, Source: source, OutDir: outDir, Command: cmd}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = skipped(job, err)
				return nil
			}
			results[i] = s.runJob(ctx, job)
			return nil
		})
	}
	_ = g.Wait()
}

func skipped(job Job, cause error) Result {
	return Result{Job: job, Status: StatusSkipped, ToolExit: -1, Err: fmt.Errorf("%w: %w", ErrSkipped, cause)}
}
