package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gofmask/internal/logging"
	"gofmask/internal/product"
	"gofmask/internal/relocate"
	"gofmask/internal/services"
	"gofmask/internal/services/fmask"
	"gofmask/internal/staging"
)

// runJob takes one product from source path to relocated cloud mask.
func (s *Scheduler) runJob(ctx context.Context, job Job) (result Result) {
	ctx = services.WithOrdinal(ctx, job.Ordinal)
	ctx = services.WithProduct(ctx, job.Source)
	logger := logging.WithContext(ctx, s.logger)
	prefix := fmask.Prefix(job.Ordinal)

	result = Result{Job: job, ToolExit: -1, Started: time.Now()}
	defer func() {
		result.Duration = time.Since(result.Started)
		if result.Err != nil {
			result.Status = StatusFailed
			logging.ErrorWithContext(logger, "job failed", "job_failed",
				logging.Error(result.Err),
				logging.String("kind", services.Kind(result.Err)),
				logging.Duration("duration", result.Duration),
			)
			return
		}
		result.Status = StatusSucceeded
		logger.Info("job finished",
			logging.String("artifact", result.Artifact),
			logging.Duration("duration", result.Duration),
		)
	}()

	logger.Info("job started")

	var (
		sc      *staging.Context
		workDir string
		err     error
	)
	if product.IsArchive(job.Source) {
		sc, err = s.stager.Stage(ctx, job.Source)
		if err != nil {
			result.Err = err
			return result
		}
		fmt.Fprintf(s.progress, "%sextract product to %s\n", prefix, sc.Root)
		keep := false
		defer func() {
			s.releaseStaging(logger, sc, keep)
		}()
		workDir, err = product.ResolveStaged(job.Source, sc.Root)
		if err != nil {
			result.Err = err
			return result
		}
		result.WorkDir = workDir
		result.Artifact, result.ToolExit, result.Err = s.execute(ctx, job, workDir, true)
		keep = errors.Is(result.Err, services.ErrRelocation)
		return result
	}

	workDir, err = product.Resolve(job.Source)
	if err != nil {
		result.Err = err
		return result
	}
	result.WorkDir = workDir
	result.Artifact, result.ToolExit, result.Err = s.execute(ctx, job, workDir, false)
	return result
}

// execute runs Fmask in workDir and relocates its output when an output
// directory was given or the product was staged. Directory products without an
// output directory keep their mask in place and always succeed.
func (s *Scheduler) execute(ctx context.Context, job Job, workDir string, staged bool) (string, int, error) {
	logger := logging.WithContext(ctx, s.logger)

	outcome := s.runner.Run(ctx, job.Command, workDir, job.Ordinal)
	if err := ctx.Err(); err != nil {
		return "", outcome.ExitCode, err
	}
	if outcome.Err != nil {
		logging.WarnWithContext(logger, "fmask reported a failure", "fmask_failed",
			logging.Error(outcome.Err),
			logging.Int("exit_code", outcome.ExitCode),
			logging.String(logging.FieldErrorHint, "check the fmask output above"),
			logging.String(logging.FieldImpact, "cloud mask may be missing"),
		)
	}

	// Fmask's exit status does not decide the job; only relocation can fail it.
	if job.OutDir == "" && !staged {
		var artifact string
		if matches, err := relocate.FindArtifacts(workDir); err == nil && len(matches) == 1 {
			artifact = matches[0]
		}
		return artifact, outcome.ExitCode, nil
	}

	artifact, err := s.relocator.Relocate(ctx, workDir, job.OutDir, s.home, job.Ordinal)
	if err != nil && outcome.Err != nil {
		err = errors.Join(err, outcome.Err)
	}
	return artifact, outcome.ExitCode, err
}

// releaseStaging removes a job's extraction directory unless the cloud mask
// is still inside it.
func (s *Scheduler) releaseStaging(logger *slog.Logger, sc *staging.Context, keep bool) {
	if keep {
		logging.WarnWithContext(logger, "keeping extraction directory", "staging_kept",
			logging.String("dir", sc.Root),
			logging.String(logging.FieldErrorHint, "recover the cloud mask, then run 'gofmask staging clean'"),
			logging.String(logging.FieldImpact, "cloud mask left in extraction directory"),
		)
		return
	}
	if err := sc.Cleanup(); err != nil {
		logging.WarnWithContext(logger, "failed to remove extraction directory", "staging_cleanup_failed",
			logging.String("dir", sc.Root),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'gofmask staging clean'"),
			logging.String(logging.FieldImpact, "disk space not reclaimed"),
		)
	}
}
