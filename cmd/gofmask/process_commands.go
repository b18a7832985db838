package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gofmask/internal/config"
	"gofmask/internal/dispatch"
	"gofmask/internal/history"
	"gofmask/internal/logging"
	"gofmask/internal/notifications"
	"gofmask/internal/preflight"
	"gofmask/internal/services/fmask"
	"gofmask/internal/staging"
)

type processOptions struct {
	cpt         float64
	cloud       int
	cloudShadow int
	snow        int
	outDir      string
	numCPUs     int
}

func bindProcessFlags(cmd *cobra.Command, opts *processOptions) {
	flags := cmd.Flags()
	flags.Float64Var(&opts.cpt, "cpt", 0, "cloud probability threshold for creating potential cloud layer [default: 10.0% for Landsats 4-7, 17.5% for Landsat 8, and 20.0% for Sentinel-2]")
	flags.IntVar(&opts.cloud, "cloud", fmask.DefaultCloudDilation, "number of dilated pixels for cloud")
	flags.IntVar(&opts.cloudShadow, "cloud-shadow", fmask.DefaultShadowDilation, "number of dilated pixels for cloud shadow")
	flags.IntVar(&opts.snow, "snow", fmask.DefaultSnowDilation, "number of dilated pixels for snow")
	flags.StringVarP(&opts.outDir, "out-dir", "o", "", "directory cloud masks are moved to")
	flags.IntVar(&opts.numCPUs, "num-cpus", 0, "the maximum number of central processing units used")
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var opts processOptions
	cmd := &cobra.Command{
		Use:   "process PATH...",
		Short: "Apply Fmask to the input image(s)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products := make([]string, 0, len(args))
			for _, arg := range args {
				path, err := resolveExisting(arg)
				if err != nil {
					return err
				}
				products = append(products, path)
			}
			return runBatch(cmd, ctx, "process", products, &opts)
		},
	}
	bindProcessFlags(cmd, &opts)
	return cmd
}

func newProcessFromDirCommand(ctx *commandContext) *cobra.Command {
	var opts processOptions
	cmd := &cobra.Command{
		Use:   "process-fromdir DIR",
		Short: "Apply Fmask to all the images located in the given directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveExisting(args[0])
			if err != nil {
				return err
			}
			products, err := productsInDir(dir)
			if err != nil {
				return err
			}
			return runBatch(cmd, ctx, "process-fromdir", products, &opts)
		},
	}
	bindProcessFlags(cmd, &opts)
	return cmd
}

func newProcessFromFileCommand(ctx *commandContext) *cobra.Command {
	var opts processOptions
	cmd := &cobra.Command{
		Use:   "process-fromfile FILE",
		Short: "Apply Fmask to the images listed in the input file",
		Long: `Apply Fmask to the images listed in the input file, one path per line.

Blank lines and paths that do not exist are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listPath, err := resolveExisting(args[0])
			if err != nil {
				return err
			}
			products, err := productsFromFile(listPath)
			if err != nil {
				return err
			}
			return runBatch(cmd, ctx, "process-fromfile", products, &opts)
		},
	}
	bindProcessFlags(cmd, &opts)
	return cmd
}

func runBatch(cmd *cobra.Command, ctx *commandContext, name string, products []string, opts *processOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireTool(); err != nil {
		return err
	}
	logger, err := ctx.logger()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(products) == 0 {
		fmt.Fprintln(out, "No products to process")
		return nil
	}

	outDir, err := prepareOutDir(opts.outDir)
	if err != nil {
		return err
	}
	if err := preflight.Err(preflight.RunAll(cfg, outDir)); err != nil {
		return err
	}

	command := fmask.Command{
		Executable:     cfg.Fmask.FmaskDir,
		RuntimeDir:     cfg.Fmask.MRDir,
		CloudDilation:  opts.cloud,
		ShadowDilation: opts.cloudShadow,
		SnowDilation:   opts.snow,
	}
	if cmd.Flags().Changed("cpt") {
		cpt := opts.cpt
		command.CloudProbability = &cpt
	}
	override := opts.numCPUs
	if cmd.Flags().Changed("num-cpus") && override < 1 {
		override = 1
	}

	client, err := fmask.New(cfg.Fmask.Shell, cfg.Fmask.TimeoutSeconds,
		fmask.WithOutput(out, cmd.ErrOrStderr()),
		fmask.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	manager, err := staging.NewManager(cfg.StagingBase(), logger)
	if err != nil {
		return err
	}
	scheduler := dispatch.New(client, manager,
		dispatch.WithProgress(client.Progress()),
		dispatch.WithLogger(logger),
	)

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	summary := scheduler.Dispatch(runCtx, products, outDir, override, command)

	fmt.Fprintln(out)
	fmt.Fprint(out, renderSummary(summary, shouldColorize(out)))
	fmt.Fprintln(out)

	recordHistory(runCtx, cfg, logger, history.FromSummary(summary, name, outDir))
	notifyBatch(runCtx, cfg, logger, name, summary)

	if err := runCtx.Err(); err != nil {
		return err
	}
	if failed := summary.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d products failed: %w", failed, len(summary.Results), summary.Err())
	}
	if skipped := summary.Count(dispatch.StatusSkipped); skipped > 0 {
		return fmt.Errorf("%d of %d products skipped", skipped, len(summary.Results))
	}
	return nil
}

// recordHistory stores the run when history is enabled. Failures only warn.
func recordHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, run history.Run) {
	if !cfg.History.Enabled {
		return
	}
	// Record even when the batch was interrupted.
	ctx = context.WithoutCancel(ctx)
	store, err := history.Open(ctx, cfg.Paths.HistoryDB)
	if err == nil {
		defer store.Close()
		err = store.Record(ctx, run)
	}
	if err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_record_failed",
			logging.Error(err),
			logging.String("path", cfg.Paths.HistoryDB),
			logging.String(logging.FieldErrorHint, "check paths.history_db or set history.enabled = false"),
			logging.String(logging.FieldImpact, "run missing from 'gofmask history'"),
		)
	}
}

// notifyBatch publishes the batch outcome when ntfy is configured. Failures only warn.
func notifyBatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, name string, summary dispatch.Summary) {
	svc := notifications.NewService(cfg)
	if !notifications.Enabled(svc) {
		return
	}
	err := svc.NotifyBatchCompleted(context.WithoutCancel(ctx), notifications.Batch{
		Command:   name,
		Succeeded: summary.Count(dispatch.StatusSucceeded),
		Failed:    summary.Count(dispatch.StatusFailed),
		Skipped:   summary.Count(dispatch.StatusSkipped),
		Duration:  summary.Duration,
	})
	if err != nil {
		logging.WarnWithContext(logger, "failed to send batch notification", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}

func prepareOutDir(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(value)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return abs, nil
}

// resolveExisting returns the absolute, symlink-free form of an existing path.
func resolveExisting(value string) (string, error) {
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", value, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("path %q does not exist", value)
		}
		return "", fmt.Errorf("resolve %q: %w", value, err)
	}
	return resolved, nil
}

// productsInDir lists every entry of dir in lexical order.
func productsInDir(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	products := make([]string, 0, len(entries))
	for _, entry := range entries {
		products = append(products, filepath.Join(dir, entry.Name()))
	}
	return products, nil
}

// productsFromFile reads one path per line, skipping blank lines and paths
// that do not exist. Relative paths are taken relative to the working directory.
func productsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open product list: %w", err)
	}
	defer file.Close()

	var products []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := os.Stat(line); err != nil {
			continue
		}
		abs, err := filepath.Abs(line)
		if err != nil {
			continue
		}
		products = append(products, abs)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read product list: %w", err)
	}
	return products, nil
}
