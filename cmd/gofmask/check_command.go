package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gofmask/internal/notifications"
	"gofmask/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var outDir string
	var notify bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that Fmask and the configured paths are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := ""
			if outDir != "" {
				if dir, err = resolveExisting(outDir); err != nil {
					return err
				}
			}
			results := preflight.RunAll(cfg, dir)
			colorize := shouldColorize(cmd.OutOrStdout())
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, checkLabel(r.Passed, colorize), r.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Check", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			if err := preflight.Err(results); err != nil {
				return err
			}
			if !notify {
				return nil
			}
			svc := notifications.NewService(cfg)
			if !notifications.Enabled(svc) {
				return errors.New("notifications.ntfy_topic is not set")
			}
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "also check an output directory")
	cmd.Flags().BoolVar(&notify, "notify", false, "also send a test notification")
	return cmd
}

func checkLabel(passed bool, colorize bool) string {
	if passed {
		return statusColor(ansiGreen, "OK", colorize)
	}
	return statusColor(ansiRed, "FAIL", colorize)
}

func statusColor(color, label string, colorize bool) string {
	if !colorize {
		return label
	}
	return color + label + ansiReset
}
