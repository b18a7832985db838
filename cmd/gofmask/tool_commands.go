package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gofmask/internal/config"
)

func newUpdateFmaskDirCommand(ctx *commandContext) *cobra.Command {
	return newToolPathCommand(ctx, config.KeyFmaskDir,
		"update-fmask-dir [FMASK_DIR]",
		"Change the default value of FMASK_DIR",
		`Change the default value of FMASK_DIR.

FMASK_DIR is the path to the Fmask application. Without an argument the
current value is printed.`,
		func(cfg *config.Config) string { return cfg.Fmask.FmaskDir },
	)
}

func newUpdateMRDirCommand(ctx *commandContext) *cobra.Command {
	return newToolPathCommand(ctx, config.KeyMRDir,
		"update-mr-dir [MR_DIR]",
		"Change the default value of MR_DIR",
		`Change the default value of MR_DIR.

MR_DIR is the path to the MATLAB Runtime (v9.6) directory. Without an
argument the current value is printed.`,
		func(cfg *config.Config) string { return cfg.Fmask.MRDir },
	)
}

func newToolPathCommand(ctx *commandContext, key, use, short, long string, current func(*config.Config) string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				path, err := resolveExisting(args[0])
				if err != nil {
					return err
				}
				updated, err := config.Update(ctx.configFlagValue(), key, path)
				if err != nil {
					return fmt.Errorf("update %s: %w", key, err)
				}
				ctx.replaceConfig(updated)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, current(cfg))
			return nil
		},
	}
}
