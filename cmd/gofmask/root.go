package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:   "gofmask",
		Short: "Batch driver for Fmask 4.x cloud masking",
		Long: `A command-line driver for Fmask 4.x (GERS Lab, UConn).

Fmask (Zhu et al., 2015; Qiu et al., 2017) is used for automated cloud,
cloud shadow, snow, and water masking of Landsat 4-8 and Sentinel-2 images.
gofmask runs it over many products at once, extracting archives on the fly
and collecting the resulting cloud masks.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override logging.level (debug, info, warn, error)")
	// Accept underscore spellings such as --out_dir and --num_cpus.
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.AddCommand(newProcessCommand(ctx))
	rootCmd.AddCommand(newProcessFromDirCommand(ctx))
	rootCmd.AddCommand(newProcessFromFileCommand(ctx))
	rootCmd.AddCommand(newUpdateFmaskDirCommand(ctx))
	rootCmd.AddCommand(newUpdateMRDirCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newStagingCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
