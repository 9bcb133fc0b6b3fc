package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deploykit/bundler/internal/logger"
	"github.com/deploykit/bundler/internal/service/packager"
	"github.com/deploykit/bundler/internal/version"
)

var (
	// configPath to the service manifest YAML file.
	configPath string

	// outputDir where artifacts are written.
	outputDir string

	// functionKey limits packaging to a single function.
	functionKey string

	// logLevel is the textual logging level for the run.
	logLevel string

	// rootCmd represents the base command for packaging a service.
	rootCmd = &cobra.Command{
		Use:   "bundler [source-dir]",
		Short: "Package a service into deployable zip artifacts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &packager.Options{
				ConfigPath:  configPath,
				OutputDir:   outputDir,
				FunctionKey: functionKey,
			}

			if len(args) > 0 {
				options.SourceDir = args[0]
			}

			return packager.Run(ctx, options)
		},
	}
)

// Execute runs the bundler CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the service manifest")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for produced artifacts")
	rootCmd.Flags().StringVarP(&functionKey, "function", "f", "", "package only the named function")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "logging level (debug, info, warn, error)")
}
