// Package cli provides the command-line interface for termbar.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/safedep/dry/log"
	"github.com/safedep/termbar/config"
	"github.com/safedep/termbar/internal/version"
	"github.com/spf13/cobra"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Paths  *config.Paths
	RunID  uuid.UUID
}

// NewApp creates a new App with the given configuration.
func NewApp(cfg *config.Config, paths *config.Paths) *App {
	return &App{
		Config: cfg,
		Paths:  paths,
		RunID:  uuid.New(),
	}
}

// GlobalFlags holds the global command flags.
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
}

var globalFlags GlobalFlags

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	// Flags are bound to package state, so reset it for every new tree.
	globalFlags = GlobalFlags{}

	rootCmd := &cobra.Command{
		Use:   "termbar",
		Short: "Terminal progress bar renderer",
		Long: `Termbar draws a single-line progress bar that redraws in place,
with optional percentage and estimated time remaining annotations.`,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupInternalLogger()

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "print the bar state before drawing")

	// Add subcommands
	rootCmd.AddCommand(
		NewRunCmd(),
		NewCountCmd(),
		NewConfigCmd(),
		NewVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command. An interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

// ExitCode returns the process exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitGeneral
}

// setupInternalLogger sets up the DRY logger
func setupInternalLogger() {
	// Always skip the stdout logger since stdout carries the progress bar.
	_ = os.Setenv("APP_LOG_SKIP_STDOUT_LOGGER", "true")

	log.Init("termbar", "cli")
}

// loadApp loads the application with configuration.
func loadApp() (*App, error) {
	cfg, err := config.Load(globalFlags.ConfigPath)
	if err != nil {
		return nil, ErrConfig("failed to load config", err)
	}

	paths := config.ResolvePaths()
	if globalFlags.ConfigPath != "" {
		paths.ConfigFile = globalFlags.ConfigPath
	}

	return NewApp(cfg, paths), nil
}
