package cli

import (
	"fmt"

	"github.com/safedep/termbar/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd creates the config command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or modify configuration",
		Long: `View or modify configuration.

Subcommands allow viewing and modifying configuration values. Values
are validated before they are written.`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigResetCmd(),
	)

	return cmd
}

// loadManager opens the config file the global flags point at.
func loadManager() (*config.Manager, error) {
	path := globalFlags.ConfigPath
	if path == "" {
		path = config.ResolvePaths().ConfigFile
	}

	mgr, err := config.NewManager(path)
	if err != nil {
		return nil, ErrConfig("failed to open config", err)
	}
	return mgr, nil
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := loadManager()
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(mgr.AllSettings())
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", mgr.ConfigPath(), data)
			return nil
		},
	}

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get specific config value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			mgr, err := loadManager()
			if err != nil {
				return err
			}

			value := mgr.Get(key)
			if value == nil {
				return NewCLIError(ExitConfig, fmt.Sprintf("key not found: %s", key))
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set config value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := config.ParseValue(args[1])

			mgr, err := loadManager()
			if err != nil {
				return err
			}

			if err := mgr.Set(key, value); err != nil {
				return ErrConfig("failed to set "+key, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, value)
			return nil
		},
	}

	return cmd
}

func newConfigResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset to default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := loadManager()
			if err != nil {
				return err
			}

			if err := mgr.Reset(); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
			return nil
		},
	}

	return cmd
}
