package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/glorpus-work/romcat/internal/logger"
	"github.com/glorpus-work/romcat/pkg/config"
	"github.com/glorpus-work/romcat/pkg/errutils"
	"github.com/glorpus-work/romcat/pkg/fsutil"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  "View and modify romcat configuration settings",
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigSetCmd(),
		newConfigGetCmd(),
		newConfigInitCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current configuration settings",
		RunE:  runConfigShow,
	}

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration key to a specific value",
		Args:  cobra.ExactArgs(setCommandArgs),
		RunE: func(_ *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Get a configuration value",
		Long:  "Get the value of a specific configuration key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long:  "Create a default configuration file",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration file")

	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), cfg, cfg, func(w io.Writer) error {
		tabWriter := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
		_, _ = fmt.Fprintln(tabWriter, "SETTING\tVALUE")
		_, _ = fmt.Fprintln(tabWriter, "-------\t-----")

		settingsMap := cfg.ToMap()
		keys := make([]string, 0, len(settingsMap))
		for key := range settingsMap {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			_, _ = fmt.Fprintf(tabWriter, "%s\t%s\n", key, settingsMap[key])
		}
		if err := tabWriter.Flush(); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(w, "\nLocations (%d):\n", len(cfg.Locations))
		for _, loc := range cfg.Locations {
			_, _ = fmt.Fprintf(w, "  %s\n", loc)
		}
		return nil
	})
}

func runConfigSet(key, value string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.SetValue(key, value); err != nil {
		return fmt.Errorf("failed to set configuration value: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := saveConfig(cfg); err != nil {
		return err
	}

	logger.Success("Configuration updated", logger.Fields{"key": key, "value": value})
	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	value, err := cfg.GetValue(key)
	if err != nil {
		return fmt.Errorf("failed to get configuration value: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}

func runConfigInit(force bool) error {
	configPath := getConfigPath()

	if fsutil.Exists(configPath) && !force {
		return fmt.Errorf("configuration file already exists at %s: %w", configPath, errutils.ErrConfigFileExists)
	}

	defaultConfig := config.DefaultConfig()
	if err := defaultConfig.SaveConfig(configPath); err != nil {
		return fmt.Errorf("failed to save default configuration: %w", err)
	}

	logger.Success("Configuration file created", logger.Fields{"path": configPath})
	return nil
}
