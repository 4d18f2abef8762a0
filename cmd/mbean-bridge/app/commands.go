// Package app provides the command line interface of the MBean bridge.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/stacklok/mbean-bridge/internal/config"
	"github.com/stacklok/mbean-bridge/internal/versions"
)

// NewRootCmd creates a new root command for the bridge.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "mbean-bridge",
		DisableAutoGenTag: true,
		Short:             "MBean attribute bridge",
		Long: `MBean bridge reads management attributes from JMX agents and keeps them as
typed properties of configured targets, with history for logged properties.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				slog.Error("Error displaying help", "error", err)
			}
		},
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newObjectsCmd())
	rootCmd.AddCommand(newTreeCmd())
	rootCmd.AddCommand(newAttributesCmd())
	rootCmd.AddCommand(newPullCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}
			return printVersion(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}

func printVersion(w io.Writer, format string) error {
	info := versions.GetVersionInfo()
	if format == "json" {
		output, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format version info as JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(output))
		return err
	}
	version := info.Version
	if !info.IsRelease() {
		version += " (development build)"
	}
	_, err := fmt.Fprintf(w, "mbean-bridge %s (commit %s, built %s, %s, %s)\n",
		version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
	return err
}

// addConfigFlag registers the required --config flag
func addConfigFlag(cmd *cobra.Command, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	flags.String("config", "", "Path to configuration file (YAML format, required)")
	var err error
	if persistent {
		err = cmd.MarkPersistentFlagRequired("config")
	} else {
		err = cmd.MarkFlagRequired("config")
	}
	if err != nil {
		panic(err)
	}
}

// loadConfig loads the configuration named by the --config flag
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration",
		"path", configPath,
		"backends", len(cfg.Backends),
		"targets", len(cfg.Targets))
	return cfg, nil
}
