// Package cli provides the command-line interface for geoforge.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/geostack-labs/geoforge/internal/cli/commands"
	"github.com/geostack-labs/geoforge/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "geoforge",
		Short: "Geoforge - Geoscience Object Builder",
		Long: `Geoforge builds geoscience objects from tabular data files.

It loads CSV or Parquet inputs, types the attribute columns, validates the
assembled object against its schema, and creates it in a remote workspace.
Every build command runs as a dry run by default; pass --dry-run=false to
create the object.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			config.SetCurrent(cfg)

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Geoscience Object Builder
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./geoforge.yaml)")
	rootCmd.PersistentFlags().String("remote-url", "", "Base URL of the workspace object service")
	rootCmd.PersistentFlags().String("org", "", "Organization identifier")
	rootCmd.PersistentFlags().String("token", "", "Bearer token for the remote service")
	rootCmd.PersistentFlags().StringP("workspace", "w", "", "Workspace identifier")
	rootCmd.PersistentFlags().String("cache-dir", "", "Directory for staged columnar blobs")
	rootCmd.PersistentFlags().String("state", "", "Path to the upload state database")
	rootCmd.PersistentFlags().String("listen", "", "HTTP server bind address")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewPointsetCommand())
	rootCmd.AddCommand(commands.NewLinesetCommand())
	rootCmd.AddCommand(commands.NewHolesCommand())
	rootCmd.AddCommand(commands.NewIntervalsCommand())
	rootCmd.AddCommand(commands.NewWorkspacesCommand())
	rootCmd.AddCommand(commands.NewObjectsCommand())
	rootCmd.AddCommand(commands.NewServeCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
