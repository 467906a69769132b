// Package main provides the Lead Engine CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	noColor    bool

	// Configuration, logger and output, set before every command runs
	cfg    *config.Config
	logger *observability.Logger
	ui     *UI
)

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	cfgFile, outputJSON, noColor = "", false, false

	root := &cobra.Command{
		Use:   "lead-engine-cli",
		Short: "Lead Engine CLI for querying and maintaining the lead directory",
		Long: `Lead Engine CLI answers sales questions against the lead directory
and maintains the dataset behind it.

Use this tool to:
- Ask the assistant a question in Portuguese
- Inspect how a message is classified
- Export filtered leads to a spreadsheet
- Consolidate per-lead JSON files and import them into a database

All commands support --json for automation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional
			_ = godotenv.Load()

			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logFormat := "console"
			if outputJSON {
				logFormat = "json"
			}

			logger = observability.NewLogger(observability.LogConfig{
				Level:       cfg.Observability.LogLevel,
				Format:      logFormat,
				Output:      cmd.ErrOrStderr(),
				ServiceName: "lead-engine-cli",
			})

			ui = newUIWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), outputJSON, noColor || !IsTerminal())
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	root.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(newAskCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newConsolidateCmd())
	root.AddCommand(newImportCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if ui != nil {
			ui.Error("%v", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
