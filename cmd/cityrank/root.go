// Package main provides the entry point for the cityrank CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/citymetrics/cityrank/internal/log"
)

// NewRootCmd creates the root command for cityrank.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cityrank",
		Short: "Harvest and unify city ranking tables",
		Long: `cityrank harvests city ranking tables from a JavaScript-rendered
rankings site, cleans them into per-unit CSV batch files, and unifies the
batches into a local SQLite database.

A harvest walks every configured dataset and year, paginates through each
rankings table in a headless browser, and writes one CSV batch file per
dataset/year unit. A unify merges all batch files of a dataset into one
database table, taking the union of their columns.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewHarvestCmd())
	cmd.AddCommand(NewUnifyCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	// Environment overrides may live in a local .env file. A missing
	// file is not an error.
	_ = godotenv.Load()

	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return log.NewLogger(os.Stderr, level)
}
