package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/citymetrics/cityrank/internal/config"
	"github.com/citymetrics/cityrank/internal/model"
	"github.com/citymetrics/cityrank/internal/report"
	"github.com/citymetrics/cityrank/internal/storage"
)

// NewUnifyCmd creates the unify command.
func NewUnifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unify",
		Short: "Merge CSV batch files into a SQLite database",
		Long: `Unify merges the CSV batch files of each dataset into one SQLite table.

The table schema is the union of the columns seen across all batch files of
a dataset: city, country, and year come first and load as text, every other
column loads as a number with unparseable values stored as NULL. Each run
replaces the dataset tables wholesale, so repeating a unify is safe.

Datasets with no batch files in the data directory are skipped with a
warning. The command fails only when no dataset yields any rows at all.

Examples:
  # Unify batches from the default data directory
  cityrank unify

  # Unify into a specific database file
  cityrank unify --db ./rankings.db

  # Use batches harvested into a custom directory
  cityrank unify -d ./harvest-2026`,
		Args: cobra.NoArgs,
		RunE: runUnifyCmd,
	}

	cmd.Flags().StringP("data-dir", "d", "",
		"Directory containing CSV batch files")
	cmd.Flags().String("db", "",
		"SQLite database file path")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cityrank in current or home directory)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary instead of plain text")
	cmd.Flags().StringP("output", "o", "",
		"Write summary to specified file path (creates directories if needed)")

	return cmd
}

// runUnifyCmd executes the unify command.
func runUnifyCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildUnifyConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runUnify(ctx, cfg, logger)
}

// buildUnifyConfig creates a Config for the unify command. It shares the
// config file handling with harvest but applies only unify flags.
func buildUnifyConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	explicitPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath := config.FindConfigFile(explicitPath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.ApplyTo(cfg)
	} else if explicitPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		if cfg.DataDir, err = flags.GetString("data-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db") {
		if cfg.DBPath, err = flags.GetString("db"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("markdown") {
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output") {
		if cfg.ReportFile, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// runUnify executes the unification.
func runUnify(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting unify",
		"dataDir", cfg.DataDir,
		"db", cfg.DBPath,
		"datasets", len(cfg.Datasets),
	)

	store, err := storage.Open(cfg.DBPath, storage.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	datasets := make([]string, 0, len(cfg.Datasets))
	for _, d := range cfg.Datasets {
		datasets = append(datasets, d.ID)
	}

	fmt.Printf("Unifying batches from %s into %s...\n\n", cfg.DataDir, store.Path())
	startTime := time.Now()

	unifier := storage.NewUnifier(store, cfg.DataDir, datasets,
		storage.WithUnifierLogger(logger))
	summary, err := unifier.Run(ctx)
	if err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Unify finished in %s\n\n", elapsed.Round(time.Millisecond))

	return outputUnifySummary(cfg, summary)
}

// outputUnifySummary writes the unify summary in the requested format
// and destination.
func outputUnifySummary(cfg *config.Config, summary *model.UnifySummary) error {
	output, closeFn, err := openReportOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeFn()

	var writer report.Writer
	if cfg.MarkdownReport {
		writer = report.NewMarkdownWriter(output)
	} else {
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err = writer.WriteUnify(summary)
	return err
}
