package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/citymetrics/cityrank/internal/browser"
	"github.com/citymetrics/cityrank/internal/config"
	"github.com/citymetrics/cityrank/internal/harvest"
	"github.com/citymetrics/cityrank/internal/model"
	"github.com/citymetrics/cityrank/internal/report"
)

// NewHarvestCmd creates the harvest command.
func NewHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest ranking tables into CSV batch files",
		Long: `Harvest walks every configured dataset and year combination, loads each
rankings page in a headless browser, paginates through the full table, and
writes one cleaned CSV batch file per dataset/year unit.

Cleaning splits the combined "City, Country" column into separate city and
country columns, blanks placeholder values such as "N/A" and "-", and
appends the year tag to every row. A unit that renders an empty table is
recorded and skipped; a unit whose table header never appears is recorded
as failed. Either way the campaign moves on to the next unit.

Examples:
  # Harvest all default datasets and years
  cityrank harvest

  # Harvest one dataset for specific years
  cityrank harvest --datasets crime --years 2023,2024

  # Use a custom configuration file and data directory
  cityrank harvest -c myconfig.yaml --data-dir ./harvest-2026

  # Write a Markdown summary to a file
  cityrank harvest -m -o reports/harvest.md`,
		Args: cobra.NoArgs,
		RunE: runHarvestCmd,
	}

	// Target selection flags
	cmd.Flags().StringSlice("datasets", nil,
		"Dataset IDs to harvest (default: all configured datasets)")
	cmd.Flags().StringSlice("years", nil,
		"Year tags to harvest (default: all configured years)")
	cmd.Flags().String("base-url", "",
		"Rankings site root URL")

	// Output location flags
	cmd.Flags().StringP("data-dir", "d", "",
		"Directory receiving CSV batch files")

	// Browser behavior flags
	cmd.Flags().Bool("headless", true,
		"Run the browser without a visible window")
	cmd.Flags().DurationP("header-timeout", "t", config.DefaultHeaderTimeout,
		"Maximum wait for the table header on each page")
	cmd.Flags().DurationP("politeness", "p", config.DefaultPolitenessDelay,
		"Fixed delay between harvest units")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cityrank in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary instead of plain text")
	cmd.Flags().StringP("output", "o", "",
		"Write summary to specified file path (creates directories if needed)")

	return cmd
}

// runHarvestCmd executes the harvest command.
func runHarvestCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runHarvest(ctx, cfg, logger)
}

// buildConfig creates a Config from defaults, the optional configuration
// file, environment variables, and command flags, in that precedence
// order (later sources win).
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	// Load overrides from the config file. If the user explicitly
	// specified a path, a missing file is an error; otherwise a missing
	// file just means defaults apply.
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

	// Flag overrides. Only flags the user actually set are applied so
	// config file values survive.
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFlagOverrides applies explicitly set command flags onto cfg.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("base-url") {
		baseURL, err := flags.GetString("base-url")
		if err != nil {
			return err
		}
		cfg.BaseURL = baseURL
	}

	if flags.Changed("data-dir") {
		dataDir, err := flags.GetString("data-dir")
		if err != nil {
			return err
		}
		cfg.DataDir = dataDir
	}

	if flags.Changed("datasets") {
		ids, err := flags.GetStringSlice("datasets")
		if err != nil {
			return err
		}
		datasets, err := resolveDatasets(cfg.Datasets, ids)
		if err != nil {
			return err
		}
		cfg.Datasets = datasets
	}

	if flags.Changed("years") {
		years, err := flags.GetStringSlice("years")
		if err != nil {
			return err
		}
		cfg.Years = years
	}

	if flags.Changed("headless") {
		headless, err := flags.GetBool("headless")
		if err != nil {
			return err
		}
		cfg.Headless = headless
	}

	if flags.Changed("header-timeout") {
		timeout, err := flags.GetDuration("header-timeout")
		if err != nil {
			return err
		}
		cfg.HeaderTimeout = timeout
	}

	if flags.Changed("politeness") {
		delay, err := flags.GetDuration("politeness")
		if err != nil {
			return err
		}
		cfg.PolitenessDelay = delay
	}

	if flags.Changed("markdown") {
		markdown, err := flags.GetBool("markdown")
		if err != nil {
			return err
		}
		cfg.MarkdownReport = markdown
	}

	if flags.Changed("output") {
		output, err := flags.GetString("output")
		if err != nil {
			return err
		}
		cfg.ReportFile = output
	}

	return nil
}

// resolveDatasets filters the configured datasets down to the requested
// IDs, preserving configured order.
func resolveDatasets(configured []config.Dataset, ids []string) ([]config.Dataset, error) {
	byID := make(map[string]config.Dataset, len(configured))
	known := make([]string, 0, len(configured))
	for _, d := range configured {
		byID[d.ID] = d
		known = append(known, d.ID)
	}

	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("unknown dataset %q (known: %s)", id, strings.Join(known, ", "))
		}
		selected[id] = true
	}

	result := make([]config.Dataset, 0, len(selected))
	for _, d := range configured {
		if selected[d.ID] {
			result = append(result, d)
		}
	}
	return result, nil
}

// runHarvest executes the harvest campaign.
func runHarvest(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting harvest",
		"baseURL", cfg.BaseURL,
		"datasets", len(cfg.Datasets),
		"years", cfg.Years,
		"dataDir", cfg.DataDir,
	)

	chrome, err := browser.NewChrome(
		browser.WithUserAgent(cfg.UserAgent),
		browser.WithHeadless(cfg.Headless),
	)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}

	units := len(cfg.Datasets) * len(cfg.Years)
	fmt.Printf("Harvesting %d units (%d datasets x %d years)...\n\n",
		units, len(cfg.Datasets), len(cfg.Years))
	startTime := time.Now()

	// The campaign closes the browser when it finishes.
	campaign := harvest.NewCampaign(chrome, cfg, harvest.WithCampaignLogger(logger))
	summary, err := campaign.Run(ctx)

	elapsed := time.Since(startTime)
	fmt.Printf("Harvest finished in %s\n\n", elapsed.Round(time.Millisecond))

	// A cancelled campaign still reports the units it completed.
	if summary != nil {
		if outErr := outputCampaignSummary(cfg, summary); outErr != nil {
			logger.Error("summary output failed", "error", outErr)
		}
	}

	return err
}

// outputCampaignSummary writes the campaign summary in the requested
// format and destination.
func outputCampaignSummary(cfg *config.Config, summary *model.CampaignSummary) error {
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

	_, err = writer.WriteCampaign(summary)
	return err
}

// openReportOutput opens the summary destination: the given file path,
// or stdout when the path is empty.
func openReportOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
