package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// Constants for batch status in comparison output.
const (
	batchStatusNew       = "new"
	batchStatusRemoved   = "removed"
	batchStatusChanged   = "changed"
	batchStatusUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares the batch files of two harvest data directories.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <previous-dir> <current-dir>",
		Short: "Compare batch files between two harvest runs",
		Long: `Compare shows the differences between two harvest data directories.

For every batch file present in either directory it reports the row count
in each run and the delta. Batches present only in the current directory
are marked new; batches present only in the previous directory are marked
removed. This makes it easy to spot units that shrank unexpectedly or
stopped producing data between runs.

Examples:
  # Compare last month's harvest with today's
  cityrank compare ./data-2026-07 ./data

  # Output comparison in JSON format
  cityrank compare --json ./data-2026-07 ./data

  # Output comparison in Markdown format
  cityrank compare -m ./data-2026-07 ./data`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	previousDir, currentDir := args[0], args[1]

	for _, dir := range []string{previousDir, currentDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("cannot read directory %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	result, err := compareDataDirs(previousDir, currentDir)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputComparisonJSON(result)
	}
	if markdownOutput {
		return outputComparisonMarkdown(result)
	}
	return outputComparisonText(result)
}

// ComparisonResult holds the result of comparing two harvest data
// directories.
type ComparisonResult struct {
	// PreviousDir is the directory taken as the baseline.
	PreviousDir string `json:"previous_dir"`

	// CurrentDir is the directory compared against the baseline.
	CurrentDir string `json:"current_dir"`

	// Batches lists every batch file seen in either directory.
	Batches []BatchDelta `json:"batches"`

	// TotalDelta is the overall row count change.
	TotalDelta int `json:"total_delta"`
}

// BatchDelta describes the row count change of one batch file.
type BatchDelta struct {
	// Name is the batch file name, e.g. "crime_2024.csv".
	Name string `json:"name"`

	// PreviousRows is the data row count in the baseline directory.
	PreviousRows int `json:"previous_rows"`

	// CurrentRows is the data row count in the current directory.
	CurrentRows int `json:"current_rows"`

	// Delta is CurrentRows minus PreviousRows.
	Delta int `json:"delta"`

	// Status is one of "new", "removed", "changed", or "unchanged".
	Status string `json:"status"`
}

// compareDataDirs builds the comparison between two data directories.
func compareDataDirs(previousDir, currentDir string) (*ComparisonResult, error) {
	previous, err := countBatchRows(previousDir)
	if err != nil {
		return nil, err
	}
	current, err := countBatchRows(currentDir)
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool, len(previous)+len(current))
	for name := range previous {
		names[name] = true
	}
	for name := range current {
		names[name] = true
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	result := &ComparisonResult{
		PreviousDir: previousDir,
		CurrentDir:  currentDir,
	}
	for _, name := range sorted {
		prevRows, inPrevious := previous[name]
		currRows, inCurrent := current[name]

		delta := BatchDelta{
			Name:         name,
			PreviousRows: prevRows,
			CurrentRows:  currRows,
			Delta:        currRows - prevRows,
		}
		switch {
		case !inPrevious:
			delta.Status = batchStatusNew
		case !inCurrent:
			delta.Status = batchStatusRemoved
		case delta.Delta != 0:
			delta.Status = batchStatusChanged
		default:
			delta.Status = batchStatusUnchanged
		}

		result.Batches = append(result.Batches, delta)
		result.TotalDelta += delta.Delta
	}

	return result, nil
}

// countBatchRows returns the data row count of every CSV batch file in
// dir, keyed by file name. The header row is not counted.
func countBatchRows(dir string) (map[string]int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list batch files in %s: %w", dir, err)
	}

	counts := make(map[string]int, len(files))
	for _, path := range files {
		rows, err := countCSVRows(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		counts[filepath.Base(path)] = rows
	}
	return counts, nil
}

// countCSVRows counts the data rows of one CSV file.
func countCSVRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows := -1 // first record is the header
	for {
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
		rows++
	}
	if rows < 0 {
		rows = 0
	}
	return rows, nil
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Harvest Comparison\n\n")
	fmt.Printf("Previous: `%s`  \nCurrent: `%s`\n\n", result.PreviousDir, result.CurrentDir)

	fmt.Println("| Batch | Previous | Current | Change | Status |")
	fmt.Println("|-------|----------|---------|--------|--------|")
	for _, b := range result.Batches {
		fmt.Printf("| %s | %d | %d | %s | %s |\n",
			b.Name, b.PreviousRows, b.CurrentRows, formatDelta(b.Delta), b.Status)
	}
	fmt.Printf("\n**Total row change: %s**\n", formatDelta(result.TotalDelta))

	return nil
}

// outputComparisonText outputs the comparison result in human-readable
// text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Println("Harvest Comparison")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\nPrevious: %s\n", result.PreviousDir)
	fmt.Printf("Current:  %s\n\n", result.CurrentDir)

	if len(result.Batches) == 0 {
		fmt.Println("No batch files found in either directory.")
		return nil
	}

	fmt.Printf("  %-36s  %-9s  %-9s  %-8s  %s\n", "Batch", "Previous", "Current", "Change", "Status")
	fmt.Println("  " + strings.Repeat("-", 76))
	for _, b := range result.Batches {
		fmt.Printf("  %-36s  %-9d  %-9d  %-8s  %s\n",
			b.Name, b.PreviousRows, b.CurrentRows, formatDelta(b.Delta), b.Status)
	}
	fmt.Println("  " + strings.Repeat("-", 76))
	fmt.Printf("  Total row change: %s\n", formatDelta(result.TotalDelta))

	return nil
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
