package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/dashboard"
	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/record"
	"github.com/spf13/cobra"
)

var (
	inputPath string
	asOfDate  string

	scoreCmd = &cobra.Command{
		Use:   "score",
		Short: "Score a snapshot file and print the report as JSON",
		Example: `  riskscore score --input snapshot.json
  riskscore score --config config.yaml --input snapshot.json --as-of 2026-01-31`,
		RunE: runScore,
	}
)

func init() {
	scoreCmd.Flags().StringVar(&inputPath, "input", "", "snapshot JSON file with roster, closed, pending and listings")
	scoreCmd.Flags().StringVar(&asOfDate, "as-of", "", "evaluation date (YYYY-MM-DD); defaults to now")
	_ = scoreCmd.MarkFlagRequired("input")
}

// parseAsOf returns midnight UTC of the given day, or now when value is empty.
func parseAsOf(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now.UTC(), nil
	}
	day, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: %w", value, err)
	}
	return day, nil
}

func runScore(cmd *cobra.Command, _ []string) error {
	config, scorer, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	asOf, err := parseAsOf(asOfDate, time.Now())
	if err != nil {
		return err
	}

	snapshot, err := record.LoadSnapshot(inputPath)
	if err != nil {
		return err
	}

	report := dashboard.Build(scorer, snapshot, asOf, dashboardOptions(config))

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
