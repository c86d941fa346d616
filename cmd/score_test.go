package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAsOf(t *testing.T) {
	now := time.Date(2026, 3, 4, 15, 30, 0, 0, time.FixedZone("CET", 3600))

	asOf, err := parseAsOf("", now)
	require.NoError(t, err)
	assert.Equal(t, now.UTC(), asOf)

	asOf, err = parseAsOf("2026-01-31", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), asOf)

	_, err = parseAsOf("31/01/2026", now)
	assert.ErrorContains(t, err, "invalid --as-of")
}

func TestScoreCommand(t *testing.T) {
	input := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(input, []byte(`{
  "roster": [
    {"id": "1", "name": "Dana Idle", "join_date": "2024-12-27", "status": "active"},
    {"id": "2", "name": "Gone Agent", "join_date": "2020-01-01", "status": "inactive"}
  ],
  "closed": [],
  "pending": [],
  "listings": []
}`), 0o600))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"score", "--input", input, "--as-of", "2026-01-31"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var report dashboard.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report), stdout.String())
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), report.AsOf)
	require.Len(t, report.Profiles, 1)
	assert.Equal(t, "Dana Idle", report.Profiles[0].AgentName)
	assert.Equal(t, 400, report.Profiles[0].DaysSinceJoin)
	assert.Equal(t, 50, report.Profiles[0].RiskScore)
	assert.Len(t, report.TopAlerts, 1)
}
