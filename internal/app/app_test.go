package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/messwatch/internal/feedback"
	"github.com/blackwell-systems/messwatch/internal/output"
	"github.com/blackwell-systems/messwatch/internal/report"
)

const fixtureYAML = `
users:
  - id: s1
    name: Asha
  - id: s2
    name: Bilal
  - id: s3
    name: Chen
  - id: w1
    name: Warden
    isAdmin: true
feedback:
  - date: 2025-10-14
    user: s1
    meals:
      morning:
        rating: 5
        comment: delicious poha
      afternoon:
        rating: 4
  - date: 2025-10-14
    user: s2
    meals:
      morning:
        rating: 3
        comment: a bit cold
  - date: 2025-10-14
    user: s3
    meals:
      night:
        comment: skipped dinner
`

// writeConfig writes a sqlite config into a temp dir and returns its path.
func writeConfig(t *testing.T, driver string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "database:\n" +
		"  driver: " + driver + "\n" +
		"  path: " + filepath.Join(dir, "mess.db") + "\n" +
		"timezone: UTC\n" +
		"log_level: warn\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	flagConfig, flagJSON, flagNoColor, flagVerbose = "", false, false, false
	seedStart, seedDays, seedStudents, seedAdmins, seedSeed = "2025-10-12", 7, 150, 2, 1
	serveAddr = ""

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), err
}

func decode(t *testing.T, out string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m), out)
	return m
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"daily", "weekly", "historical", "serve", "mcp", "seed", "import"} {
		assert.Contains(t, names, want)
	}
}

func TestReportCommands_UsageError(t *testing.T) {
	cfg := writeConfig(t, "sqlite")
	cases := [][]string{
		{"daily"},
		{"daily", "2025-10-14", "extra"},
		{"weekly"},
		{"historical", "2025-10-01"},
		{"historical", "2025-10-01", "2025-10-10", "trend", "extra"},
	}
	for _, args := range cases {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			out, err := runCLI(t, append([]string{"--config", cfg}, args...)...)
			require.ErrorIs(t, err, errReported)

			m := decode(t, out)
			assert.Equal(t, true, m["error"])
			assert.Equal(t, "USAGE_ERROR", m["type"])
			assert.Contains(t, m["message"], "Usage: messwatch "+args[0])
			assert.Nil(t, m["data"])
		})
	}
}

func TestDaily_InvalidDate(t *testing.T) {
	cfg := writeConfig(t, "sqlite")
	out, err := runCLI(t, "--config", cfg, "daily", "2025-13-40")
	require.ErrorIs(t, err, errReported)

	m := decode(t, out)
	assert.Equal(t, "INVALID_DATE", m["type"])
	assert.Equal(t, "Invalid date format. Use YYYY-MM-DD", m["message"])
	assert.NotEmpty(t, m["timestamp"])
}

func TestDaily_FutureDate(t *testing.T) {
	cfg := writeConfig(t, "sqlite")
	out, err := runCLI(t, "--config", cfg, "daily", "2999-01-01")
	require.NoError(t, err)

	m := decode(t, out)
	assert.Equal(t, "no_data", m["status"])
	assert.Equal(t, "future_date", m["type"])
	assert.Equal(t, "2999-01-01", m["date"])
}

func TestReportCommands_InvalidConfig(t *testing.T) {
	cfg := writeConfig(t, "oracle")
	out, err := runCLI(t, "--config", cfg, "daily", "2025-10-14")
	require.ErrorIs(t, err, errReported)

	m := decode(t, out)
	assert.Equal(t, "INVALID_ARGS", m["type"])
	assert.Contains(t, m["message"], "Invalid configuration")
}

func TestImportThenDaily(t *testing.T) {
	cfg := writeConfig(t, "sqlite")
	fx := filepath.Join(t.TempDir(), "week.yaml")
	require.NoError(t, os.WriteFile(fx, []byte(fixtureYAML), 0o600))

	out, err := runCLI(t, "--config", cfg, "import", fx)
	require.NoError(t, err)
	summary := decode(t, out)
	assert.Equal(t, "fixture", summary["source"])
	assert.EqualValues(t, 4, summary["users"])
	assert.EqualValues(t, 3, summary["feedbacks"])
	assert.Equal(t, "2025-10-14", summary["startDate"])

	out, err = runCLI(t, "--config", cfg, "daily", "2025-10-14")
	require.NoError(t, err)
	m := decode(t, out)
	assert.Equal(t, "success", m["status"])
	assert.Equal(t, "2025-10-14", m["date"])

	data := m["data"].(map[string]any)
	overview := data["overview"].(map[string]any)
	assert.EqualValues(t, 3, overview["totalStudents"])
	assert.EqualValues(t, 2, overview["participatingStudents"])
	assert.EqualValues(t, 66.7, overview["participationRate"])
	assert.EqualValues(t, 4.0, overview["overallRating"])

	perMeal := data["averageRatingPerMeal"].(map[string]any)
	assert.EqualValues(t, 4.0, perMeal["Breakfast"])
	assert.EqualValues(t, 4.0, perMeal["Lunch"])
	assert.EqualValues(t, 0.0, perMeal["Dinner"])

	// Meals print in canonical order.
	assert.Less(t, strings.Index(out, `"Breakfast"`), strings.Index(out, `"Lunch"`))
}

func TestImportThenDaily_NoFeedback(t *testing.T) {
	cfg := writeConfig(t, "sqlite")
	fx := filepath.Join(t.TempDir(), "week.yaml")
	require.NoError(t, os.WriteFile(fx, []byte(fixtureYAML), 0o600))
	_, err := runCLI(t, "--config", cfg, "import", fx)
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfg, "daily", "2025-10-13")
	require.NoError(t, err)
	m := decode(t, out)
	assert.Equal(t, "no_data", m["status"])
	assert.Equal(t, "no_feedback", m["type"])
	overview := m["data"].(map[string]any)["overview"].(map[string]any)
	assert.EqualValues(t, 3, overview["totalStudents"])
}

func TestSeedThenReports(t *testing.T) {
	cfg := writeConfig(t, "sqlite")
	out, err := runCLI(t, "--config", cfg, "seed", "--start", "2025-10-13", "--days", "14", "--students", "25", "--admins", "1")
	require.NoError(t, err)
	summary := decode(t, out)
	assert.Equal(t, "synthetic", summary["source"])
	assert.EqualValues(t, 26, summary["users"])
	assert.Equal(t, "2025-10-26", summary["endDate"])

	out, err = runCLI(t, "--config", cfg, "weekly", "2025-10-15")
	require.NoError(t, err)
	m := decode(t, out)
	assert.Equal(t, "success", m["status"])
	assert.Equal(t, "2025-10-13", m["weekStart"])
	assert.Equal(t, "2025-10-19", m["weekEnd"])
	overview := m["data"].(map[string]any)["overview"].(map[string]any)
	assert.EqualValues(t, 25, overview["totalStudents"])

	for _, kind := range []string{"comparison", "trend", "pattern"} {
		out, err = runCLI(t, "--config", cfg, "historical", "2025-10-13", "2025-10-26", kind)
		require.NoError(t, err, kind)
		m = decode(t, out)
		assert.Equal(t, "success", m["status"], kind)
		assert.Equal(t, kind, m["analysisType"], kind)
	}
}

func TestSeed_RejectsMongo(t *testing.T) {
	cfg := writeConfig(t, "mongodb")
	_, err := runCLI(t, "--config", cfg, "seed", "--days", "1", "--students", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestRenderStyled(t *testing.T) {
	output.SetNoColor(true)
	t.Cleanup(func() { output.SetNoColor(false) })

	day := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	records := []feedback.Record{
		{Date: day, User: "s1", Meals: map[feedback.MealSlot]*feedback.MealEntry{
			feedback.Morning: {Rating: feedback.Rating(2), Comment: "food was cold"},
			feedback.Evening: {Rating: feedback.Rating(4), Comment: "tasty dal"},
		}},
	}
	env, err := report.BuildDaily(report.DailyInput{Date: day, Records: records, TotalStudents: 4})
	require.NoError(t, err)

	var buf bytes.Buffer
	renderStyled(&buf, report.Render(env, nil, day))
	out := buf.String()
	assert.Contains(t, out, "Daily report  2025-10-14")
	assert.Contains(t, out, "Breakfast")
	assert.Contains(t, out, "Dinner")
	assert.Contains(t, out, "25.0%")

	buf.Reset()
	renderStyled(&buf, report.Render(nil, report.Errorf(report.CodeDatabase, nil, "Database query failed: boom"), day))
	assert.Contains(t, buf.String(), "DATABASE_ERROR")
	assert.Contains(t, buf.String(), "Database query failed: boom")
}

func TestRenderStyled_NoData(t *testing.T) {
	output.SetNoColor(true)
	t.Cleanup(func() { output.SetNoColor(false) })

	env := &report.Envelope{
		Status:    report.StatusNoData,
		Type:      report.NoDataFutureDate,
		Message:   "Feedback will be available from 2025-10-15",
		WeekStart: "2025-10-13",
		WeekEnd:   "2025-10-19",
	}
	var buf bytes.Buffer
	renderStyled(&buf, env)
	assert.Contains(t, buf.String(), "Weekly report  2025-10-13 .. 2025-10-19")
	assert.Contains(t, buf.String(), "Feedback will be available from 2025-10-15")
}
