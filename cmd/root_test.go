package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/disruption-cli/internal/model"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"score", "fetch", "quality", "serve", "export"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "disruption-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestScoreCommand_Flags(t *testing.T) {
	for _, name := range []string{"input", "output", "min-score", "concurrency", "save"} {
		flag := scoreCmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "score should have --%s flag", name)
	}
	assert.Equal(t, "-", scoreCmd.Flags().Lookup("input").DefValue)
}

func TestFetchCommand_Flags(t *testing.T) {
	for _, name := range []string{"feeds", "output", "dry-run"} {
		flag := fetchCmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "fetch should have --%s flag", name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestQualityCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range qualityCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["assess"])
	assert.True(t, names["list"])
}

func TestExportCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range exportCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["alerts"])
	assert.True(t, names["quality"])
}

func TestReadObservations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.json")
	payload := `[{"source":"weather","event_type":"weather","title":"Storm warning","severity":"warning"}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	observations, err := readObservations(path)
	require.NoError(t, err)
	require.Len(t, observations, 1)
	assert.Equal(t, model.SourceWeather, observations[0].Source)
	assert.Equal(t, "Storm warning", observations[0].Title)
}

func TestReadObservations_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := readObservations(path)
	assert.Error(t, err)
}

func TestWriteJSON_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, writeJSON(path, map[string]int{"alerts": 3}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"alerts": 3`)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"weather", "news"}, splitAndTrim(" weather, news ,"))
	assert.Nil(t, splitAndTrim(""))
}

func TestAlertFilter(t *testing.T) {
	f := alertFilter("critical", "earthquake", 0.8, 10, 5)
	assert.Equal(t, model.SeverityCritical, f.Level)
	assert.Equal(t, "earthquake", f.Source)
	assert.Equal(t, 0.8, f.MinScore)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 5, f.Offset)
}

func TestWithAPIKey(t *testing.T) {
	out, err := withAPIKey("https://newsapi.org/v2/everything?q=port", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "apiKey=secret")
	assert.Contains(t, out, "q=port")

	out, err = withAPIKey("https://newsapi.org/v2/everything", "")
	require.NoError(t, err)
	assert.Equal(t, "https://newsapi.org/v2/everything", out)
}
