package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/custodia-labs/askdocs-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/askdocs-cli/internal/core/services"
)

// setupTestSettings points the settings service at a throwaway config
// directory so config commands never touch the real home directory.
func setupTestSettings(t *testing.T) func() {
	t.Helper()

	store, err := configfile.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	old := settingsService
	settingsService = services.NewSettingsService(store)
	return func() {
		settingsService = old
	}
}

func TestConfigCmd_Use(t *testing.T) {
	assert.Equal(t, "config", configCmd.Use)
}

func TestConfigCmd_ShowPrintsDefaults(t *testing.T) {
	cleanup := setupTestSettings(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "[Corpus]")
	assert.Contains(t, out, "Directory: sample_docs")
	assert.Contains(t, out, "Size: 1200")
	assert.Contains(t, out, "Lambda: 0.50")
	assert.Contains(t, out, "Provider: openai")
}

func TestConfigCmd_SetPersistsValue(t *testing.T) {
	cleanup := setupTestSettings(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "set", "retrieval.k", "5"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Set retrieval.k")

	settings, err := settingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, settings.Retrieval.K)
}

func TestConfigCmd_SetInvalidValueWarns(t *testing.T) {
	cleanup := setupTestSettings(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "set", "retrieval.lambda", "1.5"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Warning:")
}

func TestConfigCmd_PathPrintsLocation(t *testing.T) {
	cleanup := setupTestSettings(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "path"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "config.toml")
}

func TestConfigCmd_SetKeyRejectsUnknownService(t *testing.T) {
	cleanup := setupTestSettings(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "set-key", "database"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected embedding or llm")
}

func TestParseConfigValue_Types(t *testing.T) {
	assert.Equal(t, int64(42), parseConfigValue("42"))
	assert.Equal(t, 0.5, parseConfigValue("0.5"))
	assert.Equal(t, true, parseConfigValue("true"))
	assert.Equal(t, "ollama", parseConfigValue("ollama"))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-1...wxyz", maskAPIKey("sk-1234567890wxyz"))
}
