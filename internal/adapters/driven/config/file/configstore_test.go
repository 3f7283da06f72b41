package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore(t *testing.T) {
	t.Run("creates config directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "config")
		store, err := NewConfigStore(dir)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
		_, err = os.Stat(dir)
		assert.NoError(t, err)
	})

	t.Run("starts empty when no file exists", func(t *testing.T) {
		store := setupTestStore(t)
		_, ok := store.Get("anything")
		assert.False(t, ok)
	})
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("retrieval.k", 7))
	require.NoError(t, store.Set("retrieval.lambda", 0.5))

	assert.Equal(t, "ollama", store.GetString("llm.provider"))
	assert.Equal(t, 7, store.GetInt("retrieval.k"))
	assert.InDelta(t, 0.5, store.GetFloat("retrieval.lambda"), 1e-9)
}

func TestConfigStore_MissingKeysReturnZeroValues(t *testing.T) {
	store := setupTestStore(t)

	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.Equal(t, 0.0, store.GetFloat("missing"))
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("embedding.model", "nomic-embed-text"))
	require.NoError(t, store.Set("retrieval.fetch_k", 20))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", reopened.GetString("embedding.model"))
	assert.Equal(t, 20, reopened.GetInt("retrieval.fetch_k"))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := "[llm]\nprovider = \"openai\"\nmodel = \"gpt-4o-mini\"\n\n[retrieval]\nk = 7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, "gpt-4o-mini", store.GetString("llm.model"))
	assert.Equal(t, 7, store.GetInt("retrieval.k"))
}

func TestConfigStore_RestrictedFilePermissions(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
