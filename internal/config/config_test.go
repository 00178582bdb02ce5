package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, 500, cfg.Chunker.MaxChunkSize)
	assert.Equal(t, 50, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.NotEmpty(t, cfg.Store.PersistDir)
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker:\n  max_chunk_size: 200\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Chunker.MaxChunkSize)
	assert.Equal(t, 50, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
}

func TestLoadRejectsOverlapNotBelowMaxSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker:\n  max_chunk_size: 100\n  chunk_overlap: 100\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk_overlap")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := defaultConfig()
	cfg.Retrieval.TopK = 7
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Retrieval.TopK)
}
