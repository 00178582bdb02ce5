package memory

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsight/internal/domain"
)

func seeded(t *testing.T) *Storage {
	t.Helper()
	s := NewStorage()
	require.NoError(t, s.Init(3))
	require.NoError(t, s.Upsert(
		[]domain.Chunk{
			{ChunkID: "a", Text: "alpha"},
			{ChunkID: "b", Text: "beta"},
			{ChunkID: "c", Text: "gamma"},
		},
		[][]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0.6, 0.8, 0},
		},
	))
	return s
}

func TestInitRejectsBadDimension(t *testing.T) {
	s := NewStorage()
	assert.Error(t, s.Init(0))
}

func TestUpsertRejectsMismatch(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	assert.Error(t, s.Upsert([]domain.Chunk{{ChunkID: "a"}}, nil))
	assert.Error(t, s.Upsert([]domain.Chunk{{ChunkID: "a"}}, [][]float64{{1, 2, 3}}))
}

func TestSearchRanksByCosine(t *testing.T) {
	s := seeded(t)
	results, err := s.Search([]float64{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.ChunkID)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, "c", results[1].Chunk.ChunkID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchClampsK(t *testing.T) {
	s := seeded(t)
	results, err := s.Search([]float64{0, 1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	_, err = s.Search([]float64{0, 1, 0}, 0)
	assert.Error(t, err)
}

func TestPersistRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := seeded(t)
	require.NoError(t, s.Persist(dir))

	restored := NewStorage()
	require.NoError(t, restored.Restore(dir))
	assert.Equal(t, 3, restored.Dimension())
	assert.Equal(t, 3, restored.Len())

	results, err := restored.Search([]float64{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Chunk.ChunkID)
}

func TestRestoreMissingSnapshot(t *testing.T) {
	s := NewStorage()
	err := s.Restore(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
