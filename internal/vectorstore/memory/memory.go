// Package memory is a brute-force cosine-similarity vector store with an
// optional single-file gob snapshot for durability.
package memory

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"adsight/internal/domain"
)

const snapshotFile = "index.gob"

// Storage keeps vectors and chunks in parallel slices. Vectors are assumed
// L2-normalized, so dot product is cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
}

type snapshot struct {
	Dimension int
	Vectors   [][]float64
	Chunks    []domain.Chunk
}

func NewStorage() *Storage { return &Storage{} }

// Init resets the store for vectors of the given dimension.
func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

// Upsert appends entries. Every vector must match the configured dimension.
func (s *Storage) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("vector dimension %d does not match store dimension %d", len(v), s.dimension)
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK entries ranked by descending cosine similarity.
// Fewer entries than topK returns all of them.
func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	idxs := make([]int, len(s.vectors))
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		idxs[i] = i
		scores[i] = dot(s.vectors[i], vector)
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.SearchResult{Chunk: s.chunks[j], Score: scores[j]})
	}
	return results, nil
}

// Persist writes a snapshot of the store under the given directory,
// replacing any previous snapshot.
func (s *Storage) Persist(location string) error {
	s.mu.RLock()
	snap := snapshot{Dimension: s.dimension, Vectors: s.vectors, Chunks: s.chunks}
	s.mu.RUnlock()

	if err := os.MkdirAll(location, 0o755); err != nil {
		return err
	}
	path := filepath.Join(location, snapshotFile)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Restore replaces the store contents with the snapshot at the location.
// A missing snapshot surfaces as os.ErrNotExist for the caller to classify.
func (s *Storage) Restore(location string) error {
	f, err := os.Open(filepath.Join(location, snapshotFile))
	if err != nil {
		return err
	}
	defer f.Close()
	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("corrupt snapshot at %s: %w", location, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = snap.Dimension
	s.vectors = snap.Vectors
	s.chunks = snap.Chunks
	return nil
}

// Dimension returns the configured vector dimension.
func (s *Storage) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Len returns the number of stored entries.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Clear drops all entries but keeps the dimension.
func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	return nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
