// Package index ties an embedder to a vector store behind a single
// build/load/query surface. The "no index yet" state is explicit: Query
// fails fast until Build or Load has succeeded.
package index

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"adsight/internal/domain"
	"adsight/internal/embedding"
	"adsight/internal/vectorstore"
)

var (
	// ErrNotInitialized is returned by Query before any Build or Load.
	ErrNotInitialized = errors.New("index not initialized: call Build or Load first")

	// ErrNotFound is returned by Load when no snapshot exists at the
	// configured location.
	ErrNotFound = errors.New("no persisted index found")

	// ErrInvalidK is returned by Query for k < 1.
	ErrInvalidK = errors.New("k must be at least 1")

	// ErrEmptyCorpus is returned by Build when there is nothing to index.
	ErrEmptyCorpus = errors.New("no chunks to index")
)

const embedderFile = "embedder.gob"

type embedderSnapshot struct {
	Name  string
	State []byte
}

// Index is the embedding index. Builds must be serialized by the caller
// (one writer per persist location); queries against a built index are safe
// to run concurrently.
type Index struct {
	embedder   embedding.Embedder
	store      vectorstore.Storage
	persistDir string

	mu          sync.RWMutex
	initialized bool
}

// New creates an uninitialized index persisting under persistDir.
func New(embedder embedding.Embedder, store vectorstore.Storage, persistDir string) *Index {
	return &Index{embedder: embedder, store: store, persistDir: persistDir}
}

// Build embeds every chunk, replaces the store contents entirely and
// persists the result together with the embedder state.
func (ix *Index) Build(chunks []domain.Chunk) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(chunks) == 0 {
		return ErrEmptyCorpus
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	if err := ix.embedder.Prepare(texts); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}

	vectors := make([][]float64, len(chunks))
	for i, ch := range chunks {
		vec, err := ix.embedder.Embed(ch.Text)
		if err != nil {
			return fmt.Errorf("embedding %s: %w", ch.ChunkID, err)
		}
		vectors[i] = vec
	}

	if err := ix.store.Init(len(vectors[0])); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := ix.store.Upsert(chunks, vectors); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := ix.store.Persist(ix.persistDir); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := ix.persistEmbedder(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	ix.initialized = true
	return nil
}

// Load restores a previously persisted index without recomputing embeddings.
func (ix *Index) Load() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.store.Restore(ix.persistDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w at %s", ErrNotFound, ix.persistDir)
		}
		return fmt.Errorf("storage: %w", err)
	}
	if err := ix.restoreEmbedder(); err != nil {
		return err
	}
	ix.initialized = true
	return nil
}

// Query embeds the text and returns the top-k stored entries by descending
// similarity. An index holding fewer than k entries returns all of them.
func (ix *Index) Query(text string, k int) ([]domain.SearchResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.initialized {
		return nil, ErrNotInitialized
	}
	if k < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidK, k)
	}
	vec, err := ix.embedder.Embed(text)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	results, err := ix.store.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return results, nil
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int { return ix.store.Len() }

func (ix *Index) persistEmbedder() error {
	state, err := ix.embedder.State()
	if err != nil {
		return err
	}
	path := filepath.Join(ix.persistDir, embedderFile)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(embedderSnapshot{Name: ix.embedder.Name(), State: state}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (ix *Index) restoreEmbedder() error {
	f, err := os.Open(filepath.Join(ix.persistDir, embedderFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w at %s", ErrNotFound, ix.persistDir)
		}
		return fmt.Errorf("storage: %w", err)
	}
	defer f.Close()
	var snap embedderSnapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("storage: corrupt embedder state at %s: %w", ix.persistDir, err)
	}
	if snap.Name != ix.embedder.Name() {
		return fmt.Errorf("index was built with embedder %q, configured embedder is %q", snap.Name, ix.embedder.Name())
	}
	if err := ix.embedder.Restore(snap.State); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	return nil
}
