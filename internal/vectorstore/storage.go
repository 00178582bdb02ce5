package vectorstore

import "adsight/internal/domain"

// Storage holds (vector, chunk, metadata) entries and supports similarity
// search. Persist and Restore address a filesystem location whose contents
// survive process restarts; Restore fails when no snapshot exists there.
type Storage interface {
	Init(dimension int) error
	Upsert(chunks []domain.Chunk, vectors [][]float64) error
	Search(vector []float64, topK int) ([]domain.SearchResult, error)
	Persist(location string) error
	Restore(location string) error
	Dimension() int
	Len() int
	Clear() error
}
