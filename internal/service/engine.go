package service

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"adsight/internal/domain"
	"adsight/internal/index"
)

// DefaultTopK is the number of chunks retrieved when the caller does not ask
// for a specific k.
const DefaultTopK = 4

const contextSeparator = "\n---\n"

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Response is the composed answer payload for a retrieval query: the
// original question, the retrieved context joined in ranked order, and the
// ranked results with scores. No generative synthesis happens here.
type Response struct {
	Query   string                `json:"query"`
	Context string                `json:"context"`
	Results []domain.SearchResult `json:"results"`
}

// Engine orchestrates chunking and the embedding index into a knowledge
// base that can answer free-text queries with grounded context.
type Engine struct {
	chunker    domain.Chunker
	index      *index.Index
	summarizer Summarizer
	topK       int
}

// NewEngine assembles a retrieval engine. topK <= 0 selects DefaultTopK;
// summarizer may be nil to skip ingest summaries.
func NewEngine(chunker domain.Chunker, ix *index.Index, summarizer Summarizer, topK int) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Engine{chunker: chunker, index: ix, summarizer: summarizer, topK: topK}
}

// BuildKnowledgeBase chunks every document, carries each document's metadata
// onto its chunks, and builds the index once over the whole collection so
// the embedder sees the full corpus. It returns a short summary of the
// ingested text when a summarizer is configured.
func (e *Engine) BuildKnowledgeBase(documents []domain.Document) (string, error) {
	var allChunks []domain.Chunk
	var corpus strings.Builder
	for _, d := range documents {
		chunks, err := e.chunker.Chunk(d)
		if err != nil {
			return "", fmt.Errorf("chunking %s: %w", d.ID, err)
		}
		allChunks = append(allChunks, chunks...)
		corpus.WriteString(d.Text)
		corpus.WriteString("\n")
	}
	if err := e.index.Build(allChunks); err != nil {
		return "", err
	}
	if e.summarizer == nil {
		return "", nil
	}
	summary, err := e.summarizer.Summarize(corpus.String(), 3)
	if err != nil {
		return "", fmt.Errorf("summarizing corpus: %w", err)
	}
	return summary, nil
}

// LoadKnowledgeBase restores a previously persisted index.
func (e *Engine) LoadKnowledgeBase() error {
	return e.index.Load()
}

// Answer retrieves the top-k chunks for the query and composes the grounded
// response. k <= 0 selects the engine default.
func (e *Engine) Answer(query string, k int) (Response, error) {
	if k <= 0 {
		k = e.topK
	}
	results, err := e.index.Query(query, k)
	if err != nil {
		return Response{}, err
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Text
	}
	return Response{
		Query:   query,
		Context: strings.Join(texts, contextSeparator),
		Results: results,
	}, nil
}

// ReadDocuments loads .txt documents from the given paths or glob patterns.
func ReadDocuments(patterns []string) ([]domain.Document, error) {
	var documents []domain.Document
	for _, p := range patterns {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".txt") {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return nil, err
			}
			documents = append(documents, domain.Document{
				ID:       hashString(m),
				Path:     m,
				Text:     string(data),
				Metadata: map[string]string{"path": m},
			})
		}
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("no .txt documents found")
	}
	return documents, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
