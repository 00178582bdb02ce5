package tfidf

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Embedder implements a simple TF-IDF vectorizer. It builds a vocabulary
// from the corpus and computes smoothed IDF values; vectors are
// L2-normalized so dot product equals cosine similarity.
type Embedder struct {
	vocabulary   map[string]int
	idf          []float64
	dimension    int
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder() *Embedder {
	return &Embedder{
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus; ensure tokenizer supports your language")
	}
	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		// Smoothed IDF keeps terms present in every document nonzero.
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	e.dimension = len(terms)
	e.prepared = true
	return nil
}

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the TF-IDF embedding for the given text.
func (e *Embedder) Embed(text string) ([]float64, error) {
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	vec := make([]float64, e.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range e.tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec, nil
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * e.idf[idx]
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

type snapshot struct {
	Vocabulary map[string]int
	IDF        []float64
	Dimension  int
}

// State serializes the prepared vocabulary and IDF table.
func (e *Embedder) State() ([]byte, error) {
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		Vocabulary: e.vocabulary,
		IDF:        e.idf,
		Dimension:  e.dimension,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Restore rebuilds the prepared state from a State blob.
func (e *Embedder) Restore(state []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(state)).Decode(&snap); err != nil {
		return err
	}
	e.vocabulary = snap.Vocabulary
	e.idf = snap.IDF
	e.dimension = snap.Dimension
	e.prepared = true
	return nil
}

func (e *Embedder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
