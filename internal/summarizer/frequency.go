package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	tokenRe    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// FrequencySummarizer picks the highest-signal sentences of a text by
// normalized token frequency, keeping their original order.
type FrequencySummarizer struct {
	stopwords map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{stopwords: stopwordSet()}
}

// Summarize returns up to maxSentences sentences of the text, ranked by
// token frequency and re-sorted into source order.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	freq := map[string]float64{}
	maxF := 0.0
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			freq[tok]++
			if freq[tok] > maxF {
				maxF = freq[tok]
			}
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	ranking := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		total := 0.0
		for _, tok := range toks {
			total += freq[tok] / maxF
		}
		// Length normalization so long sentences do not dominate.
		if n := float64(len(toks)); n > 0 {
			total /= math.Sqrt(n)
		}
		ranking[i] = scored{i, total}
	}
	sort.Slice(ranking, func(a, b int) bool { return ranking[a].score > ranking[b].score })

	if maxSentences > len(ranking) {
		maxSentences = len(ranking)
	}
	picked := make([]int, maxSentences)
	for i := range picked {
		picked[i] = ranking[i].idx
	}
	sort.Ints(picked)

	parts := make([]string, 0, len(picked))
	for _, idx := range picked {
		parts = append(parts, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(parts, " "), nil
}

func (s *FrequencySummarizer) tokens(text string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, skip := s.stopwords[t]; skip {
			continue
		}
		out = append(out, t)
	}
	return out
}

func stopwordSet() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "for", "to", "of", "in", "on", "at", "by", "with", "as",
		"is", "are", "was", "were", "be", "been", "it", "this", "that", "these", "those", "from",
		"so", "such", "into", "about", "between", "through", "can", "will", "just", "not", "no",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
