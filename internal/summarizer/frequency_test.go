package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizePicksFrequentTopics(t *testing.T) {
	text := "Search campaigns need keyword research. Search budgets control spend on search ads. " +
		"Our office has a coffee machine. Search performance improves with negative keywords."
	s := NewFrequencySummarizer()
	out, err := s.Summarize(text, 2)
	require.NoError(t, err)

	sentences := strings.Count(out, ".")
	assert.LessOrEqual(t, sentences, 2)
	assert.Contains(t, strings.ToLower(out), "search")
}

func TestSummarizeShortTextPassesThrough(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("no sentence punctuation here", 3)
	require.NoError(t, err)
	assert.Equal(t, "no sentence punctuation here", out)
}

func TestSummarizeKeepsSourceOrder(t *testing.T) {
	text := "Alpha ads win. Beta ads lose. Alpha ads convert."
	s := NewFrequencySummarizer()
	out, err := s.Summarize(text, 3)
	require.NoError(t, err)
	assert.True(t, strings.Index(out, "Alpha ads win") < strings.Index(out, "Alpha ads convert"))
}
