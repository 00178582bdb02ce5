package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsight/internal/chunker"
	"adsight/internal/domain"
	"adsight/internal/embedding/tfidf"
	"adsight/internal/index"
	"adsight/internal/metrics"
	"adsight/internal/service"
	"adsight/internal/vectorstore/memory"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		question string
		want     Intent
	}{
		{"Which channel had the best ROAS?", IntentBestROAS},
		{"best roas per channel", IntentBestROAS},
		{"what is a good CTR for display ads?", IntentKnowledge},
		{"roas?", IntentKnowledge}, // mentions roas but no channel
		{"   ", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect(tt.question), tt.question)
	}
}

func sampleRecords() []domain.CampaignRecord {
	return []domain.CampaignRecord{
		{Channel: "Google", Spend: 100, Revenue: 400, Conversions: 10, Impressions: 1000, Clicks: 50},
		{Channel: "Meta", Spend: 100, Revenue: 150, Conversions: 5, Impressions: 2000, Clicks: 40},
	}
}

func TestAskBestROAS(t *testing.T) {
	d := NewDispatcher(sampleRecords(), nil)
	ans, err := d.Ask("Which channel had the best ROAS?", 0)
	require.NoError(t, err)
	assert.Equal(t, IntentBestROAS, ans.Intent)
	assert.Equal(t, "The channel with the best ROAS was: Google (ROAS = 4.00).", ans.Text)
}

func TestAskBestROASLabelsAggregationFailure(t *testing.T) {
	d := NewDispatcher(nil, nil)
	_, err := d.Ask("Which channel had the best ROAS?", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, metrics.ErrNoData)
	assert.Contains(t, err.Error(), "aggregation:")
}

func TestAskKnowledge(t *testing.T) {
	eng := newBuiltEngine(t)
	d := NewDispatcher(nil, eng)

	ans, err := d.Ask("how do email newsletters perform", 2)
	require.NoError(t, err)
	assert.Equal(t, IntentKnowledge, ans.Intent)
	require.NotNil(t, ans.Retrieval)
	assert.Equal(t, ans.Text, ans.Retrieval.Context)
}

func TestAskKnowledgeLabelsRetrievalFailure(t *testing.T) {
	eng := newUnbuiltEngine(t)
	d := NewDispatcher(nil, eng)
	_, err := d.Ask("anything about marketing", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, index.ErrNotInitialized)
	assert.Contains(t, err.Error(), "retrieval:")
}

func newUnbuiltEngine(t *testing.T) *service.Engine {
	t.Helper()
	ch, err := chunker.NewTextChunker(200, 20)
	require.NoError(t, err)
	ix := index.New(tfidf.NewEmbedder(), memory.NewStorage(), t.TempDir())
	return service.NewEngine(ch, ix, nil, 0)
}

func newBuiltEngine(t *testing.T) *service.Engine {
	t.Helper()
	eng := newUnbuiltEngine(t)
	_, err := eng.BuildKnowledgeBase([]domain.Document{
		{ID: "email", Text: "Email newsletters nurture subscribers. Open rates improve with short subject lines."},
		{ID: "search", Text: "Paid search campaigns rely on keyword bidding and budgets."},
	})
	require.NoError(t, err)
	return eng
}

func TestAskUnknown(t *testing.T) {
	d := NewDispatcher(nil, nil)
	ans, err := d.Ask("", 0)
	require.NoError(t, err)
	assert.Equal(t, IntentUnknown, ans.Intent)
	assert.Contains(t, ans.Text, "not supported")
}
