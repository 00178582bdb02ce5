package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"adsight/internal/chunker"
	"adsight/internal/domain"
	"adsight/internal/embedding/tfidf"
	"adsight/internal/index"
	"adsight/internal/router"
	"adsight/internal/service"
	"adsight/internal/vectorstore/memory"
)

func testHandler(t *testing.T, records []domain.CampaignRecord, built bool) http.Handler {
	t.Helper()
	ch, err := chunker.NewTextChunker(200, 20)
	require.NoError(t, err)
	ix := index.New(tfidf.NewEmbedder(), memory.NewStorage(), t.TempDir())
	eng := service.NewEngine(ch, ix, nil, 0)
	if built {
		_, err := eng.BuildKnowledgeBase([]domain.Document{
			{ID: "d1", Text: "Paid search campaigns rely on keyword bidding and budgets."},
		})
		require.NoError(t, err)
	}
	return NewRouter(zap.NewNop(), Deps{
		Records:    records,
		Dispatcher: router.NewDispatcher(records, eng),
		Engine:     eng,
	})
}

func TestHealthz(t *testing.T) {
	h := testHandler(t, nil, false)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChannelsRendersUndefinedAsNull(t *testing.T) {
	records := []domain.CampaignRecord{
		{Channel: "Google", Spend: 100, Revenue: 400, Impressions: 1000, Clicks: 50, Conversions: 0},
	}
	h := testHandler(t, records, false)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/channels", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Google", rows[0]["channel"])
	assert.Nil(t, rows[0]["cost_per_conversion"])
	assert.Equal(t, 4.0, rows[0]["return_on_spend"])
}

func TestAskAnalytics(t *testing.T) {
	records := []domain.CampaignRecord{
		{Channel: "Google", Spend: 100, Revenue: 400},
		{Channel: "Meta", Spend: 100, Revenue: 150},
	}
	h := testHandler(t, records, false)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ask?q=Which+channel+had+the+best+ROAS%3F", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var ans map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.Contains(t, ans["text"], "Google")
	assert.Contains(t, ans["text"], "4.00")
}

func TestAskRequiresQuestion(t *testing.T) {
	h := testHandler(t, nil, false)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ask", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskBeforeBuildConflicts(t *testing.T) {
	h := testHandler(t, nil, false)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ask?q=what+is+a+good+ctr", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "retrieval:")
}

func TestAskKnowledge(t *testing.T) {
	h := testHandler(t, nil, true)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ask?q=keyword+bidding+budgets&k=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var ans struct {
		Retrieval *service.Response `json:"retrieval"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	require.NotNil(t, ans.Retrieval)
	assert.Len(t, ans.Retrieval.Results, 1)
}
