package httpx

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"adsight/internal/domain"
	"adsight/internal/index"
	"adsight/internal/metrics"
	"adsight/internal/router"
	"adsight/internal/service"
)

// nullFloat serializes the undefined-ratio sentinel as JSON null instead of
// the invalid literal NaN.
type nullFloat float64

func (f nullFloat) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

type channelRow struct {
	Channel           string    `json:"channel"`
	Spend             float64   `json:"spend"`
	Revenue           float64   `json:"revenue"`
	Impressions       float64   `json:"impressions"`
	Clicks            float64   `json:"clicks"`
	Conversions       float64   `json:"conversions"`
	CostPerConversion nullFloat `json:"cost_per_conversion"`
	ReturnOnSpend     nullFloat `json:"return_on_spend"`
	ClickThroughRate  nullFloat `json:"click_through_rate"`
}

// Deps are the components the HTTP surface exposes.
type Deps struct {
	Records    []domain.CampaignRecord
	Dispatcher *router.Dispatcher
	Engine     *service.Engine
	DocsGlob   string
}

// NewRouter wires the HTTP API: question answering, channel aggregates,
// knowledge-base rebuild, health and prometheus metrics.
func NewRouter(log *zap.Logger, deps Deps) http.Handler {
	mux := chi.NewRouter()
	mux.Use(RequestID)
	mux.Use(Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Get("/v1/ask", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			http.Error(w, "q required", http.StatusBadRequest)
			return
		}
		k := 0
		if v := r.URL.Query().Get("k"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				http.Error(w, "k must be a positive integer", http.StatusBadRequest)
				return
			}
			k = n
		}
		ans, err := deps.Dispatcher.Ask(q, k)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, ans)
	})

	mux.Get("/v1/channels", func(w http.ResponseWriter, r *http.Request) {
		aggs := metrics.AggregateByChannel(deps.Records)
		rows := make([]channelRow, 0, len(aggs))
		for _, a := range aggs {
			rows = append(rows, channelRow{
				Channel:           a.Channel,
				Spend:             a.Spend,
				Revenue:           a.Revenue,
				Impressions:       a.Impressions,
				Clicks:            a.Clicks,
				Conversions:       a.Conversions,
				CostPerConversion: nullFloat(a.Metrics.CostPerConversion),
				ReturnOnSpend:     nullFloat(a.Metrics.ReturnOnSpend),
				ClickThroughRate:  nullFloat(a.Metrics.ClickThroughRate),
			})
		}
		writeJSON(w, rows)
	})

	mux.Post("/v1/kb/build", func(w http.ResponseWriter, r *http.Request) {
		if deps.DocsGlob == "" {
			http.Error(w, "no docs_glob configured", http.StatusConflict)
			return
		}
		docs, err := service.ReadDocuments([]string{deps.DocsGlob})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		summary, err := deps.Engine.BuildKnowledgeBase(docs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"documents": len(docs), "summary": summary})
	})

	return mux
}

// writeError maps known failure kinds to statuses: structural misuse is a
// client error, everything else is upstream.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, metrics.ErrNoData),
		errors.Is(err, metrics.ErrAllUndefined),
		errors.Is(err, metrics.ErrUnknownRatio),
		errors.Is(err, index.ErrInvalidK),
		errors.Is(err, index.ErrEmptyCorpus):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, index.ErrNotInitialized), errors.Is(err, index.ErrNotFound):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
