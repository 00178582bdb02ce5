package httpx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

type ctxKey string

const requestIDKey ctxKey = "rid"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adsight_http_requests_total",
		Help: "HTTP requests by path and status code.",
	}, []string{"path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adsight_http_request_duration_seconds",
		Help:    "HTTP request latency by path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

// RequestID attaches a random request id to the context and response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := newRID()
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, rid))
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r)
	})
}

// RID returns the request id stored in the context, if any.
func RID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logger logs each request with method, path, request id, status and latency,
// and feeds the prometheus request counter and latency histogram.
func Logger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)
			httpRequests.WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).Inc()
			httpLatency.WithLabelValues(r.URL.Path).Observe(elapsed.Seconds())
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("rid", RID(r.Context())),
				zap.Int("status", rec.status),
				zap.Duration("latency", elapsed),
			)
		})
	}
}

func newRID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
