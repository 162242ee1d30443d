package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP-level metrics shared by all handlers.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Domain metrics for the access core.
var (
	tokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_tokens_issued_total",
			Help: "Share tokens issued, by origin (api or rfq_refresh).",
		},
		[]string{"origin"},
	)

	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_resolutions_total",
			Help: "Access decisions produced, by resolved level and source.",
		},
		[]string{"level", "source"},
	)

	visitsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_visits_recorded_total",
			Help: "Page visits recorded, split by unique-visitor status.",
		},
		[]string{"unique"},
	)

	actionsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_actions_recorded_total",
			Help: "In-page actions recorded, by action type.",
		},
		[]string{"action_type"},
	)
)

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		tokensIssuedTotal, resolutionsTotal, visitsRecordedTotal, actionsRecordedTotal,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// TokenIssued increments the issuance counter. Origin is "api" for tokens
// created by staff and "rfq_refresh" for engagement-driven re-issues.
func TokenIssued(origin string) {
	tokensIssuedTotal.WithLabelValues(origin).Inc()
}

// Resolution records one access decision.
func Resolution(level, source string) {
	resolutionsTotal.WithLabelValues(level, source).Inc()
}

// VisitRecorded records one page visit.
func VisitRecorded(unique bool) {
	visitsRecordedTotal.WithLabelValues(strconv.FormatBool(unique)).Inc()
}

// ActionRecorded records one in-page action.
func ActionRecorded(actionType string) {
	actionsRecordedTotal.WithLabelValues(actionType).Inc()
}

// Instrument wraps a handler with RPS, latency and in-flight measurements.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
