package httppresentation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const headerRequestID = "X-Request-ID"

// Metrics holds the HTTP-level prometheus collectors, registered in main.
type Metrics struct {
	Requests *prometheus.CounterVec   // http_requests_total{route,method,status}
	Duration *prometheus.HistogramVec // http_request_duration_seconds{route,method}
}

func NewMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"route", "method", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP request handling in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(m.Requests, m.Duration)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withObservability threads a request-scoped logger through the context,
// records RED metrics per route template, and writes one access log line per
// request.
func (h *Handler) withObservability(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		logger := h.log.With(
			zap.String("request_id", requestID),
			zap.String("route", route),
			zap.String("method", r.Method),
		)
		ctx := logging.ContextWithLogger(r.Context(), logger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(rec, r.WithContext(ctx))
		elapsed := time.Since(start)

		if h.metrics != nil {
			h.metrics.Requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			h.metrics.Duration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())
		}

		logger.Info("http_request_done",
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
	}
}
