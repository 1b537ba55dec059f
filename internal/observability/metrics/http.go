package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentsIngestedTotal *prometheus.CounterVec
	documentPages          *prometheus.HistogramVec
	analysesTotal          *prometheus.CounterVec
	sessionsCreatedTotal   *prometheus.CounterVec
	sessionsEvictedTotal   *prometheus.CounterVec
	navigationTotal        *prometheus.CounterVec
	speechRequestsTotal    *prometheus.CounterVec
	formAnalysesTotal      *prometheus.CounterVec
	moneyAnalysesTotal     *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "insight",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "insight",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentsIngestedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "documents",
			Name:      "ingested_total",
			Help:      "Total ingested documents by format.",
		},
		[]string{"service", "format"},
	)
	documentPages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "insight",
			Subsystem: "documents",
			Name:      "pages",
			Help:      "Distribution of page counts per ingested document.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200},
		},
		[]string{"service"},
	)
	analysesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "analysis",
			Name:      "total",
			Help:      "Total document analyses by outcome.",
		},
		[]string{"service", "outcome"},
	)
	sessionsCreatedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "sessions",
			Name:      "created_total",
			Help:      "Total reading sessions created.",
		},
		[]string{"service"},
	)
	sessionsEvictedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "sessions",
			Name:      "evicted_total",
			Help:      "Total sessions evicted by reason.",
		},
		[]string{"service", "reason"},
	)
	navigationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "navigation",
			Name:      "commands_total",
			Help:      "Total navigation commands by interpretation strategy and result.",
		},
		[]string{"service", "strategy", "result"},
	)
	speechRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "speech",
			Name:      "requests_total",
			Help:      "Total speech synthesis requests by status.",
		},
		[]string{"service", "status"},
	)
	formAnalysesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "forms",
			Name:      "analyses_total",
			Help:      "Total form image analyses by status.",
		},
		[]string{"service", "status"},
	)
	moneyAnalysesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "money",
			Name:      "analyses_total",
			Help:      "Total currency image analyses by status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		documentsIngestedTotal,
		documentPages,
		analysesTotal,
		sessionsCreatedTotal,
		sessionsEvictedTotal,
		navigationTotal,
		speechRequestsTotal,
		formAnalysesTotal,
		moneyAnalysesTotal,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		documentsIngestedTotal: documentsIngestedTotal,
		documentPages:          documentPages,
		analysesTotal:          analysesTotal,
		sessionsCreatedTotal:   sessionsCreatedTotal,
		sessionsEvictedTotal:   sessionsEvictedTotal,
		navigationTotal:        navigationTotal,
		speechRequestsTotal:    speechRequestsTotal,
		formAnalysesTotal:      formAnalysesTotal,
		moneyAnalysesTotal:     moneyAnalysesTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses per-session URLs so identifiers do not blow
// up label cardinality.
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/v1/sessions/") {
		return path
	}
	rest := strings.TrimPrefix(path, "/v1/sessions/")
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1:
		return "/v1/sessions/{session_id}"
	case len(parts) >= 2 && parts[1] == "pages":
		if len(parts) >= 4 && parts[3] == "image" {
			return "/v1/sessions/{session_id}/pages/{page}/image"
		}
		if len(parts) >= 4 && parts[3] == "describe" {
			return "/v1/sessions/{session_id}/pages/{page}/describe"
		}
		return "/v1/sessions/{session_id}/pages/{page}"
	case len(parts) >= 2 && parts[1] == "summary":
		return "/v1/sessions/{session_id}/summary"
	default:
		return "/v1/sessions/{session_id}"
	}
}

func (m *HTTPServerMetrics) RecordIngest(service, format string, pageCount int) {
	if format == "" {
		format = "unknown"
	}
	m.documentsIngestedTotal.WithLabelValues(service, format).Inc()
	m.documentPages.WithLabelValues(service).Observe(float64(pageCount))
}

func (m *HTTPServerMetrics) RecordAnalysis(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.analysesTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordSessionCreated(service string) {
	m.sessionsCreatedTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordSessionEvicted(service, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	m.sessionsEvictedTotal.WithLabelValues(service, reason).Inc()
}

func (m *HTTPServerMetrics) RecordNavigation(service, strategy string, success bool) {
	if strategy == "" {
		strategy = "unknown"
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.navigationTotal.WithLabelValues(service, strategy, result).Inc()
}

func (m *HTTPServerMetrics) RecordSpeechRequest(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.speechRequestsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordFormAnalysis(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.formAnalysesTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordMoneyAnalysis(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.moneyAnalysesTotal.WithLabelValues(service, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
