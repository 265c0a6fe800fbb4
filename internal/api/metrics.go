package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sendo-kakeru/image-resize/internal/pipeline"
)

type metrics struct {
	registry               *prometheus.Registry
	requestTotal           *prometheus.CounterVec
	requestDuration        *prometheus.HistogramVec
	rateLimitRejected      *prometheus.CounterVec
	transformsTotal        *prometheus.CounterVec
	transformFailuresTotal prometheus.Counter
	transformDuration      prometheus.Histogram
	passthroughTotal       prometheus.Counter
	pixelsProcessedTotal   prometheus.Counter
	inputBytesTotal        prometheus.Counter
	outputBytesTotal       prometheus.Counter
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imageresize_api_requests_total",
			Help: "Total HTTP requests handled by the API.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "imageresize_api_request_duration_seconds",
			Help:    "API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		rateLimitRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imageresize_api_rate_limit_rejections_total",
			Help: "Total API requests rejected by rate limiting.",
		}, []string{"route"}),
		transformsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imageresize_transforms_total",
			Help: "Total successful transforms by output format.",
		}, []string{"format"}),
		transformFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imageresize_transform_failures_total",
			Help: "Total transform pipeline failures.",
		}),
		transformDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "imageresize_transform_duration_seconds",
			Help:    "Decode/resize/encode duration for successful transforms.",
			Buckets: prometheus.DefBuckets,
		}),
		passthroughTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imageresize_passthrough_total",
			Help: "Total requests served unmodified with no transform parameters.",
		}),
		pixelsProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imageresize_pixels_processed_total",
			Help: "Total output pixels produced by successful transforms.",
		}),
		inputBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imageresize_input_bytes_total",
			Help: "Total bytes fetched from the object store.",
		}),
		outputBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imageresize_output_bytes_total",
			Help: "Total transformed bytes written to clients.",
		}),
	}
	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.rateLimitRejected,
		m.transformsTotal,
		m.transformFailuresTotal,
		m.transformDuration,
		m.passthroughTotal,
		m.pixelsProcessedTotal,
		m.inputBytesTotal,
		m.outputBytesTotal,
	)
	return m
}

func (m *metrics) observeTransform(result pipeline.Result, elapsed time.Duration) {
	m.transformsTotal.WithLabelValues(string(result.Format)).Inc()
	m.transformDuration.Observe(elapsed.Seconds())
	m.pixelsProcessedTotal.Add(float64(result.Width) * float64(result.Height))
	m.outputBytesTotal.Add(float64(len(result.Data)))
}

func (m *metrics) metricsHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) withHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := routeLabel(r.URL.Path)
		status := statusLabel(recorder.status)

		m.requestTotal.WithLabelValues(r.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

func statusLabel(status int) string {
	return strconv.Itoa(status)
}

func routeLabel(path string) string {
	switch {
	case strings.HasPrefix(path, "/transform/"):
		return "/transform/{key}"
	case strings.HasPrefix(path, "/healthz"):
		return "/healthz"
	case strings.HasPrefix(path, "/metrics"):
		return "/metrics"
	default:
		return path
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
