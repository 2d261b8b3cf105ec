package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for inbound HTTP requests, pipeline
// stages, and outbound model calls.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	llmCalls        *prometheus.CounterVec
	llmRetries      prometheus.Counter
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "finsight",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finsight",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "finsight",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Latency distribution per pipeline stage.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	llmCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finsight",
		Subsystem: "llm",
		Name:      "calls_total",
		Help:      "Total number of completion calls by outcome.",
	}, []string{"outcome"})

	llmRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "finsight",
		Subsystem: "llm",
		Name:      "retries_total",
		Help:      "Total number of completion call retries.",
	})

	for _, c := range []prometheus.Collector{requestDuration, requestTotal, stageDuration, llmCalls, llmRetries} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	collector := &Collector{
		registry:        registry,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		stageDuration:   stageDuration,
		llmCalls:        llmCalls,
		llmRetries:      llmRetries,
	}

	return collector, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// ObserveStage records the duration of one pipeline stage.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordLLMCall counts a completion call by outcome ("ok", "failed", "blocked").
func (c *Collector) RecordLLMCall(outcome string) {
	c.llmCalls.WithLabelValues(outcome).Inc()
}

// RecordLLMRetry counts one completion retry attempt.
func (c *Collector) RecordLLMRetry() {
	c.llmRetries.Inc()
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
