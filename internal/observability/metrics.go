package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the counters below.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Metrics holds the Prometheus collectors for the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	pageFetches     *prometheus.CounterVec
	llmCalls        *prometheus.CounterVec
	letters         *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pageFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cover_letter",
			Name:      "page_fetches_total",
			Help:      "Portfolio page fetches by outcome.",
		}, []string{"outcome"}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cover_letter",
			Name:      "llm_calls_total",
			Help:      "LLM calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		letters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cover_letter",
			Name:      "letters_generated_total",
			Help:      "Cover letters generated by tone.",
		}, []string{"tone"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cover_letter",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"method", "path", "status"}),
	}

	m.registry.MustRegister(
		m.pageFetches,
		m.llmCalls,
		m.letters,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePageFetch counts a page fetch.
func (m *Metrics) ObservePageFetch(outcome string) {
	if m == nil {
		return
	}
	m.pageFetches.WithLabelValues(outcome).Inc()
}

// ObserveLLMCall counts an LLM call for operation ("select_links", "compose").
func (m *Metrics) ObserveLLMCall(operation, outcome string) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(operation, outcome).Inc()
}

// ObserveLetter counts a generated letter.
func (m *Metrics) ObserveLetter(tone string) {
	if m == nil {
		return
	}
	m.letters.WithLabelValues(tone).Inc()
}

// ObserveRequest records the latency of an HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
