// Package metrics holds the prometheus collectors shared by the HTTP
// server, the text-generation providers and the progression engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors with the registry they are registered on.
type Metrics struct {
	Registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	LLMRequests *prometheus.CounterVec
	LLMDuration *prometheus.HistogramVec
	LLMTokens   *prometheus.CounterVec

	PointsAwarded  prometheus.Counter
	BadgesAwarded  *prometheus.CounterVec
	StepsCompleted *prometheus.CounterVec
}

// New creates the collectors on a fresh registry. Process and Go runtime
// collectors are included when withRuntime is set.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coacha_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coacha_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "endpoint"},
		),
		LLMRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coacha_llm_requests_total",
				Help: "Text-generation calls by purpose and outcome",
			},
			[]string{"model", "purpose", "outcome"},
		),
		LLMDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coacha_llm_request_duration_seconds",
				Help:    "Latency of text-generation calls",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"model", "purpose"},
		),
		LLMTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coacha_llm_tokens_total",
				Help: "Tokens consumed by direction",
			},
			[]string{"model", "direction"},
		),
		PointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coacha_points_awarded_total",
			Help: "Points granted for completed steps",
		}),
		BadgesAwarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coacha_badges_awarded_total",
				Help: "Badges unlocked by id",
			},
			[]string{"badge"},
		),
		StepsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coacha_steps_completed_total",
				Help: "Learning steps completed by path",
			},
			[]string{"path"},
		),
	}

	m.Registry.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.LLMRequests,
		m.LLMDuration,
		m.LLMTokens,
		m.PointsAwarded,
		m.BadgesAwarded,
		m.StepsCompleted,
	)
	if withRuntime {
		m.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
