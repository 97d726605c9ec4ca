package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/abacus/pkg/domain"
)

// Metrics holds the calculator's Prometheus collectors.
type Metrics struct {
	Results  *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Keys     prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m, err := NewMetricsWith(reg, reg)
	if err != nil {
		// A fresh registry cannot hold conflicting collectors.
		panic(err)
	}
	return m
}

// NewMetricsWith registers the collectors on reg and serves them from g.
func NewMetricsWith(reg prometheus.Registerer, g prometheus.Gatherer) (*Metrics, error) {
	m := &Metrics{
		Results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "abacus_results_total",
				Help: "Results displayed, by operation and source.",
			},
			[]string{"op", "source"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "abacus_failures_total",
				Help: "Calculator failures reported, by operation and kind.",
			},
			[]string{"op", "kind"},
		),
		Keys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "abacus_keys_total",
			Help: "Keys pressed through session hosts.",
		}),
		gatherer: g,
	}
	for _, c := range []prometheus.Collector{m.Results, m.Failures, m.Keys} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that feed the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResult: func(_ context.Context, e *domain.ResultEvent) {
			m.Results.WithLabelValues(e.Op, e.Source).Inc()
		},
		OnFailure: func(_ context.Context, e *domain.FailureEvent) {
			m.Failures.WithLabelValues(e.Op, string(e.Kind)).Inc()
		},
	}
}

// Gatherer returns the registry the collectors are served from.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
