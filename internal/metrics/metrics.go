package metrics

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quiz_economy"

// Metrics implements app.Metrics with Prometheus counters.
type Metrics struct {
	registry  *prometheus.Registry
	histories *prometheus.CounterVec
	collects  *prometheus.CounterVec
	exchanges *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		histories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "histories_recorded_total",
			Help:      "Play history submissions by outcome.",
		}, []string{"outcome"}),
		collects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reward_collections_total",
			Help:      "Reward collection attempts by outcome.",
		}, []string{"outcome"}),
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_total",
			Help:      "Shop sell and buy operations by outcome.",
		}, []string{"op", "outcome"}),
	}
	m.registry.MustRegister(m.histories, m.collects, m.exchanges)
	return m
}

func (m *Metrics) HistoryRecorded(outcome string) {
	m.histories.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RewardCollected(outcome string) {
	m.collects.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Exchanged(op, outcome string) {
	m.exchanges.WithLabelValues(op, outcome).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler(logger *slog.Logger) http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      errorLog{logger: logger},
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// errorLog implements promhttp.Logger.
type errorLog struct {
	logger *slog.Logger
}

func (l errorLog) Println(v ...interface{}) {
	l.logger.Error("metrics handler", "error", fmt.Sprint(v...))
}
