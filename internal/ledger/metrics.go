package ledger

import "github.com/prometheus/client_golang/prometheus"

// Metrics - счётчики журнала кликов.
type Metrics struct {
	clicks          *prometheus.CounterVec
	persistFailures prometheus.Counter
	persistDuration prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg (если reg != nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		clicks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_clicks_total",
				Help: "Total number of recorded clicks.",
			},
			[]string{"status"},
		),
		persistFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_persist_failures_total",
				Help: "Number of failed ledger writes.",
			},
		),
		persistDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ledger_persist_duration_seconds",
				Help:    "Duration of ledger writes.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.clicks, m.persistFailures, m.persistDuration)
	}
	return m
}

func (m *Metrics) observePersist(seconds float64, err error) {
	m.persistDuration.Observe(seconds)
	if err != nil {
		m.persistFailures.Inc()
		m.clicks.WithLabelValues("failed").Inc()
		return
	}
	m.clicks.WithLabelValues("recorded").Inc()
}
