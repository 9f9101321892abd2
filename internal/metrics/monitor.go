package metrics

import (
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	monitorTickTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "monitor",
		Name:      "tick_total",
		Help:      "Count of confirmation monitor ticks.",
	}, []string{"status"})
	monitorTickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "monitor",
		Name:      "tick_duration_seconds",
		Help:      "Duration of confirmation monitor ticks.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
	monitorTickRecords = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "monitor",
		Name:      "tick_records",
		Help:      "Number of unresolved records checked per tick.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
	monitorChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "monitor",
		Name:      "checks_total",
		Help:      "Count of per-record checks by result.",
	}, []string{"chain", "result"})
	monitorCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "monitor",
		Name:      "check_duration_seconds",
		Help:      "Duration of per-record checks.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"chain"})
)

// Monitor tracks the confirmation monitor.
type Monitor struct{}

// NewMonitor constructs a Monitor collector.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// ObserveTick records one monitor tick.
func (m Monitor) ObserveTick(err error, records int, started time.Time) {
	status := statusLabel(err)
	monitorTickTotal.WithLabelValues(status).Inc()
	monitorTickDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	monitorTickRecords.Observe(float64(records))
}

// ObserveCheck records the result of checking one record.
func (m Monitor) ObserveCheck(chain model.Chain, result string, started time.Time) {
	c := orUnknown(string(chain))
	monitorChecksTotal.WithLabelValues(c, result).Inc()
	monitorCheckDuration.WithLabelValues(c).Observe(time.Since(started).Seconds())
}
