package metrics

import (
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	watcherCollectTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "watcher",
		Name:      "collect_total",
		Help:      "Count of watcher collection ticks.",
	}, []string{"chain", "status"})
	watcherCollectDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "watcher",
		Name:      "collect_duration_seconds",
		Help:      "Duration of watcher collection ticks.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"chain", "status"})
	watcherEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "watcher",
		Name:      "events_total",
		Help:      "Count of new events emitted by watchers.",
	}, []string{"chain"})
	schedulerPublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "publish_total",
		Help:      "Count of events forwarded to the event sink.",
	}, []string{"watcher", "status"})
	schedulerPublishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "publish_duration_seconds",
		Help:      "Duration of forwarding one event to the event sink.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"watcher", "status"})
)

// Watcher tracks metrics of one chain watcher.
type Watcher struct {
	chain model.Chain
}

// NewWatcher constructs a Watcher collector for chain.
func NewWatcher(chain model.Chain) *Watcher {
	if chain == "" {
		chain = "unknown"
	}
	return &Watcher{chain: chain}
}

// ObserveCollect records one collection tick and the number of new events.
func (m Watcher) ObserveCollect(err error, events int, started time.Time) {
	status := statusLabel(err)
	watcherCollectTotal.WithLabelValues(string(m.chain), status).Inc()
	watcherCollectDuration.WithLabelValues(string(m.chain), status).Observe(time.Since(started).Seconds())
	if events > 0 {
		watcherEventsTotal.WithLabelValues(string(m.chain)).Add(float64(events))
	}
}

// Scheduler tracks event forwarding.
type Scheduler struct{}

// NewScheduler constructs a Scheduler collector.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// ObservePublish records one event handed to the sink.
func (m Scheduler) ObservePublish(watcher string, err error, started time.Time) {
	status := statusLabel(err)
	schedulerPublishTotal.WithLabelValues(orUnknown(watcher), status).Inc()
	schedulerPublishDuration.WithLabelValues(orUnknown(watcher), status).Observe(time.Since(started).Seconds())
}
