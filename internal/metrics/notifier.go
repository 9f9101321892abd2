package metrics

import (
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "notifier",
	Name:      "notifications_total",
	Help:      "Count of milestone notification decisions by outcome.",
}, []string{"milestone", "outcome"})

// Notifier tracks the notification gate.
type Notifier struct{}

// NewNotifier constructs a Notifier collector.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// ObserveNotification records what the gate did with one milestone.
func (m Notifier) ObserveNotification(milestone model.Milestone, outcome string) {
	notificationsTotal.WithLabelValues(orUnknown(string(milestone)), outcome).Inc()
}
