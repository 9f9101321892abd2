package metrics

import (
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invokerAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rpc_invoker",
		Name:      "attempts_total",
		Help:      "Count of RPC attempts per endpoint.",
	}, []string{"chain", "endpoint", "operation", "status"})
	invokerAttemptDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "rpc_invoker",
		Name:      "attempt_duration_seconds",
		Help:      "Duration of RPC attempts per endpoint.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"chain", "endpoint", "operation", "status"})
	invokerCircuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "rpc_invoker",
		Name:      "circuit_state",
		Help:      "Circuit breaker state per endpoint: 0 closed, 1 half-open, 2 open.",
	}, []string{"chain", "endpoint"})
)

// RPCInvoker records invoker attempts and breaker transitions.
type RPCInvoker struct{}

// NewRPCInvoker constructs an RPCInvoker collector.
func NewRPCInvoker() *RPCInvoker {
	return &RPCInvoker{}
}

// ObserveAttempt records one attempt against an endpoint.
func (m RPCInvoker) ObserveAttempt(chain model.Chain, endpoint, operation string, err error, started time.Time) {
	status := statusLabel(err)
	c := orUnknown(string(chain))
	invokerAttemptsTotal.WithLabelValues(c, endpoint, operation, status).Inc()
	invokerAttemptDuration.WithLabelValues(c, endpoint, operation, status).Observe(time.Since(started).Seconds())
}

// ObserveCircuit records the latest breaker state of an endpoint.
func (m RPCInvoker) ObserveCircuit(chain model.Chain, endpoint string, state rpc.CircuitState) {
	value := 0.0
	switch state {
	case rpc.CircuitHalfOpen:
		value = 1
	case rpc.CircuitOpen:
		value = 2
	}
	invokerCircuitState.WithLabelValues(orUnknown(string(chain)), endpoint).Set(value)
}
