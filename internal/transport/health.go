package transport

import (
	"context"
	"errors"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/clock"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultHealthInterval = 10 * time.Second

// HealthReporter mirrors endpoint availability into the gRPC health service: one
// service per chain, plus the overall "" service which serves while any chain does.
type HealthReporter struct {
	server    *health.Server
	endpoints []Endpoints
	interval  time.Duration
	logger    *zap.Logger
	sleep     clock.SleepFunc
	last      map[string]healthpb.HealthCheckResponse_ServingStatus
}

// NewHealthReporter builds a HealthReporter. A non-positive interval takes the default.
func NewHealthReporter(server *health.Server, endpoints []Endpoints, interval time.Duration, logger *zap.Logger) (*HealthReporter, error) {
	if server == nil {
		return nil, errors.New("health server is required")
	}
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	return &HealthReporter{
		server:    server,
		endpoints: endpoints,
		interval:  interval,
		logger:    logger.Named("health"),
		sleep:     clock.Sleep,
		last:      make(map[string]healthpb.HealthCheckResponse_ServingStatus),
	}, nil
}

// Refresh publishes the current availability of every chain.
func (h *HealthReporter) Refresh() {
	overall := healthpb.HealthCheckResponse_NOT_SERVING
	for _, e := range h.endpoints {
		st := healthpb.HealthCheckResponse_NOT_SERVING
		if e.Available() {
			st = healthpb.HealthCheckResponse_SERVING
			overall = healthpb.HealthCheckResponse_SERVING
		}
		h.set(string(e.Chain()), st)
	}
	h.set("", overall)
}

// Run refreshes until ctx is canceled, then marks every service as not serving.
func (h *HealthReporter) Run(ctx context.Context) error {
	for {
		h.Refresh()
		if err := h.sleep(ctx, h.interval); err != nil {
			h.server.Shutdown()
			return nil
		}
	}
}

func (h *HealthReporter) set(service string, st healthpb.HealthCheckResponse_ServingStatus) {
	if prev, ok := h.last[service]; ok && prev == st {
		return
	}
	h.last[service] = st
	h.server.SetServingStatus(service, st)
	if service != "" {
		h.logger.Info("chain health changed", zap.String("chain", service), zap.String("status", st.String()))
	}
}
