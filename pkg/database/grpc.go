package database

import (
	"context"
	"net"
	"sync"
	"time"

	"chat_gateway_service/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthCheck probe one dependency, nil means healthy
type HealthCheck func(ctx context.Context) error

// HealthReporter serve grpc.health.v1, 每個 check 註冊成一個 service name,
// "" 代表整體狀態 (全部健康才是 SERVING)
type HealthReporter struct {
	server   *grpc.Server
	health   *health.Server
	checks   map[string]HealthCheck
	interval time.Duration
	once     sync.Once
}

// NewHealthReporter create grpc server with the health service registered
func NewHealthReporter(checks map[string]HealthCheck, interval time.Duration) *HealthReporter {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	hs := health.NewServer()
	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	return &HealthReporter{
		server:   server,
		health:   hs,
		checks:   checks,
		interval: interval,
	}
}

// Serve block serving grpc on lis
func (h *HealthReporter) Serve(lis net.Listener) error {
	logger.Log.Info("grpc health server listening", zap.String("addr", lis.Addr().String()))
	return h.server.Serve(lis)
}

// Run refresh status every interval until ctx done
func (h *HealthReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Refresh(ctx)
	for {
		select {
		case <-ticker.C:
			h.Refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Refresh run every check once and publish the result
func (h *HealthReporter) Refresh(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	for name, check := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, h.interval)
		err := check(checkCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = healthpb.HealthCheckResponse_NOT_SERVING
			logger.Log.Warn("health check failed", zap.String("check", name), zap.Error(err))
		}
		h.health.SetServingStatus(name, status)
	}
	h.health.SetServingStatus("", overall)
}

// Stop mark everything NOT_SERVING and stop the server
func (h *HealthReporter) Stop() {
	h.once.Do(func() {
		h.health.Shutdown()
		h.server.GracefulStop()
	})
}
