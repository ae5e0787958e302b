package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/anihub/anihub-web/internal/config"
)

// Pinger checks that the AniHub backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Probe periodically pings the backend and mirrors the result on ServiceName.
type Probe struct {
	pinger Pinger
	health *health.Server
	last   grpc_health_v1.HealthCheckResponse_ServingStatus
}

func newProbe(pinger Pinger, h *health.Server) *Probe {
	return &Probe{pinger: pinger, health: h, last: grpc_health_v1.HealthCheckResponse_NOT_SERVING}
}

// Check pings once and updates the health status. It returns the ping error.
func (p *Probe) Check(ctx context.Context, timeout time.Duration) error {
	logger := config.GetLogger()

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := p.pinger.Ping(pingCtx)

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	if status != p.last {
		logger.Info().Err(err).Str("service", ServiceName).Str("status", status.String()).Msg("Backend health changed")
		p.last = status
	}
	p.health.SetServingStatus(ServiceName, status)
	return err
}

// Run checks immediately and then every interval until ctx is done, when it
// marks every service NOT_SERVING.
func (p *Probe) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	timeout := min(interval, 10*time.Second)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	_ = p.Check(ctx, timeout)
	for {
		select {
		case <-ctx.Done():
			p.health.Shutdown()
			return
		case <-ticker.C:
			_ = p.Check(ctx, timeout)
		}
	}
}
