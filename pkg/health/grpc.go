package health

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger is anything whose reachability decides the serving status, such as
// a pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Run serves grpc.health.v1 on addr. The overall status follows check,
// probed every interval until ctx is done.
func Run(ctx context.Context, log *slog.Logger, addr string, check Pinger, interval time.Duration) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	go Watch(ctx, log, hs, check, interval)
	go func() {
		if err := gs.Serve(lis); err != nil {
			log.Error("grpc server error", "err", err)
		}
	}()
	log.Info("grpc health listening", "addr", addr)
	return gs, nil
}

// Watch keeps hs in step with check until ctx is done, then reports
// NOT_SERVING.
func Watch(ctx context.Context, log *slog.Logger, hs *health.Server, check Pinger, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		status := healthpb.HealthCheckResponse_SERVING
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		if err := check.Ping(pingCtx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		cancel()
		if status != last {
			log.Info("health status changed", "status", status.String())
			last = status
		}
		hs.SetServingStatus("", status)

		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-t.C:
		}
	}
}
