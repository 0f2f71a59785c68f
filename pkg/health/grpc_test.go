package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type flakyPinger struct {
	down atomic.Bool
}

func (p *flakyPinger) Ping(context.Context) error {
	if p.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func status(t *testing.T, hs *health.Server) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestWatchFollowsPinger(t *testing.T) {
	hs := health.NewServer()
	p := &flakyPinger{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watch(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), hs, p, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return status(t, hs) == healthpb.HealthCheckResponse_SERVING }, time.Second, time.Millisecond)

	p.down.Store(true)
	require.Eventually(t, func() bool { return status(t, hs) == healthpb.HealthCheckResponse_NOT_SERVING }, time.Second, time.Millisecond)

	p.down.Store(false)
	require.Eventually(t, func() bool { return status(t, hs) == healthpb.HealthCheckResponse_SERVING }, time.Second, time.Millisecond)

	cancel()
	<-done
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, hs))
}

func TestProbe(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	go func() { _ = gs.Serve(lis) }()
	defer gs.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, Probe(ctx, lis.Addr().String()))

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	require.ErrorContains(t, Probe(ctx, lis.Addr().String()), "NOT_SERVING")
}
