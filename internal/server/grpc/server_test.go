package grpc

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/logging"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeSource struct {
	healthy atomic.Bool
}

func (f *fakeSource) Healthy() bool { return f.healthy.Load() }

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv, err := NewGRPCServer("127.0.0.1:0", nopLogger{}, &fakeSource{})
	if err != nil {
		t.Fatalf("NewGRPCServer error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv, err := NewGRPCServer("127.0.0.1:99999", nopLogger{}, &fakeSource{})
	if err != nil {
		t.Fatalf("NewGRPCServer error (constructor should not fail here): %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

func TestPublishStatus_MirrorsSource(t *testing.T) {
	src := &fakeSource{}
	srv, err := NewGRPCServer("127.0.0.1:0", nopLogger{}, src)
	if err != nil {
		t.Fatalf("NewGRPCServer error: %v", err)
	}

	check := func(want healthpb.HealthCheckResponse_ServingStatus) {
		t.Helper()
		for _, service := range []string{"", databaseService} {
			resp, err := srv.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
			if err != nil {
				t.Fatalf("Check(%q) error: %v", service, err)
			}
			if resp.Status != want {
				t.Fatalf("Check(%q) = %v, want %v", service, resp.Status, want)
			}
		}
	}

	src.healthy.Store(true)
	srv.publishStatus()
	check(healthpb.HealthCheckResponse_SERVING)

	src.healthy.Store(false)
	srv.publishStatus()
	check(healthpb.HealthCheckResponse_NOT_SERVING)
}

func TestWatchHealth_StopsOnCancel(t *testing.T) {
	srv, err := NewGRPCServer("127.0.0.1:0", nopLogger{}, &fakeSource{})
	if err != nil {
		t.Fatalf("NewGRPCServer error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.watchHealth(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
