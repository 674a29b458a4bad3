package lifecycle

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/carverauto/pulse/pkg/grpc"
)

type fakeService struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	startErr error
}

func (f *fakeService) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.started = true

	return f.startErr
}

func (f *fakeService) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopped = true

	return nil
}

func (f *fakeService) state() (started, stopped bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.started, f.stopped
}

func TestRunServer_ServesUntilCanceled(t *testing.T) {
	svc := &fakeService{}
	ready := make(chan string, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})

	done := make(chan error, 1)

	go func() {
		done <- RunServer(ctx, &ServerOptions{
			ServiceName: "pulse-test",
			HTTPAddr:    "127.0.0.1:0",
			GRPCAddr:    "127.0.0.1:0",
			Service:     svc,
			Handler:     handler,
			Healthy:     func() bool { return true },
			Ready: func(httpAddr, grpcAddr string) {
				assert.NotEmpty(t, grpcAddr)
				ready <- httpAddr
			},
		})
	}()

	var addr string

	select {
	case addr = <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("server never became ready")
	}

	resp, err := http.Get("http://" + addr + "/ping")
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	assert.Equal(t, "pong", string(body))

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("RunServer did not return")
	}

	started, stopped := svc.state()
	assert.True(t, started)
	assert.True(t, stopped)
}

func TestRunServer_StartError(t *testing.T) {
	svc := &fakeService{startErr: errors.New("boom")}

	err := RunServer(context.Background(), &ServerOptions{
		ServiceName: "pulse-test",
		HTTPAddr:    "127.0.0.1:0",
		Service:     svc,
		Handler:     http.NotFoundHandler(),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestSyncHealth(t *testing.T) {
	srv := grpc.NewServer("127.0.0.1:0", grpc.WithServiceName("pulse"))

	var healthy atomic.Bool

	status := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := srv.HealthServer().Check(context.Background(), &healthpb.HealthCheckRequest{Service: "pulse"})
		require.NoError(t, err)

		return resp.Status
	}

	syncHealth(srv, healthy.Load)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status())

	healthy.Store(true)
	syncHealth(srv, healthy.Load)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status())
}

func TestWatchHealth(t *testing.T) {
	srv := grpc.NewServer("127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watchHealth(ctx, srv, func() bool { return false }, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return !srv.Serving() }, time.Second, 10*time.Millisecond)
}
