// Package lifecycle runs a service behind its HTTP API and gRPC health
// endpoint and shuts all three down together.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/pulse/pkg/grpc"
)

const (
	MaxRecvSize           = 4 * 1024 * 1024 // 4MB
	MaxSendSize           = 4 * 1024 * 1024 // 4MB
	ShutdownTimeout       = 10 * time.Second
	DefaultHealthInterval = 30 * time.Second
	readHeaderTimeout     = 10 * time.Second
)

// Service defines the interface that all services must implement.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// ServerOptions holds configuration for creating a server.
type ServerOptions struct {
	ServiceName string
	HTTPAddr    string
	Service     Service
	Handler     http.Handler

	// GRPCAddr is the health endpoint. Empty disables it.
	GRPCAddr string

	// Healthy drives the gRPC health status. Nil means always serving.
	Healthy        func() bool
	HealthInterval time.Duration

	// Ready is called once both listeners are bound.
	Ready func(httpAddr, grpcAddr string)
}

// RunServer starts the service, the HTTP server and the gRPC health server,
// then blocks until a signal, a server error or ctx cancellation.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("*** Starting service %s", opts.ServiceName)

	if err := opts.Service.Start(ctx); err != nil {
		return fmt.Errorf("failed to start %s: %w", opts.ServiceName, err)
	}

	errChan := make(chan error, 2)

	httpServer, httpLis, err := setupHTTPServer(opts)
	if err != nil {
		stopService(opts.Service)

		return err
	}

	var grpcServer *grpc.Server

	if opts.GRPCAddr != "" {
		grpcServer = grpc.NewServer(opts.GRPCAddr,
			grpc.WithServiceName(opts.ServiceName),
			grpc.WithMaxRecvSize(MaxRecvSize),
			grpc.WithMaxSendSize(MaxSendSize),
		)

		if err := grpcServer.Listen(); err != nil {
			_ = httpLis.Close()

			stopService(opts.Service)

			return fmt.Errorf("failed to setup gRPC server: %w", err)
		}

		go func() {
			if err := grpcServer.Start(); err != nil {
				reportErr(errChan, fmt.Errorf("gRPC server: %w", err))
			}
		}()

		if opts.Healthy != nil {
			go watchHealth(ctx, grpcServer, opts.Healthy, opts.HealthInterval)
		}
	}

	go func() {
		log.Printf("Starting HTTP server on %s", httpLis.Addr())

		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			reportErr(errChan, fmt.Errorf("HTTP server: %w", err))
		}
	}()

	if opts.Ready != nil {
		grpcAddr := ""
		if grpcServer != nil {
			grpcAddr = grpcServer.Addr()
		}

		opts.Ready(httpLis.Addr().String(), grpcAddr)
	}

	return handleShutdown(ctx, cancel, httpServer, grpcServer, opts.Service, errChan)
}

func setupHTTPServer(opts *ServerOptions) (*http.Server, net.Listener, error) {
	lis, err := net.Listen("tcp", opts.HTTPAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on %s: %w", opts.HTTPAddr, err)
	}

	srv := &http.Server{
		Addr:              opts.HTTPAddr,
		Handler:           opts.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return srv, lis, nil
}

func reportErr(errChan chan<- error, err error) {
	select {
	case errChan <- err:
	default:
		log.Printf("Server error: %v", err)
	}
}

func stopService(svc Service) {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := svc.Stop(ctx); err != nil {
		log.Printf("Error stopping service: %v", err)
	}
}

// watchHealth mirrors healthy() into the gRPC health status every interval.
func watchHealth(ctx context.Context, srv *grpc.Server, healthy func() bool, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			syncHealth(srv, healthy)
		}
	}
}

func syncHealth(srv *grpc.Server, healthy func() bool) {
	ok := healthy()

	if srv.SetServing(ok) {
		if ok {
			log.Printf("Health restored, serving")
		} else {
			log.Printf("Subscriber unhealthy, health status NOT_SERVING")
		}
	}
}

func handleShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	svc Service,
	errChan chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(sigChan)

	var runErr error

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating shutdown", sig)
	case err := <-errChan:
		log.Printf("Received error: %v, initiating shutdown", err)

		runErr = fmt.Errorf("service error: %w", err)
	case <-ctx.Done():
		log.Printf("Context canceled, initiating shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	var errs []error

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	if grpcServer != nil {
		grpcServer.Stop(shutdownCtx)
	}

	if err := svc.Stop(shutdownCtx); err != nil {
		log.Printf("Error during service shutdown: %v", err)

		errs = append(errs, fmt.Errorf("shutdown error: %w", err))
	}

	if runErr != nil {
		return runErr
	}

	return errors.Join(errs...)
}
