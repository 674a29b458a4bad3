/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package grpc exposes the engine's health over the standard gRPC health
// protocol so orchestrators can probe it.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

const shutdownTimer = 5 * time.Second

// ServerOption modifies Server configuration.
type ServerOption func(*Server)

// Server wraps a gRPC server carrying the health service.
type Server struct {
	srv        *grpc.Server
	health     *health.Server
	addr       string
	mu         sync.Mutex
	lis        net.Listener
	services   []string
	serving    bool
	serverOpts []grpc.ServerOption
}

// NewServer builds a server for addr. The overall status ("") starts as
// SERVING.
func NewServer(addr string, opts ...ServerOption) *Server {
	s := &Server{
		addr: addr,
		serverOpts: []grpc.ServerOption{
			grpc.ChainUnaryInterceptor(
				LoggingInterceptor,
				RecoveryInterceptor,
			),
			grpc.KeepaliveParams(keepalive.ServerParameters{
				MaxConnectionIdle: 10 * time.Minute,
				Time:              120 * time.Second,
				Timeout:           20 * time.Second,
			}),
			grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
				MinTime:             30 * time.Second,
				PermitWithoutStream: true,
			}),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.srv = grpc.NewServer(s.serverOpts...)
	s.health = health.NewServer()

	healthpb.RegisterHealthServer(s.srv, s.health)
	reflection.Register(s.srv)

	s.serving = true

	for _, name := range s.services {
		s.health.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	return s
}

// WithServiceName adds a named service to the health registry alongside
// the overall status.
func WithServiceName(name string) ServerOption {
	return func(s *Server) {
		if name != "" {
			s.services = append(s.services, name)
		}
	}
}

// WithMaxRecvSize sets the maximum receive message size.
func WithMaxRecvSize(size int) ServerOption {
	return func(s *Server) {
		s.serverOpts = append(s.serverOpts, grpc.MaxRecvMsgSize(size))
	}
}

// WithMaxSendSize sets the maximum send message size.
func WithMaxSendSize(size int) ServerOption {
	return func(s *Server) {
		s.serverOpts = append(s.serverOpts, grpc.MaxSendMsgSize(size))
	}
}

// HealthServer returns the health service backing the server.
func (s *Server) HealthServer() *health.Server {
	return s.health
}

// SetServing flips the overall status and every named service between
// SERVING and NOT_SERVING. It reports whether the status changed.
func (s *Server) SetServing(serving bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.serving == serving {
		return false
	}

	s.serving = serving

	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}

	s.health.SetServingStatus("", status)

	for _, name := range s.services {
		s.health.SetServingStatus(name, status)
	}

	return true
}

// Serving reports the last status set.
func (s *Server) Serving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.serving
}

// Listen binds the listener without serving, so Addr reports the real
// port when addr asked for :0.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lis != nil {
		return errAlreadyServing
	}

	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.lis = lis

	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lis != nil {
		return s.lis.Addr().String()
	}

	return s.addr
}

// Start listens if needed and serves until Stop.
func (s *Server) Start() error {
	s.mu.Lock()
	bound := s.lis != nil
	s.mu.Unlock()

	if !bound {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	lis := s.lis
	s.mu.Unlock()

	if lis == nil {
		return errNotListening
	}

	log.Printf("gRPC health server listening on %s", lis.Addr())

	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

// Stop marks everything NOT_SERVING and stops gracefully, forcing the stop
// once ctx or the shutdown timer runs out.
func (s *Server) Stop(ctx context.Context) {
	s.SetServing(false)
	s.health.Shutdown()

	stopped := make(chan struct{})

	go func() {
		s.srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		log.Printf("gRPC server stopped gracefully")
	case <-ctx.Done():
		log.Printf("gRPC server shutdown canceled, forcing stop")
		s.srv.Stop()
	case <-time.After(shutdownTimer):
		log.Printf("gRPC server shutdown timed out, forcing stop")
		s.srv.Stop()
	}
}

// LoggingInterceptor logs RPC calls.
func LoggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	if err != nil {
		log.Printf("gRPC call: %s Duration: %v Error: %v", info.FullMethod, time.Since(start), err)
	}

	return resp, err
}

// RecoveryInterceptor turns handler panics into internal errors.
func RecoveryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in %s: %v", info.FullMethod, r)

			err = errInternalError
		}
	}()

	return handler(ctx, req)
}
