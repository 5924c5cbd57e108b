// Package grpc exposes the operational gRPC surface: standard health checks
// for load balancers and admin-only server reflection.
package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"bora-alugar-backend/internal/api/grpc/interceptor"
	"bora-alugar-backend/internal/cache"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/security"
)

// ServiceName is the health service name reported alongside the overall "" status
const ServiceName = "bora.alugar.Marketplace"

// Check probes one dependency. Any error marks the server NOT_SERVING.
type Check func(ctx context.Context) error

type Server struct {
	*grpc.Server
	health *health.Server
	checks map[string]Check
}

func NewServer(tokens security.TokenManager, denylist cache.TokenDenylist, checks map[string]Check) *Server {
	auth := interceptor.NewAuthInterceptor(tokens, denylist)
	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.Recovery(), interceptor.Logging(), auth.Unary()),
		grpc.ChainStreamInterceptor(auth.Stream()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	s := &Server{Server: gs, health: hs, checks: checks}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
	return s
}

func (s *Server) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Probe runs every check once and publishes the result
func (s *Server) Probe(ctx context.Context) bool {
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			logger.Warn("Health check failed", "check", name, "error", err)
			s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
			return false
		}
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
	return true
}

// Monitor probes on every tick until ctx is done
func (s *Server) Monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, interval/2)
			s.Probe(probeCtx)
			cancel()
		}
	}
}

// Stop flips health to NOT_SERVING so balancers drain, then stops gracefully
func (s *Server) Stop() {
	s.health.Shutdown()
	s.Server.GracefulStop()
}
