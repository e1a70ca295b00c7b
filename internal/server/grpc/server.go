// Package grpc exposes the ops endpoint: the standard grpc.health.v1
// service, fed by the database manager's health status.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// databaseService is the per-service health name next to the overall ("")
// status.
const databaseService = "tenantdb.database"

// healthPollInterval is how often the watcher re-reads the manager status.
const healthPollInterval = 5 * time.Second

// HealthSource reports whether the database behind the server is usable.
// Satisfied by *database.Manager.
type HealthSource interface {
	Healthy() bool
}

type GRPCServer struct {
	address string
	source  HealthSource
	logger  logging.Logger
	health  *health.Server
}

func NewGRPCServer(a string, l logging.Logger, src HealthSource) (*GRPCServer, error) {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		source:  src,
		health:  health.NewServer(),
	}, nil
}

func (s *GRPCServer) publishStatus() {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if s.source.Healthy() {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(databaseService, st)
}

// watchHealth mirrors the database status into the health service until ctx
// is canceled.
func (s *GRPCServer) watchHealth(ctx context.Context) {
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	for {
		s.publishStatus()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	// registers the standard health service
	healthpb.RegisterHealthServer(srv, s.health)

	go s.watchHealth(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
