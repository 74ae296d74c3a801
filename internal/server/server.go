package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/valyala/fasthttp"
	"google.golang.org/grpc"
)

// Server runs the gRPC and HTTP front ends of one Service.
type Server struct {
	grpc *grpc.Server
	http *fasthttp.Server
}

// New creates a Server with the Binder service registered.
func New(svc *Service) (*Server, error) {
	gs := grpc.NewServer()
	if err := RegisterGRPC(gs, svc); err != nil {
		return nil, err
	}
	return &Server{
		grpc: gs,
		http: &fasthttp.Server{
			Handler:      svc.HTTPHandler(),
			Name:         "argbind",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}, nil
}

// Serve listens on both addresses and blocks until one front end fails or
// Shutdown is called. An empty address disables that front end.
func (s *Server) Serve(grpcAddr, httpAddr string) error {
	errc := make(chan error, 2)
	running := 0

	if grpcAddr != "" {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", grpcAddr, err)
		}
		log.Printf("Starting gRPC server on %q", lis.Addr())
		running++
		go func() { errc <- s.grpc.Serve(lis) }()
	}
	if httpAddr != "" {
		lis, err := net.Listen("tcp", httpAddr)
		if err != nil {
			s.grpc.Stop()
			return fmt.Errorf("listen %s: %w", httpAddr, err)
		}
		log.Printf("Starting HTTP server on %q", lis.Addr())
		running++
		go func() { errc <- s.http.Serve(lis) }()
	}
	if running == 0 {
		return fmt.Errorf("no listen address configured")
	}

	err := <-errc
	if err == grpc.ErrServerStopped {
		err = nil
	}
	return err
}

// Shutdown stops both front ends, letting in-flight calls finish until ctx
// expires.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	err := s.http.ShutdownWithContext(ctx)
	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
	}
	return err
}
