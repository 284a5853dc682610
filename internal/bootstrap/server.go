package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/log"
)

const healthPollInterval = 5 * time.Second

// Run serves HTTP and the gRPC health service until ctx is canceled or a
// server fails. ping drives the gRPC serving status.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, ping func(context.Context) error) error {
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.FromContext(ctx).WithField("addr", cfg.HTTP.Address).Info("starting HTTP server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.GRPC.Address != "" {
		lis, err := net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
		}
		g.Go(func() error {
			log.FromContext(ctx).WithField("addr", cfg.GRPC.Address).Info("starting gRPC health server")
			if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		pollHealth(ctx, healthSrv, ping)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.FromContext(ctx).Info("shutting down servers")
		healthSrv.Shutdown()
		grpcSrv.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func pollHealth(ctx context.Context, srv *health.Server, ping func(context.Context) error) {
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	for {
		status := healthpb.HealthCheckResponse_SERVING
		if ping != nil {
			if err := ping(ctx); err != nil {
				status = healthpb.HealthCheckResponse_NOT_SERVING
				log.FromContext(ctx).WithError(err).Warn("storage health check failed")
			}
		}
		srv.SetServingStatus("", status)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
