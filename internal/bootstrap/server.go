package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 5 * time.Second

// HealthCheck reports whether a dependency (database, cache) is reachable.
type HealthCheck func(ctx context.Context) error

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
	log        logrus.FieldLogger
}

// Run starts the HTTP API and, when an address is configured, the gRPC health
// server, and blocks until ctx is cancelled or a server fails.
func Run(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, register func(*gin.Engine), checks ...HealthCheck) error {
	s := newServers(cfg, log, register, checks)

	g, gctx := errgroup.WithContext(ctx)

	if s.grpcServer != nil {
		lis, err := net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
		}
		g.Go(func() error {
			log.WithField("address", cfg.GRPC.Address).Info("gRPC health server started")
			if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
	}

	lis, err := net.Listen("tcp", cfg.HTTP.Address)
	if err != nil {
		if s.grpcServer != nil {
			s.grpcServer.Stop()
		}
		return fmt.Errorf("listen HTTP %s: %w", cfg.HTTP.Address, err)
	}
	g.Go(func() error {
		log.WithField("address", cfg.HTTP.Address).Info("HTTP server started")
		if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Servers) shutdown() error {
	s.log.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.grpcServer != nil {
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
	}
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func newServers(cfg *config.Config, log logrus.FieldLogger, register func(*gin.Engine), checks []HealthCheck) *Servers {
	s := &Servers{
		health: health.NewServer(),
		log:    log,
	}
	if cfg.GRPC.Address != "" {
		s.grpcServer = grpc.NewServer()
		healthpb.RegisterHealthServer(s.grpcServer, s.health)
	}

	router := NewRouter(cfg, log, register, s.healthHandler(checks))
	s.httpServer = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           otelhttp.NewHandler(router, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// NewRouter builds the gin engine shared by the booking and inventory
// processes: middleware, /health, /metrics, API docs and the service routes.
func NewRouter(cfg *config.Config, log logrus.FieldLogger, register func(*gin.Engine), healthz gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), api.CorrelationID(), api.Logger(log), api.Timeout(cfg.HTTP.RequestTimeout()))

	if healthz == nil {
		healthz = func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	}
	router.GET("/health", healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/swagger.json"))))
	}

	if register != nil {
		register(router)
	}
	return router
}

func (s *Servers) healthHandler(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, check := range checks {
			if err := check(c.Request.Context()); err != nil {
				s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
				s.log.WithError(err).Warn("health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
