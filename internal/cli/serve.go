package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anihub/anihub-web/internal/backend"
	"github.com/anihub/anihub-web/internal/config"
	grpcserver "github.com/anihub/anihub-web/internal/grpc"
	"github.com/anihub/anihub-web/internal/metrics"
	"github.com/anihub/anihub-web/internal/session"
	"github.com/anihub/anihub-web/internal/web"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server and the optional metrics and gRPC health servers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, config.GetConfig())
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := config.GetLogger()

	logger.Info().
		Str("backend_url", cfg.BackendURL).
		Str("server_address", cfg.Server.Address).
		Int("server_port", cfg.Server.Port).
		Str("cache_provider", cfg.Cache.Provider).
		Bool("metrics", cfg.Metrics.Enabled).
		Bool("grpc", cfg.GRPC.Enabled).
		Msg("Application started with configuration")

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
		logger.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry error reporting enabled")
	}

	client := backend.NewClient(cfg)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close backend client")
		}
	}()

	maxAge, err := time.ParseDuration(cfg.Session.MaxAge)
	if err != nil {
		return fmt.Errorf("invalid session.max_age %q: %w", cfg.Session.MaxAge, err)
	}

	site, err := web.NewServer(client, web.Options{
		Sessions:       session.NewStore(cfg.Session.Secure, maxAge),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	httpServer := web.NewHTTPServer(cfg.Server.Address, cfg.Server.Port, site.Routes())
	runHTTP(ctx, g, logger, "web", httpServer)

	if cfg.Metrics.Enabled {
		runHTTP(ctx, g, logger, "metrics", metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port))
	}

	if cfg.GRPC.Enabled {
		interval, err := time.ParseDuration(cfg.GRPC.ProbeInterval)
		if err != nil {
			return fmt.Errorf("invalid grpc.probe_interval %q: %w", cfg.GRPC.ProbeInterval, err)
		}

		address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.GRPC.Port)
		listener, err := net.Listen("tcp", address)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", address, err)
		}

		grpcServer, probe := grpcserver.NewGRPCServer(client)
		g.Go(func() error {
			probe.Run(ctx, interval)
			return nil
		})
		g.Go(func() error {
			logger.Info().Str("address", address).Msg("Starting gRPC health server")
			return grpcServer.Serve(listener)
		})
		g.Go(func() error {
			<-ctx.Done()
			grpcServer.GracefulStop()
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("Server stopped gracefully")
	return nil
}

// runHTTP serves srv until ctx ends, then shuts it down.
func runHTTP(ctx context.Context, g *errgroup.Group, logger zerolog.Logger, name string, srv *http.Server) {
	g.Go(func() error {
		logger.Info().Str("server", name).Str("address", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Str("server", name).Msg("Failed to shut down HTTP server")
		}
		return nil
	})
}
