package app

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/murmures-api/internal/auth"
	"github.com/elskow/murmures-api/internal/database"
	"github.com/elskow/murmures-api/internal/migration"
	"github.com/elskow/murmures-api/internal/notify"
	"github.com/elskow/murmures-api/internal/server"
	"github.com/elskow/murmures-api/internal/telemetry"
)

// Module combines all application modules
func Module() fx.Option {
	return fx.Options(
		// Logger
		fx.Provide(newLogger),

		// Configuration
		fx.Provide(server.LoadConfig),

		// Metrics registry, shared by collectors and the /metrics endpoint
		fx.Provide(
			fx.Annotate(
				server.NewMetricsRegistry,
				fx.As(new(prometheus.Registerer), new(prometheus.Gatherer)),
			),
		),

		telemetry.Module(),
		database.Module(),
		migration.Module(),
		notify.Module(),

		// Auth Module
		auth.NewModule(),

		// Server
		fx.Provide(server.NewServer),

		// Start the server
		fx.Invoke(registerHooks),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return server.NewLogger(env)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	shutdowner fx.Shutdowner,
	srv *server.Server,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("failed to start server", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			return srv.Stop(ctx)
		},
	})
}
