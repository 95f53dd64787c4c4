package database

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/murmures-api/internal/config"
)

// Module provides the connection manager and the *gorm.DB used by repositories.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			func(config *config.AppConfig, logger *zap.Logger) (*Manager, error) {
				return NewManager(&config.Database, logger)
			},
			(*Manager).DB,
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	manager *Manager,
	logger *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sqlDB, err := manager.DB().DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			logger.Info("Database connection established",
				zap.String("host", manager.config.Host),
				zap.String("name", manager.config.Name))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing database connections")
			return manager.Close()
		},
	})
}
