package auth

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/elskow/murmures-api/internal/config"
	"github.com/elskow/murmures-api/internal/notify"
)

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			// Provide repository
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			fx.Annotate(
				func(config *config.AppConfig) *TokenIssuer {
					return NewTokenIssuer(&config.Auth)
				},
			),
			fx.Annotate(
				func(config *config.AppConfig) Hasher {
					return NewBcryptHasher(config.Auth.BcryptCost)
				},
			),
			fx.Annotate(
				func(reg prometheus.Registerer) (*Metrics, error) {
					return NewMetrics(reg)
				},
			),
			// Provide service
			fx.Annotate(
				func(
					config *config.AppConfig,
					log *zap.Logger,
					repo Repository,
					tokens *TokenIssuer,
					hasher Hasher,
					notifier notify.Notifier,
					metrics *Metrics,
				) *Service {
					return NewService(&config.Auth, log, repo, tokens, hasher, notifier, metrics)
				},
			),
			// Provide middleware
			fx.Annotate(
				func(config *config.AppConfig, svc *Service, log *zap.Logger) *SessionMiddleware {
					return NewSessionMiddleware(svc, config.Auth.CookieName, log)
				},
			),
			// Provide handler
			fx.Annotate(
				func(config *config.AppConfig, svc *Service, session *SessionMiddleware, log *zap.Logger) *Handler {
					return NewHandler(svc, session, &config.Client, config.Auth.CookieName, log)
				},
			),
			fx.Annotate(
				func(config *config.AppConfig, svc *Service, log *zap.Logger) *Sweeper {
					return NewSweeper(svc, config.Auth.PendingSweepInterval, log)
				},
			),
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(lifecycle fx.Lifecycle, sweeper *Sweeper) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}
