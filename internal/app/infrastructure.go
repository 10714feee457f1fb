package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"vidstream/internal/config"
	"vidstream/pkg/database"
	"vidstream/pkg/observability"
	"vidstream/pkg/storage"
)

type Infrastructure interface {
	Postgres() *database.Postgres
	Redis() *database.Redis
	Media() *storage.MediaStore
	Logger() *zap.Logger
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	media          *storage.MediaStore
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	postgres, err := database.NewPostgres(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	i.postgres = postgres

	if err := postgres.Migrate(cfg.Postgres.MigrationsDir); err != nil {
		_ = i.postgres.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	redis, err := database.NewRedis(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		_ = i.postgres.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	i.redis = redis

	media, err := storage.NewMediaStore(ctx, storage.Config{
		Region:    cfg.S3.Region,
		Bucket:    cfg.S3.Bucket,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseLocal:  cfg.S3.UseLocal,
	})
	if err != nil {
		_ = i.postgres.Close()
		_ = i.redis.Close()
		return nil, fmt.Errorf("failed to initialize media storage: %w", err)
	}
	i.media = media

	meterProvider, metricsHandler, err := observability.InitTelemetry("vidstream")
	if err != nil {
		_ = i.postgres.Close()
		_ = i.redis.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.meterProvider = meterProvider
	i.metricsHandler = metricsHandler

	return i, nil
}

func (i *infrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) Media() *storage.MediaStore {
	return i.media
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 4)

	go func() { errs <- i.postgres.Close() }()
	go func() { errs <- i.redis.Close() }()
	go func() { errs <- i.logger.Sync() }()
	go func() { errs <- observability.Shutdown(ctx, i.meterProvider, i.logger) }()

	return errors.Join(<-errs, <-errs, <-errs, <-errs)
}
