package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/shortkit/internal/config"
	"github.com/fsdevblog/shortkit/internal/db"
	"github.com/fsdevblog/shortkit/internal/ratelimit"
	"github.com/fsdevblog/shortkit/internal/services"
)

// App корень композиции: конфиг, подключения, сервисный слой и лимитер.
// Собирается один раз на старте процесса и передается по ссылке — никаких
// глобальных синглтонов.
type App struct {
	config   *config.Config
	Services *services.Services
	Limiter  *ratelimit.Limiter
	Logger   *logrus.Logger

	redisClient *redis.Client
}

func New(ctx context.Context, conf *config.Config) (*App, error) {
	dbConn, connErr := db.NewConnectionFactory(db.FactoryConfig{
		StorageType:  storageType(conf),
		SQLiteDBPath: &conf.SQLitePath,
		PostgresDSN:  &conf.PostgresDSN,
	})
	if connErr != nil {
		return nil, fmt.Errorf("init storage: %w", connErr)
	}

	dbServices, servicesErr := services.Factory(dbConn, serviceType(conf), services.VisitPipelineConfig{
		BufferSize:    conf.PipelineBufferSize,
		BatchSize:     conf.PipelineBatchSize,
		FlushInterval: conf.PipelineFlushInterval,
	}, conf.Logger)
	if servicesErr != nil {
		return nil, fmt.Errorf("init services: %w", servicesErr)
	}

	redisClient, redisErr := db.NewRedis(ctx, conf.RedisAddr)
	if redisErr != nil {
		return nil, fmt.Errorf("init redis: %w", redisErr)
	}

	limiter := ratelimit.New(redisClient, ratelimit.Config{
		PerIPCeiling:      conf.RateLimitPerIP,
		PerSubjectCeiling: conf.RateLimitPerSubject,
		Window:            conf.RateLimitWindow,
		Cooldown:          conf.RateLimitCooldown,
	}, conf.Logger)

	return &App{
		config:      conf,
		Services:    dbServices,
		Limiter:     limiter,
		Logger:      conf.Logger,
		redisClient: redisClient,
	}, nil
}

// Must вызывает панику если произошла ошибка.
func Must(a *App, err error) *App {
	if err != nil {
		panic(err)
	}
	return a
}

// Close гасит фоновые задачи и закрывает подключения. Конвейер событий
// останавливается первым, чтобы успеть дописать принятый буфер.
func (a *App) Close() error {
	a.Services.Close()
	if err := a.redisClient.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}

func storageType(conf *config.Config) db.StorageType {
	switch conf.DBType {
	case config.DBTypeSQLite:
		return db.StorageTypeSQLite
	case config.DBTypePostgres:
		return db.StorageTypePostgres
	default:
		return db.StorageTypeInMemory
	}
}

func serviceType(conf *config.Config) services.ServiceType {
	switch conf.DBType {
	case config.DBTypeSQLite:
		return services.ServiceTypeSQLite
	case config.DBTypePostgres:
		return services.ServiceTypePostgres
	default:
		return services.ServiceTypeInMemory
	}
}
