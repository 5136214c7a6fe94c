package config

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type DBType string

const (
	DBTypeSQLite   DBType = "sqlite"
	DBTypePostgres DBType = "postgres"
	DBTypeInMemory DBType = "inMemory"
)

type Config struct {
	// Тип хранилища
	DBType DBType `env:"DB" envDefault:"inMemory"`
	// Путь до файла sqlite
	SQLitePath string `env:"SQLITE_PATH" envDefault:"shortkit.db"`
	// DSN постгреса, обязателен только при DB=postgres
	PostgresDSN string `env:"DATABASE_DSN"`
	// Адрес redis для счетчиков рейт-лимитера
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// Настройки конвейера событий
	PipelineBufferSize    int           `env:"PIPELINE_BUFFER_SIZE" envDefault:"1024"`
	PipelineBatchSize     int           `env:"PIPELINE_BATCH_SIZE" envDefault:"64"`
	PipelineFlushInterval time.Duration `env:"PIPELINE_FLUSH_INTERVAL" envDefault:"5s"`

	// Настройки рейт-лимитера
	RateLimitPerIP      int           `env:"RATE_LIMIT_PER_IP" envDefault:"5"`
	RateLimitPerSubject int           `env:"RATE_LIMIT_PER_SUBJECT" envDefault:"3"`
	RateLimitWindow     time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1h"`
	RateLimitCooldown   time.Duration `env:"RATE_LIMIT_COOLDOWN" envDefault:"5m"`

	Logger *logrus.Logger
}

func LoadConfig() (*Config, error) {
	var conf Config

	if err := env.Parse(&conf); err != nil {
		return nil, errors.Wrapf(err, "parse ENV config error")
	}

	conf.Logger = initLogger()
	return &conf, nil
}
