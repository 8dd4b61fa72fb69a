package env

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Cfg struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	Currency string `envconfig:"CURRENCY" default:"EUR"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// one of postgres, redis, cached, none
	BalanceSource string `envconfig:"BALANCE_SOURCE" default:"cached"`

	DBUser string `envconfig:"DB_USER"`
	DBPass string `envconfig:"DB_PASSWORD"`
	DBHost string `envconfig:"DB_HOST" default:"localhost"`
	DBName string `envconfig:"DB_NAME"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`

	RedisHost string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPass string        `envconfig:"REDIS_PASSWORD"`
	RedisPort int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisTTL  time.Duration `envconfig:"REDIS_TTL" default:"1m"`

	MQUser        string `envconfig:"MQ_USER" default:"guest"`
	MQPass        string `envconfig:"MQ_PASSWORD" default:"guest"`
	MQHost        string `envconfig:"MQ_HOST" default:"localhost"`
	MQPort        int    `envconfig:"MQ_PORT" default:"5672"`
	MQConcurrency int    `envconfig:"MQ_CONCURRENCY" default:"5"`

	ConnectAttempts uint `envconfig:"CONNECT_ATTEMPTS" default:"5"`

	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	SyncTimeout     time.Duration `envconfig:"SYNC_TIMEOUT" default:"3s"`
}

func GetEnvCfg() (Cfg, error) {
	var cfg Cfg

	if err := envconfig.Process("APP", &cfg); err != nil {
		return Cfg{}, errors.Wrap(err, "parse environment variables")
	}

	switch cfg.BalanceSource {
	case "postgres", "redis", "cached", "none":
	default:
		return Cfg{}, errors.Errorf("unknown balance source %q", cfg.BalanceSource)
	}

	return cfg, nil
}
