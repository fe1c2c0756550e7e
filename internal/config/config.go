package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"trivia-live"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:3001"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Game     Game
	Store    Store
	Postgres Postgres
	Redis    Redis
}

// Game groups session and host-auth settings. Exactly one of HostCode or
// HostCodeHash must be set; the hash form is a bcrypt hash of the code.
type Game struct {
	HostCode             string        `env:"HOST_CODE"`
	HostCodeHash         string        `env:"HOST_CODE_HASH"`
	HostTokenSecret      string        `env:"HOST_TOKEN_SECRET"`
	HostTokenTTL         time.Duration `env:"HOST_TOKEN_TTL" envDefault:"12h"`
	QuestionTimerSeconds int           `env:"QUESTION_TIMER_SECONDS" envDefault:"30"`
	QuestionsFile        string        `env:"QUESTIONS_FILE" envDefault:"data/questions.json"`
}

// Store selects and configures the session snapshot store.
type Store struct {
	Driver      string        `env:"STORE_DRIVER" envDefault:"file"`
	File        string        `env:"STORE_FILE" envDefault:"data/gamestate.json"`
	RedisKey    string        `env:"REDIS_KEY" envDefault:"trivia:session"`
	SaveRetries int           `env:"SAVE_RETRIES" envDefault:"3"`
	SaveTimeout time.Duration `env:"SAVE_TIMEOUT" envDefault:"2s"`
}

// Store driver names.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Postgres captures connection info for the SQL snapshot store.
// Required only when STORE_DRIVER=postgres.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds the cache store configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: false}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Game.HostCode == "" && cfg.Game.HostCodeHash == "" {
		return nil, fmt.Errorf("HOST_CODE or HOST_CODE_HASH must be configured")
	}

	switch cfg.Store.Driver {
	case DriverFile, DriverRedis:
	case DriverPostgres:
		if cfg.Postgres.User == "" || cfg.Postgres.Database == "" {
			return nil, fmt.Errorf("PG_USER and PG_DATABASE are required for the postgres store")
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return cfg, nil
}
