package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"trivia-live/internal/config"
	"trivia-live/internal/game"
	"trivia-live/internal/hostauth"
	"trivia-live/internal/logging"
	"trivia-live/internal/server"
	"trivia-live/internal/store"
)

// Application aggregates shared infrastructure and the game core.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
	saver *store.Saver

	bgCancels []context.CancelFunc
}

// New bootstraps config, logger, the snapshot store, the question bank and
// the HTTP server. A failing load of either bank or snapshot is fatal.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	a := &Application{cfg: cfg, logger: logger}

	gateway, err := a.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bank, err := game.LoadBank(cfg.Game.QuestionsFile)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	logger.Info().Int("questions", bank.Len()).Str("file", cfg.Game.QuestionsFile).Msg("question bank loaded")

	session := game.NewSession()
	snap, err := gateway.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session snapshot: %w", err)
	}
	if snap != nil {
		session.Restore(*snap)
		logger.Info().
			Str("phase", string(session.Phase())).
			Int("players", session.PlayerCount()).
			Msg("session restored from snapshot")
	}

	auth, err := hostauth.New(hostauth.Config{
		Code:        cfg.Game.HostCode,
		CodeHash:    cfg.Game.HostCodeHash,
		TokenSecret: cfg.Game.HostTokenSecret,
		TokenTTL:    cfg.Game.HostTokenTTL,
		Issuer:      cfg.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("host auth: %w", err)
	}

	metrics := game.NewMetrics(prometheus.DefaultRegisterer)
	saveFailures := promauto.NewCounter(prometheus.CounterOpts{
		Name: "trivia_snapshot_save_failures_total",
		Help: "Session snapshots that could not be persisted after retries.",
	})

	a.saver = store.NewSaver(gateway, logger, store.SaverOptions{
		MaxRetries: cfg.Store.SaveRetries,
		Timeout:    cfg.Store.SaveTimeout,
		Failures:   saveFailures,
	})

	dispatcher := game.NewDispatcher(session, bank, game.NewRegistry(), auth, a.saver, metrics, logger, game.Options{
		TimeLimit: cfg.Game.QuestionTimerSeconds,
	})
	wsHandler := game.NewWSHandler(dispatcher, logger)

	a.http = server.NewHTTPServer(cfg, logger, dispatcher.Status, wsHandler.HandleWebSocket)
	return a, nil
}

func (a *Application) openStore(ctx context.Context, cfg *config.App) (store.Gateway, error) {
	switch cfg.Store.Driver {
	case config.DriverFile:
		return store.NewFileStore(cfg.Store.File), nil

	case config.DriverPostgres:
		connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=4",
			cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)
		pool, err := pgxpool.New(ctx, connString)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.pool = pool
		return store.NewPostgresStore(pool), nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		a.redis = client
		return store.NewRedisStore(client, cfg.Store.RedisKey), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Run starts the saver and HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	saverCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go func() {
		if err := a.saver.Run(saverCtx); err != nil && err != context.Canceled {
			a.logger.Warn().Err(err).Msg("snapshot saver stopped")
		}
	}()

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
