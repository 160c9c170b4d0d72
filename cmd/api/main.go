package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/footyliveliness/api/internal/config"
	"github.com/footyliveliness/api/internal/handlers"
	"github.com/footyliveliness/api/internal/logic"
	"github.com/footyliveliness/api/internal/model"
	"github.com/footyliveliness/api/internal/store"
	"github.com/footyliveliness/api/internal/worker"
)

// migratingStore is a match store that can create its own schema
type migratingStore interface {
	logic.MatchStore
	Migrate(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	log := logger.Sugar()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	artifact, err := model.LoadArtifact(cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	linear, err := model.NewLinear(artifact)
	if err != nil {
		return err
	}
	log.Infow("Model loaded", "name", artifact.Name, "version", artifact.Version, "features", len(artifact.Features))

	matches, closeStore, err := openMatchStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	if err := matches.Migrate(ctx); err != nil {
		return err
	}
	log.Infow("Match store ready", "driver", cfg.StoreDriver)

	checks := map[string]handlers.Pinger{"store": matches}

	var forms logic.FormStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		formStore := store.NewRedisFormStore(rdb, cfg.FormTTL)
		forms = formStore
		checks["redis"] = formStore
	}

	var predictionLog logic.PredictionLog
	if cfg.ClickHouseURL != "" {
		opts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
		if err != nil {
			return fmt.Errorf("parse CLICKHOUSE_URL: %w", err)
		}
		conn, err := clickhouse.Open(opts)
		if err != nil {
			return fmt.Errorf("open clickhouse: %w", err)
		}
		defer conn.Close()
		chLog := store.NewClickHousePredictionLog(conn)
		if err := chLog.Migrate(ctx); err != nil {
			log.Warnw("Prediction log unavailable", "error", err)
		} else {
			predictionLog = chLog
		}
		checks["clickhouse"] = chLog
	}

	predictionSvc := logic.NewPredictionService(linear, matches, forms, predictionLog, logger)
	modelStatsSvc := logic.NewModelStatsService(linear, matches, logger)
	fixtureSvc := logic.NewFixtureService(store.NewFileFixtureSource(cfg.FixturesDir), matches, logger)
	teamFormSvc := logic.NewTeamFormService(matches, forms, logger)

	if _, err := fixtureSvc.Refresh(ctx); err != nil {
		log.Warnw("Initial fixture load failed", "error", err)
	}
	if n, err := teamFormSvc.Snapshot(ctx); err != nil {
		log.Warnw("Initial form snapshot failed", "error", err)
	} else {
		log.Infow("Form snapshots ready", "snapshots", n)
	}

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		Store:         matches,
		Forms:         teamFormSvc,
		Logger:        logger,
	})
	pool.Start(context.Background())

	h := handlers.New(handlers.Config{
		WorkerPool: pool,
		Checks:     checks,
		Model: handlers.ModelInfo{
			Name:     artifact.Name,
			Version:  artifact.Version,
			Features: len(artifact.Features),
		},
		Logger:          logger,
		Prediction:      predictionSvc,
		ModelStats:      modelStatsSvc,
		Fixtures:        fixtureSvc,
		TeamForm:        teamFormSvc,
		IngestTokenHash: cfg.IngestTokenHash,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Router(cfg.AllowedOrigins, cfg.WriteTimeout),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		pool.Stop()
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
	pool.Stop()
	return nil
}

func openMatchStore(ctx context.Context, cfg *config.Config) (migratingStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return store.NewPostgresMatchStore(pg), pg.Close, nil
	case config.DriverPQ:
		return openSQL(store.DialectPostgres, cfg.PostgresURL)
	case config.DriverMySQL:
		return openSQL(store.DialectMySQL, cfg.MySQLDSN)
	case config.DriverSQLite:
		return openSQL(store.DialectSQLite, cfg.SQLitePath)
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openSQL(dialect store.Dialect, dsn string) (migratingStore, func(), error) {
	s, err := store.OpenSQLMatchStore(dialect, dsn)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.Close() }, nil
}
