package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"dungeon-server/internal/api"
	"dungeon-server/internal/app/account"
	"dungeon-server/internal/app/encounter"
	"dungeon-server/internal/app/game"
	"dungeon-server/internal/app/itemization"
	"dungeon-server/internal/app/persistence"
	"dungeon-server/internal/app/progression"
	"dungeon-server/internal/app/savegame"
	"dungeon-server/internal/app/worldgen"
	"dungeon-server/internal/platform/cache"
	"dungeon-server/internal/platform/config"
	"dungeon-server/internal/platform/db"
	"dungeon-server/internal/platform/migrate"
	"dungeon-server/internal/platform/mq"
	"dungeon-server/internal/platform/observability"
	"dungeon-server/migrations"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)

	pg := connectPostgres(ctx, cfg, logger)
	if pg != nil {
		defer pg.Close()
	}

	var redisClient *redis.Client
	redisClient, err = cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable; continuing without cache")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := mq.NewPublisher(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable; using noop publisher")
		publisher = mq.NewNoopPublisher()
	}
	defer publisher.Close()

	store, err := openStore(ctx, cfg, pg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.SaveBackend).Msg("save store unavailable")
	}
	saveSvc := savegame.NewService(store, persistence.NewManager(observability.Component(logger, "persistence")),
		redisClient, cfg.SaveCacheTTL, publisher, observability.Component(logger, "savegame"))
	defer saveSvc.Close()

	var accounts *account.Service
	if pg != nil {
		accounts = account.NewService(pg, cfg.JWTSecret, cfg.JWTTTL, observability.Component(logger, "account"))
	} else {
		logger.Warn().Msg("no account database; every request plays as the local account")
	}

	items := itemization.New()
	ledger := progression.NewLedger(observability.Component(logger, "progression"))
	games := game.NewService(
		worldgen.NewGenerator(items, observability.Component(logger, "worldgen")),
		encounter.NewEngine(items, ledger, observability.Component(logger, "encounter"), encounter.Options{}),
		ledger,
		saveSvc,
		publisher,
		observability.Component(logger, "game"),
		game.Options{IdleTimeout: cfg.SessionIdleTimeout, ReapInterval: cfg.SessionReapInterval, Seed: cfg.GameSeed},
	)
	games.Start()

	handler := api.NewHandler(logger, accounts, games, saveSvc, api.Options{
		CorsOrigin:  cfg.CorsOrigin,
		MaxBodySize: cfg.MaxRequestBody,
		MCP:         cfg.MCPEnabled,
	})
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("saves", cfg.SaveBackend).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	games.Stop(shutdownCtx)
	logger.Info().Msg("server stopped")
}

// connectPostgres returns nil when the database is optional and unreachable.
func connectPostgres(ctx context.Context, cfg config.Config, logger zerolog.Logger) *pgxpool.Pool {
	pg, err := db.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		if cfg.SaveBackend == config.SaveBackendPostgres {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		logger.Warn().Err(err).Msg("postgres unavailable")
		return nil
	}
	var fsys fs.FS = migrations.Postgres()
	if cfg.MigrationDir != "" {
		fsys = os.DirFS(cfg.MigrationDir)
	}
	if err := migrate.Up(ctx, pg, fsys); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}
	return pg
}

func openStore(ctx context.Context, cfg config.Config, pg *pgxpool.Pool) (savegame.Store, error) {
	switch cfg.SaveBackend {
	case config.SaveBackendSQLite:
		return savegame.OpenSQLite(ctx, cfg.SQLitePath)
	case config.SaveBackendFile:
		return savegame.NewFileStore(cfg.SaveDir)
	default:
		return savegame.NewPostgresStore(pg), nil
	}
}
