package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"greenhome/db"
	"greenhome/db/migrations"
	"greenhome/internal/config"
	"greenhome/internal/handlers"
	"greenhome/internal/objectstore"
	"greenhome/internal/session"
	"greenhome/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := sqlx.Connect("postgres", cfg.PostgresConn)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := migrations.Up(dbConn.DB); err != nil {
		return err
	}

	svc := workflow.NewService(db.NewStorage(dbConn), workflow.WithLogger(logger))
	if cfg.EnableTestLogin {
		if err := svc.SeedFixtures(ctx); err != nil {
			return err
		}
		logger.Info("test login enabled", "fixtures", len(workflow.FixtureUsers()))
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
	}
	backend := session.NewBackend(ctx, redisClient)

	if cfg.SessionSecret == config.DefaultSessionSecret {
		logger.Warn("SESSION_SECRET is not set, using the development secret")
	}
	cookies := session.NewCookieStore([]byte(cfg.SessionSecret), cfg.SessionMaxAge, cfg.SessionSecure)
	sessions := session.NewManager(cookies, backend, cfg.SessionMaxAge)

	var objects objectstore.Store = objectstore.Disabled{}
	if cfg.UploadDir != "" {
		local, err := objectstore.NewLocalStore(cfg.UploadDir, cfg.MaxUploadBytes)
		if err != nil {
			return err
		}
		objects = local
	} else {
		logger.Warn("UPLOAD_DIR is empty, uploads are disabled")
	}

	h := handlers.NewHandler(svc, sessions, objects, handlers.Options{
		TestLogin:      cfg.EnableTestLogin,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.ServerAddress)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
