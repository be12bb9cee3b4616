package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sdarshil6/url-shortener/internal/config"
	"github.com/sdarshil6/url-shortener/internal/dedup"
	"github.com/sdarshil6/url-shortener/internal/enrich"
	"github.com/sdarshil6/url-shortener/internal/handler"
	"github.com/sdarshil6/url-shortener/internal/logger"
	"github.com/sdarshil6/url-shortener/internal/middleware"
	"github.com/sdarshil6/url-shortener/internal/migrations"
	"github.com/sdarshil6/url-shortener/internal/redirect"
	"github.com/sdarshil6/url-shortener/internal/repository/postgres"
	redisRepo "github.com/sdarshil6/url-shortener/internal/repository/redis"
	"github.com/sdarshil6/url-shortener/internal/service"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	loggerConfig := logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}

	if err := logger.Initialize(loggerConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	log := logger.Get()
	log.Info("Starting URL Shortener service",
		"port", cfg.Server.Port,
		"log_level", cfg.Log.Level,
		"dedup_window", cfg.Dedup.Window,
		"async_clicks", cfg.Click.Async,
	)

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg, log); err != nil {
			log.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	dbPool, err := setupDatabase(cfg)
	if err != nil {
		log.Error("Failed to setup database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient, err := setupRedis(cfg)
	if err != nil {
		log.Error("Failed to setup redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	linkRepo := postgres.NewLinkRepository(dbPool)
	clickRepo := postgres.NewClickRepository(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)
	linkCache := redisRepo.NewLinkCache(redisClient)

	geo, err := enrich.NewGeoResolver(enrich.GeoConfig{
		BaseURL:       cfg.Geo.BaseURL,
		Timeout:       cfg.Geo.Timeout,
		MaxRetries:    cfg.Geo.MaxRetries,
		MaxRetryAfter: cfg.Geo.MaxRetryAfter,
		CacheTTL:      cfg.Geo.CacheTTL,
		CacheMaxItems: cfg.Geo.CacheMaxItems,
	}, &http.Client{}, logger.Component("geo"))
	if err != nil {
		log.Error("Failed to setup geo resolver", "error", err)
		os.Exit(1)
	}
	defer geo.Close()

	dedupCache := dedup.NewCache(cfg.Dedup.Window)
	janitor := dedup.NewJanitor(dedupCache, cfg.Dedup.JanitorInterval, cfg.Dedup.Retention(), logger.Component("janitor"))
	janitor.Start(context.Background())

	pipeline := redirect.NewPipeline(linkRepo, clickRepo, linkCache, dedupCache, enrich.NewEnricher(geo), redirect.Config{
		Async:          cfg.Click.Async,
		PersistTimeout: cfg.Click.PersistTimeout,
		LinkCacheTTL:   cfg.Cache.LinkTTL,
	}, logger.Component("redirect"))

	linkService := service.NewLinkService(linkRepo, clickRepo, linkCache, cfg.Server.BaseURL, logger.Component("links"))
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger.Component("auth"))

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.RouterConfig{
		Redirect:      handler.NewRedirectHandler(pipeline),
		Links:         handler.NewLinkHandler(linkService),
		Auth:          handler.NewAuthHandler(authService),
		Health:        handler.NewHealthHandler(dbPool, redisClient, dedupCache, version),
		Authenticator: authService,
		RegisterLimit: middleware.NewRateLimiter(cfg.RateLimit.RegisterPerHour, time.Hour),
		LoginLimit:    middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute, time.Minute),
		CreateLimit:   middleware.NewRateLimiter(cfg.RateLimit.CreatePerMinute, time.Minute),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	gracefulShutdown(srv, cfg, pipeline, janitor, log)
}

func runMigrations(cfg *config.Config, log *slog.Logger) error {
	migrator, err := migrations.New(cfg.Database.URL, logger.Component("migrations"))
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Warn("Error closing migrator", "error", err)
		}
	}()

	return migrator.Up()
}

func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	dbConfig := cfg.Database
	poolConfig, err := pgxpool.ParseConfig(dbConfig.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(dbConfig.MaxConns)
	poolConfig.MinConns = int32(dbConfig.MinConns)
	poolConfig.MaxConnLifetime = dbConfig.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = dbConfig.MaxConnIdleTime

	dbPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}

	return dbPool, nil
}

func setupRedis(cfg *config.Config) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return redisClient, nil
}

// gracefulShutdown stops accepting requests, drains pending click writes,
// then stops the janitor. Pools and caches close via main's defers.
func gracefulShutdown(srv *http.Server, cfg *config.Config, pipeline *redirect.Pipeline, janitor *dedup.Janitor, log *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}

	if err := pipeline.Wait(ctx); err != nil {
		log.Error("Pending clicks not flushed", "error", err)
	}

	if err := janitor.Stop(cfg.Dedup.ShutdownGrace); err != nil {
		log.Error("Janitor did not stop cleanly", "error", err)
	}

	log.Info("Graceful shutdown completed")
}
