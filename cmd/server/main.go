package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/newsletter/internal/api"
	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/delivery"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/ratelimit"
	"github.com/ignite/newsletter/internal/repository/postgres"
	"github.com/ignite/newsletter/internal/service/subscription"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %w", addr, err)
	}
	return ln.Close()
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		RedactPII: cfg.Log.Redact(),
		Service:   "newsletter",
	})
	ctx := log.WithContext(context.Background())

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := zerolog.Ctx(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	if err := checkPortAvailable(addr); err != nil {
		return err
	}

	if cfg.Database.URL == "" {
		return errors.New("database url is required (DATABASE_URL)")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Warn().Err(err).Msg("database not reachable at startup")
	}
	cancel()

	var redisClient *redis.Client
	var limiter ratelimit.Allower
	if cfg.Redis.Enabled && cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		if cfg.RateLimit.Enabled {
			limiter = ratelimit.New(redisClient, "newsletter:subscribe", cfg.RateLimit.RequestsPerMinute, time.Minute)
			log.Info().Int("requests_per_minute", cfg.RateLimit.RequestsPerMinute).Msg("intake rate limiting enabled")
		}
	} else if cfg.RateLimit.Enabled {
		log.Warn().Msg("rate_limit.enabled requires redis; rate limiting disabled")
	}

	sender, err := delivery.New(ctx, cfg.Email)
	if err != nil {
		return fmt.Errorf("email sender: %w", err)
	}
	log.Info().Str("provider", cfg.Email.Provider).Msg("email sender configured")

	svc, err := subscription.NewService(postgres.NewSubscriptionRepo(db), sender, cfg.Application.BaseURL)
	if err != nil {
		return err
	}

	router := api.SetupRoutes(api.Deps{
		Subscriptions:  svc,
		Health:         api.NewHealthChecker(db, redisClient),
		Limiter:        limiter,
		Logger:         *log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustProxy:     cfg.RateLimit.TrustProxy,
	})
	server := api.NewServer(cfg.Server, addr, router)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("confirmation_link", svc.ConfirmationLink()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-done:
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
