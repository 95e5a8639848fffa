package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/pkg/distlock"
	"github.com/ignite/newsletter/internal/pkg/logger"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	log := logger.New(logger.Options{Level: os.Getenv("LOG_LEVEL"), Service: "migrate"})

	dir := "migrations"
	listOnly := false
	for _, a := range os.Args[1:] {
		if a == "--list" {
			listOnly = true
		} else {
			dir = a
		}
	}

	dsn := os.Getenv("DATABASE_URL")
	redisURL := os.Getenv("REDIS_URL")
	if cfg, err := config.LoadFromEnv("config/config.yaml"); err == nil {
		dsn = cfg.Database.URL
		if cfg.Redis.Enabled {
			redisURL = cfg.Redis.URL
		}
	}
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect")
	}
	defer db.Close()

	ctx := log.WithContext(context.Background())
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping")
	}
	log.Info().Msg("connected to database")

	if listOnly {
		tables, err := listTables(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("list tables")
		}
		for _, t := range tables {
			fmt.Println(" ", t)
		}
		fmt.Printf("Total: %d tables\n", len(tables))
		return
	}

	var redisClient *redis.Client
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse redis url")
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	applied, err := applyLocked(ctx, distlock.New(redisClient, db, "newsletter:migrations", 10*time.Minute), db, dir)
	if err != nil {
		log.Fatal().Err(err).Int("applied", applied).Msg("migration failed")
	}
	log.Info().Int("applied", applied).Msg("migrations complete")
}

// errLocked is returned when another migrator holds the lock.
var errLocked = errors.New("another migration is in progress")

// applyLocked runs applyDir while holding lock.
func applyLocked(ctx context.Context, lock distlock.Lock, db *sql.DB, dir string) (int, error) {
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errLocked
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("release migration lock")
		}
	}()
	return applyDir(ctx, db, dir)
}

// migrationFiles returns the .sql files in dir in lexical order.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// applyDir runs every migration in dir, each in its own transaction, and
// stops at the first failure.
func applyDir(ctx context.Context, db *sql.DB, dir string) (int, error) {
	log := zerolog.Ctx(ctx)
	files, err := migrationFiles(dir)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", path, err)
		}
		content := string(data)
		if strings.TrimSpace(content) == "" {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("begin %s: %w", path, err)
		}
		if _, err := tx.ExecContext(ctx, content); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("apply %s: %w", filepath.Base(path), err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("commit %s: %w", path, err)
		}
		log.Info().Str("file", filepath.Base(path)).Msg("applied")
		applied++
	}
	return applied, nil
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}
