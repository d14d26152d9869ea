// Package app builds the poll components from configuration. It is shared by
// the server and the operator CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	backend "github.com/redis/go-redis/v9"

	"github.com/vncsmyrnk/weeklypoll/internal/adapters/dedup"
	"github.com/vncsmyrnk/weeklypoll/internal/adapters/repository/file"
	"github.com/vncsmyrnk/weeklypoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/weeklypoll/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/weeklypoll/internal/adapters/repository/redis"
	"github.com/vncsmyrnk/weeklypoll/internal/config"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

// Storage is an open poll repository plus the resources behind it.
type Storage struct {
	Repository   ports.PollRepository
	Deduplicator ports.Deduplicator

	closers []func() error
}

// Close releases the database or redis connection.
func (s *Storage) Close() error {
	var firstErr error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenStorage connects the backend selected by cfg.Store and checks that it
// is reachable.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	s := &Storage{}

	switch cfg.Store {
	case config.StoreMemory:
		s.Repository = memory.NewPollRepository()
		s.Deduplicator = dedup.NewMemory(cfg.DedupTTL)

	case config.StoreFile:
		repo := file.NewPollRepository(cfg.StorePath)
		s.Repository = repo
		s.Deduplicator = dedup.NewMemory(cfg.DedupTTL)
		logger.Info("using file store", "path", repo.Path)

	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.Postgres.ConnString())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to reach database: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		s.Repository = postgres.NewPollRepository(db)
		s.Deduplicator = postgres.NewDeduplicator(db, cfg.DedupTTL)
		logger.Info("using postgres store", "host", cfg.Postgres.Host, "db", cfg.Postgres.DB)

	case config.StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		s.closers = append(s.closers, client.Close)
		s.Repository = redis.NewFromClient(client, redis.WithPrefix(cfg.Redis.Prefix))
		s.Deduplicator = dedup.NewRedis(client, cfg.Redis.Prefix, cfg.DedupTTL)
		logger.Info("using redis store", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)

	default:
		return nil, fmt.Errorf("%w: unknown store %q", config.ErrInvalidConfig, cfg.Store)
	}

	return s, nil
}
