package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlink-backend/internal/config"
)

// NewRedisClient opens the client shared by the payload cache and the serve
// log. Socket timeouts never exceed the request deadline.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opt.ClientName = applicationName
	if cfg.RequestTimeout > 0 {
		if opt.ReadTimeout <= 0 || opt.ReadTimeout > cfg.RequestTimeout {
			opt.ReadTimeout = cfg.RequestTimeout
		}
		if opt.WriteTimeout <= 0 || opt.WriteTimeout > cfg.RequestTimeout {
			opt.WriteTimeout = cfg.RequestTimeout
		}
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opt.Addr, err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Int("pool_size", opt.PoolSize).
		Msg("Redis client ready")

	return rdb, nil
}
