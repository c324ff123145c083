package prefs

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"liquidity-monitor/internal/config"
	"liquidity-monitor/internal/interfaces"
)

const pageSizeKey = "liquidity:prefs:page_size"

var _ interfaces.PreferenceStore = (*RedisStore)(nil)

// RedisStore persists presentation preferences in Redis so they survive
// restarts. Lookup failures degrade to "no preference" rather than erroring
// the caller.
type RedisStore struct {
	client  *redis.Client
	logger  *zerolog.Logger
	timeout time.Duration
}

func NewRedisStore(cfg config.RedisConfig, logger *zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{
		client:  client,
		logger:  logger,
		timeout: 5 * time.Second,
	}, nil
}

func (r *RedisStore) GetPageSize() (int, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	size, err := r.client.Get(ctx, pageSizeKey).Int()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Msg("Failed to read page size preference")
		}
		return 0, false
	}
	return size, true
}

func (r *RedisStore) SetPageSize(size int) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	return r.client.Set(ctx, pageSizeKey, size, 0).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
