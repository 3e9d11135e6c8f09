package cache

import (
	"context"

	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/bizdir/backend/internal/infrastructure/auth"
	"github.com/bizdir/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores groups the Redis-backed stores the application needs.
// Client is nil when the in-memory fallback is in use.
type Stores struct {
	Client      *redis.Client
	Idempotency shared.IdempotencyStore
	Blacklist   auth.TokenBlacklist
	Values      ValueCache
}

// NewStores connects to Redis when enabled and falls back to process-local
// stores when it is disabled or unreachable outside production.
func NewStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if cfg.Redis.Enabled {
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err == nil {
			logger.Info("Using Redis stores", zap.String("addr", cfg.Redis.Addr()))
			return &Stores{
				Client:      client,
				Idempotency: NewRedisIdempotencyStore(client, ""),
				Blacklist:   auth.NewRedisTokenBlacklist(client),
				Values:      NewRedisValueCache(client, "bizdir:cache:"),
			}, nil
		}
		if cfg.App.IsProduction() {
			return nil, err
		}
		logger.Warn("Redis unavailable, falling back to in-memory stores", zap.Error(err))
	}
	return NewMemoryStores(), nil
}

// NewMemoryStores returns process-local stores
func NewMemoryStores() *Stores {
	return &Stores{
		Idempotency: NewInMemoryIdempotencyStore(),
		Blacklist:   auth.NewInMemoryTokenBlacklist(),
		Values:      NewMemoryValueCache(),
	}
}

// Close releases the Redis connection if one is open
func (s *Stores) Close() error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Close()
}
