package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	stockapp "github.com/spicemill/stockledger/internal/application/stock"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/spicemill/stockledger/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Stores builds the registry snapshot store and the event idempotency store
// for the configured backends. A single Redis client is shared when either
// backend is "redis".
type Stores struct {
	cfg    *config.Config
	logger *zap.Logger
	client *redis.Client
}

// NewStores connects to Redis when any backend needs it. When Redis is
// unreachable it falls back to in-memory stores outside production and
// fails in production.
func NewStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Stores{cfg: cfg, logger: logger}

	if cfg.Registry.Backend != "redis" && cfg.Event.IdempotencyBackend != "redis" {
		return s, nil
	}

	client, err := NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		if cfg.App.Env == "production" {
			return nil, fmt.Errorf("redis required by configuration: %w", err)
		}
		logger.Warn("redis unavailable, falling back to in-memory stores; "+
			"registry and idempotency state will not be shared between instances",
			zap.Error(err))
		return s, nil
	}
	s.client = client
	logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr()))
	return s, nil
}

// Snapshots returns the store backing the stock registry
func (s *Stores) Snapshots(policies *stock.PolicyRegistry) stockapp.SnapshotStore {
	if s.client != nil && s.cfg.Registry.Backend == "redis" {
		return NewRedisSnapshotStore(s.client, s.cfg.Registry.KeyPrefix, policies)
	}
	return stockapp.NewMemorySnapshotStore()
}

// Idempotency returns the store used to deduplicate event deliveries
func (s *Stores) Idempotency() shared.IdempotencyStore {
	if s.client != nil && s.cfg.Event.IdempotencyBackend == "redis" {
		return NewRedisIdempotencyStore(s.client, s.cfg.Registry.KeyPrefix+"event:")
	}
	return NewInMemoryIdempotencyStore(0)
}

// Client returns the Redis client, nil when no backend uses Redis
func (s *Stores) Client() *redis.Client {
	return s.client
}

// Close releases the Redis connection
func (s *Stores) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
