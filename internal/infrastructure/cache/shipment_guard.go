package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

const defaultGuardKeyPrefix = "fulfillment:ship:"

// releaseScript deletes the lock only while it still carries our token,
// so an expired lock taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisShipmentGuard implements fulfillment.ShipmentGuard with SET NX locks.
// Suitable for deployments where several instances may submit the same order.
type RedisShipmentGuard struct {
	client    redis.UniversalClient
	keyPrefix string

	mu     sync.Mutex
	tokens map[string]string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisShipmentGuard connects to Redis and verifies the connection
func NewRedisShipmentGuard(ctx context.Context, cfg RedisConfig) (*RedisShipmentGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisShipmentGuardWithClient(client, ""), nil
}

// NewRedisShipmentGuardWithClient creates a guard over an existing client
func NewRedisShipmentGuardWithClient(client redis.UniversalClient, keyPrefix string) *RedisShipmentGuard {
	if keyPrefix == "" {
		keyPrefix = defaultGuardKeyPrefix
	}
	return &RedisShipmentGuard{
		client:    client,
		keyPrefix: keyPrefix,
		tokens:    make(map[string]string),
	}
}

// Acquire takes the per-order lock for ttl.
// Returns false when another submission already holds it.
func (g *RedisShipmentGuard) Acquire(ctx context.Context, orderSn string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.key(orderSn), token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire shipment lock: %w", err)
	}
	if ok {
		g.mu.Lock()
		g.tokens[orderSn] = token
		g.mu.Unlock()
	}
	return ok, nil
}

// Release drops a lock this guard acquired. Unknown orders are a no-op.
func (g *RedisShipmentGuard) Release(ctx context.Context, orderSn string) error {
	g.mu.Lock()
	token, ok := g.tokens[orderSn]
	delete(g.tokens, orderSn)
	g.mu.Unlock()
	if !ok {
		return nil
	}

	if err := releaseScript.Run(ctx, g.client, []string{g.key(orderSn)}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release shipment lock: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (g *RedisShipmentGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (g *RedisShipmentGuard) Close() error {
	return g.client.Close()
}

func (g *RedisShipmentGuard) key(orderSn string) string {
	return g.keyPrefix + orderSn
}

var _ fulfillment.ShipmentGuard = (*RedisShipmentGuard)(nil)

// InMemoryShipmentGuard implements fulfillment.ShipmentGuard within one process.
// Used when Redis is disabled and in tests.
type InMemoryShipmentGuard struct {
	mu    sync.Mutex
	locks map[string]time.Time
	now   func() time.Time
}

// NewInMemoryShipmentGuard creates an empty guard
func NewInMemoryShipmentGuard() *InMemoryShipmentGuard {
	return &InMemoryShipmentGuard{
		locks: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Acquire takes the lock unless a live one exists; expired locks are replaced
func (g *InMemoryShipmentGuard) Acquire(_ context.Context, orderSn string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if expiresAt, held := g.locks[orderSn]; held && now.Before(expiresAt) {
		return false, nil
	}
	g.locks[orderSn] = now.Add(ttl)
	return true, nil
}

// Release drops the lock
func (g *InMemoryShipmentGuard) Release(_ context.Context, orderSn string) error {
	g.mu.Lock()
	delete(g.locks, orderSn)
	g.mu.Unlock()
	return nil
}

var _ fulfillment.ShipmentGuard = (*InMemoryShipmentGuard)(nil)
