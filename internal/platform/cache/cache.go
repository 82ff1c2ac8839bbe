package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const balanceKeyPrefix = "tally:balance:"

// Cache is a best-effort read cache for account balances, keyed by account
// code. It is strictly an optimization for read endpoints: the database row
// stays the system of record and every write path invalidates the touched
// codes after commit. A nil *Cache is valid and disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis at addr. An empty addr disables caching by returning
// a nil Cache, which every method tolerates.
func New(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		// Plain host:port addresses are accepted too.
		opts = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// GetBalance returns the cached balance for an account code, and whether the
// key was present.
func (c *Cache) GetBalance(ctx context.Context, code string) (int64, bool) {
	if c == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, balanceKeyPrefix+code).Result()
	if err != nil {
		return 0, false
	}
	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return balance, true
}

// SetBalance stores the balance for an account code.
func (c *Cache) SetBalance(ctx context.Context, code string, balance int64) error {
	if c == nil {
		return nil
	}
	return c.client.Set(ctx, balanceKeyPrefix+code, strconv.FormatInt(balance, 10), c.ttl).Err()
}

// InvalidateBalances drops the cached balances for the given account codes.
func (c *Cache) InvalidateBalances(ctx context.Context, codes ...string) error {
	if c == nil || len(codes) == 0 {
		return nil
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = balanceKeyPrefix + code
	}
	err := c.client.Del(ctx, keys...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Close releases the underlying redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
