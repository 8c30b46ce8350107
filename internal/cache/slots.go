package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// SlotCache memoizes generated slot sequences. Strictly advisory: entries
// are short-lived and the barber-day version is bumped on every booking
// commit, so a cached answer is never treated as a reservation.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(redisURL string) (*SlotCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &SlotCache{
		rdb: redis.NewClient(opts),
		ttl: 60 * time.Second,
	}, nil
}

func (c *SlotCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Key builds a cache key bound to the current barber-day version.
func (c *SlotCache) Key(ctx context.Context, barberID uint, serviceID uint, date string, tz string) string {
	if c == nil {
		return ""
	}
	ver, _ := c.rdb.Get(ctx, versionKey(barberID, date)).Int64()
	return fmt.Sprintf("slots:%d:%d:%s:%s:v%d", barberID, serviceID, date, tz, ver)
}

func (c *SlotCache) Get(ctx context.Context, key string, out any) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (c *SlotCache) Set(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, raw, c.ttl)
}

// Bump invalidates every cached sequence for the barber on that date by
// rotating the version embedded in future keys.
func (c *SlotCache) Bump(ctx context.Context, barberID uint, date string) {
	if c == nil {
		return
	}
	c.rdb.Incr(ctx, versionKey(barberID, date))
}

func versionKey(barberID uint, date string) string {
	return fmt.Sprintf("slots_ver:%d:%s", barberID, date)
}
