package statecache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kapu/chess-coach-client-go/pkg/coachdto"
)

const (
	keyLastState = "coach:last_state"
	ttlState     = 24 * time.Hour
)

// Cache keeps the last authoritative response in Redis so a restarted client
// can warm its display before the first fetch completes. Purely best-effort.
type Cache struct {
	rdb *redis.Client
}

func New(redisURL string) (*Cache, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &Cache{rdb: redis.NewClient(opts)}, nil
}

// NewWithClient wraps an existing client, mainly for tests.
func NewWithClient(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) SaveState(ctx context.Context, resp *coachdto.StateResponse) error {
	if c == nil || c.rdb == nil || resp == nil || resp.State == nil {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyLastState, raw, ttlState).Err()
}

// LoadState returns the cached response, or nil when nothing is cached.
func (c *Cache) LoadState(ctx context.Context) (*coachdto.StateResponse, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, keyLastState).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var resp coachdto.StateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	if err := coachdto.Validate(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
