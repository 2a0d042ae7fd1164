package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"farmcloud/internal/models"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when a cached value is absent.
var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// New wraps an existing go-redis client.
func New(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Settings cache

func (c *Client) GetSettings(ctx context.Context) (*models.Settings, error) {
	val, err := c.rdb.Get(ctx, SettingsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal(val, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return &settings, nil
}

func (c *Client) SetSettings(ctx context.Context, settings *models.Settings, ttl time.Duration) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return c.rdb.Set(ctx, SettingsKey(), data, ttl).Err()
}

func (c *Client) InvalidateSettings(ctx context.Context) error {
	return c.rdb.Del(ctx, SettingsKey()).Err()
}

// Order number sequence

// sequenceTTL keeps a day's counter around past midnight in every timezone.
const sequenceTTL = 48 * time.Hour

// luaNextSequence raises the counter to at least ARGV[1], then increments it.
// KEYS[1]=sequence key, ARGV[1]=floor, ARGV[2]=ttl seconds.
var luaNextSequence = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if current < floor then
  current = floor
end
current = current + 1
redis.call('SET', KEYS[1], current, 'EX', tonumber(ARGV[2]))
return current
`)

// NextOrderSequence atomically issues the next suffix for day, never at or below floor.
func (c *Client) NextOrderSequence(ctx context.Context, day string, floor int) (int, error) {
	seq, err := luaNextSequence.Run(ctx, c.rdb, []string{OrderSequenceKey(day)},
		floor, int64(sequenceTTL.Seconds())).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate order sequence: %w", err)
	}
	return seq, nil
}

// Rate limiting

// luaSlidingWindow drops entries older than the window, then admits the request if under the limit.
// KEYS[1]=limit key, ARGV[1]=now (ms), ARGV[2]=window start (ms), ARGV[3]=window seconds,
// ARGV[4]=member, ARGV[5]=limit. Returns the request count, or -1 when limited.
var luaSlidingWindow = redis.NewScript(`
local key = KEYS[1]
redis.call('ZREMRANGEBYSCORE', key, '0', ARGV[2])
local count = redis.call('ZCARD', key)
if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, ARGV[1], ARGV[4])
  redis.call('EXPIRE', key, ARGV[3])
  return count + 1
end
return -1
`)

// Allow records a request for client and reports whether it fits in limit per window.
func (c *Client) Allow(ctx context.Context, client string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	nowMs := now.UnixMilli()
	windowSec := int64(window.Seconds())
	if windowSec < 1 {
		windowSec = 1
	}
	member := fmt.Sprintf("%d-%d", nowMs, now.UnixNano())

	res, err := luaSlidingWindow.Run(ctx, c.rdb, []string{RateLimitKey(client)},
		nowMs, nowMs-window.Milliseconds(), windowSec, member, limit).Int()
	if err != nil {
		return false, err
	}
	return res >= 0, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
