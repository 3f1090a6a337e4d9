package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/agenghermawan/clandestineproject/internal/ratelimit/models"
)

const keyPrefix = "clandestine:ratelimit:"

// slidingWindowScript trims the window, admits the request when there is
// room and reports {allowed, count, reset_ms} in one round trip.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)
local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// RedisStore is a sliding window store shared by every gateway replica.
type RedisStore struct {
	client redis.Scripter
	cmd    redis.Cmdable
	now    func() time.Time
}

// RedisClient is the subset of go-redis used by RedisStore.
type RedisClient interface {
	redis.Scripter
	redis.Cmdable
}

func NewRedis(client RedisClient) *RedisStore {
	return &RedisStore{client: client, cmd: client, now: time.Now}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	now := s.now()
	vals, err := slidingWindowScript.Run(ctx, s.client,
		[]string{keyPrefix + key},
		now.UnixMilli(), window.Milliseconds(), limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script for %s: %w", key, err)
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("rate limit script for %s: unexpected reply %v", key, vals)
	}

	allowed := vals[0] == 1
	remaining := limit - int(vals[1])
	if !allowed || remaining < 0 {
		remaining = 0
	}
	return &models.Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   time.UnixMilli(vals[2]),
	}, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.cmd.Del(ctx, keyPrefix+key).Err()
}

func (s *RedisStore) CurrentCount(ctx context.Context, key string) (int, error) {
	n, err := s.cmd.ZCard(ctx, keyPrefix+key).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
