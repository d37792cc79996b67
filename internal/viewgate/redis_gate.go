package viewgate

import (
	"context"
	"fmt"
	"time"

	"stadiumparking/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisGate keeps one expiring key per (post, viewer). Key expiry is the cooldown.
type RedisGate struct {
	client   *redis.Client
	cooldown time.Duration
	prefix   string
	now      func() time.Time
}

// NewRedisGate creates a gate from a redis:// URL and checks connectivity.
func NewRedisGate(redisURL string, cooldown time.Duration, opts ...Option) (*RedisGate, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisGateWithClient(client, cooldown, opts...), nil
}

// NewRedisGateWithClient creates a gate on an existing client.
func NewRedisGateWithClient(client *redis.Client, cooldown time.Duration, opts ...Option) *RedisGate {
	o := buildOptions(opts)
	return &RedisGate{client: client, cooldown: cooldown, prefix: "views:", now: o.now}
}

func (g *RedisGate) key(postID models.ID, viewerKey string) string {
	return g.prefix + postID.String() + ":" + viewerKey
}

func (g *RedisGate) ShouldCountView(ctx context.Context, postID models.ID, viewerKey string) (bool, error) {
	if viewerKey == "" {
		return true, nil
	}
	stamp := g.now().UTC().Unix()
	key := g.key(postID, viewerKey)

	if g.cooldown <= 0 {
		if err := g.client.Set(ctx, key, stamp, 0).Err(); err != nil {
			return false, fmt.Errorf("refresh view key: %w", err)
		}
		return true, nil
	}

	ok, err := g.client.SetNX(ctx, key, stamp, g.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("claim view key: %w", err)
	}
	return ok, nil
}

func (g *RedisGate) Forget(ctx context.Context, postID models.ID) error {
	pattern := g.prefix + postID.String() + ":*"
	iter := g.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan view keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := g.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete view keys: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (g *RedisGate) Close() error {
	return g.client.Close()
}
