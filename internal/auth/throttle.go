package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// LoginThrottle 记录登录失败次数，超过阈值后在锁定期内拒绝登录
type LoginThrottle interface {
	Allow(ctx context.Context, loginID string) (bool, error)
	RecordFailure(ctx context.Context, loginID string) error
	Reset(ctx context.Context, loginID string) error
}

// NoopThrottle 不做任何限制，未启用 Redis 时使用
type NoopThrottle struct{}

func (NoopThrottle) Allow(context.Context, string) (bool, error) { return true, nil }
func (NoopThrottle) RecordFailure(context.Context, string) error { return nil }
func (NoopThrottle) Reset(context.Context, string) error         { return nil }

// RedisThrottle 计数器保存在 Redis，首次失败时设置过期时间
type RedisThrottle struct {
	client      *redis.Client
	maxFailures int64
	lockout     time.Duration
}

func NewRedisThrottle(client *redis.Client, maxFailures int, lockout time.Duration) *RedisThrottle {
	return &RedisThrottle{
		client:      client,
		maxFailures: int64(maxFailures),
		lockout:     lockout,
	}
}

func throttleKey(loginID string) string {
	return fmt.Sprintf("login:fail:%s", loginID)
}

func (t *RedisThrottle) Allow(ctx context.Context, loginID string) (bool, error) {
	if t.maxFailures <= 0 {
		return true, nil
	}
	count, err := t.client.Get(ctx, throttleKey(loginID)).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return count < t.maxFailures, nil
}

func (t *RedisThrottle) RecordFailure(ctx context.Context, loginID string) error {
	key := throttleKey(loginID)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return t.client.Expire(ctx, key, t.lockout).Err()
	}
	return nil
}

func (t *RedisThrottle) Reset(ctx context.Context, loginID string) error {
	return t.client.Del(ctx, throttleKey(loginID)).Err()
}
