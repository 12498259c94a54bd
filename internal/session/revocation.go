// Package session keeps track of session tokens that were logged out before
// they expired.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bookshelf:revoked:"

// RedisRevocationList stores revoked token ids in Redis until the token
// would have expired anyway.
type RedisRevocationList struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisRevocationList connects to Redis and pings it.
func NewRedisRevocationList(ctx context.Context, addr, password string, db int) (*RedisRevocationList, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisRevocationList{client: client, timeout: 250 * time.Millisecond}, nil
}

func (l *RedisRevocationList) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, l.timeout)
}

// Revoke marks jti as revoked until expiresAt. Already expired tokens are ignored.
func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("empty token id")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	timeoutCtx, cancel := l.withTimeout(ctx)
	defer cancel()
	return l.client.Set(timeoutCtx, keyPrefix+jti, 1, ttl).Err()
}

// IsRevoked reports whether jti was revoked and has not expired yet.
func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	timeoutCtx, cancel := l.withTimeout(ctx)
	defer cancel()
	n, err := l.client.Exists(timeoutCtx, keyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping is one of the /readyz checks.
func (l *RedisRevocationList) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisRevocationList) Close() error {
	return l.client.Close()
}
