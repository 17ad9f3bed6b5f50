package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockHeld = errors.New("lock is held by another operation")

// Locker guards work that must not run concurrently across server instances.
// The Postgres advisory lock taken inside the generation transaction covers a
// single database; Locker adds a guard before the transaction is opened.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

type noopLocker struct{}

func (noopLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

func NoopLocker() Locker {
	return noopLocker{}
}

const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

type RedisLocker struct {
	Client   redis.Cmdable
	Prefix   string
	NewToken func() string
}

func NewRedisLocker(client redis.Cmdable) *RedisLocker {
	return &RedisLocker{Client: client, Prefix: "paycore:lock:", NewToken: uuid.NewString}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	fullKey := l.Prefix + key
	token := l.NewToken()
	ok, err := l.Client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func(ctx context.Context) error {
		return l.Client.Eval(ctx, releaseScript, []string{fullKey}, token).Err()
	}, nil
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}
