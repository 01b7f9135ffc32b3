package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"foodtruck-market/pkg/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lease keeps a job to one running instance across replicas
type Lease interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLease struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedisLease(config utils.RedisConfig, prefix string, log *zap.Logger) (*RedisLease, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", config.Addr, err)
	}

	return &RedisLease{
		client: client,
		prefix: prefix,
		log:    log.With(zap.String("component", "lease")),
	}, nil
}

func (l *RedisLease) key(name string) string {
	return l.prefix + ":lease:" + name
}

func (l *RedisLease) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key(key), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	if !ok {
		l.log.Debug("Lease held elsewhere", zap.String("lease", key))
		return "", false, nil
	}

	return token, true, nil
}

func (l *RedisLease) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key(key)}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lease %s: %w", key, err)
	}
	return nil
}

func (l *RedisLease) Close() error {
	return l.client.Close()
}

// LocalLease is used when no Redis is configured; it only guards
// against overlap inside this process.
type LocalLease struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalLease() *LocalLease {
	return &LocalLease{held: make(map[string]bool)}
}

func (l *LocalLease) Acquire(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] {
		return "", false, nil
	}
	l.held[key] = true
	return "local", true, nil
}

func (l *LocalLease) Release(_ context.Context, key, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, key)
	return nil
}
