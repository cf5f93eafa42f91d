package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisEngine keeps one key per collection.
type RedisEngine struct {
	client *redis.Client
	prefix string
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func NewRedisEngine(ctx context.Context, opts RedisOptions) (*RedisEngine, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisEngine{client: client, prefix: opts.Prefix}, nil
}

func (e *RedisEngine) Load(ctx context.Context, collection string) ([]byte, error) {
	payload, err := e.client.Get(ctx, e.key(collection)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (e *RedisEngine) Save(ctx context.Context, collection string, payload []byte) error {
	return e.client.Set(ctx, e.key(collection), payload, 0).Err()
}

func (e *RedisEngine) Close() error {
	return e.client.Close()
}

func (e *RedisEngine) key(collection string) string {
	if e.prefix == "" {
		return collection
	}
	return e.prefix + ":" + collection
}
