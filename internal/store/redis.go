package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV keeps values as plain redis strings and announces every write on a
// pub/sub channel, so watchers in any process connected to the same server
// see it.
type RedisKV struct { // implements KV
	client *redis.Client
	prefix string

	closeOnce sync.Once
	done      chan struct{}
}

func NewRedisKV(redisURL, prefix string) (*RedisKV, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisKVWithClient(client, prefix), nil
}

func NewRedisKVWithClient(client *redis.Client, prefix string) *RedisKV {
	return &RedisKV{
		client: client,
		prefix: prefix,
		done:   make(chan struct{}),
	}
}

func (r *RedisKV) key(key string) string {
	return r.prefix + key
}

func (r *RedisKV) channel() string {
	return r.prefix + "changes"
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := r.client.Publish(ctx, r.channel(), key).Err(); err != nil {
		storeLogger.Error().Err(err).Str("key", key).Msg("Error publishing change")
	}
	return nil
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	n, err := r.client.Del(ctx, r.key(key)).Result()
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if n > 0 {
		if err := r.client.Publish(ctx, r.channel(), key).Err(); err != nil {
			storeLogger.Error().Err(err).Str("key", key).Msg("Error publishing change")
		}
	}
	return nil
}

func (r *RedisKV) Watch(ctx context.Context) (<-chan Change, error) {
	select {
	case <-r.done:
		return nil, ErrClosed
	default:
	}

	sub := r.client.Subscribe(ctx, r.channel())
	// Wait for the subscription to be confirmed so no write is missed after Watch returns.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", r.channel(), err)
	}

	out := make(chan Change, watchBuffer)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.done:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				select {
				case out <- Change{Key: msg.Payload}:
				default:
					storeLogger.Warn().Str("key", msg.Payload).Msg("Watcher is not keeping up, dropping change")
				}
			}
		}
	}()

	return out, nil
}

func (r *RedisKV) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.client.Close()
	})
	return err
}
