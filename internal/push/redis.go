package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMessenger sends messages over redis pub/sub so that editors and
// widgets may live in different processes.
type RedisMessenger struct { // implements Messenger
	client *redis.Client
	prefix string
}

func NewRedisMessenger(redisURL, prefix string) (*RedisMessenger, error) {
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

	return NewRedisMessengerWithClient(client, prefix), nil
}

func NewRedisMessengerWithClient(client *redis.Client, prefix string) *RedisMessenger {
	return &RedisMessenger{
		client: client,
		prefix: prefix,
	}
}

func (m *RedisMessenger) channel(target string) string {
	return m.prefix + "push:" + target
}

func (m *RedisMessenger) Send(ctx context.Context, target string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	receivers, err := m.client.Publish(ctx, m.channel(target), payload).Result()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", target, err)
	}
	if receivers == 0 {
		return ErrUndelivered
	}
	return nil
}

func (m *RedisMessenger) Subscribe(ctx context.Context, target string) (<-chan Message, error) {
	sub := m.client.Subscribe(ctx, m.channel(target))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", target, err)
	}

	out := make(chan Message, clientBuffer)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-messages:
				if !ok {
					return
				}
				var msg Message
				if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
					pushLogger.Debug().Err(err).Str("target", target).Msg("Ignoring malformed message")
					continue
				}
				select {
				case out <- msg:
				default:
					pushLogger.Warn().Str("target", target).Str("type", msg.Type).Msg("Subscriber is not keeping up, dropping message")
				}
			}
		}
	}()

	return out, nil
}

func (m *RedisMessenger) Close() error {
	return m.client.Close()
}
