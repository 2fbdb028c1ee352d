package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisActivityPrefix = "hotelier:activity:"
	redisChannelPrefix  = "hotelier:activity:events:"

	// Activity keys outlive the session timeout by a margin so a monitor
	// that polls right at the boundary still sees the value rather than
	// a missing key.
	redisActivityTTL = 25 * time.Hour
)

// RedisActivityStore is an ActivityStore backed by Redis. Touch writes the
// timestamp and publishes it on a per-key channel, so monitors on other
// nodes observe the activity without polling Redis between checks.
type RedisActivityStore struct {
	client *redis.Client
}

// NewRedisActivityStore creates a store over the given Redis client.
func NewRedisActivityStore(client *redis.Client) *RedisActivityStore {
	return &RedisActivityStore{client: client}
}

func (s *RedisActivityStore) Touch(ctx context.Context, key string, at time.Time) error {
	raw := formatActivity(at)
	if err := s.client.Set(ctx, redisActivityPrefix+key, raw, redisActivityTTL).Err(); err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}
	if err := s.client.Publish(ctx, redisChannelPrefix+key, raw).Err(); err != nil {
		return fmt.Errorf("publish activity: %w", err)
	}
	return nil
}

func (s *RedisActivityStore) LastActivity(ctx context.Context, key string) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, redisActivityPrefix+key).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read activity: %w", err)
	}
	at, ok := parseActivity(raw)
	return at, ok, nil
}

func (s *RedisActivityStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisActivityPrefix+key).Err(); err != nil {
		return fmt.Errorf("remove activity: %w", err)
	}
	return nil
}

func (s *RedisActivityStore) Subscribe(key string) (<-chan time.Time, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := s.client.Subscribe(ctx, redisChannelPrefix+key)
	ch := make(chan time.Time, 8)

	go func() {
		defer close(ch)
		for msg := range sub.Channel() {
			at, ok := parseActivity(msg.Payload)
			if !ok {
				continue
			}
			select {
			case ch <- at:
			default:
			}
		}
	}()

	stop := func() {
		_ = sub.Close()
		cancel()
	}
	return ch, stop
}
