package livestore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "lt:"
	changeChannel = "lt:changes"
	opTimeout     = 5 * time.Second
)

// RedisStore is the Redis-backed live tree. Each path is stored as a JSON
// string under a prefixed key; change notifications fan out to subscribers
// over a single pub/sub channel carrying the changed path.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	entries := make(map[string]json.RawMessage)

	val, err := s.client.Get(ctx, keyPrefix+path).Result()
	if err == nil {
		entries[path] = json.RawMessage(val)
	} else if err != redis.Nil {
		return nil, err
	}

	iter := s.client.Scan(ctx, 0, keyPrefix+path+"/*", 0).Iterator()
	var childKeys []string
	for iter.Next(ctx) {
		childKeys = append(childKeys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	if len(childKeys) > 0 {
		vals, err := s.client.MGet(ctx, childKeys...).Result()
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			str, ok := v.(string)
			if !ok {
				continue // expired between SCAN and MGET
			}
			entries[childKeys[i][len(keyPrefix):]] = json.RawMessage(str)
		}
	}

	return buildValue(path, entries)
}

func (s *RedisStore) Write(ctx context.Context, path string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, keyPrefix+path, raw, 0).Err(); err != nil {
		return err
	}
	return s.publish(ctx, path)
}

func (s *RedisStore) Patch(ctx context.Context, path string, fields map[string]interface{}) error {
	merged := make(map[string]interface{})

	val, err := s.client.Get(ctx, keyPrefix+path).Result()
	if err == nil {
		var current map[string]json.RawMessage
		if err := json.Unmarshal([]byte(val), &current); err == nil {
			for k, v := range current {
				merged[k] = v
			}
		}
	} else if err != redis.Nil {
		return err
	}

	for k, v := range fields {
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, keyPrefix+path, raw, 0).Err(); err != nil {
		return err
	}
	return s.publish(ctx, path)
}

func (s *RedisStore) Delete(ctx context.Context, path string) error {
	keys := []string{keyPrefix + path}

	iter := s.client.Scan(ctx, 0, keyPrefix+path+"/*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	return s.publish(ctx, path)
}

func (s *RedisStore) Push(path string) string {
	return NewPushKey()
}

func (s *RedisStore) Subscribe(ctx context.Context, path string, fn ChangeFunc) (UnsubscribeFunc, error) {
	pubsub := s.client.Subscribe(ctx, changeChannel)

	// Confirm the subscription is live before the initial snapshot so no
	// change between snapshot and subscription start is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		s.deliver(ctx, path, fn)
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if pathAffects(path, msg.Payload) {
					s.deliver(ctx, path, fn)
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			pubsub.Close()
		})
	}
	return unsubscribe, nil
}

func (s *RedisStore) deliver(ctx context.Context, path string, fn ChangeFunc) {
	readCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	value, err := s.Read(readCtx, path)
	if err != nil {
		value = nil
	}
	fn(value)
}

func (s *RedisStore) publish(ctx context.Context, path string) error {
	return s.client.Publish(ctx, changeChannel, path).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
