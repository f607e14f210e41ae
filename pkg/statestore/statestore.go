package statestore

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-widgets/pkg/widget"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "uistate:"

// RedisStore persists serialized UiState per session so a search page can
// be restored outside of the URL, for example across devices.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, key string, state widget.UiState) error {
	data, err := sonic.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, key string) (widget.UiState, error) {
	var ret widget.UiState
	data, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		return ret, err
	}
	err = sonic.Unmarshal([]byte(data), &ret)
	return ret, err
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
