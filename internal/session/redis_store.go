package session

import (
	"context"
	"time"

	"github.com/redis/rueidis"
)

type RedisStore struct {
	client rueidis.Client
	prefix string
}

func NewRedisStore(client rueidis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisStore) key(token string) string {
	return r.prefix + ":" + token
}

func (r *RedisStore) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	cmd := r.client.B().Set().Key(r.key(token)).Value(userID).Ex(ttl).Build()
	return r.client.Do(ctx, cmd).Error()
}

func (r *RedisStore) Get(ctx context.Context, token string) (string, error) {
	cmd := r.client.B().Get().Key(r.key(token)).Build()
	result := r.client.Do(ctx, cmd)

	userID, err := result.ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", ErrSessionNotFound
		}
		return "", err
	}

	return userID, nil
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	cmd := r.client.B().Del().Key(r.key(token)).Build()
	return r.client.Do(ctx, cmd).Error()
}
