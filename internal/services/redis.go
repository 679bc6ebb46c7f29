package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// BookingUpdatesChannel carries every committed booking event as JSON.
const BookingUpdatesChannel = "booking:updates"

// NewRedisClient connects to redisURL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisCache holds the per-user dashboard views, the revoked token list
// and the booking update channel.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func viewKey(userID, view string) string {
	return fmt.Sprintf("dashboard:%s:%s", userID, view)
}

// indexKey names the set of view keys cached for a user, so invalidation
// does not need to scan the keyspace.
func indexKey(userID string) string {
	return fmt.Sprintf("dashboard:%s:index", userID)
}

func revokedKey(jti string) string {
	return "auth:revoked:" + jti
}

func (r *RedisCache) Get(ctx context.Context, userID, view string, dst interface{}) (bool, error) {
	data, err := r.client.Get(ctx, viewKey(userID, view)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s view: %w", view, err)
	}
	return true, nil
}

func (r *RedisCache) Set(ctx context.Context, userID, view string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	key, index := viewKey(userID, view), indexKey(userID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, r.ttl)
		pipe.SAdd(ctx, index, key)
		pipe.Expire(ctx, index, r.ttl)
		return nil
	})
	return err
}

// Invalidate drops every cached view of the given users.
func (r *RedisCache) Invalidate(ctx context.Context, userIDs ...string) error {
	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		index := indexKey(userID)
		keys, err := r.client.SMembers(ctx, index).Result()
		if err != nil {
			return err
		}
		if err := r.client.Del(ctx, append(keys, index)...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Revoke denies a token id until it would have expired anyway.
func (r *RedisCache) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

func (r *RedisCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PublishBookingUpdate publishes a booking event to BookingUpdatesChannel.
func (r *RedisCache) PublishBookingUpdate(ctx context.Context, event models.BookingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, BookingUpdatesChannel, data).Err()
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
