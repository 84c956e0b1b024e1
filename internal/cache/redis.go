package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss key does not exist
var ErrMiss = errors.New("cache miss")

// RedisClient wraps the Redis client used for quiz progress records
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects and pings Redis
func NewRedisClient(ctx context.Context, addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisClient{client: client}, nil
}

// GetJSON decodes the value at key into dst. Returns ErrMiss when absent
func (r *RedisClient) GetJSON(ctx context.Context, key string, dst interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// GetRaw returns the raw bytes at key. Returns ErrMiss when absent
func (r *RedisClient) GetRaw(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

// SetJSON encodes value and stores it with expiration (0 = no expiry)
func (r *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

// Del removes keys
func (r *RedisClient) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// ZAddMax records member with score only if it is higher than the stored one
func (r *RedisClient) ZAddMax(ctx context.Context, key, member string, score float64) error {
	return r.client.ZAddGT(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

// ZTop returns the top n members by score, highest first
func (r *RedisClient) ZTop(ctx context.Context, key string, n int64) ([]redis.Z, error) {
	return r.client.ZRevRangeWithScores(ctx, key, 0, n-1).Result()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Health checks if Redis is healthy
func (r *RedisClient) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
