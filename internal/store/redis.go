package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "loan-data:"

	// redisUpdateRetries bounds the optimistic transaction retries of Update.
	redisUpdateRetries = 10
)

// redisClient is the subset of *redis.Client used by Redis.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error
	Close() error
}

// redisTx is the subset of *redis.Tx used inside a watched update.
type redisTx interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

// Redis stores loan data as JSON values, optionally expiring after ttl.
type Redis struct {
	client redisClient
	ttl    time.Duration
}

// NewRedis connects to the redis server at addr. A zero ttl keeps values
// until they are overwritten.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return newRedisWithClient(client, ttl), nil
}

func newRedisWithClient(client redisClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Get returns the loan data stored under id.
func (r *Redis) Get(ctx context.Context, id string) (LoanData, error) {
	return decodeRedisValue(id, r.client.Get(ctx, redisKeyPrefix+id))
}

func decodeRedisValue(id string, cmd *redis.StringCmd) (LoanData, error) {
	val, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return LoanData{}, ErrNotFound
	}
	if err != nil {
		return LoanData{}, fmt.Errorf("failed to read loan data %s: %w", id, err)
	}

	var data LoanData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return LoanData{}, fmt.Errorf("failed to decode loan data %s: %w", id, err)
	}
	return data, nil
}

// Save stores data under id and refreshes its expiry.
func (r *Redis) Save(ctx context.Context, id string, data LoanData) error {
	data.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode loan data %s: %w", id, err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+id, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save loan data %s: %w", id, err)
	}
	return nil
}

// Update merges partial into the data stored under id. The key is watched
// and the write is retried when another client changes it first.
func (r *Redis) Update(ctx context.Context, id string, partial LoanData) (LoanData, error) {
	key := redisKeyPrefix + id
	var merged LoanData
	for i := 0; i < redisUpdateRetries; i++ {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			var err error
			merged, err = r.mergeTx(ctx, tx, id, partial)
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return LoanData{}, err
		}
		return merged, nil
	}
	return LoanData{}, fmt.Errorf("failed to update loan data %s: too many concurrent writers", id)
}

// mergeTx reads, merges and writes back the value under id within tx.
func (r *Redis) mergeTx(ctx context.Context, tx redisTx, id string, partial LoanData) (LoanData, error) {
	key := redisKeyPrefix + id
	existing, err := decodeRedisValue(id, tx.Get(ctx, key))
	if err != nil {
		return LoanData{}, err
	}

	merged := existing.Merge(partial)
	merged.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(merged)
	if err != nil {
		return LoanData{}, fmt.Errorf("failed to encode loan data %s: %w", id, err)
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, raw, r.ttl)
		return nil
	})
	if err != nil {
		return LoanData{}, fmt.Errorf("failed to save loan data %s: %w", id, err)
	}
	return merged, nil
}

// Close closes the redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
