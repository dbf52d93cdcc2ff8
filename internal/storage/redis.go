package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"eino_chat_bridge/pkg"
)

// DefaultOrderTTL keeps ledger entries for 30 days
const DefaultOrderTTL = 30 * 24 * time.Hour

// RedisOrderLedger stores each order under order:<id> and indexes them per
// customer in the list orders:<customer>
type RedisOrderLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOrderLedger connects to redisURL and checks the connection
func NewRedisOrderLedger(ctx context.Context, redisURL string, ttl time.Duration) (*RedisOrderLedger, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultOrderTTL
	}
	return &RedisOrderLedger{client: client, ttl: ttl}, nil
}

func orderKey(id string) string {
	return fmt.Sprintf("order:%s", id)
}

func customerOrdersKey(customerID string) string {
	return fmt.Sprintf("orders:%s", customerID)
}

// Record stores the entry and appends its ID to the customer index
func (r *RedisOrderLedger) Record(ctx context.Context, entry pkg.OrderEntry) error {
	data, err := sonic.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal order entry: %w", err)
	}

	indexKey := customerOrdersKey(entry.CustomerID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, orderKey(entry.ID), data, r.ttl)
		pipe.RPush(ctx, indexKey, entry.ID)
		pipe.Expire(ctx, indexKey, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record order: %w", err)
	}
	return nil
}

// List returns the customer's orders in recording order. Entries that have
// expired are skipped.
func (r *RedisOrderLedger) List(ctx context.Context, customerID string) ([]pkg.OrderEntry, error) {
	ids, err := r.client.LRange(ctx, customerOrdersKey(customerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(ids) == 0 {
		return []pkg.OrderEntry{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = orderKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	entries := make([]pkg.OrderEntry, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var entry pkg.OrderEntry
		if err := sonic.UnmarshalString(raw, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Delete removes one order and its index reference
func (r *RedisOrderLedger) Delete(ctx context.Context, customerID, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, orderKey(id))
		pipe.LRem(ctx, customerOrdersKey(customerID), 0, id)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisOrderLedger) Close() error {
	return r.client.Close()
}
