package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the set holding persisted links
const DefaultRedisKey = "listcrawl:links"

// RedisIndex keeps the key set in a Redis set so several crawlers writing to
// the same output share one view of what has been persisted. Claims go through
// SADD, whose reply tells exactly one caller that a link is new.
type RedisIndex struct {
	client *redis.Client
	key    string
}

// NewRedisIndex connects to addr and verifies the connection.
func NewRedisIndex(ctx context.Context, addr, key string) (*RedisIndex, error) {
	if key == "" {
		key = DefaultRedisKey
	}
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisIndex{client: client, key: key}, nil
}

// Contains checks set membership with SISMEMBER.
func (r *RedisIndex) Contains(ctx context.Context, key string) (bool, error) {
	return r.client.SIsMember(ctx, r.key, key).Result()
}

// Add inserts keys with a single SADD.
func (r *RedisIndex) Add(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.SAdd(ctx, r.key, toMembers(keys)...).Err()
}

// Claim pipelines one SADD per key and keeps the keys Redis reports as added.
func (r *RedisIndex) Claim(ctx context.Context, keys ...string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	cmds := make([]*redis.IntCmd, len(keys))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = pipe.SAdd(ctx, r.key, k)
		}
		return nil
	})
	if err != nil {
		// a partially applied pipeline may have claimed some keys
		var added []string
		for i, cmd := range cmds {
			if cmd != nil && cmd.Err() == nil && cmd.Val() == 1 {
				added = append(added, keys[i])
			}
		}
		if len(added) > 0 {
			r.Release(context.WithoutCancel(ctx), added...)
		}
		return nil, err
	}

	var claimed []string
	for i, cmd := range cmds {
		if cmd.Val() == 1 {
			claimed = append(claimed, keys[i])
		}
	}
	return claimed, nil
}

// Release removes keys with SREM.
func (r *RedisIndex) Release(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.SRem(ctx, r.key, toMembers(keys)...).Err()
}

// Len returns SCARD, or -1 when Redis is unreachable.
func (r *RedisIndex) Len(ctx context.Context) int {
	n, err := r.client.SCard(ctx, r.key).Result()
	if err != nil {
		return -1
	}
	return int(n)
}

// Close closes the client.
func (r *RedisIndex) Close() error {
	return r.client.Close()
}

func toMembers(keys []string) []interface{} {
	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	return members
}
