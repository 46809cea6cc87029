// Package ledger provides a Redis-backed dedup ledger for deployments that
// share processed-article state outside the SQL database.
package ledger

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLedger stores processed article identifiers in a Redis set.
type RedisLedger struct {
	client *redis.Client
	key    string
}

// NewRedisLedger wraps an existing client. key names the Redis set.
func NewRedisLedger(client *redis.Client, key string) *RedisLedger {
	if key == "" {
		key = "feedpress:processed"
	}
	return &RedisLedger{client: client, key: key}
}

// Connect parses a redis:// URL, falling back to treating it as host:port,
// and verifies the connection.
func Connect(ctx context.Context, redisURL, key string) (*RedisLedger, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisLedger(client, key), nil
}

// ProcessedGUIDs returns every identifier in the set.
func (l *RedisLedger) ProcessedGUIDs(ctx context.Context) (map[string]struct{}, error) {
	members, err := l.client.SMembers(ctx, l.key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading processed guids: %w", err)
	}
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	return set, nil
}

// AddProcessedGUID adds an identifier to the set.
func (l *RedisLedger) AddProcessedGUID(ctx context.Context, guid string) error {
	if err := l.client.SAdd(ctx, l.key, guid).Err(); err != nil {
		return fmt.Errorf("adding processed guid: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (l *RedisLedger) Close() error {
	return l.client.Close()
}
