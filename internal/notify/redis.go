// Package notify publishes refresh announcements over Redis so dashboards
// consuming the tables know to re-pull. Entirely optional.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/basinworks/wellpipe/internal/service"
)

const (
	// RefreshChannel carries refresh events via PubSub.
	RefreshChannel = "wellpipe:refresh"
	// RefreshStream keeps a capped history of refresh events.
	RefreshStream = "wellpipe:refresh:stream"

	defaultRedisAddr = "localhost:6379"
	streamMaxLen     = 1000
)

// RedisNotifier publishes refresh events to Redis.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a notifier. An empty addr falls back to
// WELLPIPE_REDIS_ADDR, then localhost.
func NewRedisNotifier(addr string) *RedisNotifier {
	if addr == "" {
		addr = os.Getenv("WELLPIPE_REDIS_ADDR")
	}
	if addr == "" {
		addr = defaultRedisAddr
	}
	return &RedisNotifier{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Close closes the Redis connection.
func (r *RedisNotifier) Close() error {
	return r.client.Close()
}

// PublishRefresh announces a completed refresh on the PubSub channel and
// appends it to the capped stream.
func (r *RedisNotifier) PublishRefresh(ctx context.Context, event service.RefreshEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal refresh event: %w", err)
	}

	if err := r.client.Publish(ctx, RefreshChannel, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: RefreshStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append to refresh stream: %w", err)
	}
	return nil
}
