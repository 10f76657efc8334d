package lesson

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// Ledger remembers which videos were already turned into lessons, so a
// rerun of a batch can skip them.
type Ledger interface {
	Seen(ctx context.Context, video string) (bool, error)
	Mark(ctx context.Context, video string) error
}

// setStore is the subset of *redis.Client used by RedisLedger.
type setStore interface {
	SIsMember(ctx context.Context, key string, member any) *redis.BoolCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
}

var _ setStore = (*redis.Client)(nil)

// RedisLedger keeps processed videos in a Redis set.
type RedisLedger struct {
	store setStore
	key   string
	close func() error
}

// ConnectRedisLedger connects to addr and checks the connection.
func ConnectRedisLedger(ctx context.Context, addr, key string) (*RedisLedger, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w: %w", addr, ErrLedger, err)
	}
	return &RedisLedger{store: client, key: key, close: client.Close}, nil
}

func newRedisLedger(store setStore, key string) *RedisLedger {
	return &RedisLedger{store: store, key: key, close: func() error { return nil }}
}

// member identifies a video by its absolute path.
func member(video string) string {
	if abs, err := filepath.Abs(video); err == nil {
		return abs
	}
	return video
}

// Seen reports whether video is in the set.
func (l *RedisLedger) Seen(ctx context.Context, video string) (bool, error) {
	ok, err := l.store.SIsMember(ctx, l.key, member(video)).Result()
	if err != nil {
		return false, fmt.Errorf("check ledger: %w: %w", ErrLedger, err)
	}
	return ok, nil
}

// Mark adds video to the set.
func (l *RedisLedger) Mark(ctx context.Context, video string) error {
	if err := l.store.SAdd(ctx, l.key, member(video)).Err(); err != nil {
		return fmt.Errorf("update ledger: %w: %w", ErrLedger, err)
	}
	return nil
}

// Close releases the connection.
func (l *RedisLedger) Close() error {
	return l.close()
}
