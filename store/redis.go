package store

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/seedrank/core"
)

// RedisStore 是 Redis 实现的有序集合。生产环境常用，fuzzer 侧可直接 ZPOPMAX 取用。
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, opts *redis.Options) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "redis ping "+opts.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromURL 支持 redis://、rediss:// 或裸 host:port
func NewRedisStoreFromURL(ctx context.Context, addr string) (*RedisStore, error) {
	if !strings.Contains(addr, "://") {
		return NewRedisStore(ctx, &redis.Options{Addr: addr})
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "parse redis url", err)
	}
	return NewRedisStore(ctx, opts)
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return r.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

func (r *RedisStore) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.client.ZRevRange(ctx, key, start, stop).Result()
}

func (r *RedisStore) ZScore(ctx context.Context, key string, member string) (float64, error) {
	score, err := r.client.ZScore(ctx, key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, core.ErrStoreNotFound
	}
	return score, err
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// 确保 RedisStore 实现了 core.SortedSetStore 接口
var _ core.SortedSetStore = (*RedisStore)(nil)
