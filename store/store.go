// Package store 提供 core.SortedSetStore 的实现，接口定义在 core 包。
//
// 示例：
//
//	var s core.SortedSetStore = store.NewMemoryStore()
//	s, err := store.Open(ctx, "redis://localhost:6379/0")
package store

import (
	"context"
	"strings"

	"github.com/rushteam/seedrank/core"
)

// Open 按地址创建存储："memory" 返回内存实现，其余按 Redis 地址处理
// （redis://[:password@]host:port/db 或 host:port）。
func Open(ctx context.Context, addr string) (core.SortedSetStore, error) {
	if addr == "" || strings.EqualFold(addr, "memory") {
		return NewMemoryStore(), nil
	}
	return NewRedisStoreFromURL(ctx, addr)
}
