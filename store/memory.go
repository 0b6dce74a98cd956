package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/seedrank/core"
)

// MemoryStore 是内存实现的有序集合，用于测试/本地运行，进程退出后数据丢失。
// 同分成员按首次写入顺序返回，结果可复现。
type MemoryStore struct {
	mu    sync.RWMutex
	zsets map[string]map[string]zmember // zset key -> member -> score
	seq   uint64
}

type zmember struct {
	score float64
	seq   uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		zsets: make(map[string]map[string]zmember),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.zsets[key] == nil {
		m.zsets[key] = make(map[string]zmember)
	}
	if old, ok := m.zsets[key][member]; ok {
		m.zsets[key][member] = zmember{score: score, seq: old.seq}
		return nil
	}
	m.seq++
	m.zsets[key][member] = zmember{score: score, seq: m.seq}
	return nil
}

func (m *MemoryStore) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zset, ok := m.zsets[key]
	if !ok || len(zset) == 0 {
		return nil, nil
	}

	// 转换为 slice 并按 score 降序排序
	type pair struct {
		member string
		zmember
	}
	pairs := make([]pair, 0, len(zset))
	for name, z := range zset {
		pairs = append(pairs, pair{member: name, zmember: z})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return pairs[i].seq < pairs[j].seq
	})

	// 处理范围
	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= int64(len(pairs)) {
		stop = int64(len(pairs)) - 1
	}
	if start > stop {
		return nil, nil
	}

	result := make([]string, 0, stop-start+1)
	for i := start; i <= stop; i++ {
		result = append(result, pairs[i].member)
	}
	return result, nil
}

func (m *MemoryStore) ZScore(ctx context.Context, key string, member string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zset, ok := m.zsets[key]
	if !ok {
		return 0, core.ErrStoreNotFound
	}
	z, ok := zset[member]
	if !ok {
		return 0, core.ErrStoreNotFound
	}
	return z.score, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.zsets, key)
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zsets = make(map[string]map[string]zmember)
	return nil
}

var _ core.SortedSetStore = (*MemoryStore)(nil)
