package filter

import (
	"context"
	"slices"

	"github.com/rushteam/seedrank/core"
)

// ExcludeFilter 剔除指定文件名的候选，例如已经执行过或已经下发到队列中的输入。
type ExcludeFilter struct {
	// Filenames 是内存中的排除列表
	Filenames []string

	// Store 用于从有序集合中读取排除成员（可选）
	Store core.SortedSetStore

	// Key 是 Store 中的有序集合 key（可选）
	Key string
}

// NewExcludeFilter 创建一个排除过滤器。
func NewExcludeFilter(filenames []string, store core.SortedSetStore, key string) *ExcludeFilter {
	return &ExcludeFilter{
		Filenames: filenames,
		Store:     store,
		Key:       key,
	}
}

func (f *ExcludeFilter) Name() string {
	return "filter.exclude"
}

func (f *ExcludeFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RankContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil {
		return true, nil
	}

	// 从内存列表检查
	if slices.Contains(f.Filenames, c.Filename) {
		return true, nil
	}

	// 从 Store 检查
	if f.Store != nil && f.Key != "" {
		_, err := f.Store.ZScore(ctx, f.Key, c.Filename)
		if err == nil {
			return true, nil
		}
		if !core.IsStoreNotFound(err) {
			return false, err
		}
	}

	return false, nil
}
