package rank

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/table"
)

// Publisher 把排序结果写入有序集合，fuzzer 侧按分数从高到低取用。
type Publisher struct {
	Store core.SortedSetStore
	Key   string

	// Top 只下发前 Top 行，<= 0 表示全部
	Top int

	// Replace 为 true 时先清空 key，队列中只保留本次结果
	Replace bool

	Logger *slog.Logger
}

// Publish 下发排序表，返回写入的成员数。排序表需要 filename 与 score 两列。
func (p *Publisher) Publish(ctx context.Context, ranked *table.Table) (int, error) {
	if p.Key == "" {
		return 0, core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "publish: empty key")
	}
	for _, col := range []string{core.ColFilename, core.ColScore} {
		if !ranked.Has(col) {
			return 0, core.NewDomainError(core.ModuleRank, core.ErrorCodeMissingColumn,
				fmt.Sprintf("ranked table must contain a %s column", col))
		}
	}

	n := ranked.Len()
	if p.Top > 0 && p.Top < n {
		n = p.Top
	}

	if p.Replace {
		if err := p.Store.Delete(ctx, p.Key); err != nil && !core.IsStoreNotFound(err) {
			return 0, err
		}
	}

	for i := 0; i < n; i++ {
		name, _ := ranked.Get(i, core.ColFilename)
		cell, _ := ranked.Get(i, core.ColScore)
		if name == "" {
			return i, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
				fmt.Sprintf("row %d: empty filename", i+1))
		}
		score, ok, err := table.ParseFloat(cell)
		if err != nil || !ok {
			return i, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
				fmt.Sprintf("row %d: invalid score %q", i+1, cell))
		}
		if err := p.Store.ZAdd(ctx, p.Key, score, name); err != nil {
			return i, err
		}
	}

	if p.Logger != nil {
		p.Logger.Info("ranked candidates published",
			slog.String("store", p.Store.Name()),
			slog.String("key", p.Key),
			slog.Int("members", n),
		)
	}
	return n, nil
}
