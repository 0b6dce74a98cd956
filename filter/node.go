package filter

import (
	"context"
	"log/slog"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/pipeline"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该候选就会被过滤掉。保留的候选维持原有顺序。
type FilterNode struct {
	Filters []Filter

	// Logger 可选，用于记录过滤器错误、被过滤的候选与过滤数量
	Logger *slog.Logger
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RankContext,
	cands []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(n.Filters) == 0 || len(cands) == 0 {
		return cands, nil
	}

	out := make([]*core.Candidate, 0, len(cands))
	filteredCount := 0

	for _, c := range cands {
		if c == nil {
			continue
		}

		shouldFilter := false
		filterReason := ""

		// 依次检查每个过滤器
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, c)
			if err != nil {
				// 过滤器错误时记录但不中断流程
				if n.Logger != nil {
					n.Logger.Warn("filter error",
						slog.String("filter", f.Name()),
						slog.String("filename", c.Filename),
						slog.Any("error", err),
					)
				}
				continue
			}
			if ok {
				shouldFilter = true
				filterReason = f.Name()
				break
			}
		}

		if shouldFilter {
			filteredCount++
			if n.Logger != nil {
				n.Logger.Debug("candidate filtered",
					slog.String("filter", filterReason),
					slog.String("filename", c.Filename),
				)
			}
			continue
		}

		out = append(out, c)
	}

	if n.Logger != nil && filteredCount > 0 {
		n.Logger.Info("candidates filtered", slog.Int("filtered", filteredCount), slog.Int("kept", len(out)))
	}
	return out, nil
}
