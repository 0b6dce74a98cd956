package rerank

import (
	"context"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/pipeline"
)

// Diversity 按某一列的取值做多样性截断：每个取值最多保留 PerKey 个候选（保留排在前面的）。
// 例如按 exit_code 打散，避免队列前部全是同一种崩溃。
// 取值来源优先级：
// - label[Key].Value
// - row[Key]
// 两者都没有的候选不受限制。
type Diversity struct {
	Key    string
	PerKey int // 默认 1
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RankContext,
	cands []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(cands) == 0 || n.Key == "" {
		return cands, nil
	}
	limit := n.PerKey
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 32)
	out := make([]*core.Candidate, 0, len(cands))

	for _, c := range cands {
		if c == nil {
			continue
		}

		value := ""
		if lbl, ok := c.Labels[n.Key]; ok {
			value = lbl.Value
		}
		if value == "" {
			value = c.Row[n.Key]
		}
		if value == "" {
			out = append(out, c)
			continue
		}
		if seen[value] >= limit {
			continue
		}
		seen[value]++
		out = append(out, c)
	}
	return out, nil
}
