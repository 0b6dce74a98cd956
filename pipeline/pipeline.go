package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rushteam/seedrank/core"
)

// Pipeline 把打分后的处理拆成可组合的 Node 链，按顺序执行。
type Pipeline struct {
	Nodes []Node

	// Logger 为空时不输出逐节点日志
	Logger *slog.Logger
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RankContext,
	cands []*core.Candidate,
) ([]*core.Candidate, error) {
	if p == nil {
		return cands, nil
	}
	cur := cands
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in := len(cur)
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		cur = next
		if p.Logger != nil {
			p.Logger.Debug("node done",
				slog.String("node", node.Name()),
				slog.String("kind", string(node.Kind())),
				slog.Int("in", in),
				slog.Int("out", len(cur)),
			)
		}
	}
	return cur, nil
}

// Prepend 返回在最前面插入 nodes 的新 Pipeline，原 Pipeline 不变
func (p *Pipeline) Prepend(nodes ...Node) *Pipeline {
	out := &Pipeline{Nodes: append([]Node(nil), nodes...)}
	if p != nil {
		out.Nodes = append(out.Nodes, p.Nodes...)
		out.Logger = p.Logger
	}
	return out
}
