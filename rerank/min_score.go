package rerank

import (
	"context"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/pipeline"
)

// MinScoreNode 丢弃分数低于 Threshold 的候选
type MinScoreNode struct {
	Threshold float64
}

func (n *MinScoreNode) Name() string {
	return "rerank.min_score"
}

func (n *MinScoreNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *MinScoreNode) Process(
	_ context.Context,
	_ *core.RankContext,
	cands []*core.Candidate,
) ([]*core.Candidate, error) {
	out := make([]*core.Candidate, 0, len(cands))
	for _, c := range cands {
		if c != nil && c.Score >= n.Threshold {
			out = append(out, c)
		}
	}
	return out, nil
}
