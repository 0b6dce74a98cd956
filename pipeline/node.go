package pipeline

import (
	"context"

	"github.com/rushteam/seedrank/core"
)

// Kind 用于标记 Node 类型，方便观测/编排（例如按阶段打点）。
type Kind string

const (
	KindFilter Kind = "filter" // 过滤阶段：剔除不符合约束的候选
	KindRank   Kind = "rank"   // 打分阶段：对候选打分并排序
	KindReRank Kind = "rerank" // 重排阶段：截断、阈值等
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 candidates -> 输出 candidates”的形态。
//
// 约定：Node 不得打乱同分候选的相对顺序。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RankContext,
		cands []*core.Candidate,
	) ([]*core.Candidate, error)
}
