package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述“保留条件”，表达式为 false 的候选被过滤。
//
// 可用变量见 dsl.CandidateEnv，例如：
//
//	score >= 0.2
//	features.len <= 4096 && !filename.startsWith("id:000000")
type ExprFilter struct {
	prg *dsl.Program
}

func NewExprFilter(expr string) (*ExprFilter, error) {
	env, err := dsl.CandidateEnv()
	if err != nil {
		return nil, fmt.Errorf("candidate env: %w", err)
	}
	prg, err := dsl.Compile(env, expr)
	if err != nil {
		return nil, fmt.Errorf("filter expr %q: %w", expr, err)
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	_ *core.RankContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil {
		return true, nil
	}
	keep, err := f.prg.Eval(dsl.CandidateInput(c))
	if err != nil {
		return false, err
	}
	return !keep, nil
}
