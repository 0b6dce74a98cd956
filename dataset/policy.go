package dataset

import (
	"fmt"

	"github.com/rushteam/seedrank/pkg/dsl"
)

// LabelPolicy 把一条执行记录映射为二分类标签（0/1）。
//
// 没有执行记录的候选不会经过 LabelPolicy，其标签恒为 0。
type LabelPolicy interface {
	Name() string
	Label(rec Record) (int, error)
}

// DefaultLabelPolicy：crashed == 1 或 bb_hits > 0 时为 1。
type DefaultLabelPolicy struct{}

func (DefaultLabelPolicy) Name() string { return "default" }

func (DefaultLabelPolicy) Label(rec Record) (int, error) {
	if rec.Crashed == 1 || rec.BBHits > 0 {
		return 1, nil
	}
	return 0, nil
}

// DefaultLabelExpr 与 DefaultLabelPolicy 等价的 CEL 表达式
const DefaultLabelExpr = "crashed == 1 || bb_hits > 0"

// ExprLabelPolicy 使用 CEL 表达式定义标签规则，例如：
//
//	crashed == 1 || (bb_hits > 0 && path_depth >= 3)
//	crashed == 1 || exit_code != 0
type ExprLabelPolicy struct {
	prg *dsl.Program
}

// NewExprLabelPolicy 编译标签表达式；编译失败属于配置错误。
func NewExprLabelPolicy(expr string) (*ExprLabelPolicy, error) {
	env, err := dsl.LabelEnv()
	if err != nil {
		return nil, fmt.Errorf("label env: %w", err)
	}
	prg, err := dsl.Compile(env, expr)
	if err != nil {
		return nil, fmt.Errorf("label expr %q: %w", expr, err)
	}
	return &ExprLabelPolicy{prg: prg}, nil
}

func (p *ExprLabelPolicy) Name() string { return "expr:" + p.prg.Expr }

func (p *ExprLabelPolicy) Label(rec Record) (int, error) {
	ok, err := p.prg.Eval(rec.Vars())
	if err != nil {
		return 0, err
	}
	if ok {
		return 1, nil
	}
	return 0, nil
}

// PolicyFromExpr 空表达式或默认表达式返回 DefaultLabelPolicy，否则编译为 ExprLabelPolicy。
func PolicyFromExpr(expr string) (LabelPolicy, error) {
	if expr == "" || expr == DefaultLabelExpr {
		return DefaultLabelPolicy{}, nil
	}
	return NewExprLabelPolicy(expr)
}
