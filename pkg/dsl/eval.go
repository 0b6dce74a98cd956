package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/seedrank/core"
)

var (
	// labelEnv 是标签规则的 CEL 环境，线程安全，可复用
	labelEnv     *cel.Env
	labelEnvErr  error
	labelEnvOnce sync.Once

	// candidateEnv 是打分阶段过滤规则的 CEL 环境
	candidateEnv     *cel.Env
	candidateEnvErr  error
	candidateEnvOnce sync.Once
)

// LabelEnv 返回标签规则使用的 CEL 环境。
//
// 变量（均为 int，缺失时为 0）：
//   - crashed / bb_hits / path_depth / exit_code / runtime_ms
func LabelEnv() (*cel.Env, error) {
	labelEnvOnce.Do(func() {
		labelEnv, labelEnvErr = cel.NewEnv(
			cel.CrossTypeNumericComparisons(true),
			cel.Variable(core.ColCrashed, cel.IntType),
			cel.Variable(core.ColBBHits, cel.IntType),
			cel.Variable(core.ColPathDepth, cel.IntType),
			cel.Variable(core.ColExitCode, cel.IntType),
			cel.Variable(core.ColRuntimeMS, cel.IntType),
		)
	})
	return labelEnv, labelEnvErr
}

// CandidateEnv 返回候选过滤规则使用的 CEL 环境。
//
// 变量：
//   - filename：文件名
//   - score：模型分数
//   - features：补全后的数值特征，例如 features.len > 1024
//   - row：原表单元格（字符串）
//   - labels：解释标签的 Value，例如 labels.rank_model == "forest"
func CandidateEnv() (*cel.Env, error) {
	candidateEnvOnce.Do(func() {
		candidateEnv, candidateEnvErr = cel.NewEnv(
			cel.CrossTypeNumericComparisons(true),
			cel.Variable("filename", cel.StringType),
			cel.Variable("score", cel.DoubleType),
			cel.Variable("features", cel.MapType(cel.StringType, cel.DoubleType)),
			cel.Variable("row", cel.MapType(cel.StringType, cel.StringType)),
			cel.Variable("labels", cel.MapType(cel.StringType, cel.StringType)),
		)
	})
	return candidateEnv, candidateEnvErr
}

// Program 是编译后的布尔表达式，编译一次，多次求值。
//
// 表达式语法（CEL 标准语法）：
//   - 标签规则：crashed == 1 || bb_hits > 0
//   - 标签规则：crashed == 1 || (bb_hits > 0 && path_depth >= 3)
//   - 过滤规则：score >= 0.2 && features.len <= 4096
//   - 过滤规则：filename.startsWith("id:")
type Program struct {
	Expr string
	prg  cel.Program
}

// Compile 在给定环境中编译表达式，要求返回 bool。
func Compile(env *cel.Env, expr string) (*Program, error) {
	if env == nil {
		return nil, fmt.Errorf("compile error: nil env")
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return boolean, got %v", t)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{Expr: expr, prg: prg}, nil
}

// Eval 执行表达式
func (p *Program) Eval(input map[string]any) (bool, error) {
	out, _, err := p.prg.Eval(input)
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// CandidateInput 构建候选过滤规则的输入
func CandidateInput(c *core.Candidate) map[string]any {
	labels := make(map[string]string, len(c.Labels))
	for k, v := range c.Labels {
		labels[k] = v.Value
	}
	return map[string]any{
		"filename": c.Filename,
		"score":    c.Score,
		"features": c.Features,
		"row":      c.Row,
		"labels":   labels,
	}
}
