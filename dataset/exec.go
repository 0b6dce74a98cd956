package dataset

import (
	"fmt"
	"math"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/table"
)

// overlayColumns 是会覆盖到数据集上的执行元数据列（按输出顺序）。
var overlayColumns = []string{core.ColCrashed, core.ColBBHits, core.ColPathDepth}

// policyColumns 是标签规则可读取的执行元数据列。
var policyColumns = []string{core.ColCrashed, core.ColBBHits, core.ColPathDepth, core.ColExitCode, core.ColRuntimeMS}

// ExecutionTable 是外部 fuzzer/执行器产出的执行元数据，按 filename 索引。
//
// 只解析 policyColumns 中出现的列，其余列忽略。同名 filename 出现多次属于无效输入，不做合并。
// 缺失值（空单元格）在合并时按 0 处理。
type ExecutionTable struct {
	columns map[string]bool
	records map[string]map[string]int64
}

// LoadExecutionTable 从 CSV 文件加载执行元数据
func LoadExecutionTable(path string) (*ExecutionTable, error) {
	t, err := table.ReadCSV(path)
	if err != nil {
		return nil, fmt.Errorf("load execution table: %w", err)
	}
	return NewExecutionTable(t)
}

// NewExecutionTable 从已解析的表构建执行元数据。
// 缺少 filename 列或数值列无法解析为非负整数时返回致命错误，不做部分合并。
func NewExecutionTable(t *table.Table) (*ExecutionTable, error) {
	if !t.Has(core.ColFilename) {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeMissingColumn,
			"execution table must contain a filename column")
	}

	e := &ExecutionTable{
		columns: make(map[string]bool),
		records: make(map[string]map[string]int64, t.Len()),
	}
	for _, col := range policyColumns {
		if t.Has(col) {
			e.columns[col] = true
		}
	}

	firstRow := make(map[string]int, t.Len())
	for i := 0; i < t.Len(); i++ {
		name, _ := t.Get(i, core.ColFilename)
		if prev, ok := firstRow[name]; ok {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("execution table: duplicate filename %q in rows %d and %d", name, prev+1, i+1))
		}
		firstRow[name] = i
		rec := make(map[string]int64, len(e.columns))
		for col := range e.columns {
			cell, _ := t.Get(i, col)
			v, ok, err := parseExecValue(col, cell)
			if err != nil {
				return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
					fmt.Sprintf("execution table row %d column %q", i+1, col), err)
			}
			if ok {
				rec[col] = v
			}
		}
		e.records[name] = rec
	}
	return e, nil
}

func parseExecValue(col, cell string) (int64, bool, error) {
	switch col {
	case core.ColRuntimeMS:
		// 运行时间允许小数毫秒，截断为整数
		f, ok, err := table.ParseFloat(cell)
		if err != nil || !ok {
			return 0, ok, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false, fmt.Errorf("%q is not a finite number", cell)
		}
		return int64(f), true, nil
	case core.ColExitCode:
		return table.ParseInt(cell)
	}
	v, ok, err := table.ParseInt(cell)
	if err != nil || !ok {
		return 0, ok, err
	}
	if v < 0 {
		return 0, false, fmt.Errorf("%q must be non-negative", cell)
	}
	return v, true, nil
}

// Has 判断执行元数据是否提供了某列
func (e *ExecutionTable) Has(col string) bool {
	return e != nil && e.columns[col]
}

// Lookup 返回 filename 对应的执行记录
func (e *ExecutionTable) Lookup(filename string) (Record, bool) {
	if e == nil {
		return Record{}, false
	}
	rec, ok := e.records[filename]
	if !ok {
		return Record{}, false
	}
	return Record{
		Crashed:   rec[core.ColCrashed],
		BBHits:    rec[core.ColBBHits],
		PathDepth: rec[core.ColPathDepth],
		ExitCode:  rec[core.ColExitCode],
		RuntimeMS: rec[core.ColRuntimeMS],
	}, true
}

// Len 返回记录数
func (e *ExecutionTable) Len() int {
	if e == nil {
		return 0
	}
	return len(e.records)
}

// Record 是合并到单个候选上的执行结果；缺失字段为 0。
type Record struct {
	Crashed   int64
	BBHits    int64
	PathDepth int64
	ExitCode  int64
	RuntimeMS int64
}

// Vars 以列名为 key 返回字段，供标签规则求值
func (r Record) Vars() map[string]any {
	return map[string]any{
		core.ColCrashed:   r.Crashed,
		core.ColBBHits:    r.BBHits,
		core.ColPathDepth: r.PathDepth,
		core.ColExitCode:  r.ExitCode,
		core.ColRuntimeMS: r.RuntimeMS,
	}
}
