// Package table 提供数据集、候选特征表、排序结果表所用的 CSV 表格读写。
//
// 约定：
//   - 首行为表头，列名唯一
//   - 空单元格视为缺失值（null）
//   - 写出采用“临时文件 + rename”原子替换，失败时不留下半成品
package table

import (
	"fmt"
	"strconv"

	"github.com/rushteam/seedrank/core"
)

// Table 是按行存储的字符串表。Rows 中每一行的长度与 Columns 一致。
type Table struct {
	Columns []string
	Rows    [][]string
}

// New 创建只有表头的空表
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len 返回行数
func (t *Table) Len() int { return len(t.Rows) }

// Index 返回列下标，不存在时返回 -1
func (t *Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Has 判断列是否存在
func (t *Table) Has(col string) bool { return t.Index(col) >= 0 }

// Get 读取第 row 行 col 列；列不存在时返回 ("", false)
func (t *Table) Get(row int, col string) (string, bool) {
	i := t.Index(col)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return "", false
	}
	return t.Rows[row][i], true
}

// Set 写入第 row 行 col 列；列不存在时返回错误
func (t *Table) Set(row int, col, value string) error {
	i := t.Index(col)
	if i < 0 {
		return core.NewDomainError(core.ModuleTable, core.ErrorCodeMissingColumn, fmt.Sprintf("table: no column %q", col))
	}
	t.Rows[row][i] = value
	return nil
}

// Append 追加一行，长度必须与表头一致
func (t *Table) Append(row []string) error {
	if len(row) != len(t.Columns) {
		return core.NewDomainError(core.ModuleTable, core.ErrorCodeInvalidInput,
			fmt.Sprintf("table: row has %d fields, want %d", len(row), len(t.Columns)))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// AddColumn 在末尾追加一列，所有行填充 fill；列已存在时不做任何事
func (t *Table) AddColumn(col, fill string) {
	if t.Has(col) {
		return
	}
	t.Columns = append(t.Columns, col)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], fill)
	}
}

// DropColumns 返回去掉指定列后的新表；不存在的列被忽略
func (t *Table) DropColumns(cols ...string) *Table {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	keep := make([]int, 0, len(t.Columns))
	out := &Table{}
	for i, c := range t.Columns {
		if drop[c] {
			continue
		}
		keep = append(keep, i)
		out.Columns = append(out.Columns, c)
	}
	out.Rows = make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		nr := make([]string, len(keep))
		for j, i := range keep {
			nr[j] = r[i]
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Clone 深拷贝
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// RowMap 以列名为 key 返回第 row 行
func (t *Table) RowMap(row int) map[string]string {
	m := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		m[c] = t.Rows[row][i]
	}
	return m
}

// IsNull 判断单元格是否为缺失值。兼容 pandas 输出的 NaN 写法。
func IsNull(cell string) bool {
	switch cell {
	case "", "NaN", "nan", "NA", "null":
		return true
	}
	return false
}

// ParseFloat 解析数值单元格；缺失值返回 (0, false, nil)
func ParseFloat(cell string) (float64, bool, error) {
	if IsNull(cell) {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

// ParseInt 解析整数单元格；允许 "1.0" 这种整数值浮点写法，缺失值返回 (0, false, nil)
func ParseInt(cell string) (int64, bool, error) {
	if IsNull(cell) {
		return 0, false, nil
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n, true, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false, err
	}
	if f != float64(int64(f)) {
		return 0, false, fmt.Errorf("%q is not an integer", cell)
	}
	return int64(f), true, nil
}

// FormatFloat 统一浮点格式，保证重复运行输出逐字节一致
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatInt 统一整数格式
func FormatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
