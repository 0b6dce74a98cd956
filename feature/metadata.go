package feature

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/table"
)

// Metadata 描述分类器的特征 schema：特征列（按顺序）与标签列。
//
// 训练与打分前都必须经过同一个 Metadata 做 schema 补全，保证两端看到的特征空间一致：
//   - 缺失的特征列补一整列 0
//   - 缺失值（空单元格 / NaN）按 0 处理，特征空间没有保留的“未知”值
type Metadata struct {
	// FeatureColumns 特征列名列表（按顺序）
	FeatureColumns []string `json:"feature_columns"`
	// LabelColumn 标签列名
	LabelColumn string `json:"label_column"`
}

// DefaultMetadata 返回内置的六维特征 schema
func DefaultMetadata() *Metadata {
	cols := make([]string, len(core.FeatureColumns))
	copy(cols, core.FeatureColumns)
	return &Metadata{FeatureColumns: cols, LabelColumn: core.ColLabel}
}

// SchemaHash 返回特征列顺序的摘要，写入模型产物，用于打分时检测 schema 漂移。
func (m *Metadata) SchemaHash() string {
	sum := sha256.Sum256([]byte(strings.Join(m.FeatureColumns, ",")))
	return hex.EncodeToString(sum[:8])
}

// GetMissingFeatures 返回表中缺失的特征列
func (m *Metadata) GetMissingFeatures(t *table.Table) []string {
	var missing []string
	for _, col := range m.FeatureColumns {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Complete 返回补全后的表：缺失的特征列以 "0" 追加在末尾。原表不变。
// 缺失值不在这里改写，由 BuildVector 按 0 读取，因此输出表保留原样的空单元格。
func (m *Metadata) Complete(t *table.Table) *table.Table {
	out := t.Clone()
	for _, col := range m.FeatureColumns {
		out.AddColumn(col, "0")
	}
	return out
}

// BuildVector 按 FeatureColumns 顺序构建第 row 行的特征向量；缺失列或缺失值填充 0。
// 非数值单元格视为无效输入。
func (m *Metadata) BuildVector(t *table.Table, row int) ([]float64, error) {
	vector := make([]float64, len(m.FeatureColumns))
	for i, col := range m.FeatureColumns {
		cell, ok := t.Get(row, col)
		if !ok {
			continue
		}
		v, _, err := table.ParseFloat(cell)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput,
				fmt.Sprintf("row %d column %q", row+1, col), err)
		}
		vector[i] = v
	}
	return vector, nil
}

// BuildMatrix 对整张表构建特征矩阵
func (m *Metadata) BuildMatrix(t *table.Table) ([][]float64, error) {
	X := make([][]float64, t.Len())
	for i := range X {
		v, err := m.BuildVector(t, i)
		if err != nil {
			return nil, err
		}
		X[i] = v
	}
	return X, nil
}

// ToMap 把向量还原为 列名 -> 值
func (m *Metadata) ToMap(vector []float64) map[string]float64 {
	out := make(map[string]float64, len(m.FeatureColumns))
	for i, col := range m.FeatureColumns {
		if i < len(vector) {
			out[col] = vector[i]
		}
	}
	return out
}

// FromMap 按 FeatureColumns 顺序从 map 构建向量，缺失的 key 填充 0
func (m *Metadata) FromMap(features map[string]float64) []float64 {
	vector := make([]float64, len(m.FeatureColumns))
	for i, col := range m.FeatureColumns {
		vector[i] = features[col]
	}
	return vector
}

// Labels 读取标签列。标签列缺失是致命错误（ErrMissingLabel）；缺失值按 0 处理。
func (m *Metadata) Labels(t *table.Table) ([]int, error) {
	if !t.Has(m.LabelColumn) {
		return nil, core.ErrMissingLabel
	}
	y := make([]int, t.Len())
	for i := range y {
		cell, _ := t.Get(i, m.LabelColumn)
		n, _, err := table.ParseInt(cell)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
				fmt.Sprintf("row %d column %q", i+1, m.LabelColumn), err)
		}
		if n != 0 && n != 1 {
			return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
				fmt.Sprintf("row %d column %q: label must be 0 or 1, got %d", i+1, m.LabelColumn, n))
		}
		y[i] = int(n)
	}
	return y, nil
}
