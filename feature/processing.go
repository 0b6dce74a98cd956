package feature

import (
	"math"
	"sort"
)

// ZScoreNormalizer Z-score 标准化（Standardization）
// 公式: z = (x - μ) / σ
// 特点: 均值变为 0，标准差变为 1。LR 模型训练前使用，树模型不需要。
type ZScoreNormalizer struct {
	Mean []float64 `json:"mean"` // 按特征列顺序的均值
	Std  []float64 `json:"std"`  // 按特征列顺序的标准差
}

// FitZScore 按列计算均值与标准差
func FitZScore(X [][]float64) *ZScoreNormalizer {
	if len(X) == 0 {
		return &ZScoreNormalizer{}
	}
	d := len(X[0])
	n := &ZScoreNormalizer{Mean: make([]float64, d), Std: make([]float64, d)}
	col := make([]float64, len(X))
	for j := 0; j < d; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		s := ComputeStatistics(col)
		n.Mean[j] = s.Mean
		n.Std[j] = s.Std
	}
	return n
}

// Normalize 标准化一条向量（返回新切片）；std 为 0 的列只做平移
func (n *ZScoreNormalizer) Normalize(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		if j >= len(n.Mean) {
			out[j] = v
			continue
		}
		out[j] = v - n.Mean[j]
		if n.Std[j] > 0 {
			out[j] /= n.Std[j]
		}
	}
	return out
}

// FeatureStatistics 特征统计信息
type FeatureStatistics struct {
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	Median float64
	P25    float64
	P75    float64
	P95    float64
	P99    float64
}

// ComputeStatistics 计算特征统计信息（Std 为总体标准差）
func ComputeStatistics(values []float64) *FeatureStatistics {
	if len(values) == 0 {
		return &FeatureStatistics{}
	}

	// 复制并排序
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	stats := &FeatureStatistics{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	stats.Mean = sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - stats.Mean) * (v - stats.Mean)
	}
	stats.Std = math.Sqrt(variance / float64(len(values)))

	stats.Median = computePercentile(sorted, 0.5)
	stats.P25 = computePercentile(sorted, 0.25)
	stats.P75 = computePercentile(sorted, 0.75)
	stats.P95 = computePercentile(sorted, 0.95)
	stats.P99 = computePercentile(sorted, 0.99)

	return stats
}

// computePercentile 计算分位数（线性插值）
func computePercentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// SummarizeColumns 对特征矩阵按列计算统计信息，key 为列名。训练时写日志用。
func SummarizeColumns(columns []string, X [][]float64) map[string]*FeatureStatistics {
	out := make(map[string]*FeatureStatistics, len(columns))
	col := make([]float64, len(X))
	for j, name := range columns {
		for i := range X {
			col[i] = X[i][j]
		}
		out[name] = ComputeStatistics(col)
	}
	return out
}
