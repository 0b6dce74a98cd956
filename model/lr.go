package model

import (
	"math"

	"github.com/rushteam/seedrank/feature"
)

// Logistic 逻辑回归二分类器，作为随机森林之外的轻量备选（kind = lr）。
//
// 预测原理：
// 1. 线性加权求和: z = Bias + sum(Weight_i * Feature_i)
// 2. Sigmoid 变换: P = 1 / (1 + exp(-z))
//
// 训练在 z-score 标准化后的空间做批量梯度下降（带类别权重与 L2），
// 结束后把权重换算回原始特征空间，因此预测时不需要再做标准化。
type Logistic struct {
	Bias    float64            `json:"bias"`    // 偏置项 (Bias / Intercept)
	Weights map[string]float64 `json:"weights"` // 特征权重 (Weights / Coefficients)
	Columns []string           `json:"columns"` // 特征列顺序

	params Params
}

func NewLogistic(p Params, columns []string) *Logistic {
	d := DefaultParams()
	if p.Epochs <= 0 {
		p.Epochs = d.Epochs
	}
	if p.LearningRate <= 0 {
		p.LearningRate = d.LearningRate
	}
	return &Logistic{Columns: append([]string(nil), columns...), params: p}
}

func (m *Logistic) Name() string { return KindLR }

func (m *Logistic) Fit(X [][]float64, y []int) error {
	if err := checkTrainingSet(X, y); err != nil {
		return err
	}
	d := len(m.Columns)
	norm := feature.FitZScore(X)
	Z := make([][]float64, len(X))
	for i, x := range X {
		Z[i] = norm.Normalize(x)
	}

	cw := ClassWeights(y, m.params.ClassWeight)
	var wsum float64
	for _, v := range y {
		wsum += cw[v]
	}

	w := make([]float64, d)
	var b float64
	grad := make([]float64, d)
	for range m.params.Epochs {
		clear(grad)
		var gb float64
		for i, z := range Z {
			err := sigmoid(b+dot(w, z)) - float64(y[i])
			err *= cw[y[i]]
			for j := 0; j < d && j < len(z); j++ {
				grad[j] += err * z[j]
			}
			gb += err
		}
		for j := range w {
			w[j] -= m.params.LearningRate * (grad[j]/wsum + m.params.L2*w[j])
		}
		b -= m.params.LearningRate * gb / wsum
	}

	// 换算回原始空间：z_j = (x_j - mean_j) / std_j
	m.Weights = make(map[string]float64, d)
	m.Bias = b
	for j, col := range m.Columns {
		wj := w[j]
		if j < len(norm.Std) && norm.Std[j] > 0 {
			wj /= norm.Std[j]
		}
		if j < len(norm.Mean) {
			m.Bias -= wj * norm.Mean[j]
		}
		m.Weights[col] = wj
	}
	return nil
}

func (m *Logistic) PredictProba(x []float64) float64 {
	score := m.Bias
	for j, col := range m.Columns {
		if j < len(x) {
			score += m.Weights[col] * x[j]
		}
	}
	return sigmoid(score)
}

func (m *Logistic) Predict(features map[string]float64) (float64, error) {
	score := m.Bias
	for k, v := range features {
		if w, ok := m.Weights[k]; ok {
			score += w * v
		}
	}
	return sigmoid(score), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		if i < len(b) {
			s += a[i] * b[i]
		}
	}
	return s
}
