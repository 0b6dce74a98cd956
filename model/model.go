package model

import (
	"fmt"

	"github.com/rushteam/seedrank/core"
)

// RankModel 是排序阶段的最小抽象：输入特征，输出一个可比较的分数。
// 打分 Node 只依赖这个接口，不关心背后是随机森林还是 LR。
type RankModel interface {
	Name() string
	Predict(features map[string]float64) (float64, error)
}

// Classifier 是可训练的二分类器，按特征列顺序接收稠密向量。
// PredictProba 返回正类概率，范围 [0, 1]。
type Classifier interface {
	Fit(X [][]float64, y []int) error
	PredictProba(x []float64) float64
}

const (
	KindForest = "forest"
	KindLR     = "lr"
)

// Params 分类器超参数
type Params struct {
	// Kind 模型类型：forest（默认）/ lr
	Kind string `yaml:"kind" json:"kind"`

	// Trees 森林中树的数量
	Trees int `yaml:"trees" json:"trees"`

	// Seed 随机种子，相同输入与种子下训练结果可复现
	Seed uint64 `yaml:"seed" json:"seed"`

	// MaxDepth 树最大深度，0 表示不限制
	MaxDepth int `yaml:"max_depth" json:"max_depth"`

	// MinLeaf 叶子最少样本数
	MinLeaf int `yaml:"min_leaf" json:"min_leaf"`

	// ClassWeight 类别权重："balanced" 或空（不加权）
	ClassWeight string `yaml:"class_weight" json:"class_weight"`

	// Epochs / LearningRate / L2 仅 lr 使用
	Epochs       int     `yaml:"epochs" json:"epochs"`
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`
	L2           float64 `yaml:"l2" json:"l2"`
}

// DefaultParams 50 棵树、种子 42、类别平衡
func DefaultParams() Params {
	return Params{
		Kind:         KindForest,
		Trees:        50,
		Seed:         42,
		MinLeaf:      1,
		ClassWeight:  ClassWeightBalanced,
		Epochs:       500,
		LearningRate: 0.1,
	}
}

// NewClassifier 按 Kind 创建未训练的分类器。每次调用返回全新实例，交叉验证每折各用一个。
func NewClassifier(p Params, columns []string) (Classifier, error) {
	switch p.Kind {
	case "", KindForest:
		return NewRandomForest(p), nil
	case KindLR:
		return NewLogistic(p, columns), nil
	default:
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeNotSupported,
			fmt.Sprintf("unknown model kind %q", p.Kind))
	}
}

// ClassWeights 计算二分类的类别权重。balanced：w_c = n / (2 * n_c)，缺席的类别权重为 0。
func ClassWeights(y []int, mode string) [2]float64 {
	if mode != ClassWeightBalanced {
		return [2]float64{1, 1}
	}
	var counts [2]int
	for _, v := range y {
		counts[v]++
	}
	var w [2]float64
	for c, n := range counts {
		if n > 0 {
			w[c] = float64(len(y)) / (2 * float64(n))
		}
	}
	return w
}

const ClassWeightBalanced = "balanced"

func checkTrainingSet(X [][]float64, y []int) error {
	if len(X) == 0 {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "empty training set")
	}
	if len(X) != len(y) {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			fmt.Sprintf("X has %d rows but y has %d", len(X), len(y)))
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
				fmt.Sprintf("row %d: label must be 0 or 1, got %d", i+1, v))
		}
	}
	return nil
}
