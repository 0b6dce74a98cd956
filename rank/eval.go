package rank

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/model"
)

// Fold 是一次交叉验证的训练/验证下标划分
type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold 分层 k 折划分：每一折中各类别的样本数相差不超过 1。
// shuffle 为 true 时每个类别内部先按 seed 打乱。
//
// 样本按类别依次轮转分配到各折，类别之间的轮转位置连续，因此各折总样本数也相差不超过 1。
func StratifiedKFold(y []int, k int, shuffle bool, seed uint64) ([]Fold, error) {
	if k < 2 {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
			fmt.Sprintf("folds must be >= 2, got %d", k))
	}
	if len(y) < k {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
			fmt.Sprintf("cannot split %d rows into %d folds", len(y), k))
	}

	byClass := make(map[int][]int)
	for i, v := range y {
		byClass[v] = append(byClass[v], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	var rng *rand.Rand
	if shuffle {
		rng = rand.New(rand.NewPCG(seed, 0xf01d))
	}

	assign := make([]int, len(y))
	offset := 0
	for _, c := range classes {
		idx := byClass[c]
		if rng != nil {
			rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		}
		for j, i := range idx {
			assign[i] = (offset + j) % k
		}
		offset += len(idx)
	}

	folds := make([]Fold, k)
	for i, f := range assign {
		for j := range folds {
			if j == f {
				folds[j].Test = append(folds[j].Test, i)
			} else {
				folds[j].Train = append(folds[j].Train, i)
			}
		}
	}
	return folds, nil
}

// ROCAUC 计算 ROC 曲线下面积（Mann-Whitney U 统计量）。同分样本取平均秩。
// 只有一个类别时 AUC 无定义，返回 NaN。
func ROCAUC(y []int, scores []float64) float64 {
	var n1, n0 float64
	for _, v := range y {
		if v == 1 {
			n1++
		} else {
			n0++
		}
	}
	if n1 == 0 || n0 == 0 {
		return math.NaN()
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	var rankSum float64
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && scores[order[j+1]] == scores[order[i]] {
			j++
		}
		// 秩从 1 开始，[i, j] 同分取平均
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			if y[order[k]] == 1 {
				rankSum += avg
			}
		}
		i = j + 1
	}
	return (rankSum - n1*(n1+1)/2) / (n1 * n0)
}

// CVResult 交叉验证结果
type CVResult struct {
	// Folds 折数
	Folds int
	// Scores 可计算 AUC 的各折分数（按折顺序）
	Scores []float64
	// Skipped 验证集只有一个类别、无法计算 AUC 的折（从 0 开始）
	Skipped []int
	// Mean / Std 为 Scores 的均值与总体标准差；Scores 为空时为 NaN
	Mean float64
	Std  float64
}

// Summary 转成模型产物中的摘要；没有任何可计算的折时返回 nil
func (r *CVResult) Summary() *model.CVSummary {
	if r == nil || len(r.Scores) == 0 {
		return nil
	}
	return &model.CVSummary{
		Folds:   r.Folds,
		Scores:  append([]float64(nil), r.Scores...),
		Mean:    r.Mean,
		Std:     r.Std,
		Skipped: len(r.Skipped),
	}
}

// CrossValidate 分层 k 折交叉验证，ROC-AUC 评分。每一折都用 newClf 创建全新的分类器，
// 与最终在全量数据上训练的模型互不影响。
func CrossValidate(
	ctx context.Context,
	newClf func() (model.Classifier, error),
	X [][]float64,
	y []int,
	k int,
	seed uint64,
) (*CVResult, error) {
	folds, err := StratifiedKFold(y, k, true, seed)
	if err != nil {
		return nil, err
	}

	res := &CVResult{Folds: k}
	for fi, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		clf, err := newClf()
		if err != nil {
			return nil, err
		}
		if err := clf.Fit(pickRows(X, fold.Train), pickLabels(y, fold.Train)); err != nil {
			return nil, fmt.Errorf("fold %d: %w", fi+1, err)
		}
		testY := pickLabels(y, fold.Test)
		scores := make([]float64, len(fold.Test))
		for j, i := range fold.Test {
			scores[j] = clf.PredictProba(X[i])
		}
		auc := ROCAUC(testY, scores)
		if math.IsNaN(auc) {
			res.Skipped = append(res.Skipped, fi)
			continue
		}
		res.Scores = append(res.Scores, auc)
	}
	res.Mean, res.Std = meanStd(res.Scores)
	return res, nil
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, v := range xs {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}

func pickRows(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for j, i := range idx {
		out[j] = X[i]
	}
	return out
}

func pickLabels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for j, i := range idx {
		out[j] = y[i]
	}
	return out
}
