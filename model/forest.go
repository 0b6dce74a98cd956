package model

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/seedrank/core"
)

// RandomForest 随机森林二分类器。
//
// 训练过程：
//   - 每棵树在 bootstrap 采样（有放回，n 次）上训练，重复次数作为样本权重
//   - 样本权重再乘以类别权重（balanced），抵消崩溃样本稀少带来的不平衡
//   - 每个节点随机抽取 sqrt(特征数) 个特征，按加权 Gini 选最优切分
//
// 预测：各棵树叶子上正类加权占比的平均值。
//
// 每棵树的种子由主种子顺序派生，树之间并发训练，结果与并发度无关。
type RandomForest struct {
	Params   Params  `json:"params"`
	Features int     `json:"n_features"`
	Trees    []*Tree `json:"trees"`

	// Importances 归一化后的 Gini 特征重要性（按特征列顺序）
	Importances []float64 `json:"importances,omitempty"`
}

// Tree 是扁平存储的 CART 树，Nodes[0] 为根。
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode Feature < 0 表示叶子；x[Feature] <= Threshold 走 Left，否则走 Right。
type TreeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v"` // 正类加权占比
}

func NewRandomForest(p Params) *RandomForest {
	if p.Trees <= 0 {
		p.Trees = DefaultParams().Trees
	}
	if p.MinLeaf <= 0 {
		p.MinLeaf = 1
	}
	return &RandomForest{Params: p}
}

func (f *RandomForest) Fit(X [][]float64, y []int) error {
	if err := checkTrainingSet(X, y); err != nil {
		return err
	}
	d := len(X[0])
	for i, row := range X {
		if len(row) != d {
			return core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
				fmt.Sprintf("row %d has %d features, want %d", i+1, len(row), d))
		}
	}

	cw := ClassWeights(y, f.Params.ClassWeight)
	master := rand.New(rand.NewPCG(f.Params.Seed, 0x5eed))
	seeds := make([]uint64, f.Params.Trees)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	trees := make([]*Tree, len(seeds))
	importances := make([][]float64, len(seeds))
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, seed := range seeds {
		eg.Go(func() error {
			trees[i], importances[i] = growTree(X, y, cw, seed, f.Params)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	f.Features = d
	f.Trees = trees
	f.Importances = sumImportances(importances, d)
	return nil
}

func (f *RandomForest) PredictProba(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees))
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		v := 0.0
		if n.Feature < len(x) {
			v = x[n.Feature]
		}
		if v <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type grower struct {
	X        [][]float64
	y        []int
	w        []float64
	mtry     int
	maxDepth int
	minLeaf  int
	rng      *rand.Rand
	nodes    []TreeNode
	gain     []float64
}

func growTree(X [][]float64, y []int, cw [2]float64, seed uint64, p Params) (*Tree, []float64) {
	n, d := len(X), len(X[0])
	rng := rand.New(rand.NewPCG(seed, seed))

	counts := make([]int, n)
	for range n {
		counts[rng.IntN(n)]++
	}
	w := make([]float64, n)
	idx := make([]int, 0, n)
	for i, c := range counts {
		if c == 0 {
			continue
		}
		w[i] = float64(c) * cw[y[i]]
		idx = append(idx, i)
	}

	g := &grower{
		X:        X,
		y:        y,
		w:        w,
		mtry:     max(1, int(math.Sqrt(float64(d)))),
		maxDepth: p.MaxDepth,
		minLeaf:  p.MinLeaf,
		rng:      rng,
		gain:     make([]float64, d),
	}
	g.grow(idx, 0)
	return &Tree{Nodes: g.nodes}, g.gain
}

func (g *grower) grow(idx []int, depth int) int {
	var pos, total float64
	for _, i := range idx {
		total += g.w[i]
		if g.y[i] == 1 {
			pos += g.w[i]
		}
	}
	id := len(g.nodes)
	value := 0.0
	if total > 0 {
		value = pos / total
	}
	g.nodes = append(g.nodes, TreeNode{Feature: -1, Value: value})

	if pos == 0 || pos == total || len(idx) < 2*g.minLeaf || (g.maxDepth > 0 && depth >= g.maxDepth) {
		return id
	}
	feat, thr, impurity, ok := g.bestSplit(idx, pos, total)
	if !ok {
		return id
	}
	g.gain[feat] += total*gini(pos, total) - impurity

	var left, right []int
	for _, i := range idx {
		if g.X[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)
	g.nodes[id] = TreeNode{Feature: feat, Threshold: thr, Left: l, Right: r, Value: value}
	return id
}

// bestSplit 在随机抽取的特征上寻找加权 Gini 最小的切分。
// 常量特征不计入 mtry，直到找到 mtry 个可切分特征或遍历完全部特征。
func (g *grower) bestSplit(idx []int, pos, total float64) (feat int, thr, impurity float64, ok bool) {
	impurity = math.Inf(1)
	sorted := make([]int, len(idx))
	visited := 0
	for _, f := range g.rng.Perm(len(g.X[0])) {
		if visited >= g.mtry {
			break
		}
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool { return g.X[sorted[a]][f] < g.X[sorted[b]][f] })
		if g.X[sorted[0]][f] == g.X[sorted[len(sorted)-1]][f] {
			continue
		}
		visited++

		var lp, lt float64
		for k := 0; k < len(sorted)-1; k++ {
			i := sorted[k]
			lt += g.w[i]
			if g.y[i] == 1 {
				lp += g.w[i]
			}
			a, b := g.X[i][f], g.X[sorted[k+1]][f]
			if a == b {
				continue
			}
			nl := k + 1
			if nl < g.minLeaf || len(sorted)-nl < g.minLeaf {
				continue
			}
			rt, rp := total-lt, pos-lp
			imp := lt*gini(lp, lt) + rt*gini(rp, rt)
			if imp < impurity {
				impurity = imp
				feat = f
				thr = a + (b-a)/2
				if thr >= b {
					thr = a
				}
				ok = true
			}
		}
	}
	return feat, thr, impurity, ok
}

func gini(pos, total float64) float64 {
	if total <= 0 {
		return 0
	}
	q := pos / total
	return 2 * q * (1 - q)
}

func sumImportances(per [][]float64, d int) []float64 {
	out := make([]float64, d)
	var sum float64
	for _, imp := range per {
		for j, v := range imp {
			out[j] += v
			sum += v
		}
	}
	if sum > 0 {
		for j := range out {
			out[j] /= sum
		}
	}
	return out
}
