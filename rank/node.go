package rank

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/model"
	"github.com/rushteam/seedrank/pipeline"
	"github.com/rushteam/seedrank/pkg/utils"
)

// ModelNode 是使用 RankModel 打分的 Node（不限定模型类型，随机森林是默认实现）。
// - 模型为 *model.Artifact 且 RankContext.SchemaHash 非空时，两者 schema 摘要必须一致
// - 写入 labels：rank_model
// - 更新 Candidate.Score 并按分数降序稳定排序，同分候选保持输入顺序
type ModelNode struct {
	Model model.RankModel
}

func (n *ModelNode) Name() string        { return "rank.model" }
func (n *ModelNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ModelNode) Process(
	_ context.Context,
	rctx *core.RankContext,
	cands []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.Model == nil || len(cands) == 0 {
		return cands, nil
	}
	if art, ok := n.Model.(*model.Artifact); ok && rctx != nil && rctx.SchemaHash != "" && art.SchemaHash != rctx.SchemaHash {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeSchemaMismatch,
			fmt.Sprintf("%s: model schema %s, run schema %s", n.Name(), art.SchemaHash, rctx.SchemaHash))
	}
	if rctx != nil && rctx.ModelKind == "" {
		rctx.ModelKind = n.Model.Name()
	}

	for _, c := range cands {
		if c == nil {
			continue
		}
		score, err := n.Model.Predict(c.Features)
		if err != nil {
			return nil, err
		}
		c.Score = score
		c.PutLabel("rank_model", utils.Label{Value: n.Model.Name(), Source: "rank"})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i] == nil {
			return false
		}
		if cands[j] == nil {
			return true
		}
		return cands[i].Score > cands[j].Score
	})
	return cands, nil
}
