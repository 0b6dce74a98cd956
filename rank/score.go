package rank

import (
	"context"
	"log/slog"

	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/feature"
	"github.com/rushteam/seedrank/model"
	"github.com/rushteam/seedrank/pipeline"
	"github.com/rushteam/seedrank/pkg/logging"
	"github.com/rushteam/seedrank/table"
)

// Scorer 给候选特征表打分并排序。
//
// 流程：schema 校验 -> schema 补全 -> 构建 Candidate -> ModelNode 打分排序 -> 后续 Pipeline
// 输出包含候选表的全部原始列（以及补全的特征列）和 score，按 score 降序、同分保持输入顺序。
type Scorer struct {
	Artifact *model.Artifact

	// Metadata 当前打分使用的 schema，必须与模型产物一致
	Metadata *feature.Metadata

	// Pipeline 打分之后执行的 Node（过滤 / 截断 / 重排），可为空
	Pipeline *pipeline.Pipeline

	Logger *slog.Logger
}

func NewScorer(art *model.Artifact, post *pipeline.Pipeline) *Scorer {
	return &Scorer{
		Artifact: art,
		Metadata: feature.DefaultMetadata(),
		Pipeline: post,
		Logger:   logging.New("rank"),
	}
}

// Score 打分。候选表中已有的 score 列会被替换。
func (s *Scorer) Score(ctx context.Context, candidates *table.Table) (*table.Table, error) {
	meta := s.Metadata
	if meta == nil {
		meta = feature.DefaultMetadata()
	}
	if err := s.Artifact.CheckSchema(meta); err != nil {
		return nil, err
	}

	completed := meta.Complete(candidates.DropColumns(core.ColScore))
	if missing := meta.GetMissingFeatures(candidates); len(missing) > 0 && s.Logger != nil {
		s.Logger.Info("synthesized missing feature columns", slog.Any("columns", missing))
	}

	cands := make([]*core.Candidate, completed.Len())
	for i := range cands {
		vector, err := meta.BuildVector(completed, i)
		if err != nil {
			return nil, err
		}
		name, _ := completed.Get(i, core.ColFilename)
		c := core.NewCandidate(name, i)
		c.Features = meta.ToMap(vector)
		c.Row = completed.RowMap(i)
		cands[i] = c
	}

	rctx := &core.RankContext{ModelKind: s.Artifact.Kind, SchemaHash: s.Artifact.SchemaHash}
	p := s.Pipeline.Prepend(&ModelNode{Model: s.Artifact})
	ranked, err := p.Run(ctx, rctx, cands)
	if err != nil {
		return nil, err
	}

	out := table.New(append(completed.Columns, core.ColScore)...)
	for _, c := range ranked {
		if c == nil {
			continue
		}
		row := append(append([]string(nil), completed.Rows[c.Order]...), table.FormatFloat(c.Score))
		if err := out.Append(row); err != nil {
			return nil, err
		}
	}

	if s.Logger != nil {
		s.Logger.Info("candidates scored",
			slog.Int("candidates", len(cands)),
			slog.Int("emitted", out.Len()),
			slog.String("model", s.Artifact.Kind),
		)
	}
	return out, nil
}
