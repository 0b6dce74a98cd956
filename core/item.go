package core

import "github.com/rushteam/seedrank/pkg/utils"

// Candidate 是打分链路中的统一承载结构：一个待执行的输入文件对应一行。
//   - Features 是补全后的数值特征，供模型打分
//   - Row 保留原表的全部单元格（按列名），输出时原样回写
//   - Labels 用于解释与策略驱动；Score 用于排序决策
//   - Order 是在输入表中的行号，用于同分时稳定排序的校验与回溯
type Candidate struct {
	Filename string
	Order    int
	Score    float64
	Features map[string]float64
	Row      map[string]string
	Labels   map[string]utils.Label
}

func NewCandidate(filename string, order int) *Candidate {
	return &Candidate{
		Filename: filename,
		Order:    order,
		Features: make(map[string]float64),
		Row:      make(map[string]string),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (c *Candidate) PutLabel(key string, lbl utils.Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]utils.Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}
