// Package seedrank 对模糊测试候选输入做分诊排序（fuzz candidate triage）。
//
// 设计要点：
// - Stage-first: featurize（字节特征 + 执行元数据标签）→ train（随机森林 + 分层交叉验证）→ score（打分 + 稳定排序）
// - Pipeline-first: 打分之后的过滤、阈值、截断通过 Node 串联，可由配置驱动
// - Labels-first: labels 全链路透传，记录候选被哪个模型排序、被哪个过滤器剔除
package seedrank

import (
	"github.com/rushteam/seedrank/core"
	"github.com/rushteam/seedrank/pipeline"
)

// 轻量 facade：便于用户直接 import "seedrank" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind
type Candidate = core.Candidate
type RankContext = core.RankContext

const (
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)
