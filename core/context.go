package core

// RankContext 承载一次打分运行的上下文信息，贯穿整个 Pipeline 透传。
type RankContext struct {
	// ModelKind 当前使用的模型类型（forest / lr）
	ModelKind string

	// SchemaHash 本次打分输入的特征 schema 摘要，为空时不做校验
	SchemaHash string
}
