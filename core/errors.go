package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 可包裹底层错误（Err），支持 errors.Is / errors.As
//
// 使用场景：
//   - 训练输入缺少 label 列：MISSING_COLUMN
//   - 执行元数据无法解析：INVALID_INPUT
//   - 模型特征 schema 与打分输入不一致：SCHEMA_MISMATCH
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "MISSING_COLUMN"）
	Message string // 错误消息
	Module  string // 模块名称（如 "dataset", "rank", "model"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is 按 Module + Code 匹配，使 errors.Is(err, ErrMissingLabel) 对带上下文的同类错误也成立。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误链中是否包含 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的第一个 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建包裹底层错误的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound       = "NOT_FOUND"       // 资源不存在
	ErrorCodeNotSupported   = "NOT_SUPPORTED"   // 操作不支持
	ErrorCodeUnavailable    = "UNAVAILABLE"     // 服务不可用
	ErrorCodeInvalidInput   = "INVALID_INPUT"   // 输入无效（无法解析、类型不兼容）
	ErrorCodeInternalError  = "INTERNAL_ERROR"  // 内部错误
	ErrorCodeMissingColumn  = "MISSING_COLUMN"  // 必需列缺失
	ErrorCodeSchemaMismatch = "SCHEMA_MISMATCH" // 特征 schema 不一致
	ErrorCodeIO             = "IO"              // 文件读写失败
)

// 模块名称常量
const (
	ModuleFeature = "feature" // 特征抽取
	ModuleDataset = "dataset" // 数据集构建（标签合并）
	ModuleTable   = "table"   // 表格读写
	ModuleModel   = "model"   // 分类器与模型产物
	ModuleRank    = "rank"    // 训练、评估、打分
	ModuleStore   = "store"   // 存储模块
	ModuleConfig  = "config"  // 配置
)

var (
	// ErrMissingLabel 训练输入缺少 label 列，属于致命错误，不做推断或默认。
	ErrMissingLabel = NewDomainError(ModuleRank, ErrorCodeMissingColumn, "Input must contain a label column")

	// ErrSchemaMismatch 模型训练时的特征列与当前打分输入的特征列不一致。
	ErrSchemaMismatch = NewDomainError(ModuleModel, ErrorCodeSchemaMismatch, "model feature schema does not match")
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}
