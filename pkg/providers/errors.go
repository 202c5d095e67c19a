package providers

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrEmptyText 空文本错误
	ErrEmptyText = errors.New("empty text provided")
)

// 错误代码常量
const (
	// ErrCodeConfig 配置缺失或非法，不可恢复
	ErrCodeConfig = "config_error"
	// ErrCodeUnavailable 服务不可达或模型未安装，调用方可修复后重试
	ErrCodeUnavailable = "unavailable"
	// ErrCodeEmptyResult 后端返回了空内容，按失败处理
	ErrCodeEmptyResult = "empty_result"
	// ErrCodeTimeout 请求超时，与一般失败区分以便调用方缩短输入后重试
	ErrCodeTimeout = "timeout"
	// ErrCodeNetwork 网络瞬时错误
	ErrCodeNetwork = "network_error"
	// ErrCodeAPI 远端API返回错误
	ErrCodeAPI = "api_error"
)

// Error 提供商错误
type Error struct {
	Code    string // 错误代码
	Message string // 错误消息
	Cause   error  // 原因
}

// Error 实现error接口
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回原因错误
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable 判断错误是否可重试
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case ErrCodeTimeout, ErrCodeNetwork, ErrCodeUnavailable:
		return true
	default:
		return false
	}
}

// NewError 创建提供商错误
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError 创建带原因的提供商错误
func WrapError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf 提取错误代码，非提供商错误返回空字符串
func CodeOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsTimeout 判断是否为超时错误
func IsTimeout(err error) bool {
	return CodeOf(err) == ErrCodeTimeout
}

// IsUnavailable 判断是否为服务不可用错误
func IsUnavailable(err error) bool {
	return CodeOf(err) == ErrCodeUnavailable
}
