// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 错误码
type Code string

const (
	CodeConfigInvalid        Code = "CONFIG_INVALID"
	CodeNoValidBaseline      Code = "NO_VALID_BASELINE"
	CodeTimeoutReached       Code = "TIMEOUT_REACHED"
	CodeStagnationReached    Code = "STAGNATION_REACHED"
	CodeConstraintsViolated  Code = "CONSTRAINTS_VIOLATED"
	CodeExecutionError       Code = "EXECUTION_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// codeToHTTPStatus 错误码转HTTP状态码
func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeConfigInvalid:
		return http.StatusBadRequest
	case CodeNoValidBaseline:
		return http.StatusUnprocessableEntity
	case CodeTimeoutReached, CodeStagnationReached:
		return http.StatusGatewayTimeout
	case CodeConstraintsViolated:
		return http.StatusOK // 非致命：携带 incumbent 结果返回
	default:
		return http.StatusInternalServerError
	}
}

// Is 检查错误是否为特定类型
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeExecutionError
}

// IsFatal 判断错误码是否属于致命类别（拒绝作业，而非返回 best-effort 结果）
func IsFatal(code Code) bool {
	switch code {
	case CodeConfigInvalid, CodeNoValidBaseline, CodeExecutionError:
		return true
	default:
		return false
	}
}

// ConfigInvalid 创建配置无效错误
func ConfigInvalid(reason string) *AppError {
	return New(CodeConfigInvalid, reason)
}

// NoValidBaseline 创建无法展开基线错误
func NoValidBaseline(reason string) *AppError {
	return New(CodeNoValidBaseline, reason)
}

// TimeoutReached 创建 GA 超时错误（非致命，调用方应返回 incumbent）
func TimeoutReached(elapsedMs int64) *AppError {
	return New(CodeTimeoutReached, fmt.Sprintf("GA timeout reached after %dms", elapsedMs)).
		WithField("elapsed_ms", elapsedMs)
}

// StagnationReached 创建停滞终止错误（非致命）
func StagnationReached(generations int) *AppError {
	return New(CodeStagnationReached, fmt.Sprintf("no improvement for %d generations", generations)).
		WithField("stagnant_generations", generations)
}

// ConstraintsViolated 创建硬约束未满足错误（非致命，incumbent 标记 Failed）
func ConstraintsViolated(reason string) *AppError {
	return New(CodeConstraintsViolated, reason)
}

// ExecutionError 创建内部执行异常错误（致命）
func ExecutionError(err error) *AppError {
	return Wrap(err, CodeExecutionError, "unexpected internal execution error")
}
