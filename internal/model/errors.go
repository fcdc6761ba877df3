// Package model 定义组织架构图的数据模型与错误类型
package model

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 预定义错误代码
const (
	// 通用错误
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"

	// 文件操作错误
	ErrCodeFileNotFound   ErrorCode = "FILE_NOT_FOUND"
	ErrCodeFileReadError  ErrorCode = "FILE_READ_ERROR"
	ErrCodeFileWriteError ErrorCode = "FILE_WRITE_ERROR"
	ErrCodeInvalidFormat  ErrorCode = "INVALID_FORMAT"

	// 表格解析错误
	ErrCodeParseError  ErrorCode = "PARSE_ERROR"
	ErrCodeSheetError  ErrorCode = "SHEET_ERROR"
	ErrCodeEmptySheet  ErrorCode = "EMPTY_SHEET"

	// 配置校验错误
	ErrCodeValidation     ErrorCode = "VALIDATION_ERROR"
	ErrCodeColumnNotFound ErrorCode = "COLUMN_NOT_FOUND"

	// 层级解析结果（非致命，作为警告或空结果信号）
	ErrCodeHierarchy         ErrorCode = "HIERARCHY_ERROR"
	ErrCodeDanglingManager   ErrorCode = "DANGLING_MANAGER"
	ErrCodeDuplicatePosition ErrorCode = "DUPLICATE_POSITION"
	ErrCodeSelfReference     ErrorCode = "SELF_REFERENCE"
	ErrCodeCycleBroken       ErrorCode = "CYCLE_BROKEN"
)

// codedError 带错误代码的错误
type codedError interface {
	error
	GetCode() ErrorCode
}

// BaseError 基础错误结构
type BaseError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	StackTrace string    `json:"stack_trace,omitempty"`
}

// NewBaseError 创建基础错误
func NewBaseError(code ErrorCode, message string) *BaseError {
	return &BaseError{Code: code, Message: message, Timestamp: time.Now()}
}

// Error 实现error接口
func (e *BaseError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// GetCode 获取错误代码
func (e *BaseError) GetCode() ErrorCode {
	return e.Code
}

// GetMessage 获取错误消息
func (e *BaseError) GetMessage() string {
	return e.Message
}

// WithDetails 附加详情
func (e *BaseError) WithDetails(format string, args ...interface{}) *BaseError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

// WithStackTrace 添加堆栈跟踪
func (e *BaseError) WithStackTrace() *BaseError {
	if e.StackTrace == "" {
		e.StackTrace = getStackTrace()
	}
	return e
}

// ParseError 表格解析错误，Row 从1开始计数（含表头行）
type ParseError struct {
	BaseError
	Sheet  string `json:"sheet,omitempty"`
	Row    int    `json:"row"`
	Column string `json:"column,omitempty"`
	Cause  error  `json:"-"`
}

// NewParseError 创建解析错误
func NewParseError(sheet string, row int, column, message string, cause error) *ParseError {
	return &ParseError{
		BaseError: BaseError{
			Code:      ErrCodeParseError,
			Message:   message,
			Timestamp: time.Now(),
		},
		Sheet:  sheet,
		Row:    row,
		Column: column,
		Cause:  cause,
	}
}

// Error 实现error接口
func (e *ParseError) Error() string {
	loc := fmt.Sprintf("第%d行", e.Row)
	if e.Sheet != "" {
		loc = fmt.Sprintf("工作表'%s'%s", e.Sheet, loc)
	}
	if e.Column != "" {
		loc += fmt.Sprintf("列'%s'", e.Column)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s解析失败: %s (原因: %v)", e.Code, loc, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s解析失败: %s", e.Code, loc, e.Message)
}

// Unwrap 返回原始错误
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError 配置校验错误
type ValidationError struct {
	BaseError
	Field      string      `json:"field"`
	Value      interface{} `json:"value"`
	Constraint string      `json:"constraint"`
}

// NewValidationError 创建验证错误
func NewValidationError(field string, value interface{}, constraint, message string) *ValidationError {
	return &ValidationError{
		BaseError: BaseError{
			Code:      ErrCodeValidation,
			Message:   message,
			Timestamp: time.Now(),
		},
		Field:      field,
		Value:      value,
		Constraint: constraint,
	}
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] 字段'%s'验证失败: %s (值: %v, 约束: %s)",
		e.Code, e.Field, e.Message, e.Value, e.Constraint)
}

// SystemError 系统错误
type SystemError struct {
	BaseError
	Component string `json:"component"`
	Operation string `json:"operation"`
	Cause     error  `json:"-"`
}

// NewSystemError 创建系统错误
func NewSystemError(component, operation, message string, cause error) *SystemError {
	return &SystemError{
		BaseError: BaseError{
			Code:      ErrCodeInternal,
			Message:   message,
			Timestamp: time.Now(),
		},
		Component: component,
		Operation: operation,
		Cause:     cause,
	}
}

// Error 实现error接口
func (e *SystemError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s.%s失败: %s (原因: %v)",
			e.Code, e.Component, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s.%s失败: %s",
		e.Code, e.Component, e.Operation, e.Message)
}

// Unwrap 返回原始错误
func (e *SystemError) Unwrap() error {
	return e.Cause
}

// FileError 文件操作错误
type FileError struct {
	BaseError
	FilePath  string `json:"file_path"`
	Operation string `json:"operation"`
	Cause     error  `json:"-"`
}

// NewFileError 创建文件错误
func NewFileError(code ErrorCode, filepath, operation, message string, cause error) *FileError {
	return &FileError{
		BaseError: BaseError{
			Code:      code,
			Message:   message,
			Timestamp: time.Now(),
		},
		FilePath:  filepath,
		Operation: operation,
		Cause:     cause,
	}
}

// Error 实现error接口
func (e *FileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] 文件操作失败 %s('%s'): %s (原因: %v)",
			e.Code, e.Operation, e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] 文件操作失败 %s('%s'): %s",
		e.Code, e.Operation, e.FilePath, e.Message)
}

// Unwrap 返回原始错误
func (e *FileError) Unwrap() error {
	return e.Cause
}

// HierarchyError 层级关系错误，Position 指向 Manager
type HierarchyError struct {
	BaseError
	Position string `json:"position"`
	Manager  string `json:"manager,omitempty"`
}

// NewHierarchyError 创建层级关系错误
func NewHierarchyError(code ErrorCode, position, manager, message string) *HierarchyError {
	return &HierarchyError{
		BaseError: BaseError{
			Code:      code,
			Message:   message,
			Timestamp: time.Now(),
		},
		Position: position,
		Manager:  manager,
	}
}

// Error 实现error接口
func (e *HierarchyError) Error() string {
	if e.Manager != "" {
		return fmt.Sprintf("[%s] 层级关系异常('%s' -> '%s'): %s",
			e.Code, e.Position, e.Manager, e.Message)
	}
	return fmt.Sprintf("[%s] 层级关系异常('%s'): %s", e.Code, e.Position, e.Message)
}

// ErrorList 错误列表
type ErrorList struct {
	Errors []error `json:"errors"`
}

// NewErrorList 创建错误列表
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]error, 0),
	}
}

// Add 添加错误
func (el *ErrorList) Add(err error) {
	if err != nil {
		el.Errors = append(el.Errors, err)
	}
}

// HasError 是否有错误
func (el *ErrorList) HasError() bool {
	return len(el.Errors) > 0
}

// Count 错误数量
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// ErrOrNil 无错误时返回nil
func (el *ErrorList) ErrOrNil() error {
	if el == nil || !el.HasError() {
		return nil
	}
	return el
}

// Error 实现error接口
func (el *ErrorList) Error() string {
	if len(el.Errors) == 0 {
		return ""
	}

	if len(el.Errors) == 1 {
		return el.Errors[0].Error()
	}

	messages := make([]string, 0, len(el.Errors))
	for _, err := range el.Errors {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("发生了%d个错误: [%s]",
		len(el.Errors), strings.Join(messages, "; "))
}

// Unwrap 返回列表中的全部错误
func (el *ErrorList) Unwrap() []error {
	return el.Errors
}

// GetByType 根据错误代码过滤
func (el *ErrorList) GetByType(code ErrorCode) []error {
	var filtered []error
	for _, err := range el.Errors {
		if IsErrorType(err, code) {
			filtered = append(filtered, err)
		}
	}
	return filtered
}

// 辅助函数：获取堆栈跟踪
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var traces []string
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		traces = append(traces, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		if !more {
			break
		}
	}

	return strings.Join(traces, "\n")
}

// IsErrorType 检查错误链中是否存在指定代码的错误，ErrorList 会逐个检查
func IsErrorType(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	if ce, ok := err.(codedError); ok && ce.GetCode() == code {
		return true
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			if IsErrorType(e, code) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return IsErrorType(x.Unwrap(), code)
	}
	return false
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(message string) error {
	return NewBaseError(ErrCodeNotFound, message)
}
