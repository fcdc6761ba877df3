// Package parser 定义表格读取器相关接口
package parser

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/freedkr/orgchart/internal/model"
)

// Parser 表格读取器接口
// 读取结果是有序列名集合与逐行记录，缺失的单元格补为空字符串
type Parser interface {
	// Parse 从输入流读取数据
	Parse(ctx context.Context, input io.Reader) (*model.Dataset, error)

	// ParseFile 读取文件
	ParseFile(ctx context.Context, filePath string) (*model.Dataset, error)

	// GetName 获取读取器名称
	GetName() string

	// GetVersion 获取读取器版本
	GetVersion() string

	// GetSupportedFormats 获取支持的文件格式
	GetSupportedFormats() []string
}

// ParserConfig 读取器配置
type ParserConfig struct {
	// SheetName 工作表名，为空时读取第一个工作表
	SheetName string `yaml:"sheet_name" json:"sheet_name"`

	// SkipEmptyRows 跳过全部单元格为空的行
	SkipEmptyRows bool `yaml:"skip_empty_rows" json:"skip_empty_rows"`

	// MaxRows 最多读取的数据行数，0表示不限制
	MaxRows int `yaml:"max_rows" json:"max_rows"`
}

// DefaultParserConfig 默认读取器配置
func DefaultParserConfig() *ParserConfig {
	return &ParserConfig{
		SheetName:     "",
		SkipEmptyRows: true,
		MaxRows:       0,
	}
}

// ForFile 根据文件扩展名选择读取器
func ForFile(name string, config *ParserConfig, logger *zap.Logger) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return NewExcelParser(config, logger), nil
	case ".csv", ".txt":
		return NewCSVParser(config, logger), nil
	default:
		return nil, model.NewFileError(model.ErrCodeInvalidFormat, name, "detect", "不支持的文件格式: "+ext, nil)
	}
}

// SupportedExtensions 支持的文件扩展名
func SupportedExtensions() []string {
	return []string{".xlsx", ".xlsm", ".xltx", ".xltm", ".csv", ".txt"}
}
