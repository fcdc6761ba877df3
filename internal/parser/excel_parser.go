// Package parser 实现 xlsx 与 csv 表格读取
package parser

import (
	"context"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/freedkr/orgchart/internal/model"
)

// ExcelParserImpl Excel读取器实现
type ExcelParserImpl struct {
	config *ParserConfig
	logger *zap.Logger
}

// NewExcelParser 创建新的Excel读取器
func NewExcelParser(config *ParserConfig, logger *zap.Logger) *ExcelParserImpl {
	if config == nil {
		config = DefaultParserConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ExcelParserImpl{
		config: config,
		logger: logger,
	}
}

// Parse 从输入流读取工作簿
func (p *ExcelParserImpl) Parse(ctx context.Context, input io.Reader) (*model.Dataset, error) {
	f, err := excelize.OpenReader(input)
	if err != nil {
		return nil, model.NewFileError(model.ErrCodeInvalidFormat, "<stream>", "open", "打开Excel数据流失败", err)
	}
	defer f.Close()

	return p.parseWorkbook(ctx, f, "<stream>")
}

// ParseFile 读取Excel文件
func (p *ExcelParserImpl) ParseFile(ctx context.Context, filePath string) (*model.Dataset, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, model.NewFileError(model.ErrCodeFileReadError, filePath, "open", "打开Excel文件失败", err)
	}
	defer f.Close()

	return p.parseWorkbook(ctx, f, filePath)
}

// GetSheetNames 获取所有工作表名称
func (p *ExcelParserImpl) GetSheetNames(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, model.NewFileError(model.ErrCodeFileReadError, filePath, "open", "打开Excel文件失败", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func (p *ExcelParserImpl) parseWorkbook(ctx context.Context, f *excelize.File, source string) (*model.Dataset, error) {
	sheet := p.config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, model.NewFileError(model.ErrCodeSheetError, source, "read_sheet", "工作簿中没有工作表", nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, model.NewFileError(model.ErrCodeSheetError, source, "read_sheet", "读取工作表数据失败: "+sheet, err)
	}

	ds, err := rowsToDataset(ctx, rows, p.config)
	if err != nil {
		return nil, err
	}
	ds.Sheet = sheet

	p.logger.Info("读取Excel完成",
		zap.String("source", source),
		zap.String("sheet", sheet),
		zap.Int("columns", len(ds.Columns)),
		zap.Int("records", len(ds.Records)))
	return ds, nil
}

// GetName 获取读取器名称
func (p *ExcelParserImpl) GetName() string {
	return "ExcelParser"
}

// GetVersion 获取读取器版本
func (p *ExcelParserImpl) GetVersion() string {
	return "1.0.0"
}

// GetSupportedFormats 获取支持的文件格式
func (p *ExcelParserImpl) GetSupportedFormats() []string {
	return []string{".xlsx", ".xlsm", ".xltx", ".xltm"}
}
