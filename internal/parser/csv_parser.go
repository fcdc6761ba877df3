package parser

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/freedkr/orgchart/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParserImpl CSV读取器实现，行长度可以不一致
type CSVParserImpl struct {
	config *ParserConfig
	logger *zap.Logger
}

// NewCSVParser 创建CSV读取器
func NewCSVParser(config *ParserConfig, logger *zap.Logger) *CSVParserImpl {
	if config == nil {
		config = DefaultParserConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVParserImpl{config: config, logger: logger}
}

// Parse 从输入流读取CSV
func (p *CSVParserImpl) Parse(ctx context.Context, input io.Reader) (*model.Dataset, error) {
	br := bufio.NewReader(input)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, model.NewParseError("", perr.Line, "", "CSV格式错误", err)
			}
			return nil, model.NewFileError(model.ErrCodeFileReadError, "<stream>", "read", "读取CSV失败", err)
		}
		rows = append(rows, row)

		if len(rows)%256 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
	}

	ds, err := rowsToDataset(ctx, rows, p.config)
	if err != nil {
		return nil, err
	}
	p.logger.Info("读取CSV完成",
		zap.Int("columns", len(ds.Columns)),
		zap.Int("records", len(ds.Records)))
	return ds, nil
}

// ParseFile 读取CSV文件
func (p *CSVParserImpl) ParseFile(ctx context.Context, filePath string) (*model.Dataset, error) {
	f, err := os.Open(filePath)
	if err != nil {
		code := model.ErrCodeFileReadError
		if os.IsNotExist(err) {
			code = model.ErrCodeFileNotFound
		}
		return nil, model.NewFileError(code, filePath, "open", "打开CSV文件失败", err)
	}
	defer f.Close()
	return p.Parse(ctx, f)
}

// GetName 获取读取器名称
func (p *CSVParserImpl) GetName() string {
	return "CSVParser"
}

// GetVersion 获取读取器版本
func (p *CSVParserImpl) GetVersion() string {
	return "1.0.0"
}

// GetSupportedFormats 获取支持的文件格式
func (p *CSVParserImpl) GetSupportedFormats() []string {
	return []string{".csv", ".txt"}
}
