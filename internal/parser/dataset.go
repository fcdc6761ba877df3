package parser

import (
	"context"
	"strconv"

	"github.com/freedkr/orgchart/internal/model"
)

// emptyHeader 空表头单元格的列名前缀
const emptyHeader = "__EMPTY"

// HeaderNames 根据表头行生成互不重复的列名
// 空表头命名为 __EMPTY、__EMPTY_1...，重名列追加 _1、_2 后缀
func HeaderNames(header []string, width int) []string {
	if width < len(header) {
		width = len(header)
	}

	counts := make(map[string]int, width)
	names := make([]string, width)
	for i := 0; i < width; i++ {
		base := ""
		if i < len(header) {
			base = header[i]
		}
		if base == "" {
			base = emptyHeader
		}

		name := base
		if counter := counts[base]; counter == 0 {
			counts[base] = 1
		} else {
			for {
				name = base + "_" + strconv.Itoa(counter)
				counter++
				if counts[name] == 0 {
					break
				}
			}
			counts[base] = counter
			counts[name] = 1
		}
		names[i] = name
	}
	return names
}

// rowsToDataset 第一行作为表头，其余行转换为记录
func rowsToDataset(ctx context.Context, rows [][]string, config *ParserConfig) (*model.Dataset, error) {
	if len(rows) == 0 {
		return nil, model.NewBaseError(model.ErrCodeEmptySheet, "工作表没有任何数据")
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	columns := model.ColumnSet(HeaderNames(rows[0], width))

	ds := &model.Dataset{
		Columns: columns,
		Records: make([]model.Record, 0, len(rows)-1),
	}
	for i, row := range rows[1:] {
		if config.SkipEmptyRows && isBlankRow(row) {
			continue
		}
		if config.MaxRows > 0 && len(ds.Records) >= config.MaxRows {
			break
		}

		record := make(model.Record, len(columns))
		for j, col := range columns {
			if j < len(row) {
				record[col] = row[j]
			} else {
				record[col] = ""
			}
		}
		ds.Records = append(ds.Records, record)

		// 检查上下文取消
		if i%256 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
	}
	return ds, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
