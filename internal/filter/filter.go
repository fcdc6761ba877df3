// Package filter 实现记录行过滤：按列条件做 AND 组合，保持输入顺序
package filter

import (
	"sort"
	"strings"

	"github.com/freedkr/orgchart/internal/model"
)

// DefaultSuggestionLimit 每列候选值的默认数量上限
const DefaultSuggestionLimit = 20

// condition 预处理后的单列条件
type condition struct {
	column string
	kind   model.FilterKind
	needle string
}

// compile 丢弃不生效的条件，并对条件值做小写、去空白处理
// 列名排序保证求值顺序确定
func compile(spec model.FilterSpec) []condition {
	columns := make([]string, 0, len(spec))
	for col, f := range spec {
		if f.Active() {
			columns = append(columns, col)
		}
	}
	sort.Strings(columns)

	conds := make([]condition, 0, len(columns))
	for _, col := range columns {
		f := spec[col]
		conds = append(conds, condition{
			column: col,
			kind:   f.Kind,
			needle: normalize(f.Value),
		})
	}
	return conds
}

// Apply 返回通过全部生效条件的记录，不修改输入
// 没有生效条件时返回与输入内容、顺序一致的新切片
func Apply(records []model.Record, spec model.FilterSpec) []model.Record {
	conds := compile(spec)
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if matchAll(r, conds) {
			out = append(out, r)
		}
	}
	return out
}

// Matches 单条记录是否通过全部生效条件
func Matches(r model.Record, spec model.FilterSpec) bool {
	return matchAll(r, compile(spec))
}

// Clean 去掉不生效的条件
func Clean(spec model.FilterSpec) model.FilterSpec {
	out := make(model.FilterSpec, len(spec))
	for col, f := range spec {
		if f.Active() {
			out[col] = f
		}
	}
	return out
}

func matchAll(r model.Record, conds []condition) bool {
	for _, c := range conds {
		if !c.match(r) {
			return false
		}
	}
	return true
}

// match 空单元格对任何生效条件都不通过，包括 notEquals
func (c condition) match(r model.Record) bool {
	cell := normalize(r.Get(c.column))
	if cell == "" {
		return false
	}

	switch c.kind {
	case model.FilterEquals:
		return cell == c.needle
	case model.FilterNotEquals:
		return cell != c.needle
	case model.FilterStartsWith:
		return strings.HasPrefix(cell, c.needle)
	case model.FilterEndsWith:
		return strings.HasSuffix(cell, c.needle)
	default:
		// contains 以及未知类型
		return strings.Contains(cell, c.needle)
	}
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// ColumnValues 某列去重后的候选值（去空白、非空、升序），limit<=0 表示不限制
func ColumnValues(records []model.Record, column string, limit int) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, r := range records {
		v := r.Trimmed(column)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	return values
}

// Suggestions 为每一列生成候选值
func Suggestions(records []model.Record, columns model.ColumnSet, limit int) map[string][]string {
	out := make(map[string][]string, len(columns))
	for _, col := range columns {
		out[col] = ColumnValues(records, col, limit)
	}
	return out
}
