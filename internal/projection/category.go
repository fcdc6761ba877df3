package projection

import (
	"sort"
	"strings"

	"github.com/freedkr/orgchart/internal/model"
)

// UniqueCategories 分类列的全部取值（去空白、非空、升序）
func UniqueCategories(records []model.Record, column string) []string {
	if column == "" {
		return []string{}
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		v := r.Trimmed(column)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// ColumnsForCategory 某个分类值额外展示的列，未配置时为空
func ColumnsForCategory(fieldMap map[string][]string, category string) []string {
	cat := strings.TrimSpace(category)
	if cat == "" || fieldMap == nil {
		return []string{}
	}
	cols, ok := fieldMap[cat]
	if !ok {
		return []string{}
	}
	return cols
}

// AvailableCategoryColumns 可以作为分类专属字段的列
// 排除分类列、职位列和上级列
func AvailableCategoryColumns(columns model.ColumnSet, cfg *model.ChartConfig) []string {
	if cfg == nil {
		return []string(columns)
	}
	return []string(columns.Without(cfg.CategoryColumn, cfg.PositionColumn, cfg.ManagerColumn))
}

// DataColumns 节点需要保留的列：展示列、各分类的专属列和分类列
// 分类列只用于判定，不会因此被展示；着色列必须是展示列才会生效
func DataColumns(cfg *model.ChartConfig) []string {
	if cfg == nil {
		return nil
	}
	cols := append([]string{}, cfg.DisplayColumns...)
	if cfg.CategoryColumn != "" {
		categories := make([]string, 0, len(cfg.CategoryFieldMap))
		for cat := range cfg.CategoryFieldMap {
			categories = append(categories, cat)
		}
		sort.Strings(categories)
		for _, cat := range categories {
			cols = append(cols, cfg.CategoryFieldMap[cat]...)
		}
		cols = append(cols, cfg.CategoryColumn)
	}
	return []string(model.NewColumnSet(cols...))
}
