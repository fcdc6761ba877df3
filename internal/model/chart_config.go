package model

import "strings"

// FilterKind 过滤条件类型
type FilterKind string

// 支持的过滤条件
const (
	FilterEquals     FilterKind = "equals"
	FilterNotEquals  FilterKind = "notEquals"
	FilterContains   FilterKind = "contains"
	FilterStartsWith FilterKind = "startsWith"
	FilterEndsWith   FilterKind = "endsWith"
)

// FilterKinds 全部过滤条件类型
var FilterKinds = []FilterKind{FilterEquals, FilterNotEquals, FilterContains, FilterStartsWith, FilterEndsWith}

// Filter 单列过滤条件，Value 去除空白后为空时不生效
type Filter struct {
	Kind  FilterKind `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=equals notEquals contains startsWith endsWith"`
	Value string     `json:"value" yaml:"value"`
}

// Active 过滤条件是否生效
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Value) != ""
}

// FilterSpec 列名 -> 过滤条件
type FilterSpec map[string]Filter

// ChartConfig 一次构建所需的完整配置快照
type ChartConfig struct {
	// PositionColumn 职位列
	PositionColumn string `json:"position_column" yaml:"position_column" validate:"required"`

	// ManagerColumn 上级职位列
	ManagerColumn string `json:"manager_column" yaml:"manager_column" validate:"required"`

	// DisplayColumns 展示列，按展示顺序
	DisplayColumns []string `json:"display_columns" yaml:"display_columns"`

	// HeaderFields 只显示值、不显示标签的列
	HeaderFields []string `json:"header_fields,omitempty" yaml:"header_fields,omitempty"`

	// ColorByColumn 按值着色的列
	ColorByColumn string `json:"color_by_column,omitempty" yaml:"color_by_column,omitempty"`

	// ValueColors 值 -> 颜色
	ValueColors map[string]string `json:"value_colors,omitempty" yaml:"value_colors,omitempty" validate:"omitempty,dive,hexcolor"`

	// CategoryColumn 分类列（如用工类型）
	CategoryColumn string `json:"category_column,omitempty" yaml:"category_column,omitempty"`

	// CategoryFieldMap 分类值 -> 该分类额外展示的列
	CategoryFieldMap map[string][]string `json:"category_field_map,omitempty" yaml:"category_field_map,omitempty"`

	// CategoryColors 分类值 -> 颜色
	CategoryColors map[string]string `json:"category_colors,omitempty" yaml:"category_colors,omitempty" validate:"omitempty,dive,hexcolor"`

	// ColumnColors 列 -> 字段背景色
	ColumnColors map[string]string `json:"column_colors,omitempty" yaml:"column_colors,omitempty" validate:"omitempty,dive,hexcolor"`

	// Filters 行过滤条件
	Filters FilterSpec `json:"filters,omitempty" yaml:"filters,omitempty" validate:"omitempty,dive"`
}

// DefaultChartConfig 根据列集合生成默认配置
// 第一列为职位列，第二列为上级列，其余列作为展示列
func DefaultChartConfig(columns ColumnSet) *ChartConfig {
	cfg := &ChartConfig{}
	if len(columns) >= 1 {
		cfg.PositionColumn = columns[0]
	}
	if len(columns) >= 2 {
		cfg.ManagerColumn = columns[1]
	}
	cfg.DisplayColumns = []string(columns.Without(cfg.PositionColumn, cfg.ManagerColumn))
	return cfg
}

// IsHeader 列是否为表头字段
func (c *ChartConfig) IsHeader(column string) bool {
	return containsString(c.HeaderFields, column)
}

// IsDisplay 列是否为展示列
func (c *ChartConfig) IsDisplay(column string) bool {
	return containsString(c.DisplayColumns, column)
}

// ToggleDisplayColumn 切换展示列，新列追加到末尾
func (c *ChartConfig) ToggleDisplayColumn(column string) {
	if c.IsDisplay(column) {
		c.DisplayColumns = removeString(c.DisplayColumns, column)
		c.HeaderFields = removeString(c.HeaderFields, column)
		return
	}
	c.DisplayColumns = append(c.DisplayColumns, column)
}

// SetHeaderFields 设置表头字段，并将展示列重排为表头字段在前、其余保持原顺序
func (c *ChartConfig) SetHeaderFields(fields []string) {
	header := make([]string, 0, len(fields))
	for _, f := range fields {
		if c.IsDisplay(f) && !containsString(header, f) {
			header = append(header, f)
		}
	}
	c.HeaderFields = header
	c.ReorderHeaderFirst()
}

// ReorderHeaderFirst 展示列重排为 表头字段 ++ 其余展示列
func (c *ChartConfig) ReorderHeaderFirst() {
	ordered := make([]string, 0, len(c.DisplayColumns))
	ordered = append(ordered, c.HeaderFields...)
	for _, col := range c.DisplayColumns {
		if !containsString(c.HeaderFields, col) {
			ordered = append(ordered, col)
		}
	}
	c.DisplayColumns = ordered
}

// ActiveFilters 生效的过滤条件
func (c *ChartConfig) ActiveFilters() FilterSpec {
	out := make(FilterSpec, len(c.Filters))
	for col, f := range c.Filters {
		if f.Active() {
			out[col] = f
		}
	}
	return out
}

// MissingColumns 配置中引用但数据集不存在的列
func (c *ChartConfig) MissingColumns(columns ColumnSet) []string {
	var missing []string
	check := func(col string) {
		if col != "" && !columns.Contains(col) && !containsString(missing, col) {
			missing = append(missing, col)
		}
	}
	check(c.PositionColumn)
	check(c.ManagerColumn)
	check(c.ColorByColumn)
	check(c.CategoryColumn)
	for _, col := range c.DisplayColumns {
		check(col)
	}
	for col := range c.Filters {
		check(col)
	}
	return missing
}

// Clone 深拷贝配置
func (c *ChartConfig) Clone() *ChartConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.DisplayColumns = append([]string(nil), c.DisplayColumns...)
	out.HeaderFields = append([]string(nil), c.HeaderFields...)
	out.ValueColors = cloneStringMap(c.ValueColors)
	out.CategoryColors = cloneStringMap(c.CategoryColors)
	out.ColumnColors = cloneStringMap(c.ColumnColors)
	if c.CategoryFieldMap != nil {
		out.CategoryFieldMap = make(map[string][]string, len(c.CategoryFieldMap))
		for k, v := range c.CategoryFieldMap {
			out.CategoryFieldMap[k] = append([]string(nil), v...)
		}
	}
	if c.Filters != nil {
		out.Filters = make(FilterSpec, len(c.Filters))
		for k, v := range c.Filters {
			out.Filters[k] = v
		}
	}
	return &out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func removeString(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
