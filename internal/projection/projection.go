// Package projection 计算每个节点展示哪些字段、以何种顺序和颜色展示
package projection

import (
	"strings"

	"github.com/freedkr/orgchart/internal/model"
)

// Bucket 字段所在的展示区域
type Bucket string

const (
	// BucketHeader 只显示值
	BucketHeader Bucket = "header"
	// BucketDetail 显示标签和值
	BucketDetail Bucket = "detail"
)

// Item 一个待渲染的字段
type Item struct {
	Column string `json:"column"`
	Value  string `json:"value"`
	Bucket Bucket `json:"bucket"`

	// Color 字段自身的背景色，未配置时为空
	Color string `json:"color,omitempty"`

	// TextColor 字段文字颜色：有自身背景色时取其对比色，否则沿用节点文字颜色
	TextColor string `json:"text_color,omitempty"`
}

// Projection 单个节点的投影结果
type Projection struct {
	OrderedColumns []string `json:"ordered_columns"`
	HeaderItems    []Item   `json:"header_items"`
	DetailItems    []Item   `json:"detail_items"`

	// NodeColor 节点背景色，为空表示默认样式
	NodeColor     string `json:"node_color,omitempty"`
	NodeTextColor string `json:"node_text_color,omitempty"`

	// Category 节点的分类值（去空白）
	Category string `json:"category,omitempty"`
}

// Items 按 OrderedColumns 顺序返回全部字段
func (p *Projection) Items() []Item {
	out := make([]Item, 0, len(p.HeaderItems)+len(p.DetailItems))
	h, d := 0, 0
	for _, col := range p.OrderedColumns {
		switch {
		case h < len(p.HeaderItems) && p.HeaderItems[h].Column == col:
			out = append(out, p.HeaderItems[h])
			h++
		case d < len(p.DetailItems) && p.DetailItems[d].Column == col:
			out = append(out, p.DetailItems[d])
			d++
		}
	}
	return out
}

// Projector 基于一份配置快照计算节点投影，不持有可变状态
type Projector struct {
	cfg    *model.ChartConfig
	header map[string]bool
}

// NewProjector 创建投影器，nil 配置视为空配置
func NewProjector(cfg *model.ChartConfig) *Projector {
	if cfg == nil {
		cfg = &model.ChartConfig{}
	}
	header := make(map[string]bool, len(cfg.HeaderFields))
	for _, h := range cfg.HeaderFields {
		header[h] = true
	}
	return &Projector{cfg: cfg, header: header}
}

// Project 使用给定配置计算节点投影
func Project(node *model.Node, cfg *model.ChartConfig) *Projection {
	return NewProjector(cfg).Project(node)
}

// Project 计算节点投影；虚拟根与 nil 节点返回空投影
func (p *Projector) Project(node *model.Node) *Projection {
	proj := &Projection{
		OrderedColumns: []string{},
		HeaderItems:    []Item{},
		DetailItems:    []Item{},
	}
	if node == nil || node.Virtual {
		return proj
	}

	proj.Category = p.category(node)
	proj.OrderedColumns = p.orderedColumns(proj.Category)
	proj.NodeColor = p.nodeColor(node, proj.Category)
	proj.NodeTextColor = ContrastColor(proj.NodeColor)

	for _, col := range proj.OrderedColumns {
		value, ok := node.Data.Get(col)
		if !ok {
			continue
		}
		item := Item{Column: col, Value: value, TextColor: proj.NodeTextColor}
		if c := p.cfg.ColumnColors[col]; c != "" {
			item.Color = c
			item.TextColor = ContrastColor(c)
		}
		if p.header[col] {
			item.Bucket = BucketHeader
			proj.HeaderItems = append(proj.HeaderItems, item)
		} else {
			item.Bucket = BucketDetail
			proj.DetailItems = append(proj.DetailItems, item)
		}
	}
	return proj
}

func (p *Projector) category(node *model.Node) string {
	if p.cfg.CategoryColumn == "" {
		return ""
	}
	return strings.TrimSpace(node.Data.Value(p.cfg.CategoryColumn))
}

// orderedColumns 分类有专属字段时追加在展示列之后，分类列若在展示列中则移到最前
func (p *Projector) orderedColumns(category string) []string {
	display := p.cfg.DisplayColumns
	if p.cfg.CategoryColumn == "" || len(p.cfg.CategoryFieldMap) == 0 {
		return append([]string{}, display...)
	}

	extra := ColumnsForCategory(p.cfg.CategoryFieldMap, category)
	if len(extra) == 0 {
		return append([]string{}, display...)
	}

	combined := make([]string, 0, len(display)+len(extra))
	combined = append(combined, display...)
	for _, col := range extra {
		if !contains(combined, col) {
			combined = append(combined, col)
		}
	}

	catCol := p.cfg.CategoryColumn
	if !contains(display, catCol) {
		return combined
	}
	ordered := make([]string, 0, len(combined))
	ordered = append(ordered, catCol)
	for _, col := range combined {
		if col != catCol {
			ordered = append(ordered, col)
		}
	}
	return ordered
}

// nodeColor 优先分类颜色，其次按着色列的原始值查找
func (p *Projector) nodeColor(node *model.Node, category string) string {
	if p.cfg.CategoryColumn != "" {
		if c := p.cfg.CategoryColors[category]; c != "" {
			return c
		}
	}
	if p.cfg.ColorByColumn != "" {
		if v, ok := node.Data.Get(p.cfg.ColorByColumn); ok {
			if c := p.cfg.ValueColors[v]; c != "" {
				return c
			}
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
