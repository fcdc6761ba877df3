package chart

import (
	"github.com/freedkr/orgchart/internal/builder"
	"github.com/freedkr/orgchart/internal/model"
	"github.com/freedkr/orgchart/internal/projection"
)

// ViewNode 渲染用的节点，投影结果在遍历时计算
type ViewNode struct {
	ID        string            `json:"id"`
	Position  string            `json:"position"`
	Depth     int               `json:"depth"`
	Virtual   bool              `json:"virtual,omitempty"`
	Color     string            `json:"color,omitempty"`
	TextColor string            `json:"text_color,omitempty"`
	Category  string            `json:"category,omitempty"`
	Header    []projection.Item `json:"header"`
	Detail    []projection.Item `json:"detail"`
	Children  []*ViewNode       `json:"children,omitempty"`
}

// View 渲染输出
type View struct {
	Root     *ViewNode `json:"root"`
	Empty    bool      `json:"empty"`
	Stats    *Stats    `json:"stats,omitempty"`
	Warnings int       `json:"warnings"`
}

// View 生成渲染树
func (c *Chart) View() *View {
	v := &View{Empty: c.Empty()}
	if c == nil {
		return v
	}
	v.Stats = c.Stats
	v.Warnings = len(c.Warnings)
	if c.Root != nil {
		v.Root = c.viewNode(c.Root, 0)
	}
	return v
}

func (c *Chart) viewNode(n *model.Node, depth int) *ViewNode {
	p := c.Project(n)
	vn := &ViewNode{
		ID:        n.ID,
		Position:  n.Position,
		Depth:     depth,
		Virtual:   n.Virtual,
		Color:     p.NodeColor,
		TextColor: p.NodeTextColor,
		Category:  p.Category,
		Header:    p.HeaderItems,
		Detail:    p.DetailItems,
	}
	if len(n.Children) > 0 {
		vn.Children = make([]*ViewNode, 0, len(n.Children))
		for _, child := range n.Children {
			vn.Children = append(vn.Children, c.viewNode(child, depth+1))
		}
	}
	return vn
}

// Walk 先序遍历渲染树
func (vn *ViewNode) Walk(fn func(node *ViewNode)) {
	fn(vn)
	for _, child := range vn.Children {
		child.Walk(fn)
	}
}

// Document 构建结果的持久化形式
type Document struct {
	Columns  model.ColumnSet         `json:"columns"`
	Config   *model.ChartConfig      `json:"config"`
	View     *View                   `json:"view"`
	Warnings []*builder.BuildWarning `json:"warnings,omitempty"`
}

// Document 生成包含渲染树与警告的结果文档
func (c *Chart) Document(columns model.ColumnSet) *Document {
	doc := &Document{Columns: columns, View: c.View()}
	if c != nil {
		doc.Config = c.Config
		doc.Warnings = c.Warnings
	}
	return doc
}
