// Package render 在终端中以树形文本绘制组织架构图
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/freedkr/orgchart/internal/chart"
	"github.com/freedkr/orgchart/internal/projection"
)

// EmptyMessage 没有可生成的图时输出的占位文本
const EmptyMessage = "(empty chart: no records with a position value)"

const (
	branchMid  = "├── "
	branchLast = "└── "
	pipe       = "│   "
	space      = "    "
)

// Options 渲染选项
type Options struct {
	// HideDetails 只输出职位与表头字段
	HideDetails bool

	// MaxDepth 大于0时只绘制到该深度
	MaxDepth int
}

// TreeRenderer 树形文本渲染器
type TreeRenderer struct {
	r    *lipgloss.Renderer
	opts Options

	title   lipgloss.Style
	virtual lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
}

// NewTreeRenderer 创建渲染器，颜色能力根据 w 自动判断
func NewTreeRenderer(w io.Writer, opts Options) *TreeRenderer {
	r := lipgloss.NewRenderer(w)
	return &TreeRenderer{
		r:       r,
		opts:    opts,
		title:   r.NewStyle().Bold(true),
		virtual: r.NewStyle().Italic(true).Foreground(lipgloss.Color("#718096")),
		label:   r.NewStyle().Foreground(lipgloss.Color("#718096")),
		muted:   r.NewStyle().Faint(true),
	}
}

// Render 把渲染树输出为字符串
func (t *TreeRenderer) Render(v *chart.View) string {
	if v == nil || v.Empty || v.Root == nil {
		return t.muted.Render(EmptyMessage) + "\n"
	}
	var b strings.Builder
	t.node(&b, v.Root, "", true, true)
	return b.String()
}

// Write 把渲染结果写入 w
func (t *TreeRenderer) Write(w io.Writer, v *chart.View) error {
	_, err := io.WriteString(w, t.Render(v))
	return err
}

func (t *TreeRenderer) node(b *strings.Builder, n *chart.ViewNode, prefix string, last, root bool) {
	connector, childPrefix := "", ""
	if !root {
		connector = branchMid
		childPrefix = prefix + pipe
		if last {
			connector = branchLast
			childPrefix = prefix + space
		}
	}

	fmt.Fprintf(b, "%s%s%s\n", prefix, connector, t.titleStyle(n).Render(n.Position))

	descend := t.opts.MaxDepth <= 0 || n.Depth < t.opts.MaxDepth
	body := childPrefix + "  "
	if descend && len(n.Children) > 0 {
		body = childPrefix + "│ "
	}
	for _, item := range n.Header {
		fmt.Fprintf(b, "%s%s\n", body, t.itemStyle(item).Render(item.Value))
	}
	if !t.opts.HideDetails {
		for _, item := range n.Detail {
			fmt.Fprintf(b, "%s%s %s\n", body, t.label.Render(item.Column+":"), t.itemStyle(item).Render(item.Value))
		}
	}

	if !descend {
		if len(n.Children) > 0 {
			fmt.Fprintf(b, "%s%s\n", childPrefix, t.muted.Render(fmt.Sprintf("… %d more", countDescendants(n))))
		}
		return
	}
	for i, child := range n.Children {
		t.node(b, child, childPrefix, i == len(n.Children)-1, false)
	}
}

func (t *TreeRenderer) titleStyle(n *chart.ViewNode) lipgloss.Style {
	if n.Virtual {
		return t.virtual
	}
	s := t.title
	if n.Color != "" {
		s = s.Background(lipgloss.Color(n.Color)).Foreground(lipgloss.Color(n.TextColor)).Padding(0, 1)
	}
	return s
}

func (t *TreeRenderer) itemStyle(item projection.Item) lipgloss.Style {
	s := t.r.NewStyle()
	if item.Color != "" {
		s = s.Background(lipgloss.Color(item.Color))
	}
	if item.TextColor != "" {
		s = s.Foreground(lipgloss.Color(item.TextColor))
	}
	return s
}

func countDescendants(n *chart.ViewNode) int {
	total := 0
	for _, c := range n.Children {
		total += 1 + countDescendants(c)
	}
	return total
}
