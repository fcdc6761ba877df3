package model

// 虚拟根节点常量
const (
	VirtualRootID       = "root"
	VirtualRootPosition = "Organization"
)

// Field 节点上的一个展示字段
type Field struct {
	Column string `json:"column" yaml:"column"`
	Value  string `json:"value" yaml:"value"`
}

// Fields 有序字段列表，只包含有值的展示列
type Fields []Field

// Get 获取指定列的值，列不存在或为空时 ok 为 false
func (fs Fields) Get(column string) (string, bool) {
	for _, f := range fs {
		if f.Column == column {
			return f.Value, f.Value != ""
		}
	}
	return "", false
}

// Value 获取指定列的值，不存在返回空字符串
func (fs Fields) Value(column string) string {
	v, _ := fs.Get(column)
	return v
}

// Columns 字段列名列表
func (fs Fields) Columns() []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Column
	}
	return out
}

// Node 组织架构树节点
type Node struct {
	// ID 职位键（去除首尾空白）
	ID string `json:"id" yaml:"id"`

	// Position 职位名称
	Position string `json:"position" yaml:"position"`

	// ManagerKey 上级职位键，根节点可能为空
	ManagerKey string `json:"manager_key,omitempty" yaml:"manager_key,omitempty"`

	// Virtual 是否为合成的虚拟根节点
	Virtual bool `json:"virtual,omitempty" yaml:"virtual,omitempty"`

	// Children 下属节点，按输入顺序追加
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`

	// Data 展示列数据
	Data Fields `json:"data,omitempty" yaml:"data,omitempty"`
}

// NewNode 根据职位、上级和展示字段创建节点
func NewNode(position, manager string, data Fields) *Node {
	return &Node{
		ID:         position,
		Position:   position,
		ManagerKey: manager,
		Data:       data,
	}
}

// NewVirtualRoot 创建虚拟根节点，data 始终为空
func NewVirtualRoot(children []*Node) *Node {
	return &Node{
		ID:       VirtualRootID,
		Position: VirtualRootPosition,
		Virtual:  true,
		Children: children,
	}
}

// AddChild 添加下属节点
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// IsLeaf 是否为叶子节点
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// GetChildrenCount 获取直接下属数量
func (n *Node) GetChildrenCount() int {
	return len(n.Children)
}

// GetTotalDescendantsCount 获取所有后代数量（递归）
func (n *Node) GetTotalDescendantsCount() int {
	total := len(n.Children)
	for _, child := range n.Children {
		total += child.GetTotalDescendantsCount()
	}
	return total
}

// FindChild 根据ID查找直接下属
func (n *Node) FindChild(id string) *Node {
	for _, child := range n.Children {
		if child.ID == id {
			return child
		}
	}
	return nil
}

// Find 根据ID查找后代节点（含自身）
func (n *Node) Find(id string) *Node {
	if n.ID == id {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Walk 先序遍历，fn 返回 false 时不再进入该节点的子树
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// ToFlat 将树转换为先序扁平列表
func (n *Node) ToFlat() []*Node {
	var result []*Node
	n.Walk(func(node *Node, _ int) bool {
		result = append(result, node)
		return true
	})
	return result
}

// MaxDepth 树的最大深度，根为 0
func (n *Node) MaxDepth() int {
	max := 0
	n.Walk(func(_ *Node, depth int) bool {
		if depth > max {
			max = depth
		}
		return true
	})
	return max
}

// LeafCount 叶子节点数量
func (n *Node) LeafCount() int {
	count := 0
	n.Walk(func(node *Node, _ int) bool {
		if node.IsLeaf() {
			count++
		}
		return true
	})
	return count
}
