// Package builder 实现组织架构层级解析
package builder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/freedkr/orgchart/internal/model"
)

var _ HierarchyResolver = (*HierarchyBuilderImpl)(nil)

// HierarchyBuilderImpl 层级解析器实现
type HierarchyBuilderImpl struct {
	config *BuilderConfig
	logger *zap.Logger
}

// BuilderConfig 解析器配置
type BuilderConfig struct {
	// StrictMode 为 true 时，Build 在返回完整结果的同时把所有警告汇总为错误
	StrictMode bool `yaml:"strict_mode" json:"strict_mode"`

	// LogWarnings 是否逐条记录警告日志
	LogWarnings bool `yaml:"log_warnings" json:"log_warnings"`
}

// NewHierarchyBuilder 创建新的层级解析器
func NewHierarchyBuilder(config *BuilderConfig, logger *zap.Logger) *HierarchyBuilderImpl {
	if config == nil {
		config = &BuilderConfig{
			StrictMode:  false,
			LogWarnings: true,
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HierarchyBuilderImpl{
		config: config,
		logger: logger,
	}
}

// Resolve 使用默认配置构建树
func Resolve(records []model.Record, positionColumn, managerColumn string, displayColumns []string) *model.Node {
	return NewHierarchyBuilder(nil, nil).Resolve(records, positionColumn, managerColumn, displayColumns)
}

// Resolve 构建树，无法得到任何节点时返回 nil
func (b *HierarchyBuilderImpl) Resolve(records []model.Record, positionColumn, managerColumn string, displayColumns []string) *model.Node {
	result, _ := b.resolve(context.Background(), records, &BuildOptions{
		PositionColumn: positionColumn,
		ManagerColumn:  managerColumn,
		DisplayColumns: displayColumns,
	})
	return result.Root
}

// Build 构建树并返回警告与统计信息
// 数据问题不会导致失败，只有上下文取消或严格模式下存在警告时返回错误
func (b *HierarchyBuilderImpl) Build(ctx context.Context, records []model.Record, options *BuildOptions) (*BuildResult, error) {
	if options == nil {
		options = &BuildOptions{}
	}

	result, err := b.resolve(ctx, records, options)
	if err != nil {
		return nil, err
	}

	if b.config.LogWarnings {
		for _, w := range result.Warnings {
			b.logger.Warn("层级数据异常",
				zap.String("code", string(w.Code)),
				zap.String("position", w.NodeID),
				zap.String("manager", w.Manager),
				zap.Int("row", w.RowIndex),
				zap.String("message", w.Message))
		}
	}
	b.logger.Debug("层级构建完成",
		zap.Int("input_records", result.Stats.InputRecords),
		zap.Int("output_nodes", result.Stats.OutputNodes),
		zap.Int("root_candidates", result.Stats.RootCandidates),
		zap.Bool("virtual_root", result.Stats.VirtualRoot))

	if b.config.StrictMode && len(result.Warnings) > 0 {
		errs := model.NewErrorList()
		for _, w := range result.Warnings {
			errs.Add(w.AsError())
		}
		return result, errs
	}
	return result, nil
}

// entry 节点及其所在的记录下标
type entry struct {
	node *model.Node
	row  int
}

func (b *HierarchyBuilderImpl) resolve(ctx context.Context, records []model.Record, opts *BuildOptions) (*BuildResult, error) {
	start := time.Now()
	result := &BuildResult{Stats: &BuildStats{InputRecords: len(records)}}
	stats := result.Stats
	display := uniqueColumns(opts.DisplayColumns)

	// 第一步：创建节点
	// 重复职位后写覆盖先写，但保留第一次出现时的遍历位置
	nodeMap := make(map[string]*entry, len(records))
	order := make([]string, 0, len(records))
	for i, record := range records {
		position := record.Trimmed(opts.PositionColumn)
		if position == "" {
			stats.DroppedRecords++
			continue
		}
		manager := record.Trimmed(opts.ManagerColumn)
		node := model.NewNode(position, manager, projectData(record, display))

		if prev, exists := nodeMap[position]; exists {
			stats.DuplicatePositions++
			result.Warnings = append(result.Warnings, &BuildWarning{
				Code:     model.ErrCodeDuplicatePosition,
				Message:  fmt.Sprintf("职位重复，第%d条记录覆盖第%d条", i, prev.row),
				NodeID:   position,
				RowIndex: i,
			})
		} else {
			order = append(order, position)
		}
		nodeMap[position] = &entry{node: node, row: i}

		// 检查上下文取消
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	// 第二步：建立上下级关系
	parentOf := make(map[string]string, len(order))
	roots := make([]*model.Node, 0)
	for _, id := range order {
		e := nodeMap[id]
		node := e.node

		switch {
		case node.ManagerKey == "":
			roots = append(roots, node)
		case node.ManagerKey == node.ID:
			stats.SelfReferences++
			result.Warnings = append(result.Warnings, &BuildWarning{
				Code:     model.ErrCodeSelfReference,
				Message:  "上级为自身，作为根节点处理",
				NodeID:   node.ID,
				Manager:  node.ManagerKey,
				RowIndex: e.row,
			})
			roots = append(roots, node)
		default:
			parent, ok := nodeMap[node.ManagerKey]
			if !ok {
				stats.DanglingManagers++
				result.Warnings = append(result.Warnings, &BuildWarning{
					Code:     model.ErrCodeDanglingManager,
					Message:  "上级不存在，作为根节点处理",
					NodeID:   node.ID,
					Manager:  node.ManagerKey,
					RowIndex: e.row,
				})
				roots = append(roots, node)
				break
			}
			if reaches(parentOf, parent.node.ID, node.ID) {
				stats.BrokenCycles++
				result.Warnings = append(result.Warnings, &BuildWarning{
					Code:     model.ErrCodeCycleBroken,
					Message:  "上级关系成环，断开该边并作为根节点处理",
					NodeID:   node.ID,
					Manager:  node.ManagerKey,
					RowIndex: e.row,
				})
				roots = append(roots, node)
				break
			}
			parent.node.AddChild(node)
			parentOf[node.ID] = parent.node.ID
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	// 第三步：根节点归一
	stats.RootCandidates = len(roots)
	switch len(roots) {
	case 0:
		result.Root = nil
	case 1:
		result.Root = roots[0]
	default:
		result.Root = model.NewVirtualRoot(roots)
		stats.VirtualRoot = true
	}

	stats.OutputNodes = len(order)
	if result.Root != nil {
		stats.MaxDepth = result.Root.MaxDepth()
		stats.LeafNodes = result.Root.LeafCount()
	}
	stats.ProcessingTime = time.Since(start).Milliseconds()
	return result, nil
}

// reaches 从 from 沿已建立的上级链向上查找 target
// parentOf 始终无环，因此查找必然终止
func reaches(parentOf map[string]string, from, target string) bool {
	for cur, ok := from, true; ok; cur, ok = parentOf[cur] {
		if cur == target {
			return true
		}
	}
	return false
}

// projectData 按展示列顺序提取有值的单元格
func projectData(record model.Record, columns []string) model.Fields {
	var data model.Fields
	for _, col := range columns {
		if v := record.Get(col); v != "" {
			data = append(data, model.Field{Column: col, Value: v})
		}
	}
	return data
}

func uniqueColumns(columns []string) []string {
	return []string(model.NewColumnSet(columns...))
}

// Validate 验证树结构：节点不重复出现、ID 非空、虚拟根不携带数据
func (b *HierarchyBuilderImpl) Validate(root *model.Node) *model.ErrorList {
	errs := model.NewErrorList()
	if root == nil {
		return nil
	}

	seen := make(map[*model.Node]bool)
	ids := make(map[string]bool)
	var visit func(n *model.Node, depth int)
	visit = func(n *model.Node, depth int) {
		if seen[n] {
			errs.Add(model.NewHierarchyError(model.ErrCodeHierarchy, n.ID, "", "节点被重复引用"))
			return
		}
		seen[n] = true

		if n.ID == "" {
			errs.Add(model.NewValidationError("id", "", "required", "节点ID不能为空"))
		}
		if !n.Virtual {
			if ids[n.ID] {
				errs.Add(model.NewHierarchyError(model.ErrCodeDuplicatePosition, n.ID, "", "节点ID重复"))
			}
			ids[n.ID] = true
		}

		if n.Virtual {
			if depth != 0 {
				errs.Add(model.NewHierarchyError(model.ErrCodeHierarchy, n.ID, "", "虚拟根只能位于顶层"))
			}
			if len(n.Data) != 0 {
				errs.Add(model.NewValidationError("data", len(n.Data), "empty", "虚拟根不能携带数据"))
			}
		}

		for _, child := range n.Children {
			visit(child, depth+1)
		}
	}
	visit(root, 0)

	if !errs.HasError() {
		return nil
	}
	return errs
}

// GetStatistics 获取树的统计信息
func (b *HierarchyBuilderImpl) GetStatistics(root *model.Node) map[string]interface{} {
	stats := make(map[string]interface{})
	if root == nil {
		stats["total_nodes"] = 0
		return stats
	}

	total := root.GetTotalDescendantsCount()
	if !root.Virtual {
		total++
	}
	stats["total_nodes"] = total
	stats["max_depth"] = root.MaxDepth()
	stats["leaf_nodes"] = root.LeafCount()
	stats["virtual_root"] = root.Virtual
	stats["top_level_nodes"] = len(topLevel(root))
	return stats
}

func topLevel(root *model.Node) []*model.Node {
	if root.Virtual {
		return root.Children
	}
	return []*model.Node{root}
}

// GetName 获取解析器名称
func (b *HierarchyBuilderImpl) GetName() string {
	return "HierarchyResolver"
}

// GetVersion 获取解析器版本
func (b *HierarchyBuilderImpl) GetVersion() string {
	return "1.0.0"
}
