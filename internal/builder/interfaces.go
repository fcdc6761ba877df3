// Package builder 定义层级解析器相关接口
package builder

import (
	"context"

	"github.com/freedkr/orgchart/internal/model"
)

// HierarchyResolver 层级解析器接口
// 负责将扁平的记录按 职位/上级 关系构建成单根树
type HierarchyResolver interface {
	// Resolve 构建树，无法得到任何节点时返回 nil
	Resolve(records []model.Record, positionColumn, managerColumn string, displayColumns []string) *model.Node

	// Build 构建树并返回警告与统计信息
	Build(ctx context.Context, records []model.Record, options *BuildOptions) (*BuildResult, error)

	// Validate 验证树结构
	Validate(root *model.Node) *model.ErrorList

	// GetName 获取解析器名称
	GetName() string

	// GetVersion 获取解析器版本
	GetVersion() string
}

// BuildOptions 构建选项
type BuildOptions struct {
	// PositionColumn 职位列
	PositionColumn string `json:"position_column"`

	// ManagerColumn 上级列
	ManagerColumn string `json:"manager_column"`

	// DisplayColumns 节点上保留的展示列
	DisplayColumns []string `json:"display_columns"`
}

// OptionsFromConfig 从配置快照提取构建选项
func OptionsFromConfig(cfg *model.ChartConfig) *BuildOptions {
	if cfg == nil {
		return &BuildOptions{}
	}
	return &BuildOptions{
		PositionColumn: cfg.PositionColumn,
		ManagerColumn:  cfg.ManagerColumn,
		DisplayColumns: cfg.DisplayColumns,
	}
}

// BuildResult 构建结果
type BuildResult struct {
	// Root 树根，为 nil 表示没有可生成的图
	Root *model.Node `json:"root"`

	// Warnings 警告信息
	Warnings []*BuildWarning `json:"warnings,omitempty"`

	// Stats 构建统计
	Stats *BuildStats `json:"stats"`
}

// Empty 是否没有可生成的图
func (r *BuildResult) Empty() bool {
	return r == nil || r.Root == nil
}

// WarningsByCode 按警告代码过滤
func (r *BuildResult) WarningsByCode(code model.ErrorCode) []*BuildWarning {
	var out []*BuildWarning
	for _, w := range r.Warnings {
		if w.Code == code {
			out = append(out, w)
		}
	}
	return out
}

// BuildWarning 构建警告
type BuildWarning struct {
	Code     model.ErrorCode `json:"code"`
	Message  string          `json:"message"`
	NodeID   string          `json:"node_id"`
	Manager  string          `json:"manager,omitempty"`
	RowIndex int             `json:"row_index,omitempty"` // 从0开始的记录下标
}

// AsError 转换为层级错误
func (w *BuildWarning) AsError() error {
	return model.NewHierarchyError(w.Code, w.NodeID, w.Manager, w.Message)
}

// BuildStats 构建统计
type BuildStats struct {
	InputRecords       int   `json:"input_records"`       // 输入记录数
	DroppedRecords     int   `json:"dropped_records"`     // 职位为空被丢弃的记录数
	DuplicatePositions int   `json:"duplicate_positions"` // 重复职位次数
	DanglingManagers   int   `json:"dangling_managers"`   // 上级不存在的节点数
	SelfReferences     int   `json:"self_references"`     // 上级为自身的节点数
	BrokenCycles       int   `json:"broken_cycles"`       // 被断开的环
	RootCandidates     int   `json:"root_candidates"`     // 根候选数
	OutputNodes        int   `json:"output_nodes"`        // 输出节点数（不含虚拟根）
	MaxDepth           int   `json:"max_depth"`           // 最大深度（根为0）
	LeafNodes          int   `json:"leaf_nodes"`          // 叶子节点数
	VirtualRoot        bool  `json:"virtual_root"`        // 是否合成了虚拟根
	ProcessingTime     int64 `json:"processing_time"`     // 处理时间(毫秒)
}
