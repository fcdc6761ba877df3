// Package chart 串联行过滤、层级解析和字段投影，生成可渲染的组织架构图
package chart

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/freedkr/orgchart/internal/builder"
	"github.com/freedkr/orgchart/internal/filter"
	"github.com/freedkr/orgchart/internal/model"
	"github.com/freedkr/orgchart/internal/projection"
)

// Chart 一次构建的结果
type Chart struct {
	// Root 过滤后解析出的树，nil 表示没有可生成的图
	Root *model.Node `json:"root"`

	// Config 构建时使用的配置快照
	Config *model.ChartConfig `json:"config"`

	// Warnings 层级解析警告
	Warnings []*builder.BuildWarning `json:"warnings,omitempty"`

	// Stats 构建统计
	Stats *Stats `json:"stats"`

	projector *projection.Projector
}

// Stats 构建统计
type Stats struct {
	InputRecords    int                 `json:"input_records"`
	FilteredRecords int                 `json:"filtered_records"`
	ActiveFilters   int                 `json:"active_filters"`
	Hierarchy       *builder.BuildStats `json:"hierarchy"`
	BuiltAt         time.Time           `json:"built_at"`
}

// Empty 是否没有可生成的图
func (c *Chart) Empty() bool {
	return c == nil || c.Root == nil
}

// Project 计算单个节点的投影，渲染时按需调用
func (c *Chart) Project(node *model.Node) *projection.Projection {
	if c.projector == nil {
		c.projector = projection.NewProjector(c.Config)
	}
	return c.projector.Project(node)
}

// Builder 组装过滤、解析与投影
type Builder struct {
	resolver *builder.HierarchyBuilderImpl
	logger   *zap.Logger
}

// NewBuilder 创建构建器
func NewBuilder(resolver *builder.HierarchyBuilderImpl, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = builder.NewHierarchyBuilder(nil, logger)
	}
	return &Builder{resolver: resolver, logger: logger}
}

// Build 原始记录 -> 行过滤 -> 层级解析
// 每次调用都基于完整的配置快照重新计算，不修改输入
func (b *Builder) Build(ctx context.Context, records []model.Record, cfg *model.ChartConfig) (*Chart, error) {
	snapshot := cfg.Clone()
	if snapshot == nil {
		snapshot = &model.ChartConfig{}
	}

	active := filter.Clean(snapshot.Filters)
	filtered := filter.Apply(records, active)

	opts := builder.OptionsFromConfig(snapshot)
	opts.DisplayColumns = projection.DataColumns(snapshot)

	result, err := b.resolver.Build(ctx, filtered, opts)
	if err != nil && result == nil {
		return nil, err
	}

	c := &Chart{
		Root:     result.Root,
		Config:   snapshot,
		Warnings: result.Warnings,
		Stats: &Stats{
			InputRecords:    len(records),
			FilteredRecords: len(filtered),
			ActiveFilters:   len(active),
			Hierarchy:       result.Stats,
			BuiltAt:         time.Now(),
		},
		projector: projection.NewProjector(snapshot),
	}

	b.logger.Info("组织架构图构建完成",
		zap.Int("input_records", len(records)),
		zap.Int("filtered_records", len(filtered)),
		zap.Int("nodes", result.Stats.OutputNodes),
		zap.Int("warnings", len(result.Warnings)),
		zap.Bool("empty", c.Empty()))

	return c, err
}

// Build 使用默认解析器构建
func Build(ctx context.Context, records []model.Record, cfg *model.ChartConfig) (*Chart, error) {
	return NewBuilder(nil, nil).Build(ctx, records, cfg)
}
