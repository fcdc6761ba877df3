package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freedkr/orgchart/internal/database"
	"github.com/freedkr/orgchart/internal/model"
)

// PreviewRequest 同步预览请求
type PreviewRequest struct {
	Columns []string                 `json:"columns" binding:"required,min=1"`
	Records []map[string]interface{} `json:"records"`
	Config  *model.ChartConfig       `json:"config"`
}

// ConfigRequest 保存图表配置请求
type ConfigRequest struct {
	Name   string             `json:"name" binding:"required"`
	Config *model.ChartConfig `json:"config" binding:"required"`
}

// ConfigResponse 图表配置响应
type ConfigResponse struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Config *model.ChartConfig `json:"config"`
}

// PreviewChart 不经过队列直接构建并返回渲染树
func (h *Handlers) PreviewChart(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	columns := model.NewColumnSet(req.Columns...)
	records := make([]model.Record, 0, len(req.Records))
	for _, r := range req.Records {
		records = append(records, model.Record(r))
	}

	cfg := req.Config
	if cfg == nil {
		cfg = model.DefaultChartConfig(columns)
	} else if err := cfg.ValidateAgainst(columns); err != nil {
		h.respondError(c, err, "图表配置无效")
		return
	}

	result, err := h.builder.Build(c.Request.Context(), records, cfg)
	if err != nil {
		h.respondError(c, err, "构建组织架构图失败")
		return
	}

	c.JSON(http.StatusOK, result.Document(columns))
}

// CreateConfig 保存图表配置
func (h *Handlers) CreateConfig(c *gin.Context) {
	var req ConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Config.Validate(); err != nil {
		h.respondError(c, err, "图表配置无效")
		return
	}

	record, err := database.NewChartConfigRecord(uuid.New().String(), strings.TrimSpace(req.Name), req.Config)
	if err != nil {
		h.respondError(c, err, "保存图表配置失败")
		return
	}
	if err := h.db.SaveChartConfig(c.Request.Context(), record); err != nil {
		h.respondError(c, err, "保存图表配置失败")
		return
	}

	c.JSON(http.StatusCreated, ConfigResponse{ID: record.ID, Name: record.Name, Config: req.Config})
}

// ListConfigs 列出图表配置
func (h *Handlers) ListConfigs(c *gin.Context) {
	records, err := h.db.ListChartConfigs(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "获取图表配置失败")
		return
	}

	configs := make([]ConfigResponse, 0, len(records))
	for _, r := range records {
		cfg, err := r.ChartConfig()
		if err != nil {
			continue
		}
		configs = append(configs, ConfigResponse{ID: r.ID, Name: r.Name, Config: cfg})
	}
	c.JSON(http.StatusOK, gin.H{"configs": configs})
}

// GetConfig 获取图表配置
func (h *Handlers) GetConfig(c *gin.Context) {
	record, err := h.db.GetChartConfig(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "图表配置不存在")
		return
	}
	cfg, err := record.ChartConfig()
	if err != nil {
		h.respondError(c, err, "图表配置已损坏")
		return
	}
	c.JSON(http.StatusOK, ConfigResponse{ID: record.ID, Name: record.Name, Config: cfg})
}

// DeleteConfig 删除图表配置
func (h *Handlers) DeleteConfig(c *gin.Context) {
	id := c.Param("id")
	if err := h.db.DeleteChartConfig(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "删除图表配置失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "图表配置已删除", "id": id})
}
