// Package handlers api-server 的 HTTP 处理器
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freedkr/orgchart/internal/chart"
	"github.com/freedkr/orgchart/internal/config"
	"github.com/freedkr/orgchart/internal/database"
	"github.com/freedkr/orgchart/internal/model"
	"github.com/freedkr/orgchart/internal/parser"
	"github.com/freedkr/orgchart/internal/queue"
	"github.com/freedkr/orgchart/internal/storage"
)

// presignExpiry 结果下载链接有效期
const presignExpiry = 15 * time.Minute

// Handlers API处理器
type Handlers struct {
	db            database.DatabaseInterface
	queue         queue.Client
	storage       storage.StorageInterface
	builder       *chart.Builder
	parserConfig  *parser.ParserConfig
	maxUploadSize int64
	logger        *zap.Logger
}

// Options 处理器依赖之外的可选参数
type Options struct {
	Builder       *chart.Builder
	Parser        *config.ParserConfig
	MaxUploadSize int64
	Logger        *zap.Logger
}

// NewHandlers 创建处理器
func NewHandlers(db database.DatabaseInterface, q queue.Client, s storage.StorageInterface, opts Options) *Handlers {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	b := opts.Builder
	if b == nil {
		b = chart.NewBuilder(nil, logger)
	}
	pcfg := parser.DefaultParserConfig()
	if opts.Parser != nil {
		pcfg = &parser.ParserConfig{
			SheetName:     opts.Parser.SheetName,
			SkipEmptyRows: opts.Parser.SkipEmptyRows,
			MaxRows:       opts.Parser.MaxRows,
		}
	}
	maxUpload := opts.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &Handlers{
		db:            db,
		queue:         q,
		storage:       s,
		builder:       b,
		parserConfig:  pcfg,
		maxUploadSize: maxUpload,
		logger:        logger,
	}
}

// Register 注册 /api/v1 下的路由
func (h *Handlers) Register(api *gin.RouterGroup) {
	// 健康检查
	api.GET("/health", h.Health)
	api.GET("/ready", h.Ready)

	// 文件管理
	files := api.Group("/files")
	{
		files.POST("/upload", h.UploadFile)
		files.GET("/:id/columns", h.GetColumns)
	}

	// 任务管理
	tasks := api.Group("/tasks")
	{
		tasks.GET("", h.ListTasks)
		tasks.GET("/:id", h.GetTask)
		tasks.DELETE("/:id", h.DeleteTask)
		tasks.GET("/:id/result", h.GetTaskResult)
		tasks.GET("/:id/watch", h.WatchTask)
	}

	// 同步预览
	api.POST("/charts/preview", h.PreviewChart)

	// 保存的图表配置
	configs := api.Group("/configs")
	{
		configs.POST("", h.CreateConfig)
		configs.GET("", h.ListConfigs)
		configs.GET("/:id", h.GetConfig)
		configs.DELETE("/:id", h.DeleteConfig)
	}
}

// Health 健康检查
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "api-server",
	})
}

// Ready 就绪检查
func (h *Handlers) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	// 检查数据库
	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database not available",
		})
		return
	}

	// 检查队列
	if err := h.queue.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "queue not available",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// ListTasks 列出任务
func (h *Handlers) ListTasks(c *gin.Context) {
	ctx := c.Request.Context()

	// 解析分页参数
	limit := 20
	offset := 0

	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	tasks, err := h.db.ListTasks(ctx, limit, offset)
	if err != nil {
		h.respondError(c, err, "获取任务列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":  tasks,
		"limit":  limit,
		"offset": offset,
	})
}

// GetTask 获取任务
func (h *Handlers) GetTask(c *gin.Context) {
	taskID := c.Param("id")

	task, err := h.db.GetTask(c.Request.Context(), taskID)
	if err != nil {
		h.respondError(c, err, "任务不存在")
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask 删除任务及其结果对象，处理中的任务不能删除
func (h *Handlers) DeleteTask(c *gin.Context) {
	ctx := c.Request.Context()
	taskID := c.Param("id")

	task, err := h.db.GetTask(ctx, taskID)
	if err != nil {
		h.respondError(c, err, "任务不存在")
		return
	}
	if task.Status == database.TaskStatusProcessing {
		c.JSON(http.StatusConflict, gin.H{"error": "任务正在处理中", "status": task.Status})
		return
	}

	objects, err := h.storage.ListFiles(ctx, storage.ResultPrefix(taskID))
	if err != nil {
		h.logger.Warn("列出任务结果失败", zap.String("task_id", taskID), zap.Error(err))
	}
	for _, obj := range objects {
		if err := h.storage.DeleteFile(ctx, obj.Name); err != nil {
			h.logger.Warn("删除任务结果失败", zap.String("object", obj.Name), zap.Error(err))
		}
	}

	if err := h.db.DeleteTask(ctx, taskID); err != nil {
		h.respondError(c, err, "删除任务失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "任务已删除",
		"task_id": taskID,
	})
}

// GetTaskResult 返回构建结果文档，presign=true 时返回下载链接
func (h *Handlers) GetTaskResult(c *gin.Context) {
	ctx := c.Request.Context()
	taskID := c.Param("id")

	task, err := h.db.GetTask(ctx, taskID)
	if err != nil {
		h.respondError(c, err, "任务不存在")
		return
	}
	if task.Status != database.TaskStatusCompleted || task.OutputPath == "" {
		c.JSON(http.StatusAccepted, gin.H{"error": "任务尚未完成", "status": task.Status})
		return
	}

	if c.Query("presign") == "true" {
		url, err := h.storage.GeneratePresignedURL(ctx, task.OutputPath, presignExpiry)
		if err != nil {
			h.respondError(c, err, "生成下载链接失败")
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url, "expires_in": int(presignExpiry.Seconds())})
		return
	}

	info, err := h.storage.GetFileInfo(ctx, task.OutputPath)
	if err != nil {
		h.respondError(c, err, "获取结果数据失败")
		return
	}
	reader, err := h.storage.DownloadFile(ctx, task.OutputPath)
	if err != nil {
		h.respondError(c, err, "获取结果数据失败")
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, info.Size, "application/json", reader, nil)
}

// respondError 按错误代码映射HTTP状态
func (h *Handlers) respondError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case model.IsErrorType(err, model.ErrCodeNotFound), model.IsErrorType(err, model.ErrCodeFileNotFound):
		status = http.StatusNotFound
	case model.IsErrorType(err, model.ErrCodeValidation),
		model.IsErrorType(err, model.ErrCodeInvalidInput),
		model.IsErrorType(err, model.ErrCodeInvalidFormat),
		model.IsErrorType(err, model.ErrCodeParseError),
		model.IsErrorType(err, model.ErrCodeSheetError),
		model.IsErrorType(err, model.ErrCodeEmptySheet),
		model.IsErrorType(err, model.ErrCodeColumnNotFound):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(message,
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("RequestID")),
			zap.Error(err))
	}
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
