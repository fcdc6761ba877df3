package handlers

import (
	"crypto/md5"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freedkr/orgchart/internal/database"
	"github.com/freedkr/orgchart/internal/filter"
	"github.com/freedkr/orgchart/internal/model"
	"github.com/freedkr/orgchart/internal/parser"
	"github.com/freedkr/orgchart/internal/projection"
	"github.com/freedkr/orgchart/internal/queue"
	"github.com/freedkr/orgchart/internal/storage"
)

// UploadResponse 上传响应
type UploadResponse struct {
	TaskID     string `json:"task_id"`
	FileID     string `json:"file_id"`
	ObjectName string `json:"object_name"`
	Status     string `json:"status"`
}

// ColumnsResponse 列信息响应
type ColumnsResponse struct {
	FileID        string              `json:"file_id"`
	Sheet         string              `json:"sheet,omitempty"`
	Columns       model.ColumnSet     `json:"columns"`
	RecordCount   int                 `json:"record_count"`
	DefaultConfig *model.ChartConfig  `json:"default_config"`
	Suggestions   map[string][]string `json:"suggestions"`
	CategoryPool  []string            `json:"category_pool"`
}

// UploadFile 上传表格并创建构建任务
func (h *Handlers) UploadFile(c *gin.Context) {
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	// 解析文件
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid file upload: " + err.Error(),
		})
		return
	}
	defer file.Close()

	// 验证文件类型
	if _, err := parser.ForFile(header.Filename, h.parserConfig, h.logger); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "不支持的文件类型",
			"supported": parser.SupportedExtensions(),
		})
		return
	}

	// 指定的配置必须存在
	configID := strings.TrimSpace(c.PostForm("config_id"))
	if configID != "" {
		if _, err := h.db.GetChartConfig(ctx, configID); err != nil {
			h.respondError(c, err, "图表配置不存在")
			return
		}
	}

	// 生成唯一ID
	fileID := uuid.New().String()
	taskID := uuid.New().String()

	// 计算MD5
	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "计算文件哈希失败"})
		return
	}
	md5Hash := fmt.Sprintf("%x", hash.Sum(nil))

	// 重置文件指针
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}

	objectName := storage.UploadObjectName(fileID, header.Filename)
	contentType := contentTypeFor(header.Filename)

	// 上传到存储
	if err := h.storage.UploadFile(ctx, objectName, file, header.Size, contentType); err != nil {
		h.respondError(c, err, "上传文件到存储失败")
		return
	}

	now := time.Now()
	task := &database.TaskRecord{
		ID:        taskID,
		Type:      database.TaskTypeChartBuild,
		Status:    database.TaskStatusPending,
		FileID:    fileID,
		ConfigID:  configID,
		InputPath: objectName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.db.CreateTask(ctx, task); err != nil {
		h.respondError(c, err, "创建任务失败")
		return
	}

	fileRecord := &database.FileRecord{
		ID:           fileID,
		OriginalName: header.Filename,
		StoragePath:  objectName,
		FileSize:     header.Size,
		ContentType:  contentType,
		MD5Hash:      md5Hash,
		CreatedAt:    now,
		TaskID:       taskID,
	}
	if err := h.db.CreateFile(ctx, fileRecord); err != nil {
		h.respondError(c, err, "创建文件记录失败")
		return
	}

	queueTask := &queue.Task{
		ID:         taskID,
		Type:       queue.TaskTypeChartBuild,
		FileID:     fileID,
		FileName:   header.Filename,
		ObjectName: objectName,
		Status:     database.TaskStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if configID != "" {
		queueTask.Data = map[string]interface{}{"config_id": configID}
	}
	if err := h.queue.EnqueueTask(ctx, queueTask); err != nil {
		h.respondError(c, err, "任务入队失败")
		return
	}

	h.logger.Info("文件已上传，构建任务已入队",
		zap.String("task_id", taskID),
		zap.String("file_id", fileID),
		zap.String("object", objectName),
		zap.Int64("size", header.Size))

	c.JSON(http.StatusCreated, UploadResponse{
		TaskID:     taskID,
		FileID:     fileID,
		ObjectName: objectName,
		Status:     database.TaskStatusPending,
	})
}

// GetColumns 读取上传文件的列、默认配置与过滤建议
func (h *Handlers) GetColumns(c *gin.Context) {
	ctx := c.Request.Context()
	fileID := c.Param("id")

	file, err := h.db.GetFile(ctx, fileID)
	if err != nil {
		h.respondError(c, err, "文件不存在")
		return
	}

	p, err := parser.ForFile(file.StoragePath, h.parserConfig, h.logger)
	if err != nil {
		h.respondError(c, err, "不支持的文件类型")
		return
	}

	reader, err := h.storage.DownloadFile(ctx, file.StoragePath)
	if err != nil {
		h.respondError(c, err, "下载文件失败")
		return
	}
	defer reader.Close()

	ds, err := p.Parse(ctx, reader)
	if err != nil {
		h.respondError(c, err, "解析表格失败")
		return
	}

	cfg := model.DefaultChartConfig(ds.Columns)
	suggestions := filter.Suggestions(ds.Records, ds.Columns, filter.DefaultSuggestionLimit)

	c.JSON(http.StatusOK, ColumnsResponse{
		FileID:        fileID,
		Sheet:         ds.Sheet,
		Columns:       ds.Columns,
		RecordCount:   ds.Len(),
		DefaultConfig: cfg,
		Suggestions:   suggestions,
		CategoryPool:  projection.AvailableCategoryColumns(ds.Columns, cfg),
	})
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
