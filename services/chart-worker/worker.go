package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/freedkr/orgchart/internal/chart"
	"github.com/freedkr/orgchart/internal/config"
	"github.com/freedkr/orgchart/internal/database"
	"github.com/freedkr/orgchart/internal/model"
	"github.com/freedkr/orgchart/internal/parser"
	"github.com/freedkr/orgchart/internal/queue"
	"github.com/freedkr/orgchart/internal/storage"
)

// ChartWorker 组织架构图构建Worker
type ChartWorker struct {
	config       *config.WorkerConfig
	parserConfig *parser.ParserConfig
	db           database.DatabaseInterface
	queue        queue.Client
	storage      storage.StorageInterface
	builder      *chart.Builder
	logger       *zap.Logger
}

// resultSummary 写入任务记录的结果摘要
type resultSummary struct {
	ResultObject string       `json:"result_object"`
	Empty        bool         `json:"empty"`
	Warnings     int          `json:"warnings"`
	Stats        *chart.Stats `json:"stats"`
}

// NewChartWorker 创建Worker
func NewChartWorker(
	cfg *config.WorkerConfig,
	parserCfg *config.ParserConfig,
	db database.DatabaseInterface,
	q queue.Client,
	s storage.StorageInterface,
	b *chart.Builder,
	logger *zap.Logger,
) *ChartWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if b == nil {
		b = chart.NewBuilder(nil, logger)
	}
	return &ChartWorker{
		config: cfg,
		parserConfig: &parser.ParserConfig{
			SheetName:     parserCfg.SheetName,
			SkipEmptyRows: parserCfg.SkipEmptyRows,
			MaxRows:       parserCfg.MaxRows,
		},
		db:      db,
		queue:   q,
		storage: s,
		builder: b,
		logger:  logger,
	}
}

// Run 启动 Concurrency 个消费循环，直到 ctx 取消
func (w *ChartWorker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.config.Concurrency; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			w.workLoop(ctx, slot)
		}(i)
	}
	wg.Wait()
}

func (w *ChartWorker) workLoop(ctx context.Context, slot int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := w.queue.DequeueTask(ctx, w.config.QueueName, w.config.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Warn("获取任务失败", zap.Int("slot", slot), zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}
		w.HandleTask(ctx, task)
	}
}

// HandleTask 处理单个任务并回写状态
func (w *ChartWorker) HandleTask(ctx context.Context, task *queue.Task) {
	taskCtx := ctx
	if w.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, w.config.TaskTimeout)
		defer cancel()
	}

	log := w.logger.With(zap.String("task_id", task.ID), zap.String("worker_id", w.config.ID))
	log.Info("开始处理图表任务", zap.String("object", task.ObjectName))

	if err := w.queue.UpdateTaskStatus(taskCtx, task.ID, database.TaskStatusProcessing, ""); err != nil {
		log.Warn("更新队列任务状态失败", zap.Error(err))
	}

	if err := w.process(taskCtx, task, log); err != nil {
		log.Error("处理任务失败", zap.Error(err))
		// 任务可能因超时失败，回写使用外层上下文
		w.markFailed(ctx, task.ID, err, log)
		return
	}
	log.Info("任务处理完成")
}

func (w *ChartWorker) process(ctx context.Context, task *queue.Task, log *zap.Logger) error {
	startTime := time.Now()

	record, err := w.db.GetTask(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("获取任务记录失败: %w", err)
	}
	record.Status = database.TaskStatusProcessing
	record.UpdatedAt = time.Now()
	if err := w.db.UpdateTask(ctx, record); err != nil {
		return fmt.Errorf("更新任务记录失败: %w", err)
	}

	ds, err := w.loadDataset(ctx, record.InputPath, log)
	if err != nil {
		return err
	}

	cfg, err := w.chartConfig(ctx, task, record, ds.Columns)
	if err != nil {
		return err
	}
	if err := cfg.ValidateAgainst(ds.Columns); err != nil {
		// 核心算法容忍不完整的配置，这里只记录
		log.Warn("图表配置与数据不一致", zap.Error(err))
	}

	c, err := w.builder.Build(ctx, ds.Records, cfg)
	if err != nil {
		return fmt.Errorf("构建组织架构图失败: %w", err)
	}

	objectName := storage.ResultObjectName(task.ID)
	size, err := w.storage.PutJSON(ctx, objectName, c.Document(ds.Columns))
	if err != nil {
		return fmt.Errorf("保存构建结果失败: %w", err)
	}

	processingTime := time.Since(startTime)
	summary, _ := json.Marshal(&resultSummary{
		ResultObject: objectName,
		Empty:        c.Empty(),
		Warnings:     len(c.Warnings),
		Stats:        c.Stats,
	})
	snapshot, _ := json.Marshal(c.Config)

	now := time.Now()
	record.Status = database.TaskStatusCompleted
	record.OutputPath = objectName
	record.Result = datatypes.JSON(summary)
	record.Config = datatypes.JSON(snapshot)
	record.ErrorMsg = ""
	record.UpdatedAt = now
	record.ProcessedAt = &now
	record.ProcessingLog = fmt.Sprintf("处理时间: %v, 记录数: %d, 过滤后: %d, 警告: %d, 结果大小: %d 字节",
		processingTime, c.Stats.InputRecords, c.Stats.FilteredRecords, len(c.Warnings), size)
	if err := w.db.UpdateTask(ctx, record); err != nil {
		return fmt.Errorf("更新任务记录失败: %w", err)
	}

	stats := &database.ProcessingStats{
		TaskID:           task.ID,
		InputRecords:     c.Stats.InputRecords,
		FilteredRecords:  c.Stats.FilteredRecords,
		WarningCount:     len(c.Warnings),
		ProcessingTimeMs: processingTime.Milliseconds(),
		CreatedAt:        now,
	}
	if h := c.Stats.Hierarchy; h != nil {
		stats.OutputNodes = h.OutputNodes
		stats.MaxDepth = h.MaxDepth
	}
	if err := w.db.CreateProcessingStats(ctx, stats); err != nil {
		log.Warn("创建处理统计失败", zap.Error(err))
	}

	if err := w.queue.UpdateTaskResult(ctx, task.ID, objectName); err != nil {
		log.Warn("更新队列任务结果失败", zap.Error(err))
	}

	log.Info("组织架构图已保存",
		zap.String("object", objectName),
		zap.Int64("bytes", size),
		zap.Duration("elapsed", processingTime))
	return nil
}

// loadDataset 下载对象到临时文件并解析
func (w *ChartWorker) loadDataset(ctx context.Context, objectName string, log *zap.Logger) (*model.Dataset, error) {
	p, err := parser.ForFile(objectName, w.parserConfig, log)
	if err != nil {
		return nil, err
	}

	reader, err := w.storage.DownloadFile(ctx, objectName)
	if err != nil {
		return nil, fmt.Errorf("下载输入文件失败: %w", err)
	}
	defer reader.Close()

	tmpFile, err := os.CreateTemp(w.config.TempDir, "orgchart_*"+filepath.Ext(objectName))
	if err != nil {
		return nil, model.NewFileError(model.ErrCodeFileWriteError, w.config.TempDir, "create", "创建临时文件失败", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := io.Copy(tmpFile, reader); err != nil {
		tmpFile.Close()
		return nil, model.NewFileError(model.ErrCodeFileWriteError, tmpFile.Name(), "copy", "复制文件失败", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, model.NewFileError(model.ErrCodeFileWriteError, tmpFile.Name(), "close", "写入临时文件失败", err)
	}

	ds, err := p.ParseFile(ctx, tmpFile.Name())
	if err != nil {
		return nil, fmt.Errorf("解析表格失败: %w", err)
	}
	log.Info("表格解析完成", zap.Int("columns", len(ds.Columns)), zap.Int("records", ds.Len()))
	return ds, nil
}

// chartConfig 依次使用任务记录中的快照、保存的配置、默认配置
func (w *ChartWorker) chartConfig(ctx context.Context, task *queue.Task, record *database.TaskRecord, columns model.ColumnSet) (*model.ChartConfig, error) {
	if len(record.Config) > 0 && string(record.Config) != "null" {
		var cfg model.ChartConfig
		if err := json.Unmarshal(record.Config, &cfg); err != nil {
			return nil, model.NewParseError("", 0, "config", "任务配置快照无效", err)
		}
		return &cfg, nil
	}

	configID := task.DataString("config_id")
	if configID == "" {
		configID = record.ConfigID
	}
	if configID != "" {
		saved, err := w.db.GetChartConfig(ctx, configID)
		if err != nil {
			return nil, fmt.Errorf("加载图表配置失败: %w", err)
		}
		return saved.ChartConfig()
	}

	return model.DefaultChartConfig(columns), nil
}

func (w *ChartWorker) markFailed(ctx context.Context, taskID string, cause error, log *zap.Logger) {
	msg := cause.Error()
	if errors.Is(cause, context.DeadlineExceeded) {
		msg = "处理超时: " + msg
	}

	if err := w.queue.UpdateTaskStatus(ctx, taskID, database.TaskStatusFailed, msg); err != nil {
		log.Warn("更新队列任务状态失败", zap.Error(err))
	}

	record, err := w.db.GetTask(ctx, taskID)
	if err != nil {
		log.Warn("获取任务记录失败", zap.Error(err))
		return
	}
	now := time.Now()
	record.Status = database.TaskStatusFailed
	record.ErrorMsg = msg
	record.UpdatedAt = now
	record.ProcessedAt = &now
	record.RetryCount++
	if err := w.db.UpdateTask(ctx, record); err != nil {
		log.Warn("更新任务记录失败", zap.Error(err))
	}
}
