package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/freedkr/orgchart/internal/builder"
	"github.com/freedkr/orgchart/internal/chart"
	"github.com/freedkr/orgchart/internal/config"
	"github.com/freedkr/orgchart/internal/database"
	"github.com/freedkr/orgchart/internal/logging"
	"github.com/freedkr/orgchart/internal/queue"
	"github.com/freedkr/orgchart/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.LoadConfigForService(config.ServiceTypeChartWorker, *configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger := logging.ForService(cfg, config.ServiceTypeChartWorker)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker, cleanup, err := newWorkerFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("创建Worker失败", zap.Error(err))
	}
	defer cleanup()

	logger.Info("图表构建Worker已启动，等待任务...",
		zap.String("worker_id", cfg.Worker.ID),
		zap.String("queue", cfg.Worker.QueueName),
		zap.Int("concurrency", cfg.Worker.Concurrency))

	worker.Run(ctx)
	logger.Info("图表构建Worker已关闭")
}

func newWorkerFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ChartWorker, func(), error) {
	db, err := database.NewPostgreSQLDB(&cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化数据库失败: %w", err)
	}

	redisQueue, err := queue.NewRedisQueue(ctx, cfg.Queue)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("初始化队列失败: %w", err)
	}

	minioStorage, err := storage.NewMinIOStorage(&cfg.Storage)
	if err != nil {
		db.Close()
		redisQueue.Close()
		return nil, nil, fmt.Errorf("初始化存储失败: %w", err)
	}
	if err := minioStorage.EnsureBucket(ctx); err != nil {
		db.Close()
		redisQueue.Close()
		return nil, nil, fmt.Errorf("确保存储桶失败: %w", err)
	}

	resolver := builder.NewHierarchyBuilder(&builder.BuilderConfig{
		StrictMode:  cfg.Builder.StrictMode,
		LogWarnings: cfg.Builder.LogWarnings,
	}, logger)

	worker := NewChartWorker(&cfg.Worker, &cfg.Parser, db, redisQueue, minioStorage, chart.NewBuilder(resolver, logger), logger)
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("关闭数据库失败", zap.Error(err))
		}
		if err := redisQueue.Close(); err != nil {
			logger.Warn("关闭队列失败", zap.Error(err))
		}
	}
	return worker, cleanup, nil
}
