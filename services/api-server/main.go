package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freedkr/orgchart/internal/builder"
	"github.com/freedkr/orgchart/internal/chart"
	"github.com/freedkr/orgchart/internal/config"
	"github.com/freedkr/orgchart/internal/database"
	"github.com/freedkr/orgchart/internal/logging"
	"github.com/freedkr/orgchart/internal/queue"
	"github.com/freedkr/orgchart/internal/storage"
	"github.com/freedkr/orgchart/services/api-server/handlers"
	"github.com/freedkr/orgchart/services/api-server/middleware"
)

// Server API服务器
type Server struct {
	config   *config.Config
	db       database.DatabaseInterface
	queue    queue.Client
	storage  storage.StorageInterface
	router   *gin.Engine
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载API服务器配置
	cfg, err := config.LoadConfigForService(config.ServiceTypeAPIServer, *configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger := logging.ForService(cfg, config.ServiceTypeAPIServer)
	defer logger.Sync()

	// 创建服务器
	server, err := NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("创建服务器失败", zap.Error(err))
	}

	// 启动服务器
	if err := server.Start(); err != nil {
		logger.Fatal("启动服务器失败", zap.Error(err))
	}
}

// NewServer 初始化依赖并注册路由
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	gin.SetMode(cfg.APIServer.Mode)
	ctx := context.Background()

	// 初始化数据库
	logger.Info("正在初始化数据库连接", zap.String("db", cfg.Database.Database))
	db, err := database.NewPostgreSQLDB(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化数据库失败: %w", err)
	}

	// 创建表结构
	if err := db.CreateTables(ctx); err != nil {
		return nil, fmt.Errorf("创建数据库表失败: %w", err)
	}

	// 初始化队列
	redisQueue, err := queue.NewRedisQueue(ctx, cfg.Queue)
	if err != nil {
		return nil, fmt.Errorf("初始化队列失败: %w", err)
	}

	// 初始化存储
	minioStorage, err := storage.NewMinIOStorage(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("初始化存储失败: %w", err)
	}

	// 确保存储桶存在
	if err := minioStorage.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("确保存储桶失败: %w", err)
	}

	resolver := builder.NewHierarchyBuilder(&builder.BuilderConfig{
		StrictMode:  cfg.Builder.StrictMode,
		LogWarnings: cfg.Builder.LogWarnings,
	}, logger)

	h := handlers.NewHandlers(db, redisQueue, minioStorage, handlers.Options{
		Builder:       chart.NewBuilder(resolver, logger),
		Parser:        &cfg.Parser,
		MaxUploadSize: cfg.APIServer.MaxUploadSize,
		Logger:        logger,
	})

	return &Server{
		config:   cfg,
		db:       db,
		queue:    redisQueue,
		storage:  minioStorage,
		router:   NewRouter(h, logger),
		handlers: h,
		logger:   logger,
	}, nil
}

// NewRouter 创建带中间件的路由
func NewRouter(h *handlers.Handlers, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())

	h.Register(router.Group("/api/v1"))
	return router
}

// Start 启动HTTP服务并在收到信号后优雅关闭
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.APIServer.Host, s.config.APIServer.Port)

	server := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: s.config.APIServer.Timeout,
		// websocket 连接不设置写超时
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API服务器启动", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	s.logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		s.logger.Error("服务器关闭失败", zap.Error(err))
		return err
	}

	if err := s.db.Close(); err != nil {
		s.logger.Warn("关闭数据库失败", zap.Error(err))
	}
	if err := s.queue.Close(); err != nil {
		s.logger.Warn("关闭队列失败", zap.Error(err))
	}

	s.logger.Info("服务器已关闭")
	return nil
}
