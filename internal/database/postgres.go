// Package database 基于 gorm 的任务与配置持久化
package database

import (
	"context"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/freedkr/orgchart/internal/config"
	"github.com/freedkr/orgchart/internal/model"
)

// PostgreSQLDB PostgreSQL数据库
type PostgreSQLDB struct {
	db     *gorm.DB
	config *config.DatabaseConfig
	logger *zap.Logger
}

// DSN 生成连接串
func DSN(cfg *config.DatabaseConfig) string {
	schema := cfg.Schema
	if schema == "" {
		schema = "orgchart"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, cfg.SSLMode, schema)
}

// NewPostgreSQLDB 创建PostgreSQL数据库连接
func NewPostgreSQLDB(cfg *config.DatabaseConfig, log *zap.Logger) (*PostgreSQLDB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Schema == "" {
		log.Warn("schema 为空，使用默认值", zap.String("schema", "orgchart"))
		cfg.Schema = "orgchart"
	}

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, model.NewSystemError("database", "connect", "连接数据库失败", err)
	}
	if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", cfg.Schema)).Error; err != nil {
		return nil, model.NewSystemError("database", "schema", "创建schema失败", err)
	}
	if err := db.Exec(fmt.Sprintf("SET search_path TO %s", cfg.Schema)).Error; err != nil {
		return nil, model.NewSystemError("database", "schema", "设置schema失败", err)
	}

	// 设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, model.NewSystemError("database", "pool", "获取数据库连接池失败", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, model.NewSystemError("database", "ping", "数据库ping失败", err)
	}

	log.Info("数据库连接成功",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.String("schema", cfg.Schema))

	return &PostgreSQLDB{
		db:     db,
		config: cfg,
		logger: log,
	}, nil
}

// CreateTables 创建表结构
func (p *PostgreSQLDB) CreateTables(ctx context.Context) error {
	err := p.db.WithContext(ctx).AutoMigrate(
		&TaskRecord{},
		&FileRecord{},
		&ChartConfigRecord{},
		&ProcessingStats{},
	)
	if err != nil {
		return fmt.Errorf("自动迁移失败: %w", err)
	}
	return nil
}

// CreateTask 创建任务
func (p *PostgreSQLDB) CreateTask(ctx context.Context, task *TaskRecord) error {
	if err := p.db.WithContext(ctx).Create(task).Error; err != nil {
		p.logger.Error("创建任务失败", zap.String("task_id", task.ID), zap.Error(err))
		return fmt.Errorf("创建任务失败: %w", err)
	}
	return nil
}

// GetTask 获取任务
func (p *PostgreSQLDB) GetTask(ctx context.Context, taskID string) (*TaskRecord, error) {
	var task TaskRecord
	if err := p.db.WithContext(ctx).First(&task, "id = ?", taskID).Error; err != nil {
		return nil, notFoundOr(err, "任务不存在: "+taskID, "获取任务失败")
	}
	return &task, nil
}

// UpdateTask 更新任务
func (p *PostgreSQLDB) UpdateTask(ctx context.Context, task *TaskRecord) error {
	if err := p.db.WithContext(ctx).Save(task).Error; err != nil {
		p.logger.Error("更新任务失败", zap.String("task_id", task.ID), zap.Error(err))
		return fmt.Errorf("更新任务失败: %w", err)
	}
	return nil
}

// DeleteTask 删除任务及其统计
func (p *PostgreSQLDB) DeleteTask(ctx context.Context, taskID string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&ProcessingStats{}, "task_id = ?", taskID).Error; err != nil {
			return fmt.Errorf("删除处理统计失败: %w", err)
		}
		result := tx.Delete(&TaskRecord{}, "id = ?", taskID)
		if result.Error != nil {
			return fmt.Errorf("删除任务失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return model.NewNotFoundError("任务不存在: " + taskID)
		}
		return nil
	})
}

// ListTasks 列出任务
func (p *PostgreSQLDB) ListTasks(ctx context.Context, limit, offset int) ([]*TaskRecord, error) {
	var tasks []*TaskRecord
	err := p.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("列出任务失败: %w", err)
	}
	return tasks, nil
}

// CreateFile 创建文件记录
func (p *PostgreSQLDB) CreateFile(ctx context.Context, file *FileRecord) error {
	if err := p.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("创建文件记录失败: %w", err)
	}
	return nil
}

// GetFile 获取文件记录
func (p *PostgreSQLDB) GetFile(ctx context.Context, fileID string) (*FileRecord, error) {
	var file FileRecord
	if err := p.db.WithContext(ctx).First(&file, "id = ?", fileID).Error; err != nil {
		return nil, notFoundOr(err, "文件不存在: "+fileID, "获取文件记录失败")
	}
	return &file, nil
}

// CreateProcessingStats 创建处理统计
func (p *PostgreSQLDB) CreateProcessingStats(ctx context.Context, stats *ProcessingStats) error {
	if err := p.db.WithContext(ctx).Create(stats).Error; err != nil {
		return fmt.Errorf("创建处理统计失败: %w", err)
	}
	return nil
}

// SaveChartConfig 新增或覆盖图表配置
func (p *PostgreSQLDB) SaveChartConfig(ctx context.Context, record *ChartConfigRecord) error {
	if err := p.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("保存图表配置失败: %w", err)
	}
	return nil
}

// GetChartConfig 获取图表配置
func (p *PostgreSQLDB) GetChartConfig(ctx context.Context, id string) (*ChartConfigRecord, error) {
	var record ChartConfigRecord
	if err := p.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "图表配置不存在: "+id, "获取图表配置失败")
	}
	return &record, nil
}

// ListChartConfigs 列出图表配置
func (p *PostgreSQLDB) ListChartConfigs(ctx context.Context) ([]*ChartConfigRecord, error) {
	var records []*ChartConfigRecord
	if err := p.db.WithContext(ctx).Order("updated_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("列出图表配置失败: %w", err)
	}
	return records, nil
}

// DeleteChartConfig 删除图表配置
func (p *PostgreSQLDB) DeleteChartConfig(ctx context.Context, id string) error {
	result := p.db.WithContext(ctx).Delete(&ChartConfigRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("删除图表配置失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.NewNotFoundError("图表配置不存在: " + id)
	}
	return nil
}

// Close 关闭数据库连接
func (p *PostgreSQLDB) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping 测试连接
func (p *PostgreSQLDB) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// GetDB 获取原始数据库连接
func (p *PostgreSQLDB) GetDB() *gorm.DB {
	return p.db
}

func notFoundOr(err error, notFound, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.NewNotFoundError(notFound)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// DatabaseInterface 数据库接口
type DatabaseInterface interface {
	CreateTables(ctx context.Context) error
	CreateTask(ctx context.Context, task *TaskRecord) error
	GetTask(ctx context.Context, taskID string) (*TaskRecord, error)
	UpdateTask(ctx context.Context, task *TaskRecord) error
	ListTasks(ctx context.Context, limit, offset int) ([]*TaskRecord, error)
	DeleteTask(ctx context.Context, taskID string) error
	CreateFile(ctx context.Context, file *FileRecord) error
	GetFile(ctx context.Context, fileID string) (*FileRecord, error)
	CreateProcessingStats(ctx context.Context, stats *ProcessingStats) error

	// 图表配置
	SaveChartConfig(ctx context.Context, record *ChartConfigRecord) error
	GetChartConfig(ctx context.Context, id string) (*ChartConfigRecord, error)
	ListChartConfigs(ctx context.Context) ([]*ChartConfigRecord, error)
	DeleteChartConfig(ctx context.Context, id string) error

	Close() error
	Ping(ctx context.Context) error
}
