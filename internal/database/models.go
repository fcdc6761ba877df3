package database

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/freedkr/orgchart/internal/model"
)

// 任务状态
const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"
)

// TaskTypeChartBuild 组织结构图构建任务
const TaskTypeChartBuild = "chart_build"

// TaskRecord 任务记录
type TaskRecord struct {
	ID            string         `json:"id" gorm:"primaryKey;type:uuid"`
	Type          string         `json:"type" gorm:"type:varchar(50);not null"`
	Status        string         `json:"status" gorm:"type:varchar(50);not null;index"`
	FileID        string         `json:"file_id" gorm:"type:uuid;index"`
	ConfigID      string         `json:"config_id,omitempty" gorm:"type:varchar(64)"`
	InputPath     string         `json:"input_path" gorm:"type:text;not null"`
	OutputPath    string         `json:"output_path" gorm:"type:text"`
	Config        datatypes.JSON `json:"config,omitempty" gorm:"type:jsonb"` // 构建时使用的配置快照
	Result        datatypes.JSON `json:"result,omitempty" gorm:"type:jsonb"` // 构建结果摘要
	ErrorMsg      string         `json:"error_msg,omitempty" gorm:"type:text"`
	RetryCount    int            `json:"retry_count" gorm:"not null;default:0"`
	CreatedAt     time.Time      `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"not null;default:now()"`
	ProcessedAt   *time.Time     `json:"processed_at,omitempty"`
	ProcessingLog string         `json:"processing_log,omitempty" gorm:"type:text"`
}

// IsFinished 任务是否已结束
func (t *TaskRecord) IsFinished() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// FileRecord 文件记录
type FileRecord struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	OriginalName string    `json:"original_name" gorm:"type:varchar(255);not null"`
	StoragePath  string    `json:"storage_path" gorm:"type:text;not null"`
	FileSize     int64     `json:"file_size" gorm:"not null"`
	ContentType  string    `json:"content_type" gorm:"type:varchar(255);not null"`
	MD5Hash      string    `json:"md5_hash" gorm:"type:varchar(32);not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;default:now()"`
	TaskID       string    `json:"task_id" gorm:"type:uuid;index"`
}

// ChartConfigRecord 保存的图表配置
type ChartConfigRecord struct {
	ID        string         `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	Config    datatypes.JSON `json:"config" gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null;default:now()"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null;default:now()"`
}

// NewChartConfigRecord 由配置快照创建记录
func NewChartConfigRecord(id, name string, cfg *model.ChartConfig) (*ChartConfigRecord, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("序列化图表配置失败: %w", err)
	}
	return &ChartConfigRecord{
		ID:     id,
		Name:   name,
		Config: datatypes.JSON(data),
	}, nil
}

// ChartConfig 还原配置快照
func (r *ChartConfigRecord) ChartConfig() (*model.ChartConfig, error) {
	var cfg model.ChartConfig
	if err := json.Unmarshal(r.Config, &cfg); err != nil {
		return nil, model.NewParseError("", 0, "config", "图表配置JSON无效", err)
	}
	return &cfg, nil
}

// ProcessingStats 处理统计
type ProcessingStats struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TaskID           string    `json:"task_id" gorm:"type:uuid;not null;index"`
	InputRecords     int       `json:"input_records" gorm:"not null;default:0"`
	FilteredRecords  int       `json:"filtered_records" gorm:"not null;default:0"`
	OutputNodes      int       `json:"output_nodes" gorm:"not null;default:0"`
	WarningCount     int       `json:"warning_count" gorm:"not null;default:0"`
	MaxDepth         int       `json:"max_depth" gorm:"not null;default:0"`
	ProcessingTimeMs int64     `json:"processing_time_ms" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at" gorm:"not null;default:now()"`
}

// TableName 指定表名和schema
func (TaskRecord) TableName() string {
	return "orgchart.task_records"
}

// TableName 指定表名和schema
func (FileRecord) TableName() string {
	return "orgchart.file_records"
}

// TableName 指定表名和schema
func (ChartConfigRecord) TableName() string {
	return "orgchart.chart_configs"
}

// TableName 指定表名和schema
func (ProcessingStats) TableName() string {
	return "orgchart.processing_stats"
}
