// Package config 服务配置加载
// 加载顺序：默认值 -> yaml 文件 -> 环境变量 -> 校验
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/freedkr/orgchart/internal/model"
)

// ServiceType 服务类型
type ServiceType string

const (
	ServiceTypeAPIServer   ServiceType = "api-server"
	ServiceTypeChartWorker ServiceType = "chart-worker"
	ServiceTypeCLI         ServiceType = "orgchart-cli"
)

// Config 全局配置
type Config struct {
	App       AppConfig       `yaml:"app"`
	APIServer APIServerConfig `yaml:"api_server"`
	Worker    WorkerConfig    `yaml:"worker"`
	Database  DatabaseConfig  `yaml:"database"`
	Queue     QueueConfig     `yaml:"queue"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Parser    ParserConfig    `yaml:"parser"`
	Builder   BuilderConfig   `yaml:"builder"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `yaml:"name" env:"APP_NAME" default:"orgchart"`
	Environment string `yaml:"environment" env:"APP_ENV" default:"development" validate:"oneof=development staging production"`
	Debug       bool   `yaml:"debug" env:"APP_DEBUG" default:"false"`
}

// APIServerConfig API服务器配置
type APIServerConfig struct {
	Host          string        `yaml:"host" env:"API_HOST" default:"0.0.0.0"`
	Port          int           `yaml:"port" env:"API_PORT" default:"8080" validate:"min=1,max=65535"`
	Mode          string        `yaml:"mode" env:"GIN_MODE" default:"release" validate:"oneof=debug release test"`
	Timeout       time.Duration `yaml:"timeout" env:"API_TIMEOUT" default:"30s"`
	MaxUploadSize int64         `yaml:"max_upload_size" env:"API_MAX_UPLOAD_SIZE" default:"33554432" validate:"gt=0"`
}

// WorkerConfig 图表构建工作者配置
type WorkerConfig struct {
	ID           string        `yaml:"id" env:"WORKER_ID"`
	Concurrency  int           `yaml:"concurrency" env:"WORKER_CONCURRENCY" default:"2" validate:"min=1,max=64"`
	QueueName    string        `yaml:"queue_name" env:"WORKER_QUEUE" default:"queue:chart" validate:"required"`
	PollTimeout  time.Duration `yaml:"poll_timeout" env:"WORKER_POLL_TIMEOUT" default:"5s"`
	TaskTimeout  time.Duration `yaml:"task_timeout" env:"WORKER_TASK_TIMEOUT" default:"2m"`
	TempDir      string        `yaml:"temp_dir" env:"WORKER_TEMP_DIR"`
	ResultPrefix string        `yaml:"result_prefix" env:"WORKER_RESULT_PREFIX" default:"results"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `yaml:"host" env:"POSTGRES_HOST" default:"localhost"`
	Port            int           `yaml:"port" env:"POSTGRES_PORT" default:"5432" validate:"min=1,max=65535"`
	Database        string        `yaml:"database" env:"POSTGRES_DB" default:"orgchart"`
	Username        string        `yaml:"username" env:"POSTGRES_USER" default:"postgres"`
	Password        string        `yaml:"password" env:"POSTGRES_PASSWORD"`
	SSLMode         string        `yaml:"ssl_mode" env:"POSTGRES_SSLMODE" default:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	Schema          string        `yaml:"schema" env:"POSTGRES_SCHEMA" default:"orgchart"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"POSTGRES_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"POSTGRES_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"POSTGRES_CONN_MAX_LIFETIME" default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"POSTGRES_CONN_MAX_IDLE_TIME" default:"5m"`
}

// QueueConfig Redis队列配置
type QueueConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" default:"localhost:6379" validate:"required"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" default:"0" validate:"min=0"`
	TaskTTL  time.Duration `yaml:"task_ttl" env:"REDIS_TASK_TTL" default:"24h"`
}

// StorageConfig MinIO存储配置
type StorageConfig struct {
	Endpoint        string `yaml:"endpoint" env:"MINIO_ENDPOINT" default:"localhost:9000" validate:"required"`
	AccessKeyID     string `yaml:"access_key_id" env:"MINIO_ACCESS_KEY_ID" default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"MINIO_SECRET_ACCESS_KEY" default:"minioadmin"`
	UseSSL          bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" default:"false"`
	BucketName      string `yaml:"bucket_name" env:"MINIO_BUCKET_NAME" default:"orgchart" validate:"required"`
	Region          string `yaml:"region" env:"MINIO_REGION" default:"us-east-1"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `yaml:"level" env:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Encoding    string `yaml:"encoding" env:"LOG_ENCODING" default:"json" validate:"oneof=json console"`
	Development bool   `yaml:"development" env:"LOG_DEVELOPMENT" default:"false"`
}

// ParserConfig 表格读取配置
type ParserConfig struct {
	SheetName     string `yaml:"sheet_name" env:"PARSER_SHEET_NAME"`
	SkipEmptyRows bool   `yaml:"skip_empty_rows" env:"PARSER_SKIP_EMPTY_ROWS" default:"true"`
	MaxRows       int    `yaml:"max_rows" env:"PARSER_MAX_ROWS" default:"0" validate:"min=0"`
}

// BuilderConfig 层级构建配置
type BuilderConfig struct {
	StrictMode  bool `yaml:"strict_mode" env:"BUILDER_STRICT_MODE" default:"false"`
	LogWarnings bool `yaml:"log_warnings" env:"BUILDER_LOG_WARNINGS" default:"true"`
}

// Load 加载配置，path 为空或文件不存在时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, model.NewSystemError("config", "defaults", "设置默认配置失败", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, model.NewFileError(model.ErrCodeInvalidFormat, path, "unmarshal", "解析配置文件失败", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// 没有配置文件时继续使用默认值
		default:
			return nil, model.NewFileError(model.ErrCodeFileReadError, path, "read", "读取配置文件失败", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, model.NewSystemError("config", "env", "解析环境变量失败", err)
	}

	if err := model.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return cfg, nil
}

// LoadConfigForService 加载指定服务的配置
func LoadConfigForService(service ServiceType, path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	switch service {
	case ServiceTypeAPIServer:
		if cfg.App.Debug {
			cfg.APIServer.Mode = "debug"
		}
	case ServiceTypeChartWorker:
		if cfg.Worker.ID == "" {
			host, _ := os.Hostname()
			cfg.Worker.ID = fmt.Sprintf("%s-%d", host, os.Getpid())
		}
		if cfg.Worker.TempDir == "" {
			cfg.Worker.TempDir = os.TempDir()
		}
	case ServiceTypeCLI:
		if cfg.Log.Encoding == "json" {
			cfg.Log.Encoding = "console"
		}
	default:
		return nil, model.NewValidationError("service", string(service), "oneof", "未知的服务类型")
	}
	return cfg, nil
}
