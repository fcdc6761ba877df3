// Package queue 基于 Redis 的任务队列与状态广播
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/freedkr/orgchart/internal/config"
	"github.com/freedkr/orgchart/internal/model"
)

// 任务类型
const (
	TaskTypeChartBuild = "chart_build"
)

// 队列名称
const (
	QueueChart   = "queue:chart"
	QueueDefault = "queue:default"
)

// Client 队列客户端接口
type Client interface {
	EnqueueTask(ctx context.Context, task *Task) error
	DequeueTask(ctx context.Context, queueName string, timeout time.Duration) (*Task, error)
	GetTaskStatus(ctx context.Context, taskID string) (*Task, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status string, errMsg string) error
	UpdateTaskResult(ctx context.Context, taskID string, resultObjectName string) error
	SubscribeTaskStatus(ctx context.Context, taskID string) (<-chan *Task, func(), error)
	Ping(ctx context.Context) error
	Close() error
}

// Task 队列中的任务
type Task struct {
	ID               string                 `json:"id"`
	Type             string                 `json:"type"`
	FileID           string                 `json:"file_id"`
	FileName         string                 `json:"file_name"`
	ObjectName       string                 `json:"object_name"`
	Status           string                 `json:"status"` // pending, processing, completed, failed
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	Error            string                 `json:"error,omitempty"`
	ResultObjectName string                 `json:"result_object_name,omitempty"`
	ProcessorID      string                 `json:"processor_id,omitempty"`
	Data             map[string]interface{} `json:"data,omitempty"`
}

// DataString 读取任务附加数据中的字符串
func (t *Task) DataString(key string) string {
	if t.Data == nil {
		return ""
	}
	s, _ := t.Data[key].(string)
	return s
}

// IsFinished 任务是否已结束
func (t *Task) IsFinished() bool {
	return t.Status == "completed" || t.Status == "failed"
}

type redisClient struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisQueue 创建Redis队列
func NewRedisQueue(ctx context.Context, qcfg config.QueueConfig) (Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     qcfg.Addr,
		Password: qcfg.Password,
		DB:       qcfg.DB,
	})

	// 测试连接
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, model.NewSystemError("queue", "connect", "连接Redis失败", err)
	}

	ttl := qcfg.TaskTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisClient{client: rdb, ttl: ttl}, nil
}

// TaskKey 任务详情的键
func TaskKey(taskID string) string {
	return fmt.Sprintf("task:%s", taskID)
}

// StatusChannel 任务状态广播频道
func StatusChannel(taskID string) string {
	return fmt.Sprintf("task-status:%s", taskID)
}

// QueueName 根据任务类型选择队列
func QueueName(taskType string) string {
	switch taskType {
	case TaskTypeChartBuild:
		return QueueChart
	default:
		return QueueDefault
	}
}

func (c *redisClient) EnqueueTask(ctx context.Context, task *Task) error {
	if err := c.saveTask(ctx, task); err != nil {
		return err
	}

	if err := c.client.LPush(ctx, QueueName(task.Type), task.ID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

func (c *redisClient) DequeueTask(ctx context.Context, queueName string, timeout time.Duration) (*Task, error) {
	// 阻塞式从队列获取任务ID
	result, err := c.client.BRPop(ctx, timeout, queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 没有任务
		}
		return nil, fmt.Errorf("failed to dequeue task: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected redis result format")
	}

	return c.GetTaskStatus(ctx, result[1])
}

func (c *redisClient) GetTaskStatus(ctx context.Context, taskID string) (*Task, error) {
	taskJSON, err := c.client.Get(ctx, TaskKey(taskID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.NewNotFoundError("task not found: " + taskID)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	var task Task
	if err := json.Unmarshal([]byte(taskJSON), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

func (c *redisClient) UpdateTaskStatus(ctx context.Context, taskID string, status string, errMsg string) error {
	task, err := c.GetTaskStatus(ctx, taskID)
	if err != nil {
		return err
	}

	task.Status = status
	task.UpdatedAt = time.Now()
	if errMsg != "" {
		task.Error = errMsg
	}
	return c.saveAndPublish(ctx, task)
}

func (c *redisClient) UpdateTaskResult(ctx context.Context, taskID string, resultObjectName string) error {
	task, err := c.GetTaskStatus(ctx, taskID)
	if err != nil {
		return err
	}

	task.Status = "completed"
	task.UpdatedAt = time.Now()
	task.ResultObjectName = resultObjectName
	return c.saveAndPublish(ctx, task)
}

// SubscribeTaskStatus 订阅任务状态变化，返回的取消函数负责释放订阅
func (c *redisClient) SubscribeTaskStatus(ctx context.Context, taskID string) (<-chan *Task, func(), error) {
	sub := c.client.Subscribe(ctx, StatusChannel(taskID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe task status: %w", err)
	}

	out := make(chan *Task, 8)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var task Task
			if err := json.Unmarshal([]byte(msg.Payload), &task); err != nil {
				continue
			}
			select {
			case out <- &task:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, func() { sub.Close() }, nil
}

func (c *redisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisClient) saveAndPublish(ctx context.Context, task *Task) error {
	if err := c.saveTask(ctx, task); err != nil {
		return err
	}
	payload, _ := json.Marshal(task)
	if err := c.client.Publish(ctx, StatusChannel(task.ID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish task status: %w", err)
	}
	return nil
}

func (c *redisClient) saveTask(ctx context.Context, task *Task) error {
	taskJSON, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := c.client.Set(ctx, TaskKey(task.ID), taskJSON, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

func (c *redisClient) Close() error {
	return c.client.Close()
}
