// Package mocks 数据库、队列与存储接口的 testify Mock
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/freedkr/orgchart/internal/database"
	"github.com/freedkr/orgchart/internal/queue"
	"github.com/freedkr/orgchart/internal/storage"
)

// ===== 数据库 =====

// MockDatabase 数据库Mock
type MockDatabase struct {
	mock.Mock
}

var _ database.DatabaseInterface = (*MockDatabase)(nil)

func (m *MockDatabase) CreateTables(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDatabase) CreateTask(ctx context.Context, task *database.TaskRecord) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockDatabase) GetTask(ctx context.Context, taskID string) (*database.TaskRecord, error) {
	args := m.Called(ctx, taskID)
	task, _ := args.Get(0).(*database.TaskRecord)
	return task, args.Error(1)
}

func (m *MockDatabase) UpdateTask(ctx context.Context, task *database.TaskRecord) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockDatabase) ListTasks(ctx context.Context, limit, offset int) ([]*database.TaskRecord, error) {
	args := m.Called(ctx, limit, offset)
	tasks, _ := args.Get(0).([]*database.TaskRecord)
	return tasks, args.Error(1)
}

func (m *MockDatabase) DeleteTask(ctx context.Context, taskID string) error {
	return m.Called(ctx, taskID).Error(0)
}

func (m *MockDatabase) CreateFile(ctx context.Context, file *database.FileRecord) error {
	return m.Called(ctx, file).Error(0)
}

func (m *MockDatabase) GetFile(ctx context.Context, fileID string) (*database.FileRecord, error) {
	args := m.Called(ctx, fileID)
	file, _ := args.Get(0).(*database.FileRecord)
	return file, args.Error(1)
}

func (m *MockDatabase) CreateProcessingStats(ctx context.Context, stats *database.ProcessingStats) error {
	return m.Called(ctx, stats).Error(0)
}

func (m *MockDatabase) SaveChartConfig(ctx context.Context, record *database.ChartConfigRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockDatabase) GetChartConfig(ctx context.Context, id string) (*database.ChartConfigRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*database.ChartConfigRecord)
	return record, args.Error(1)
}

func (m *MockDatabase) ListChartConfigs(ctx context.Context) ([]*database.ChartConfigRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]*database.ChartConfigRecord)
	return records, args.Error(1)
}

func (m *MockDatabase) DeleteChartConfig(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDatabase) Close() error {
	return m.Called().Error(0)
}

func (m *MockDatabase) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// ===== 队列 =====

// MockQueue 队列Mock
type MockQueue struct {
	mock.Mock
}

var _ queue.Client = (*MockQueue)(nil)

func (m *MockQueue) EnqueueTask(ctx context.Context, task *queue.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockQueue) DequeueTask(ctx context.Context, queueName string, timeout time.Duration) (*queue.Task, error) {
	args := m.Called(ctx, queueName, timeout)
	task, _ := args.Get(0).(*queue.Task)
	return task, args.Error(1)
}

func (m *MockQueue) GetTaskStatus(ctx context.Context, taskID string) (*queue.Task, error) {
	args := m.Called(ctx, taskID)
	task, _ := args.Get(0).(*queue.Task)
	return task, args.Error(1)
}

func (m *MockQueue) UpdateTaskStatus(ctx context.Context, taskID string, status string, errMsg string) error {
	return m.Called(ctx, taskID, status, errMsg).Error(0)
}

func (m *MockQueue) UpdateTaskResult(ctx context.Context, taskID string, resultObjectName string) error {
	return m.Called(ctx, taskID, resultObjectName).Error(0)
}

func (m *MockQueue) SubscribeTaskStatus(ctx context.Context, taskID string) (<-chan *queue.Task, func(), error) {
	args := m.Called(ctx, taskID)
	ch, _ := args.Get(0).(chan *queue.Task)
	cancel, _ := args.Get(1).(func())
	if cancel == nil {
		cancel = func() {}
	}
	return ch, cancel, args.Error(2)
}

func (m *MockQueue) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockQueue) Close() error {
	return m.Called().Error(0)
}

// ===== 存储 =====

// MockStorage 存储Mock
type MockStorage struct {
	mock.Mock
}

var _ storage.StorageInterface = (*MockStorage)(nil)

func (m *MockStorage) EnsureBucket(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStorage) UploadFile(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	return m.Called(ctx, objectName, reader, objectSize, contentType).Error(0)
}

func (m *MockStorage) PutJSON(ctx context.Context, objectName string, v interface{}) (int64, error) {
	args := m.Called(ctx, objectName, v)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) DownloadFile(ctx context.Context, objectName string) (io.ReadCloser, error) {
	args := m.Called(ctx, objectName)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *MockStorage) DeleteFile(ctx context.Context, objectName string) error {
	return m.Called(ctx, objectName).Error(0)
}

func (m *MockStorage) GetFileInfo(ctx context.Context, objectName string) (*storage.FileInfo, error) {
	args := m.Called(ctx, objectName)
	info, _ := args.Get(0).(*storage.FileInfo)
	return info, args.Error(1)
}

func (m *MockStorage) GeneratePresignedURL(ctx context.Context, objectName string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expires)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) ListFiles(ctx context.Context, prefix string) ([]*storage.FileInfo, error) {
	args := m.Called(ctx, prefix)
	files, _ := args.Get(0).([]*storage.FileInfo)
	return files, args.Error(1)
}
