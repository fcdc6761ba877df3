package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freedkr/orgchart/internal/chart"
	"github.com/freedkr/orgchart/internal/config"
	"github.com/freedkr/orgchart/internal/database"
	"github.com/freedkr/orgchart/internal/mocks"
	"github.com/freedkr/orgchart/internal/model"
	"github.com/freedkr/orgchart/internal/queue"
)

const orgCSV = "Position,Manager,Name,Type\n" +
	"CEO,,Ann,Full-time\n" +
	"VP,CEO,Bo,Contractor\n" +
	"Engineer,VP,Cy,Full-time\n"

type workerFixture struct {
	db      *mocks.MockDatabase
	queue   *mocks.MockQueue
	storage *mocks.MockStorage
	worker  *ChartWorker
}

func newFixture(t *testing.T) *workerFixture {
	t.Helper()
	f := &workerFixture{
		db:      &mocks.MockDatabase{},
		queue:   &mocks.MockQueue{},
		storage: &mocks.MockStorage{},
	}
	workerCfg := &config.WorkerConfig{
		ID:          "worker-test",
		Concurrency: 1,
		QueueName:   queue.QueueChart,
		PollTimeout: 10 * time.Millisecond,
		TaskTimeout: time.Minute,
		TempDir:     t.TempDir(),
	}
	parserCfg := &config.ParserConfig{SkipEmptyRows: true}
	f.worker = NewChartWorker(workerCfg, parserCfg, f.db, f.queue, f.storage, nil, nil)
	return f
}

func csvReader() io.ReadCloser {
	return io.NopCloser(strings.NewReader(orgCSV))
}

func TestHandleTask_DefaultConfig(t *testing.T) {
	f := newFixture(t)
	record := &database.TaskRecord{ID: "t1", Type: database.TaskTypeChartBuild, Status: database.TaskStatusPending, InputPath: "uploads/f1/org.csv"}
	task := &queue.Task{ID: "t1", Type: queue.TaskTypeChartBuild, ObjectName: record.InputPath}

	var doc *chart.Document
	f.queue.On("UpdateTaskStatus", mock.Anything, "t1", database.TaskStatusProcessing, "").Return(nil)
	f.queue.On("UpdateTaskResult", mock.Anything, "t1", "results/t1/chart.json").Return(nil)
	f.db.On("GetTask", mock.Anything, "t1").Return(record, nil)
	f.db.On("UpdateTask", mock.Anything, record).Return(nil)
	f.db.On("CreateProcessingStats", mock.Anything, mock.MatchedBy(func(s *database.ProcessingStats) bool {
		return s.TaskID == "t1" && s.InputRecords == 3 && s.OutputNodes == 3 && s.MaxDepth == 2
	})).Return(nil)
	f.storage.On("DownloadFile", mock.Anything, "uploads/f1/org.csv").Return(csvReader(), nil)
	f.storage.On("PutJSON", mock.Anything, "results/t1/chart.json", mock.Anything).
		Run(func(args mock.Arguments) { doc = args.Get(2).(*chart.Document) }).
		Return(int64(512), nil)

	f.worker.HandleTask(context.Background(), task)

	f.db.AssertExpectations(t)
	f.queue.AssertExpectations(t)
	f.storage.AssertExpectations(t)

	assert.Equal(t, database.TaskStatusCompleted, record.Status)
	assert.Equal(t, "results/t1/chart.json", record.OutputPath)
	assert.NotNil(t, record.ProcessedAt)
	assert.Contains(t, string(record.Result), `"result_object":"results/t1/chart.json"`)
	assert.Contains(t, string(record.Config), `"position_column":"Position"`)

	require.NotNil(t, doc)
	assert.Equal(t, model.ColumnSet{"Position", "Manager", "Name", "Type"}, doc.Columns)
	require.NotNil(t, doc.View.Root)
	assert.Equal(t, "CEO", doc.View.Root.ID)
	assert.Equal(t, "VP", doc.View.Root.Children[0].ID)
}

func TestHandleTask_SavedConfigWithFilter(t *testing.T) {
	f := newFixture(t)
	record := &database.TaskRecord{ID: "t2", InputPath: "uploads/f2/org.csv"}
	task := &queue.Task{ID: "t2", Data: map[string]interface{}{"config_id": "c1"}}

	saved := &model.ChartConfig{
		PositionColumn: "Position",
		ManagerColumn:  "Manager",
		DisplayColumns: []string{"Name"},
		Filters:        model.FilterSpec{"Type": {Kind: model.FilterEquals, Value: "Full-time"}},
	}
	savedRecord, err := database.NewChartConfigRecord("c1", "full-time only", saved)
	require.NoError(t, err)

	var doc *chart.Document
	f.queue.On("UpdateTaskStatus", mock.Anything, "t2", database.TaskStatusProcessing, "").Return(nil)
	f.queue.On("UpdateTaskResult", mock.Anything, "t2", "results/t2/chart.json").Return(nil)
	f.db.On("GetTask", mock.Anything, "t2").Return(record, nil)
	f.db.On("GetChartConfig", mock.Anything, "c1").Return(savedRecord, nil)
	f.db.On("UpdateTask", mock.Anything, record).Return(nil)
	f.db.On("CreateProcessingStats", mock.Anything, mock.Anything).Return(errors.New("stats table missing"))
	f.storage.On("DownloadFile", mock.Anything, "uploads/f2/org.csv").Return(csvReader(), nil)
	f.storage.On("PutJSON", mock.Anything, "results/t2/chart.json", mock.Anything).
		Run(func(args mock.Arguments) { doc = args.Get(2).(*chart.Document) }).
		Return(int64(256), nil)

	f.worker.HandleTask(context.Background(), task)

	// 统计写入失败不影响任务结果
	assert.Equal(t, database.TaskStatusCompleted, record.Status)
	require.NotNil(t, doc)

	// VP 被过滤掉，Engineer 的上级不存在，升级为根
	root := doc.View.Root
	require.NotNil(t, root)
	assert.True(t, root.Virtual)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "CEO", root.Children[0].ID)
	assert.Equal(t, "Engineer", root.Children[1].ID)
	assert.NotEmpty(t, doc.Warnings)
}

func TestHandleTask_Failure(t *testing.T) {
	f := newFixture(t)
	record := &database.TaskRecord{ID: "t3", InputPath: "uploads/f3/org.csv"}
	task := &queue.Task{ID: "t3"}

	f.queue.On("UpdateTaskStatus", mock.Anything, "t3", database.TaskStatusProcessing, "").Return(nil)
	f.queue.On("UpdateTaskStatus", mock.Anything, "t3", database.TaskStatusFailed, mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "下载输入文件失败")
	})).Return(nil)
	f.db.On("GetTask", mock.Anything, "t3").Return(record, nil)
	f.db.On("UpdateTask", mock.Anything, record).Return(nil)
	f.storage.On("DownloadFile", mock.Anything, "uploads/f3/org.csv").Return(nil, errors.New("no such key"))

	f.worker.HandleTask(context.Background(), task)

	f.queue.AssertExpectations(t)
	assert.Equal(t, database.TaskStatusFailed, record.Status)
	assert.Contains(t, record.ErrorMsg, "no such key")
	assert.Equal(t, 1, record.RetryCount)
	f.storage.AssertNotCalled(t, "PutJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleTask_UnsupportedFormat(t *testing.T) {
	f := newFixture(t)
	record := &database.TaskRecord{ID: "t4", InputPath: "uploads/f4/org.pdf"}

	f.queue.On("UpdateTaskStatus", mock.Anything, "t4", mock.Anything, mock.Anything).Return(nil)
	f.db.On("GetTask", mock.Anything, "t4").Return(record, nil)
	f.db.On("UpdateTask", mock.Anything, record).Return(nil)

	f.worker.HandleTask(context.Background(), &queue.Task{ID: "t4"})

	assert.Equal(t, database.TaskStatusFailed, record.Status)
	f.storage.AssertNotCalled(t, "DownloadFile", mock.Anything, mock.Anything)
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	f.queue.On("DequeueTask", mock.Anything, queue.QueueChart, 10*time.Millisecond).
		After(5*time.Millisecond).
		Return(nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		f.worker.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
	f.queue.AssertCalled(t, "DequeueTask", mock.Anything, queue.QueueChart, 10*time.Millisecond)
}
