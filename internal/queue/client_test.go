package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueName(t *testing.T) {
	assert.Equal(t, QueueChart, QueueName(TaskTypeChartBuild))
	assert.Equal(t, QueueDefault, QueueName("excel_processing"))
	assert.Equal(t, QueueDefault, QueueName(""))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "task:abc", TaskKey("abc"))
	assert.Equal(t, "task-status:abc", StatusChannel("abc"))
}

func TestTask(t *testing.T) {
	task := &Task{ID: "t1", Status: "processing", Data: map[string]interface{}{"config_id": "c1", "n": 3}}
	assert.Equal(t, "c1", task.DataString("config_id"))
	assert.Equal(t, "", task.DataString("n"))
	assert.Equal(t, "", task.DataString("missing"))
	assert.False(t, task.IsFinished())

	task.Status = "failed"
	assert.True(t, task.IsFinished())
	assert.Equal(t, "", (&Task{}).DataString("config_id"))
}
