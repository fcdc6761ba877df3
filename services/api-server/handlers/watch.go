package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/freedkr/orgchart/internal/model"
	"github.com/freedkr/orgchart/internal/queue"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// 跨域策略由 CORS 中间件负责
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WatchTask 通过 websocket 推送任务状态，直到任务完成或失败
func (h *Handlers) WatchTask(c *gin.Context) {
	taskID := c.Param("id")
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// 先订阅再读取当前状态，读取之后发布的状态变化都会进入 updates
	updates, unsubscribe, err := h.queue.SubscribeTaskStatus(ctx, taskID)
	if err != nil {
		h.respondError(c, err, "订阅任务状态失败")
		return
	}
	defer unsubscribe()

	current, err := h.currentTask(ctx, taskID)
	if err != nil {
		h.respondError(c, err, "任务不存在")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket升级失败", zap.String("task_id", taskID), zap.Error(err))
		return
	}
	defer conn.Close()

	// 读循环只用于感知客户端断开
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeTask(conn, current); err != nil || current.IsFinished() {
		closeNormal(conn)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case task, ok := <-updates:
			if !ok {
				closeNormal(conn)
				return
			}
			if err := writeTask(conn, task); err != nil {
				h.logger.Debug("推送任务状态失败", zap.String("task_id", taskID), zap.Error(err))
				return
			}
			if task.IsFinished() {
				closeNormal(conn)
				return
			}
		}
	}
}

// currentTask 读取队列中的任务状态，状态已过期时使用数据库记录
func (h *Handlers) currentTask(ctx context.Context, taskID string) (*queue.Task, error) {
	current, err := h.queue.GetTaskStatus(ctx, taskID)
	if err == nil {
		return current, nil
	}
	if !model.IsErrorType(err, model.ErrCodeNotFound) {
		return nil, err
	}
	record, err := h.db.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &queue.Task{
		ID:               record.ID,
		Type:             record.Type,
		FileID:           record.FileID,
		ObjectName:       record.InputPath,
		Status:           record.Status,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
		Error:            record.ErrorMsg,
		ResultObjectName: record.OutputPath,
	}, nil
}

func writeTask(conn *websocket.Conn, task *queue.Task) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(task)
}

func closeNormal(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "task finished")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
