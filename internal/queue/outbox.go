package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// DeliverNotificationTask ставится для каждого сохранённого уведомления.
	DeliverNotificationTask = "notification:deliver"
)

// NotificationTask полезная нагрузка задачи: воркер сам загружает уведомление из БД.
type NotificationTask struct {
	NotificationID string `json:"notification_id"`
}

// Handler обрабатывает задачу доставки.
type Handler func(ctx context.Context, task NotificationTask) error

// Outbox принимает уведомления к доставке и возвращает подтверждение очереди.
type Outbox interface {
	Enqueue(ctx context.Context, task NotificationTask) (string, error)
}

// AsynqOutbox ставит задачи в Redis через asynq.
type AsynqOutbox struct {
	client   *asynq.Client
	maxRetry int
}

// NewAsynqOutbox создаёт outbox поверх клиента asynq.
func NewAsynqOutbox(client *asynq.Client, maxRetry int) *AsynqOutbox {
	if maxRetry <= 0 {
		maxRetry = 5
	}
	return &AsynqOutbox{client: client, maxRetry: maxRetry}
}

// NewTask сериализует задачу доставки.
func NewTask(task NotificationTask) (*asynq.Task, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(DeliverNotificationTask, data), nil
}

// ParseTask читает задачу доставки из полезной нагрузки asynq.
func ParseTask(t *asynq.Task) (NotificationTask, error) {
	var task NotificationTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return task, fmt.Errorf("decode payload: %w", err)
	}
	if task.NotificationID == "" {
		return task, fmt.Errorf("decode payload: empty notification id")
	}
	return task, nil
}

// Enqueue ставит задачу и возвращает её идентификатор в asynq.
func (o *AsynqOutbox) Enqueue(ctx context.Context, task NotificationTask) (string, error) {
	t, err := NewTask(task)
	if err != nil {
		return "", err
	}
	info, err := o.client.EnqueueContext(ctx, t, asynq.MaxRetry(o.maxRetry))
	if err != nil {
		return "", fmt.Errorf("enqueue notification task: %w", err)
	}
	return info.ID, nil
}

// InlineOutbox доставляет уведомление сразу, без Redis.
type InlineOutbox struct {
	handler Handler
}

// NewInlineOutbox создаёт синхронный outbox.
func NewInlineOutbox(handler Handler) *InlineOutbox {
	return &InlineOutbox{handler: handler}
}

// Enqueue вызывает обработчик в текущей горутине.
func (o *InlineOutbox) Enqueue(ctx context.Context, task NotificationTask) (string, error) {
	if err := o.handler(ctx, task); err != nil {
		return "", err
	}
	return "inline:" + task.NotificationID, nil
}
