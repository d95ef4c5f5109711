package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/notify"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/queue"
)

// NotificationStore операции с уведомлениями, нужные воркеру.
type NotificationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, attempted bool) error
}

// Processor доставляет уведомления из очереди.
type Processor struct {
	store  NotificationStore
	sender notify.Sender
}

// NewProcessor создаёт обработчик доставки.
func NewProcessor(store NotificationStore, sender notify.Sender) *Processor {
	return &Processor{store: store, sender: sender}
}

// Handler регистрирует обработчик задачи доставки для сервера asynq.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.DeliverNotificationTask, p.handleDeliver)
	return mux
}

func (p *Processor) handleDeliver(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseTask(task)
	if err != nil {
		// повторять бессмысленно
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return p.Deliver(ctx, payload)
}

// Deliver загружает уведомление, отправляет его и фиксирует результат.
// Ошибка отправки возвращается, чтобы очередь повторила попытку.
func (p *Processor) Deliver(ctx context.Context, task queue.NotificationTask) error {
	id, err := uuid.Parse(task.NotificationID)
	if err != nil {
		return fmt.Errorf("worker: invalid notification id %q: %w", task.NotificationID, err)
	}

	n, err := p.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("worker: load notification: %w", err)
	}
	if n.DeliveryStatus == models.DeliverySent {
		return nil
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"notification_id": n.ID,
		"event":           n.Event,
	})

	sendErr := p.sender.Send(ctx, notify.Message{
		Recipient: n.Recipient,
		Subject:   n.Subject,
		Text:      n.BodyText,
		HTML:      n.BodyHTML,
	})
	if sendErr != nil {
		log.WithError(sendErr).Warn("notification delivery failed")
		if err := p.store.MarkFailed(ctx, id, sendErr.Error(), true); err != nil {
			log.WithError(err).Error("failed to record delivery failure")
		}
		return fmt.Errorf("worker: send notification: %w", sendErr)
	}

	if err := p.store.MarkSent(ctx, id); err != nil {
		return fmt.Errorf("worker: mark sent: %w", err)
	}
	log.Debug("notification sent")
	return nil
}
