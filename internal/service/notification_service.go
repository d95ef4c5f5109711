package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/notify"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/queue"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	ListByDeliveryStatus(ctx context.Context, status string, limit, offset int) ([]models.Notification, error)
	MarkQueued(ctx context.Context, id uuid.UUID, ack string, seenAttempts int) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, attempted bool) error
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// UserLookup находит получателя уведомления.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RealtimePublisher отправляет событие в открытые WebSocket соединения пользователя.
type RealtimePublisher interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// Notifier best-effort уведомления для доменных сервисов.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, caseID *uuid.UUID, event string, data notify.Data)
}

// NotificationService сохраняет уведомления, ставит их в очередь доставки и
// отдаёт ленту пользователю.
type NotificationService struct {
	repo      NotificationRepository
	users     UserLookup
	outbox    queue.Outbox
	publisher RealtimePublisher
}

// NewNotificationService создаёт новый сервис уведомлений. publisher может быть nil.
func NewNotificationService(repo NotificationRepository, users UserLookup, outbox queue.Outbox, publisher RealtimePublisher) *NotificationService {
	return &NotificationService{repo: repo, users: users, outbox: outbox, publisher: publisher}
}

// Dispatch строит письмо по шаблону события, сохраняет его, пушит в WebSocket и
// ставит в очередь. Ошибка постановки фиксируется на записи и возвращается.
func (s *NotificationService) Dispatch(ctx context.Context, userID uuid.UUID, caseID *uuid.UUID, event string, data notify.Data) (*models.Notification, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("notification service: load recipient: %w", err)
	}
	if data.RecipientName == "" {
		data.RecipientName = user.DisplayName()
	}

	msg, err := notify.BuildMessage(event, user.Email, data)
	if err != nil {
		return nil, fmt.Errorf("notification service: %w", err)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("notification service: marshal payload: %w", err)
	}

	n := &models.Notification{
		UserID:    userID,
		CaseID:    caseID,
		Event:     event,
		Recipient: msg.Recipient,
		Subject:   msg.Subject,
		BodyText:  msg.Text,
		BodyHTML:  msg.HTML,
		Payload:   payload,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.BroadcastToUser(userID, event, n); err != nil {
			logger.FromContext(ctx).WithError(err).WithField("notification_id", n.ID).Warn("notification service: realtime push failed")
		}
	}

	if err := s.enqueue(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

// Notify вызывает Dispatch и только логирует ошибку.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, caseID *uuid.UUID, event string, data notify.Data) {
	if _, err := s.Dispatch(ctx, userID, caseID, event, data); err != nil {
		fields := logrus.Fields{"user_id": userID, "event": event}
		if caseID != nil {
			fields["case_id"] = *caseID
		}
		logger.FromContext(ctx).WithFields(fields).WithError(err).Warn("notification dispatch failed")
	}
}

// Retry повторно ставит уведомление в очередь. Доставленные не переотправляются.
func (s *NotificationService) Retry(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	n, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.DeliveryStatus == models.DeliverySent {
		return nil, apperror.New(apperror.ErrCodeConflict, "notification already delivered")
	}

	if err := s.enqueue(ctx, n); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *NotificationService) enqueue(ctx context.Context, n *models.Notification) error {
	seenAttempts := n.Attempts
	ack, err := s.outbox.Enqueue(ctx, queue.NotificationTask{NotificationID: n.ID.String()})
	if err != nil {
		if markErr := s.repo.MarkFailed(ctx, n.ID, err.Error(), false); markErr != nil {
			logger.FromContext(ctx).WithError(markErr).WithField("notification_id", n.ID).Error("notification service: failed to record enqueue failure")
		}
		n.DeliveryStatus = models.DeliveryFailed
		reason := err.Error()
		n.LastError = &reason
		return fmt.Errorf("notification service: enqueue: %w", err)
	}

	if err := s.repo.MarkQueued(ctx, n.ID, ack, seenAttempts); err != nil {
		return err
	}
	n.QueueAck = &ack
	return nil
}

// ListByDeliveryStatus выборка для администратора, например все failed.
func (s *NotificationService) ListByDeliveryStatus(ctx context.Context, status string, limit, offset int) ([]models.Notification, error) {
	switch status {
	case models.DeliveryQueued, models.DeliverySent, models.DeliveryFailed:
	default:
		return nil, apperror.Newf(apperror.ErrCodeValidation, "invalid delivery status %q", status)
	}
	return s.repo.ListByDeliveryStatus(ctx, status, limit, offset)
}

// ListNotifications возвращает список уведомлений пользователя.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	return s.repo.List(ctx, userID, limit, offset, unreadOnly)
}

// MarkAsRead отмечает уведомление как прочитанное. Чужое уведомление не найдётся.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.ErrNotificationNotFound
		}
		return err
	}
	return nil
}

// MarkAllAsRead отмечает все уведомления пользователя как прочитанные.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return nil, apperror.ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}
