package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository/common"
)

// ErrNotificationNotFound возвращается, когда уведомление не найдено.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository отвечает за работу с уведомлениями.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository создаёт экземпляр репозитория.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create сохраняет уведомление в статусе queued.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, case_id, event, recipient, subject, body_text, body_html, payload, delivery_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'queued')
		RETURNING id, delivery_status, attempts, is_read, created_at
	`

	payload := n.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		n.UserID, n.CaseID, n.Event, n.Recipient, n.Subject, n.BodyText, n.BodyHTML, []byte(payload),
	).Scan(&n.ID, &n.DeliveryStatus, &n.Attempts, &n.IsRead, &n.CreatedAt); err != nil {
		return fmt.Errorf("notification repository: create %w", err)
	}

	return nil
}

// GetByID возвращает уведомление по идентификатору.
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.GetContext(ctx, &notification, `SELECT * FROM notifications WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("notification repository: get by id %w", err)
	}

	return &notification, nil
}

// List возвращает список уведомлений пользователя с пагинацией.
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE user_id = $1
	`
	if unreadOnly {
		query += " AND is_read = FALSE"
	}
	page := common.NewPage(limit, offset)
	query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"

	notifications := []models.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, userID, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("notification repository: list %w", err)
	}

	return notifications, nil
}

// ListByDeliveryStatus возвращает уведомления в статусе доставки, старые первыми.
func (r *NotificationRepository) ListByDeliveryStatus(ctx context.Context, status string, limit, offset int) ([]models.Notification, error) {
	page := common.NewPage(limit, offset)
	query := `
		SELECT * FROM notifications
		WHERE delivery_status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	notifications := []models.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, status, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("notification repository: list by delivery status %w", err)
	}
	return notifications, nil
}

// MarkQueued записывает подтверждение очереди. seenAttempts число попыток на момент
// постановки: если воркер уже отметил доставку или новую попытку, её итог сохраняется.
func (r *NotificationRepository) MarkQueued(ctx context.Context, id uuid.UUID, ack string, seenAttempts int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET queue_ack = $2,
		    delivery_status = CASE WHEN delivery_status = 'sent' OR attempts > $3 THEN delivery_status ELSE 'queued' END,
		    last_error = CASE WHEN delivery_status = 'sent' OR attempts > $3 THEN last_error ELSE NULL END
		WHERE id = $1
	`, id, ack, seenAttempts)
	if err != nil {
		return fmt.Errorf("notification repository: mark queued %w", err)
	}
	return common.ExpectAffected(result, "notification repository: mark queued", ErrNotificationNotFound)
}

// MarkSent фиксирует успешную доставку.
func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET delivery_status = 'sent', attempts = attempts + 1, last_error = NULL, delivered_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("notification repository: mark sent %w", err)
	}
	return common.ExpectAffected(result, "notification repository: mark sent", ErrNotificationNotFound)
}

// MarkFailed фиксирует неудачную попытку. attempted=false для ошибки постановки в очередь.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, attempted bool) error {
	increment := 0
	if attempted {
		increment = 1
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET delivery_status = 'failed', attempts = attempts + $3, last_error = $2
		WHERE id = $1
	`, id, reason, increment)
	if err != nil {
		return fmt.Errorf("notification repository: mark failed %w", err)
	}
	return common.ExpectAffected(result, "notification repository: mark failed", ErrNotificationNotFound)
}

// MarkAsRead отмечает уведомление пользователя как прочитанное.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("notification repository: mark as read %w", err)
	}
	return common.ExpectAffected(result, "notification repository: mark as read", ErrNotificationNotFound)
}

// MarkAllAsRead отмечает все уведомления пользователя как прочитанные.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return fmt.Errorf("notification repository: mark all as read %w", err)
	}

	return nil
}

// CountUnread возвращает количество непрочитанных уведомлений пользователя.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID); err != nil {
		return 0, fmt.Errorf("notification repository: count unread %w", err)
	}

	return count, nil
}
