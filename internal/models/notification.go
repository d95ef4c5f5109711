package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Статусы доставки уведомления.
const (
	DeliveryQueued = "queued"
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// Notification уведомление пользователю: письмо в очереди доставки и запись в ленте.
type Notification struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	UserID         uuid.UUID       `db:"user_id" json:"user_id"`
	CaseID         *uuid.UUID      `db:"case_id" json:"case_id,omitempty"`
	Event          string          `db:"event" json:"event"`
	Recipient      string          `db:"recipient" json:"recipient"`
	Subject        string          `db:"subject" json:"subject"`
	BodyText       string          `db:"body_text" json:"body_text"`
	BodyHTML       string          `db:"body_html" json:"-"`
	Payload        json.RawMessage `db:"payload" json:"payload"`
	DeliveryStatus string          `db:"delivery_status" json:"delivery_status"`
	QueueAck       *string         `db:"queue_ack" json:"queue_ack,omitempty"`
	Attempts       int             `db:"attempts" json:"attempts"`
	LastError      *string         `db:"last_error" json:"last_error,omitempty"`
	IsRead         bool            `db:"is_read" json:"is_read"`
	DeliveredAt    *time.Time      `db:"delivered_at" json:"delivered_at,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
