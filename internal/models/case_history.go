package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Действия, записываемые в историю дела.
const (
	HistoryCaseCreated          = "case_created"
	HistoryCaseUpdated          = "case_updated"
	HistoryStatusChanged        = "status_changed"
	HistoryPaymentStatusChanged = "payment_status_changed"
	HistoryJobClaimed           = "job_claimed"
	HistoryJobUnclaimed         = "job_unclaimed"
	HistoryJobStatusChanged     = "job_status_changed"
	HistoryDocumentUploaded     = "document_uploaded"
	HistoryDocumentDeleted      = "document_deleted"
	HistoryCheckedOut           = "checked_out"
)

// CaseHistory запись аудита изменений дела.
type CaseHistory struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	CaseID    uuid.UUID       `db:"case_id" json:"case_id"`
	UserID    *uuid.UUID      `db:"user_id" json:"user_id,omitempty"`
	Action    string          `db:"action" json:"action"`
	OldValue  json.RawMessage `db:"old_value" json:"old_value,omitempty"`
	NewValue  json.RawMessage `db:"new_value" json:"new_value,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
