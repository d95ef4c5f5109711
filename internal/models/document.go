package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
)

// CaseDocument подтверждающий документ по заданию.
type CaseDocument struct {
	ID           uuid.UUID                `db:"id" json:"id"`
	CaseID       uuid.UUID                `db:"case_id" json:"case_id"`
	DocumentType valueobject.DocumentType `db:"document_type" json:"document_type"`
	FileName     string                   `db:"file_name" json:"file_name"`
	MimeType     string                   `db:"mime_type" json:"mime_type"`
	FileSize     int64                    `db:"file_size" json:"file_size"`
	StorageKey   string                   `db:"storage_key" json:"-"`
	UploadedBy   uuid.UUID                `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt    time.Time                `db:"created_at" json:"created_at"`
	URL          string                   `db:"-" json:"url,omitempty"`
}
