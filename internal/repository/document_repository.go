package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository/common"
)

// Ошибки репозитория документов.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentExists   = errors.New("document type already uploaded")
)

// DocumentRepository работает с таблицей case_documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository создаёт экземпляр репозитория.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create сохраняет метаданные документа. Второй документ того же типа отклоняется.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.CaseDocument) error {
	query := `
		INSERT INTO case_documents (case_id, document_type, file_name, mime_type, file_size, storage_key, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		doc.CaseID, doc.DocumentType, doc.FileName, doc.MimeType, doc.FileSize, doc.StorageKey, doc.UploadedBy,
	).Scan(&doc.ID, &doc.CreatedAt); err != nil {
		if common.IsUniqueViolation(err, "case_documents_one_per_type") {
			return ErrDocumentExists
		}
		return fmt.Errorf("document repository: create %w", err)
	}
	return nil
}

// GetByType возвращает документ дела заданного типа.
func (r *DocumentRepository) GetByType(ctx context.Context, caseID uuid.UUID, docType valueobject.DocumentType) (*models.CaseDocument, error) {
	var doc models.CaseDocument
	query := `SELECT * FROM case_documents WHERE case_id = $1 AND document_type = $2`
	if err := r.db.GetContext(ctx, &doc, query, caseID, docType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("document repository: get by type %w", err)
	}
	return &doc, nil
}

// ListByCase возвращает документы дела в порядке загрузки.
func (r *DocumentRepository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.CaseDocument, error) {
	docs := []models.CaseDocument{}
	if err := r.db.SelectContext(ctx, &docs, `SELECT * FROM case_documents WHERE case_id = $1 ORDER BY created_at`, caseID); err != nil {
		return nil, fmt.Errorf("document repository: list %w", err)
	}
	return docs, nil
}

// Delete удаляет запись документа.
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := common.DeleteByID(ctx, r.db, "case_documents", id, ErrDocumentNotFound); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return err
		}
		return fmt.Errorf("document repository: delete %w", err)
	}
	return nil
}
