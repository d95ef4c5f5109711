package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository/common"
)

// Ошибки условных обновлений задания.
var (
	ErrJobNotFound = errors.New("job not found")
	// ErrJobTaken задание уже закреплено за исполнителем.
	ErrJobTaken = errors.New("job already claimed")
	// ErrJobNotPostable дело ещё не оплачено или уже закрыто.
	ErrJobNotPostable = errors.New("job is not open for claiming")
	// ErrJobStateChanged состояние задания изменилось между чтением и записью.
	ErrJobStateChanged = errors.New("job state changed")
	// ErrDocumentsIncomplete для завершения не хватает документов.
	ErrDocumentsIncomplete = errors.New("documents incomplete")
)

// JobRepository работает с полями исполнителя в legal_cases.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository создаёт экземпляр репозитория.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Claim закрепляет задание за исполнителем одним условным UPDATE.
// Из двух одновременных вызовов успешен ровно один, второй получает ErrJobTaken.
func (r *JobRepository) Claim(ctx context.Context, caseID, contractorID uuid.UUID, assignedAt, dueDate time.Time) (*models.LegalCase, error) {
	query := `
		UPDATE legal_cases
		SET contractor_status = 'ASSIGNED',
		    contractor_id = $2,
		    assigned_at = $3,
		    due_date = $4,
		    updated_at = NOW()
		WHERE id = $1
		  AND contractor_status = 'UNASSIGNED'
		  AND status IN ('SUBMITTED', 'IN_PROGRESS')
		RETURNING *
	`
	var c models.LegalCase
	err := r.db.GetContext(ctx, &c, query, caseID, contractorID, assignedAt, dueDate)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job repository: claim %w", err)
	}

	// UPDATE ничего не затронул: выясняем причину.
	var current struct {
		Status           valueobject.CaseStatus       `db:"status"`
		ContractorStatus valueobject.ContractorStatus `db:"contractor_status"`
	}
	if err := r.db.GetContext(ctx, &current, `SELECT status, contractor_status FROM legal_cases WHERE id = $1`, caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("job repository: claim lookup %w", err)
	}
	if current.ContractorStatus != valueobject.ContractorStatusUnassigned {
		return nil, ErrJobTaken
	}
	return nil, ErrJobNotPostable
}

// Unclaim возвращает задание в пул, если оно всё ещё за этим исполнителем и не завершено.
func (r *JobRepository) Unclaim(ctx context.Context, caseID, contractorID uuid.UUID) error {
	query := `
		UPDATE legal_cases
		SET contractor_status = 'UNASSIGNED',
		    contractor_id = NULL,
		    assigned_at = NULL,
		    due_date = NULL,
		    updated_at = NOW()
		WHERE id = $1
		  AND contractor_id = $2
		  AND contractor_status IN ('ASSIGNED', 'IN_PROGRESS')
	`
	result, err := r.db.ExecContext(ctx, query, caseID, contractorID)
	if err != nil {
		return fmt.Errorf("job repository: unclaim %w", err)
	}
	return common.ExpectAffected(result, "job repository: unclaim", ErrJobStateChanged)
}

// UpdateStatus переводит задание из from в to при условии, что оно за исполнителем.
// Переход в COMPLETED дополнительно требует все обязательные документы.
func (r *JobRepository) UpdateStatus(ctx context.Context, caseID, contractorID uuid.UUID, from, to valueobject.ContractorStatus) (*models.LegalCase, error) {
	query := `
		UPDATE legal_cases
		SET contractor_status = $4,
		    job_completed_at = CASE WHEN $4 = 'COMPLETED' THEN NOW() ELSE job_completed_at END,
		    updated_at = NOW()
		WHERE id = $1
		  AND contractor_id = $2
		  AND contractor_status = $3
	`
	args := []interface{}{caseID, contractorID, from, to}
	if to == valueobject.ContractorStatusCompleted {
		query += `
		  AND (SELECT COUNT(DISTINCT document_type) FROM case_documents WHERE case_id = $1) = $5`
		args = append(args, len(valueobject.RequiredDocuments))
	}
	query += ` RETURNING *`

	var c models.LegalCase
	if err := r.db.GetContext(ctx, &c, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if to == valueobject.ContractorStatusCompleted {
				return nil, ErrDocumentsIncomplete
			}
			return nil, ErrJobStateChanged
		}
		return nil, fmt.Errorf("job repository: update status %w", err)
	}
	return &c, nil
}

// GetJob возвращает задание с адресом объекта.
func (r *JobRepository) GetJob(ctx context.Context, caseID uuid.UUID) (*models.CaseView, error) {
	var v models.CaseView
	if err := r.db.GetContext(ctx, &v, caseViewSelect+` WHERE lc.id = $1`, caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("job repository: get job %w", err)
	}
	return &v, nil
}

// JobListParams параметры выборки пула заданий.
type JobListParams struct {
	County string
	Search string
	Limit  int
	Offset int
}

// JobListResult страница заданий.
type JobListResult struct {
	Jobs    []models.CaseView `json:"jobs"`
	Total   int               `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
	HasMore bool              `json:"has_more"`
}

// ListAvailable возвращает свободные оплаченные задания, новые первыми.
func (r *JobRepository) ListAvailable(ctx context.Context, params JobListParams) (*JobListResult, error) {
	where := ` WHERE lc.contractor_status = 'UNASSIGNED' AND lc.status IN ('SUBMITTED', 'IN_PROGRESS')`
	args := []interface{}{}
	argIndex := 1

	if params.County != "" {
		where += fmt.Sprintf(" AND p.county ILIKE $%d", argIndex)
		args = append(args, params.County)
		argIndex++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (p.address ILIKE $%d OR p.city ILIKE $%d OR p.zip_code ILIKE $%d)", argIndex, argIndex, argIndex)
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+caseViewFrom+where, args...); err != nil {
		return nil, fmt.Errorf("job repository: count available %w", err)
	}

	page := common.NewPage(params.Limit, params.Offset)
	query := caseViewSelect + where +
		fmt.Sprintf(" ORDER BY lc.created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, page.Limit, page.Offset)

	jobs := []models.CaseView{}
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("job repository: list available %w", err)
	}

	return &JobListResult{
		Jobs:    jobs,
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore(total),
	}, nil
}

// ListMine возвращает задания исполнителя, при status только в этом состоянии.
func (r *JobRepository) ListMine(ctx context.Context, contractorID uuid.UUID, status valueobject.ContractorStatus) ([]models.CaseView, error) {
	query := caseViewSelect + ` WHERE lc.contractor_id = $1`
	args := []interface{}{contractorID}
	if status != "" {
		query += ` AND lc.contractor_status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY lc.due_date ASC NULLS LAST, lc.assigned_at DESC`

	jobs := []models.CaseView{}
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("job repository: list mine %w", err)
	}
	return jobs, nil
}

// DocumentTypes возвращает загруженные типы документов по каждому из дел.
func (r *JobRepository) DocumentTypes(ctx context.Context, caseIDs []uuid.UUID) (map[uuid.UUID][]valueobject.DocumentType, error) {
	result := make(map[uuid.UUID][]valueobject.DocumentType, len(caseIDs))
	if len(caseIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		CaseID       uuid.UUID                `db:"case_id"`
		DocumentType valueobject.DocumentType `db:"document_type"`
	}
	query := `SELECT case_id, document_type FROM case_documents WHERE case_id = ANY($1) ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(uuidStrings(caseIDs))); err != nil {
		return nil, fmt.Errorf("job repository: document types %w", err)
	}
	for _, row := range rows {
		result[row.CaseID] = append(result[row.CaseID], row.DocumentType)
	}
	return result, nil
}
