package repository

import (
	"context"
	"database/sql"
	"encoding/json"
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

// Ошибки уровня репозитория дел.
var (
	ErrCaseNotFound = errors.New("case not found")
	// ErrCartChanged часть выбранных дел уже не в корзине к моменту оплаты.
	ErrCartChanged = errors.New("cart changed")
)

const caseViewSelect = `
	SELECT lc.*,
	       p.address AS property_address, p.city AS property_city, p.state AS property_state,
	       p.zip_code AS property_zip, p.county AS property_county,
	       t.tenant_names AS tenant_names,
	       lp.full_name AS landlord_name, lp.email AS landlord_email,
	       lf.name AS law_firm_name
	FROM legal_cases lc
	LEFT JOIN properties p ON p.id = lc.property_id
	LEFT JOIN tenants t ON t.id = lc.tenant_id
	LEFT JOIN profiles lp ON lp.id = lc.landlord_id
	LEFT JOIN law_firms lf ON lf.id = lc.law_firm_id
`

const caseViewFrom = `
	FROM legal_cases lc
	LEFT JOIN properties p ON p.id = lc.property_id
	LEFT JOIN tenants t ON t.id = lc.tenant_id
`

// CaseRepository отвечает за дела, их историю и оплату корзины.
type CaseRepository struct {
	db *sqlx.DB
}

// NewCaseRepository создаёт новый экземпляр.
func NewCaseRepository(db *sqlx.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create сохраняет новое дело и запись истории в одной транзакции.
func (r *CaseRepository) Create(ctx context.Context, c *models.LegalCase, actorID uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO legal_cases (landlord_id, property_id, tenant_id, law_firm_id, case_type, status, payment_status,
			                         price, rent_owed_at_filing, current_rent_owed, late_fees_charged, no_right_of_redemption,
			                         date_initiated, court_case_number, contractor_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING id, date_initiated, created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, query,
			c.LandlordID, c.PropertyID, c.TenantID, c.LawFirmID, c.CaseType, c.Status, c.PaymentStatus,
			c.Price, c.RentOwedAtFiling, c.CurrentRentOwed, c.LateFeesCharged, c.NoRightOfRedemption,
			c.DateInitiated, c.CourtCaseNumber, c.ContractorStatus,
		).Scan(&c.ID, &c.DateInitiated, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return fmt.Errorf("case repository: insert case %w", err)
		}

		return addHistory(ctx, tx, c.ID, &actorID, models.HistoryCaseCreated, nil, map[string]interface{}{
			"case_type": c.CaseType,
			"status":    c.Status,
			"price":     c.Price,
		})
	})
}

// GetByID возвращает дело по идентификатору.
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LegalCase, error) {
	var c models.LegalCase
	if err := r.db.GetContext(ctx, &c, `SELECT * FROM legal_cases WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("case repository: get by id %w", err)
	}
	return &c, nil
}

// GetView возвращает дело с объектом, арендаторами, арендодателем и фирмой.
func (r *CaseRepository) GetView(ctx context.Context, id uuid.UUID) (*models.CaseView, error) {
	var v models.CaseView
	if err := r.db.GetContext(ctx, &v, caseViewSelect+` WHERE lc.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("case repository: get view %w", err)
	}
	return &v, nil
}

// Update сохраняет редактируемые поля дела.
func (r *CaseRepository) Update(ctx context.Context, c *models.LegalCase, actorID uuid.UUID, changes map[string]interface{}) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE legal_cases
			SET law_firm_id = $1,
			    price = $2,
			    rent_owed_at_filing = $3,
			    current_rent_owed = $4,
			    late_fees_charged = $5,
			    no_right_of_redemption = $6,
			    court_case_number = $7,
			    trial_date = $8,
			    court_hearing_date = $9,
			    court_outcome_notes = $10,
			    updated_at = NOW()
			WHERE id = $11
			RETURNING updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, query,
			c.LawFirmID, c.Price, c.RentOwedAtFiling, c.CurrentRentOwed, c.LateFeesCharged, c.NoRightOfRedemption,
			c.CourtCaseNumber, c.TrialDate, c.CourtHearingDate, c.CourtOutcomeNotes, c.ID,
		).Scan(&c.UpdatedAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCaseNotFound
			}
			return fmt.Errorf("case repository: update %w", err)
		}

		if len(changes) == 0 {
			return nil
		}
		return addHistory(ctx, tx, c.ID, &actorID, models.HistoryCaseUpdated, nil, changes)
	})
}

// UpdateStatus перезаписывает статус дела и возвращает прежнее значение.
// История пишется только при фактическом изменении.
func (r *CaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.CaseStatus, actorID uuid.UUID) (valueobject.CaseStatus, error) {
	var previous valueobject.CaseStatus
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &previous, `SELECT status FROM legal_cases WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCaseNotFound
			}
			return fmt.Errorf("case repository: lock status %w", err)
		}
		if previous == status {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE legal_cases SET status = $1, updated_at = NOW() WHERE id = $2`, status, id); err != nil {
			return fmt.Errorf("case repository: update status %w", err)
		}
		return addHistory(ctx, tx, id, &actorID, models.HistoryStatusChanged, previous, status)
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

// UpdatePaymentStatus перезаписывает статус оплаты и возвращает прежнее значение.
func (r *CaseRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status valueobject.PaymentStatus, actorID uuid.UUID) (valueobject.PaymentStatus, error) {
	var previous valueobject.PaymentStatus
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &previous, `SELECT payment_status FROM legal_cases WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCaseNotFound
			}
			return fmt.Errorf("case repository: lock payment status %w", err)
		}
		if previous == status {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE legal_cases SET payment_status = $1, updated_at = NOW() WHERE id = $2`, status, id); err != nil {
			return fmt.Errorf("case repository: update payment status %w", err)
		}
		return addHistory(ctx, tx, id, &actorID, models.HistoryPaymentStatusChanged, previous, status)
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

// Delete удаляет дело. Документы и история удаляются каскадно.
func (r *CaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := common.DeleteByID(ctx, r.db, "legal_cases", id, ErrCaseNotFound); err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			return err
		}
		return fmt.Errorf("case repository: delete %w", err)
	}
	return nil
}

// CaseListParams содержит параметры фильтрации и поиска дел.
type CaseListParams struct {
	LandlordID    *uuid.UUID
	Status        string
	PaymentStatus string
	CaseType      string
	Search        string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// CaseListResult содержит список дел и метаданные пагинации.
type CaseListResult struct {
	Cases   []models.CaseView `json:"cases"`
	Total   int               `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
	HasMore bool              `json:"has_more"`
}

func buildCaseFilter(params CaseListParams) (string, []interface{}, int) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if params.LandlordID != nil {
		where += fmt.Sprintf(" AND lc.landlord_id = $%d", argIndex)
		args = append(args, *params.LandlordID)
		argIndex++
	}
	if params.Status != "" {
		where += fmt.Sprintf(" AND lc.status = $%d", argIndex)
		args = append(args, params.Status)
		argIndex++
	}
	if params.PaymentStatus != "" {
		where += fmt.Sprintf(" AND lc.payment_status = $%d", argIndex)
		args = append(args, params.PaymentStatus)
		argIndex++
	}
	if params.CaseType != "" {
		where += fmt.Sprintf(" AND lc.case_type = $%d", argIndex)
		args = append(args, params.CaseType)
		argIndex++
	}
	if params.Search != "" {
		where += fmt.Sprintf(` AND (lc.court_case_number ILIKE $%d OR p.address ILIKE $%d OR array_to_string(t.tenant_names, ' ') ILIKE $%d)`,
			argIndex, argIndex, argIndex)
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}
	if params.From != nil {
		where += fmt.Sprintf(" AND lc.created_at >= $%d", argIndex)
		args = append(args, *params.From)
		argIndex++
	}
	if params.To != nil {
		where += fmt.Sprintf(" AND lc.created_at < $%d", argIndex)
		args = append(args, *params.To)
		argIndex++
	}

	return where, args, argIndex
}

// List возвращает страницу дел, новые первыми.
func (r *CaseRepository) List(ctx context.Context, params CaseListParams) (*CaseListResult, error) {
	where, args, argIndex := buildCaseFilter(params)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+caseViewFrom+where, args...); err != nil {
		return nil, fmt.Errorf("case repository: count %w", err)
	}

	page := common.NewPage(params.Limit, params.Offset)
	query := caseViewSelect + where +
		fmt.Sprintf(" ORDER BY lc.created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, page.Limit, page.Offset)

	cases := []models.CaseView{}
	if err := r.db.SelectContext(ctx, &cases, query, args...); err != nil {
		return nil, fmt.Errorf("case repository: list %w", err)
	}

	return &CaseListResult{
		Cases:   cases,
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore(total),
	}, nil
}

// ListAll возвращает все дела по фильтру без пагинации, для отчётов.
func (r *CaseRepository) ListAll(ctx context.Context, params CaseListParams) ([]models.CaseView, error) {
	where, args, _ := buildCaseFilter(params)
	cases := []models.CaseView{}
	if err := r.db.SelectContext(ctx, &cases, caseViewSelect+where+" ORDER BY lc.created_at", args...); err != nil {
		return nil, fmt.Errorf("case repository: list all %w", err)
	}
	return cases, nil
}

// ListCart возвращает неоплаченные черновики арендодателя.
func (r *CaseRepository) ListCart(ctx context.Context, landlordID uuid.UUID) ([]models.CaseView, error) {
	query := caseViewSelect + `
		WHERE lc.landlord_id = $1 AND lc.status = 'NOTICE_DRAFT' AND lc.payment_status = 'UNPAID'
		ORDER BY lc.created_at
	`
	items := []models.CaseView{}
	if err := r.db.SelectContext(ctx, &items, query, landlordID); err != nil {
		return nil, fmt.Errorf("case repository: list cart %w", err)
	}
	return items, nil
}

// Checkout атомарно оплачивает дела корзины: блокирует их, записывает транзакцию
// и переводит каждое дело в SUBMITTED/PAID. Если хотя бы одно дело уже не в корзине,
// ничего не меняется и возвращается ErrCartChanged.
func (r *CaseRepository) Checkout(ctx context.Context, landlordID uuid.UUID, caseIDs []uuid.UUID) (*models.CheckoutTransaction, error) {
	var txn models.CheckoutTransaction

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked []struct {
			ID    uuid.UUID `db:"id"`
			Price int64     `db:"price"`
		}
		lockQuery := `
			SELECT id, price FROM legal_cases
			WHERE id = ANY($1) AND landlord_id = $2 AND status = 'NOTICE_DRAFT' AND payment_status = 'UNPAID'
			ORDER BY id
			FOR UPDATE
		`
		if err := tx.SelectContext(ctx, &locked, lockQuery, pq.Array(uuidStrings(caseIDs)), landlordID); err != nil {
			return fmt.Errorf("case repository: lock cart %w", err)
		}
		if len(locked) != len(caseIDs) {
			return ErrCartChanged
		}

		prices := make([]int64, len(locked))
		for i, row := range locked {
			prices[i] = row.Price
		}
		totals := valueobject.CalculateTotals(prices)

		insert := `
			INSERT INTO checkout_transactions (landlord_id, case_ids, subtotal, processing_fee, tax, total, status, provider)
			VALUES ($1, $2, $3, $4, $5, $6, 'completed', 'simulated')
			RETURNING *
		`
		if err := tx.GetContext(ctx, &txn, insert,
			landlordID, pq.Array(uuidStrings(caseIDs)), totals.Subtotal, totals.ProcessingFee, totals.Tax, totals.Total,
		); err != nil {
			return fmt.Errorf("case repository: insert transaction %w", err)
		}

		update := `
			UPDATE legal_cases
			SET status = 'SUBMITTED', payment_status = 'PAID', updated_at = NOW()
			WHERE id = ANY($1)
		`
		if _, err := tx.ExecContext(ctx, update, pq.Array(uuidStrings(caseIDs))); err != nil {
			return fmt.Errorf("case repository: mark paid %w", err)
		}

		history := common.NewBatchInserter(tx, `INSERT INTO case_history (case_id, user_id, action, old_value, new_value)`, 5, 100)
		oldJSON, _ := json.Marshal(map[string]string{"status": string(valueobject.CaseStatusNoticeDraft), "payment_status": string(valueobject.PaymentStatusUnpaid)})
		for _, id := range caseIDs {
			newJSON, _ := json.Marshal(map[string]string{
				"status":         string(valueobject.CaseStatusSubmitted),
				"payment_status": string(valueobject.PaymentStatusPaid),
				"transaction_id": txn.ID.String(),
			})
			if err := history.Add(ctx, id, landlordID, models.HistoryCheckedOut, oldJSON, newJSON); err != nil {
				return fmt.Errorf("case repository: checkout history %w", err)
			}
		}
		return history.Flush(ctx)
	})
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

// ListTransactions возвращает оплаты арендодателя, новые первыми.
func (r *CaseRepository) ListTransactions(ctx context.Context, landlordID uuid.UUID) ([]models.CheckoutTransaction, error) {
	txns := []models.CheckoutTransaction{}
	query := `SELECT * FROM checkout_transactions WHERE landlord_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &txns, query, landlordID); err != nil {
		return nil, fmt.Errorf("case repository: list transactions %w", err)
	}
	return txns, nil
}

// AddHistory добавляет запись в историю дела.
func (r *CaseRepository) AddHistory(ctx context.Context, caseID uuid.UUID, userID *uuid.UUID, action string, oldValue, newValue interface{}) error {
	return addHistory(ctx, r.db, caseID, userID, action, oldValue, newValue)
}

// ListHistory возвращает историю дела в хронологическом порядке.
func (r *CaseRepository) ListHistory(ctx context.Context, caseID uuid.UUID) ([]models.CaseHistory, error) {
	history := []models.CaseHistory{}
	if err := r.db.SelectContext(ctx, &history, `
		SELECT * FROM case_history WHERE case_id = $1 ORDER BY created_at ASC
	`, caseID); err != nil {
		return nil, fmt.Errorf("case repository: list history %w", err)
	}
	return history, nil
}

func addHistory(ctx context.Context, db sqlx.ExecerContext, caseID uuid.UUID, userID *uuid.UUID, action string, oldValue, newValue interface{}) error {
	oldJSON, err := nullableJSON(oldValue)
	if err != nil {
		return fmt.Errorf("case repository: encode history %w", err)
	}
	newJSON, err := nullableJSON(newValue)
	if err != nil {
		return fmt.Errorf("case repository: encode history %w", err)
	}
	if _, err := db.ExecContext(ctx, `
		INSERT INTO case_history (case_id, user_id, action, old_value, new_value)
		VALUES ($1, $2, $3, $4, $5)
	`, caseID, userID, action, oldJSON, newJSON); err != nil {
		return fmt.Errorf("case repository: add history %w", err)
	}
	return nil
}

func nullableJSON(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
