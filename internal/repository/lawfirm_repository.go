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

// Ошибки справочников.
var (
	ErrLawFirmNotFound    = errors.New("law firm not found")
	ErrReferralCodeTaken  = errors.New("referral code already used")
	ErrPriceNotConfigured = errors.New("price not configured")
)

// LawFirmRepository работает с юридическими фирмами и ценами по типам дел.
type LawFirmRepository struct {
	db *sqlx.DB
}

// NewLawFirmRepository создаёт экземпляр репозитория.
func NewLawFirmRepository(db *sqlx.DB) *LawFirmRepository {
	return &LawFirmRepository{db: db}
}

// Create сохраняет фирму.
func (r *LawFirmRepository) Create(ctx context.Context, f *models.LawFirm) error {
	query := `
		INSERT INTO law_firms (name, contact_email, contact_phone, address, referral_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, f.Name, f.ContactEmail, f.ContactPhone, f.Address, f.ReferralCode).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if common.IsUniqueViolation(err, "") {
			return ErrReferralCodeTaken
		}
		return fmt.Errorf("law firm repository: create %w", err)
	}
	return nil
}

// GetByID возвращает фирму.
func (r *LawFirmRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LawFirm, error) {
	f, err := common.GetByID[models.LawFirm](ctx, r.db, "law_firms", id, ErrLawFirmNotFound)
	if err != nil && !errors.Is(err, ErrLawFirmNotFound) {
		return nil, fmt.Errorf("law firm repository: get %w", err)
	}
	return f, err
}

// Update перезаписывает поля фирмы.
func (r *LawFirmRepository) Update(ctx context.Context, f *models.LawFirm) error {
	query := `
		UPDATE law_firms
		SET name = $1, contact_email = $2, contact_phone = $3, address = $4, referral_code = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, f.Name, f.ContactEmail, f.ContactPhone, f.Address, f.ReferralCode, f.ID).
		Scan(&f.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLawFirmNotFound
		}
		if common.IsUniqueViolation(err, "") {
			return ErrReferralCodeTaken
		}
		return fmt.Errorf("law firm repository: update %w", err)
	}
	return nil
}

// Delete удаляет фирму; у дел ссылка обнуляется.
func (r *LawFirmRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := common.DeleteByID(ctx, r.db, "law_firms", id, ErrLawFirmNotFound); err != nil {
		if errors.Is(err, ErrLawFirmNotFound) {
			return err
		}
		return fmt.Errorf("law firm repository: delete %w", err)
	}
	return nil
}

// List возвращает фирмы по алфавиту с поиском по названию.
func (r *LawFirmRepository) List(ctx context.Context, search string) ([]models.LawFirm, error) {
	query := `SELECT * FROM law_firms`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR referral_code ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name`

	firms := []models.LawFirm{}
	if err := r.db.SelectContext(ctx, &firms, query, args...); err != nil {
		return nil, fmt.Errorf("law firm repository: list %w", err)
	}
	return firms, nil
}

// ListPrices возвращает цены всех типов дел.
func (r *LawFirmRepository) ListPrices(ctx context.Context) ([]models.CasePrice, error) {
	prices := []models.CasePrice{}
	if err := r.db.SelectContext(ctx, &prices, `SELECT * FROM case_pricing ORDER BY case_type`); err != nil {
		return nil, fmt.Errorf("pricing repository: list %w", err)
	}
	return prices, nil
}

// GetPrice возвращает цену типа дела.
func (r *LawFirmRepository) GetPrice(ctx context.Context, caseType valueobject.CaseType) (int64, error) {
	var price int64
	if err := r.db.GetContext(ctx, &price, `SELECT price FROM case_pricing WHERE case_type = $1`, caseType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPriceNotConfigured
		}
		return 0, fmt.Errorf("pricing repository: get %w", err)
	}
	return price, nil
}

// SetPrice задаёт цену типа дела.
func (r *LawFirmRepository) SetPrice(ctx context.Context, caseType valueobject.CaseType, price int64, updatedBy *uuid.UUID) (*models.CasePrice, error) {
	query := `
		INSERT INTO case_pricing (case_type, price, updated_by, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (case_type) DO UPDATE
		SET price = EXCLUDED.price, updated_by = EXCLUDED.updated_by, updated_at = NOW()
		RETURNING *
	`
	var cp models.CasePrice
	if err := r.db.GetContext(ctx, &cp, query, caseType, price, updatedBy); err != nil {
		return nil, fmt.Errorf("pricing repository: set %w", err)
	}
	return &cp, nil
}
