package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository/common"
)

// Ошибки репозитория объектов и арендаторов.
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrPropertyInUse    = errors.New("property has cases")
	ErrTenantInUse      = errors.New("tenant has cases")
)

// PropertyRepository работает с таблицами properties и tenants.
type PropertyRepository struct {
	db *sqlx.DB
}

// NewPropertyRepository создаёт экземпляр репозитория.
func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// CreateProperty сохраняет объект.
func (r *PropertyRepository) CreateProperty(ctx context.Context, p *models.Property) error {
	query := `
		INSERT INTO properties (landlord_id, address, unit, city, state, zip_code, county, property_type, bedrooms, bathrooms, year_built)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		p.LandlordID, p.Address, p.Unit, p.City, p.State, p.ZipCode, p.County, p.PropertyType,
		p.Bedrooms, p.Bathrooms, p.YearBuilt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("property repository: create %w", err)
	}
	return nil
}

// GetProperty возвращает объект арендодателя.
func (r *PropertyRepository) GetProperty(ctx context.Context, id, landlordID uuid.UUID) (*models.Property, error) {
	p, err := common.GetOwned[models.Property](ctx, r.db, "properties", "landlord_id", id, landlordID, ErrPropertyNotFound)
	if err != nil && !errors.Is(err, ErrPropertyNotFound) {
		return nil, fmt.Errorf("property repository: get %w", err)
	}
	return p, err
}

// UpdateProperty перезаписывает поля объекта.
func (r *PropertyRepository) UpdateProperty(ctx context.Context, p *models.Property) error {
	query := `
		UPDATE properties
		SET address = $1, unit = $2, city = $3, state = $4, zip_code = $5, county = $6,
		    property_type = $7, bedrooms = $8, bathrooms = $9, year_built = $10, updated_at = NOW()
		WHERE id = $11 AND landlord_id = $12
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		p.Address, p.Unit, p.City, p.State, p.ZipCode, p.County,
		p.PropertyType, p.Bedrooms, p.Bathrooms, p.YearBuilt, p.ID, p.LandlordID,
	).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("property repository: update %w", err)
	}
	return nil
}

// DeleteProperty удаляет объект вместе с арендаторами. Объект с делами удалить нельзя.
func (r *PropertyRepository) DeleteProperty(ctx context.Context, id, landlordID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1 AND landlord_id = $2`, id, landlordID)
	if err != nil {
		if common.IsForeignKeyViolation(err) {
			return ErrPropertyInUse
		}
		return fmt.Errorf("property repository: delete %w", err)
	}
	return common.ExpectAffected(result, "property repository: delete", ErrPropertyNotFound)
}

// PropertyListParams параметры выборки объектов.
type PropertyListParams struct {
	LandlordID uuid.UUID
	Search     string
	Limit      int
	Offset     int
}

// PropertyListResult страница объектов.
type PropertyListResult struct {
	Properties []models.Property `json:"properties"`
	Total      int               `json:"total"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
	HasMore    bool              `json:"has_more"`
}

// ListProperties возвращает объекты арендодателя, новые первыми.
func (r *PropertyRepository) ListProperties(ctx context.Context, params PropertyListParams) (*PropertyListResult, error) {
	where := " WHERE landlord_id = $1"
	args := []interface{}{params.LandlordID}
	argIndex := 2

	if params.Search != "" {
		where += fmt.Sprintf(" AND (address ILIKE $%d OR city ILIKE $%d OR county ILIKE $%d)", argIndex, argIndex, argIndex)
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM properties`+where, args...); err != nil {
		return nil, fmt.Errorf("property repository: count %w", err)
	}

	page := common.NewPage(params.Limit, params.Offset)
	query := `SELECT * FROM properties` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, page.Limit, page.Offset)

	properties := []models.Property{}
	if err := r.db.SelectContext(ctx, &properties, query, args...); err != nil {
		return nil, fmt.Errorf("property repository: list %w", err)
	}

	return &PropertyListResult{
		Properties: properties,
		Total:      total,
		Limit:      page.Limit,
		Offset:     page.Offset,
		HasMore:    page.HasMore(total),
	}, nil
}

// CreateTenant сохраняет арендатора.
func (r *PropertyRepository) CreateTenant(ctx context.Context, t *models.Tenant) error {
	query := `
		INSERT INTO tenants (landlord_id, property_id, tenant_names, email, phone, is_subsidized, subsidy_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		t.LandlordID, t.PropertyID, pq.Array([]string(t.TenantNames)), t.Email, t.Phone, t.IsSubsidized, t.SubsidyType,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("tenant repository: create %w", err)
	}
	return nil
}

// GetTenant возвращает арендатора арендодателя.
func (r *PropertyRepository) GetTenant(ctx context.Context, id, landlordID uuid.UUID) (*models.Tenant, error) {
	t, err := common.GetOwned[models.Tenant](ctx, r.db, "tenants", "landlord_id", id, landlordID, ErrTenantNotFound)
	if err != nil && !errors.Is(err, ErrTenantNotFound) {
		return nil, fmt.Errorf("tenant repository: get %w", err)
	}
	return t, err
}

// UpdateTenant перезаписывает поля арендатора.
func (r *PropertyRepository) UpdateTenant(ctx context.Context, t *models.Tenant) error {
	query := `
		UPDATE tenants
		SET property_id = $1, tenant_names = $2, email = $3, phone = $4,
		    is_subsidized = $5, subsidy_type = $6, updated_at = NOW()
		WHERE id = $7 AND landlord_id = $8
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		t.PropertyID, pq.Array([]string(t.TenantNames)), t.Email, t.Phone, t.IsSubsidized, t.SubsidyType,
		t.ID, t.LandlordID,
	).Scan(&t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTenantNotFound
		}
		return fmt.Errorf("tenant repository: update %w", err)
	}
	return nil
}

// DeleteTenant удаляет арендатора без дел.
func (r *PropertyRepository) DeleteTenant(ctx context.Context, id, landlordID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1 AND landlord_id = $2`, id, landlordID)
	if err != nil {
		if common.IsForeignKeyViolation(err) {
			return ErrTenantInUse
		}
		return fmt.Errorf("tenant repository: delete %w", err)
	}
	return common.ExpectAffected(result, "tenant repository: delete", ErrTenantNotFound)
}

// ListTenants возвращает арендаторов арендодателя, при propertyID только по объекту.
func (r *PropertyRepository) ListTenants(ctx context.Context, landlordID uuid.UUID, propertyID *uuid.UUID) ([]models.Tenant, error) {
	query := `SELECT * FROM tenants WHERE landlord_id = $1`
	args := []interface{}{landlordID}
	if propertyID != nil {
		query += " AND property_id = $2"
		args = append(args, *propertyID)
	}
	query += " ORDER BY created_at DESC"

	tenants := []models.Tenant{}
	if err := r.db.SelectContext(ctx, &tenants, query, args...); err != nil {
		return nil, fmt.Errorf("tenant repository: list %w", err)
	}
	return tenants, nil
}
