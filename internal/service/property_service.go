package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/validation"
)

// PropertyRepository объекты и арендаторы арендодателя.
type PropertyRepository interface {
	CreateProperty(ctx context.Context, p *models.Property) error
	GetProperty(ctx context.Context, id, landlordID uuid.UUID) (*models.Property, error)
	UpdateProperty(ctx context.Context, p *models.Property) error
	DeleteProperty(ctx context.Context, id, landlordID uuid.UUID) error
	ListProperties(ctx context.Context, params repository.PropertyListParams) (*repository.PropertyListResult, error)
	CreateTenant(ctx context.Context, t *models.Tenant) error
	GetTenant(ctx context.Context, id, landlordID uuid.UUID) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, t *models.Tenant) error
	DeleteTenant(ctx context.Context, id, landlordID uuid.UUID) error
	ListTenants(ctx context.Context, landlordID uuid.UUID, propertyID *uuid.UUID) ([]models.Tenant, error)
}

// PropertyInput поля объекта при создании и замене.
type PropertyInput struct {
	Address      string
	Unit         *string
	City         string
	State        string
	ZipCode      string
	County       string
	PropertyType string
	Bedrooms     *int
	Bathrooms    *int
	YearBuilt    *int
}

// TenantInput поля арендатора при создании и замене.
type TenantInput struct {
	PropertyID   uuid.UUID
	TenantNames  []string
	Email        *string
	Phone        *string
	IsSubsidized bool
	SubsidyType  *string
}

// PropertyService CRUD объектов и арендаторов арендодателя.
type PropertyService struct {
	repo PropertyRepository
}

// NewPropertyService создаёт сервис объектов.
func NewPropertyService(repo PropertyRepository) *PropertyService {
	return &PropertyService{repo: repo}
}

func (in PropertyInput) apply(p *models.Property) error {
	state := strings.ToUpper(strings.TrimSpace(in.State))
	if err := validation.ValidateAddress(in.Address, in.City, state, in.ZipCode, in.County); err != nil {
		return invalid(err)
	}
	if err := validation.ValidateOptionalLength("unit", in.Unit, 20); err != nil {
		return invalid(err)
	}
	for name, v := range map[string]*int{"bedrooms": in.Bedrooms, "bathrooms": in.Bathrooms} {
		if v != nil && (*v < 0 || *v > 50) {
			return apperror.Newf(apperror.ErrCodeValidation, "%s must be between 0 and 50", name)
		}
	}
	if in.YearBuilt != nil && (*in.YearBuilt < 1700 || *in.YearBuilt > 2100) {
		return apperror.New(apperror.ErrCodeValidation, "year_built is out of range")
	}

	propertyType := strings.TrimSpace(in.PropertyType)
	if propertyType == "" {
		propertyType = "residential"
	}

	p.Address = strings.TrimSpace(in.Address)
	p.Unit = trimOptional(in.Unit)
	p.City = strings.TrimSpace(in.City)
	p.State = state
	p.ZipCode = strings.TrimSpace(in.ZipCode)
	p.County = strings.TrimSpace(in.County)
	p.PropertyType = propertyType
	p.Bedrooms = in.Bedrooms
	p.Bathrooms = in.Bathrooms
	p.YearBuilt = in.YearBuilt
	return nil
}

// CreateProperty сохраняет новый объект арендодателя.
func (s *PropertyService) CreateProperty(ctx context.Context, actor Actor, in PropertyInput) (*models.Property, error) {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return nil, err
	}
	p := &models.Property{LandlordID: actor.ID}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.repo.CreateProperty(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProperty возвращает объект арендодателя.
func (s *PropertyService) GetProperty(ctx context.Context, actor Actor, id uuid.UUID) (*models.Property, error) {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return nil, err
	}
	return s.loadProperty(ctx, actor, id)
}

func (s *PropertyService) loadProperty(ctx context.Context, actor Actor, id uuid.UUID) (*models.Property, error) {
	p, err := s.repo.GetProperty(ctx, id, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, apperror.ErrPropertyNotFound
		}
		return nil, err
	}
	return p, nil
}

// UpdateProperty заменяет поля объекта.
func (s *PropertyService) UpdateProperty(ctx context.Context, actor Actor, id uuid.UUID, in PropertyInput) (*models.Property, error) {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return nil, err
	}
	p, err := s.loadProperty(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProperty(ctx, p); err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, apperror.ErrPropertyNotFound
		}
		return nil, err
	}
	return p, nil
}

// DeleteProperty удаляет объект без дел.
func (s *PropertyService) DeleteProperty(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return err
	}
	err := s.repo.DeleteProperty(ctx, id, actor.ID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrPropertyNotFound):
		return apperror.ErrPropertyNotFound
	case errors.Is(err, repository.ErrPropertyInUse):
		return apperror.New(apperror.ErrCodeConflict, "property has cases and cannot be deleted")
	}
	return err
}

// ListProperties возвращает объекты арендодателя с поиском по адресу и городу.
func (s *PropertyService) ListProperties(ctx context.Context, actor Actor, search string, limit, offset int) (*repository.PropertyListResult, error) {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return nil, err
	}
	return s.repo.ListProperties(ctx, repository.PropertyListParams{
		LandlordID: actor.ID,
		Search:     validation.NormalizeSearch(search),
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *PropertyService) applyTenant(ctx context.Context, actor Actor, in TenantInput, t *models.Tenant) error {
	names := make([]string, 0, len(in.TenantNames))
	for _, n := range in.TenantNames {
		names = append(names, strings.TrimSpace(n))
	}
	if err := validation.ValidateTenantNames(names); err != nil {
		return invalid(err)
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return invalid(err)
		}
	}
	if err := validation.ValidatePhone(in.Phone); err != nil {
		return invalid(err)
	}
	if _, err := s.repo.GetProperty(ctx, in.PropertyID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return apperror.New(apperror.ErrCodeValidation, "property does not belong to you")
		}
		return err
	}

	subsidy := trimOptional(in.SubsidyType)
	if !in.IsSubsidized {
		subsidy = nil
	}

	t.PropertyID = in.PropertyID
	t.TenantNames = names
	t.Email = trimOptional(in.Email)
	t.Phone = trimOptional(in.Phone)
	t.IsSubsidized = in.IsSubsidized
	t.SubsidyType = subsidy
	return nil
}

// CreateTenant добавляет арендатора к объекту арендодателя.
func (s *PropertyService) CreateTenant(ctx context.Context, actor Actor, in TenantInput) (*models.Tenant, error) {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return nil, err
	}
	t := &models.Tenant{LandlordID: actor.ID}
	if err := s.applyTenant(ctx, actor, in, t); err != nil {
		return nil, err
	}
	if err := s.repo.CreateTenant(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTenant возвращает арендатора.
func (s *PropertyService) GetTenant(ctx context.Context, actor Actor, id uuid.UUID) (*models.Tenant, error) {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return nil, err
	}
	return s.loadTenant(ctx, actor, id)
}

func (s *PropertyService) loadTenant(ctx context.Context, actor Actor, id uuid.UUID) (*models.Tenant, error) {
	t, err := s.repo.GetTenant(ctx, id, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			return nil, apperror.ErrTenantNotFound
		}
		return nil, err
	}
	return t, nil
}

// UpdateTenant заменяет поля арендатора.
func (s *PropertyService) UpdateTenant(ctx context.Context, actor Actor, id uuid.UUID, in TenantInput) (*models.Tenant, error) {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return nil, err
	}
	t, err := s.loadTenant(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyTenant(ctx, actor, in, t); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateTenant(ctx, t); err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			return nil, apperror.ErrTenantNotFound
		}
		return nil, err
	}
	return t, nil
}

// DeleteTenant удаляет арендатора без дел.
func (s *PropertyService) DeleteTenant(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return err
	}
	err := s.repo.DeleteTenant(ctx, id, actor.ID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrTenantNotFound):
		return apperror.ErrTenantNotFound
	case errors.Is(err, repository.ErrTenantInUse):
		return apperror.New(apperror.ErrCodeConflict, "tenant has cases and cannot be deleted")
	}
	return err
}

// ListTenants возвращает арендаторов арендодателя, опционально по объекту.
func (s *PropertyService) ListTenants(ctx context.Context, actor Actor, propertyID *uuid.UUID) ([]models.Tenant, error) {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return nil, err
	}
	return s.repo.ListTenants(ctx, actor.ID, propertyID)
}
