package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/validation"
)

// LawFirmRepository справочник юридических фирм и цен.
type LawFirmRepository interface {
	Create(ctx context.Context, f *models.LawFirm) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LawFirm, error)
	Update(ctx context.Context, f *models.LawFirm) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string) ([]models.LawFirm, error)
	ListPrices(ctx context.Context) ([]models.CasePrice, error)
	GetPrice(ctx context.Context, caseType valueobject.CaseType) (int64, error)
	SetPrice(ctx context.Context, caseType valueobject.CaseType, price int64, updatedBy *uuid.UUID) (*models.CasePrice, error)
}

// LawFirmInput поля фирмы.
type LawFirmInput struct {
	Name         string
	ContactEmail *string
	ContactPhone *string
	Address      *string
	ReferralCode *string
}

// ReferenceService юридические фирмы и цены по типам дел.
type ReferenceService struct {
	repo LawFirmRepository
}

// NewReferenceService создаёт сервис справочников.
func NewReferenceService(repo LawFirmRepository) *ReferenceService {
	return &ReferenceService{repo: repo}
}

func (in LawFirmInput) apply(f *models.LawFirm) error {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateLength("name", name, 2, validation.MaxBusinessNameLength); err != nil {
		return invalid(err)
	}
	if in.ContactEmail != nil && strings.TrimSpace(*in.ContactEmail) != "" {
		if err := validation.ValidateEmail(*in.ContactEmail); err != nil {
			return invalid(err)
		}
	}
	if err := validation.ValidatePhone(in.ContactPhone); err != nil {
		return invalid(err)
	}
	if err := validation.ValidateOptionalLength("address", in.Address, validation.MaxAddressLength); err != nil {
		return invalid(err)
	}
	if err := validation.ValidateOptionalLength("referral_code", in.ReferralCode, 32); err != nil {
		return invalid(err)
	}

	f.Name = name
	f.ContactEmail = trimOptional(in.ContactEmail)
	f.ContactPhone = trimOptional(in.ContactPhone)
	f.Address = trimOptional(in.Address)
	f.ReferralCode = trimOptional(in.ReferralCode)
	if f.ReferralCode != nil {
		code := strings.ToUpper(*f.ReferralCode)
		f.ReferralCode = &code
	}
	return nil
}

// ListLawFirms доступен любому авторизованному пользователю.
func (s *ReferenceService) ListLawFirms(ctx context.Context, search string) ([]models.LawFirm, error) {
	return s.repo.List(ctx, validation.NormalizeSearch(search))
}

// GetLawFirm возвращает фирму.
func (s *ReferenceService) GetLawFirm(ctx context.Context, id uuid.UUID) (*models.LawFirm, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLawFirmNotFound) {
			return nil, apperror.ErrLawFirmNotFound
		}
		return nil, err
	}
	return f, nil
}

// CreateLawFirm только для администратора.
func (s *ReferenceService) CreateLawFirm(ctx context.Context, actor Actor, in LawFirmInput) (*models.LawFirm, error) {
	if err := actor.require(valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	f := &models.LawFirm{}
	if err := in.apply(f); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, mapLawFirmError(err)
	}
	return f, nil
}

// UpdateLawFirm только для администратора.
func (s *ReferenceService) UpdateLawFirm(ctx context.Context, actor Actor, id uuid.UUID, in LawFirmInput) (*models.LawFirm, error) {
	if err := actor.require(valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	f, err := s.GetLawFirm(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(f); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, mapLawFirmError(err)
	}
	return f, nil
}

// DeleteLawFirm удаляет фирму, у дел ссылка обнуляется.
func (s *ReferenceService) DeleteLawFirm(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := actor.require(valueobject.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapLawFirmError(err)
	}
	return nil
}

func mapLawFirmError(err error) error {
	switch {
	case errors.Is(err, repository.ErrLawFirmNotFound):
		return apperror.ErrLawFirmNotFound
	case errors.Is(err, repository.ErrReferralCodeTaken):
		return apperror.New(apperror.ErrCodeConflict, "referral code already used")
	}
	return err
}

// ListPrices возвращает цены всех типов дел.
func (s *ReferenceService) ListPrices(ctx context.Context) ([]models.CasePrice, error) {
	return s.repo.ListPrices(ctx)
}

// SetPrice задаёт цену типа дела. Уже созданные дела сохраняют свою цену.
func (s *ReferenceService) SetPrice(ctx context.Context, actor Actor, rawType string, price int64) (*models.CasePrice, error) {
	if err := actor.require(valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	caseType, err := valueobject.ParseCaseType(rawType)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateAmount("price", price); err != nil {
		return nil, invalid(err)
	}

	var updatedBy *uuid.UUID
	if actor.ID != uuid.Nil {
		id := actor.ID
		updatedBy = &id
	}
	cp, err := s.repo.SetPrice(ctx, caseType, price, updatedBy)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).WithFields(logrus.Fields{
		"case_type": caseType,
		"price":     price,
	}).Info("case price updated")
	return cp, nil
}
