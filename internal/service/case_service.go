package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/notify"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/storage"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/validation"
)

// CaseRepository операции с делами, нужные CaseService.
type CaseRepository interface {
	Create(ctx context.Context, c *models.LegalCase, actorID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LegalCase, error)
	GetView(ctx context.Context, id uuid.UUID) (*models.CaseView, error)
	Update(ctx context.Context, c *models.LegalCase, actorID uuid.UUID, changes map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.CaseStatus, actorID uuid.UUID) (valueobject.CaseStatus, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status valueobject.PaymentStatus, actorID uuid.UUID) (valueobject.PaymentStatus, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params repository.CaseListParams) (*repository.CaseListResult, error)
	ListHistory(ctx context.Context, caseID uuid.UUID) ([]models.CaseHistory, error)
}

// CasePartyLookup проверяет, что объект и арендатор принадлежат арендодателю.
type CasePartyLookup interface {
	GetProperty(ctx context.Context, id, landlordID uuid.UUID) (*models.Property, error)
	GetTenant(ctx context.Context, id, landlordID uuid.UUID) (*models.Tenant, error)
}

// CaseReferenceLookup справочники: цены по типу дела и юридические фирмы.
type CaseReferenceLookup interface {
	GetPrice(ctx context.Context, caseType valueobject.CaseType) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.LawFirm, error)
}

// CaseDocumentLister нужен для удаления файлов вместе с делом.
type CaseDocumentLister interface {
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.CaseDocument, error)
}

// CaseService бизнес-логика дел арендодателя: создание, правка, статусы, история.
type CaseService struct {
	repo      CaseRepository
	parties   CasePartyLookup
	refs      CaseReferenceLookup
	documents CaseDocumentLister
	store     storage.DocumentStore
	cache     *CacheService
	notifier  Notifier
}

// NewCaseService создаёт сервис дел.
func NewCaseService(
	repo CaseRepository,
	parties CasePartyLookup,
	refs CaseReferenceLookup,
	documents CaseDocumentLister,
	store storage.DocumentStore,
	cache *CacheService,
	notifier Notifier,
) *CaseService {
	return &CaseService{
		repo:      repo,
		parties:   parties,
		refs:      refs,
		documents: documents,
		store:     store,
		cache:     cache,
		notifier:  notifier,
	}
}

// CreateCaseInput данные нового дела. LandlordID учитывается только для администратора.
type CreateCaseInput struct {
	LandlordID          *uuid.UUID
	PropertyID          uuid.UUID
	TenantID            uuid.UUID
	CaseType            string
	LawFirmID           *uuid.UUID
	Price               *int64
	RentOwedAtFiling    int64
	CurrentRentOwed     int64
	LateFeesCharged     int64
	NoRightOfRedemption bool
	DateInitiated       *time.Time
	CourtCaseNumber     *string
}

// UpdateCaseInput редактируемые поля. nil означает "не менять".
type UpdateCaseInput struct {
	LawFirmID           *uuid.UUID
	ClearLawFirm        bool
	Price               *int64
	RentOwedAtFiling    *int64
	CurrentRentOwed     *int64
	LateFeesCharged     *int64
	NoRightOfRedemption *bool
	CourtCaseNumber     *string
	TrialDate           *time.Time
	CourtHearingDate    *time.Time
	CourtOutcomeNotes   *string
}

// CaseListFilter фильтры списка дел из query-параметров.
type CaseListFilter struct {
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

// Create создаёт черновик дела в корзине арендодателя.
func (s *CaseService) Create(ctx context.Context, actor Actor, in CreateCaseInput) (*models.CaseView, error) {
	if err := actor.require(valueobject.RoleLandlord, valueobject.RoleAdmin); err != nil {
		return nil, err
	}

	landlordID := actor.ID
	if actor.IsAdmin() {
		if in.LandlordID == nil {
			return nil, apperror.New(apperror.ErrCodeValidation, "landlord_id is required")
		}
		landlordID = *in.LandlordID
	}

	caseType, err := valueobject.ParseCaseType(in.CaseType)
	if err != nil {
		return nil, err
	}

	property, err := s.parties.GetProperty(ctx, in.PropertyID, landlordID)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, apperror.ErrPropertyNotFound
		}
		return nil, err
	}
	tenant, err := s.parties.GetTenant(ctx, in.TenantID, landlordID)
	if err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			return nil, apperror.ErrTenantNotFound
		}
		return nil, err
	}
	if tenant.PropertyID != property.ID {
		return nil, apperror.New(apperror.ErrCodeValidation, "tenant does not belong to this property")
	}

	for field, amount := range map[string]int64{
		"rent_owed_at_filing": in.RentOwedAtFiling,
		"current_rent_owed":   in.CurrentRentOwed,
		"late_fees_charged":   in.LateFeesCharged,
	} {
		if err := validation.ValidateAmount(field, amount); err != nil {
			return nil, invalid(err)
		}
	}
	if err := validation.ValidateOptionalLength("court_case_number", in.CourtCaseNumber, validation.MaxCourtCaseNumber); err != nil {
		return nil, invalid(err)
	}

	price, err := s.resolvePrice(ctx, actor, caseType, in.Price)
	if err != nil {
		return nil, err
	}

	if in.LawFirmID != nil {
		if err := s.ensureLawFirm(ctx, *in.LawFirmID); err != nil {
			return nil, err
		}
	}

	initiated := time.Now().UTC()
	if in.DateInitiated != nil {
		initiated = *in.DateInitiated
	}

	c := &models.LegalCase{
		LandlordID:          landlordID,
		PropertyID:          property.ID,
		TenantID:            tenant.ID,
		LawFirmID:           in.LawFirmID,
		CaseType:            caseType,
		Status:              valueobject.CaseStatusNoticeDraft,
		PaymentStatus:       valueobject.PaymentStatusUnpaid,
		ContractorStatus:    valueobject.ContractorStatusUnassigned,
		Price:               price,
		RentOwedAtFiling:    in.RentOwedAtFiling,
		CurrentRentOwed:     in.CurrentRentOwed,
		LateFeesCharged:     in.LateFeesCharged,
		NoRightOfRedemption: in.NoRightOfRedemption,
		DateInitiated:       initiated,
		CourtCaseNumber:     trimOptional(in.CourtCaseNumber),
	}
	if err := s.repo.Create(ctx, c, actor.ID); err != nil {
		return nil, err
	}
	s.cache.InvalidateAnalytics()

	s.notifier.Notify(ctx, landlordID, &c.ID, notify.EventCaseCreated, notify.Data{
		CaseID:   c.ID.String(),
		CaseType: string(caseType),
		Address:  property.FullAddress(),
	})

	return s.view(ctx, c.ID)
}

func (s *CaseService) resolvePrice(ctx context.Context, actor Actor, caseType valueobject.CaseType, requested *int64) (int64, error) {
	if requested != nil {
		if !actor.IsAdmin() {
			return 0, apperror.New(apperror.ErrCodeForbidden, "only administrators can set a case price")
		}
		if err := validation.ValidateAmount("price", *requested); err != nil {
			return 0, invalid(err)
		}
		return *requested, nil
	}

	price, err := s.refs.GetPrice(ctx, caseType)
	if err != nil {
		if errors.Is(err, repository.ErrPriceNotConfigured) {
			return 0, apperror.Newf(apperror.ErrCodeValidation, "no price configured for case type %s", caseType)
		}
		return 0, err
	}
	return price, nil
}

func (s *CaseService) ensureLawFirm(ctx context.Context, id uuid.UUID) error {
	if _, err := s.refs.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrLawFirmNotFound) {
			return apperror.ErrLawFirmNotFound
		}
		return err
	}
	return nil
}

// Get возвращает дело, если автор запроса владелец или администратор.
func (s *CaseService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.CaseView, error) {
	v, err := s.view(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(v.LandlordID) {
		return nil, apperror.ErrForbidden
	}
	return v, nil
}

// List возвращает дела арендодателя или, для администратора, все дела.
func (s *CaseService) List(ctx context.Context, actor Actor, f CaseListFilter) (*repository.CaseListResult, error) {
	if err := actor.require(valueobject.RoleLandlord, valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	params, err := caseListParams(f)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		params.LandlordID = &actor.ID
	}
	return s.repo.List(ctx, params)
}

func caseListParams(f CaseListFilter) (repository.CaseListParams, error) {
	params := repository.CaseListParams{
		LandlordID: f.LandlordID,
		Search:     validation.NormalizeSearch(f.Search),
		From:       f.From,
		To:         f.To,
		Limit:      f.Limit,
		Offset:     f.Offset,
	}
	if f.Status != "" {
		st, err := valueobject.ParseCaseStatus(f.Status)
		if err != nil {
			return params, err
		}
		params.Status = string(st)
	}
	if f.PaymentStatus != "" {
		ps, err := valueobject.ParsePaymentStatus(f.PaymentStatus)
		if err != nil {
			return params, err
		}
		params.PaymentStatus = string(ps)
	}
	if f.CaseType != "" {
		ct, err := valueobject.ParseCaseType(f.CaseType)
		if err != nil {
			return params, err
		}
		params.CaseType = string(ct)
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return params, apperror.New(apperror.ErrCodeValidation, "from must be before to")
	}
	return params, nil
}

// Update правит редактируемые поля дела. Цену меняет только администратор.
func (s *CaseService) Update(ctx context.Context, actor Actor, id uuid.UUID, in UpdateCaseInput) (*models.CaseView, error) {
	c, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}

	if in.Price != nil {
		if !actor.IsAdmin() {
			return nil, apperror.New(apperror.ErrCodeForbidden, "only administrators can change a case price")
		}
		if err := validation.ValidateAmount("price", *in.Price); err != nil {
			return nil, invalid(err)
		}
		if *in.Price != c.Price {
			c.Price = *in.Price
			changes["price"] = c.Price
		}
	}

	amounts := []struct {
		field string
		value *int64
		dst   *int64
	}{
		{"rent_owed_at_filing", in.RentOwedAtFiling, &c.RentOwedAtFiling},
		{"current_rent_owed", in.CurrentRentOwed, &c.CurrentRentOwed},
		{"late_fees_charged", in.LateFeesCharged, &c.LateFeesCharged},
	}
	for _, a := range amounts {
		if a.value == nil {
			continue
		}
		if err := validation.ValidateAmount(a.field, *a.value); err != nil {
			return nil, invalid(err)
		}
		if *a.value != *a.dst {
			*a.dst = *a.value
			changes[a.field] = *a.value
		}
	}

	if in.NoRightOfRedemption != nil && *in.NoRightOfRedemption != c.NoRightOfRedemption {
		c.NoRightOfRedemption = *in.NoRightOfRedemption
		changes["no_right_of_redemption"] = c.NoRightOfRedemption
	}

	switch {
	case in.ClearLawFirm:
		if c.LawFirmID != nil {
			c.LawFirmID = nil
			changes["law_firm_id"] = nil
		}
	case in.LawFirmID != nil:
		if err := s.ensureLawFirm(ctx, *in.LawFirmID); err != nil {
			return nil, err
		}
		if c.LawFirmID == nil || *c.LawFirmID != *in.LawFirmID {
			c.LawFirmID = in.LawFirmID
			changes["law_firm_id"] = in.LawFirmID.String()
		}
	}

	if in.CourtCaseNumber != nil {
		if err := validation.ValidateOptionalLength("court_case_number", in.CourtCaseNumber, validation.MaxCourtCaseNumber); err != nil {
			return nil, invalid(err)
		}
		c.CourtCaseNumber = trimOptional(in.CourtCaseNumber)
		changes["court_case_number"] = c.CourtCaseNumber
	}
	if in.CourtOutcomeNotes != nil {
		if err := validation.ValidateOptionalLength("court_outcome_notes", in.CourtOutcomeNotes, validation.MaxNotesLength); err != nil {
			return nil, invalid(err)
		}
		c.CourtOutcomeNotes = trimOptional(in.CourtOutcomeNotes)
		changes["court_outcome_notes"] = c.CourtOutcomeNotes
	}
	if in.TrialDate != nil {
		c.TrialDate = in.TrialDate
		changes["trial_date"] = in.TrialDate
	}
	if in.CourtHearingDate != nil {
		c.CourtHearingDate = in.CourtHearingDate
		changes["court_hearing_date"] = in.CourtHearingDate
	}

	if err := s.repo.Update(ctx, c, actor.ID, changes); err != nil {
		if errors.Is(err, repository.ErrCaseNotFound) {
			return nil, apperror.ErrCaseNotFound
		}
		return nil, err
	}
	return s.view(ctx, id)
}

// UpdateStatus безусловно перезаписывает статус дела любым допустимым значением.
// При фактическом изменении арендодатель получает уведомление; ошибка доставки
// не влияет на результат.
func (s *CaseService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, rawStatus string) (*models.CaseView, error) {
	status, err := valueobject.ParseCaseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	c, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	previous, err := s.repo.UpdateStatus(ctx, id, status, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCaseNotFound) {
			return nil, apperror.ErrCaseNotFound
		}
		return nil, err
	}

	v, err := s.view(ctx, id)
	if err != nil {
		return nil, err
	}

	if previous != status {
		s.cache.InvalidateAnalytics()
		s.cache.InvalidateJobPool()
		logger.FromContext(ctx).WithField("case_id", id).
			Infof("case status changed %s -> %s", previous, status)

		s.notifier.Notify(ctx, c.LandlordID, &c.ID, notify.EventCaseStatusChanged, notify.Data{
			CaseID:    c.ID.String(),
			CaseType:  string(c.CaseType),
			Address:   v.AddressLine(),
			OldStatus: string(previous),
			NewStatus: string(status),
		})
	}
	return v, nil
}

// UpdatePaymentStatus перезаписывает статус оплаты. Статус дела не меняется.
func (s *CaseService) UpdatePaymentStatus(ctx context.Context, actor Actor, id uuid.UUID, rawStatus string) (*models.CaseView, error) {
	status, err := valueobject.ParsePaymentStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return nil, err
	}

	previous, err := s.repo.UpdatePaymentStatus(ctx, id, status, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCaseNotFound) {
			return nil, apperror.ErrCaseNotFound
		}
		return nil, err
	}
	if previous != status {
		s.cache.InvalidateAnalytics()
	}
	return s.view(ctx, id)
}

// Delete удаляет дело вместе с документами.
func (s *CaseService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return err
	}

	docs, err := s.documents.ListByCase(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCaseNotFound) {
			return apperror.ErrCaseNotFound
		}
		return err
	}

	for _, doc := range docs {
		if err := s.store.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			logger.FromContext(ctx).WithError(err).WithField("storage_key", doc.StorageKey).Warn("case service: failed to remove document file")
		}
	}

	s.cache.InvalidateAnalytics()
	s.cache.InvalidateJobPool()
	return nil
}

// History возвращает журнал изменений дела.
func (s *CaseService) History(ctx context.Context, actor Actor, id uuid.UUID) ([]models.CaseHistory, error) {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, id)
}

func (s *CaseService) loadOwned(ctx context.Context, actor Actor, id uuid.UUID) (*models.LegalCase, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCaseNotFound) {
			return nil, apperror.ErrCaseNotFound
		}
		return nil, err
	}
	if !actor.CanManage(c.LandlordID) {
		return nil, apperror.ErrForbidden
	}
	return c, nil
}

func (s *CaseService) view(ctx context.Context, id uuid.UUID) (*models.CaseView, error) {
	v, err := s.repo.GetView(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCaseNotFound) {
			return nil, apperror.ErrCaseNotFound
		}
		return nil, err
	}
	return v, nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
