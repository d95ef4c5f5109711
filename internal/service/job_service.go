package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/notify"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/storage"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/validation"
)

// JobRepository условные обновления полей исполнителя.
type JobRepository interface {
	Claim(ctx context.Context, caseID, contractorID uuid.UUID, assignedAt, dueDate time.Time) (*models.LegalCase, error)
	Unclaim(ctx context.Context, caseID, contractorID uuid.UUID) error
	UpdateStatus(ctx context.Context, caseID, contractorID uuid.UUID, from, to valueobject.ContractorStatus) (*models.LegalCase, error)
	GetJob(ctx context.Context, caseID uuid.UUID) (*models.CaseView, error)
	ListAvailable(ctx context.Context, params repository.JobListParams) (*repository.JobListResult, error)
	ListMine(ctx context.Context, contractorID uuid.UUID, status valueobject.ContractorStatus) ([]models.CaseView, error)
	DocumentTypes(ctx context.Context, caseIDs []uuid.UUID) (map[uuid.UUID][]valueobject.DocumentType, error)
}

// DocumentRepository метаданные загруженных документов.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.CaseDocument) error
	GetByType(ctx context.Context, caseID uuid.UUID, docType valueobject.DocumentType) (*models.CaseDocument, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.CaseDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// HistoryWriter пишет события задания в историю дела.
type HistoryWriter interface {
	AddHistory(ctx context.Context, caseID uuid.UUID, userID *uuid.UUID, action string, oldValue, newValue interface{}) error
}

// JobOptions настройки JobService.
type JobOptions struct {
	DueWindow      time.Duration
	MaxUploadBytes int64
	PoolCacheTTL   time.Duration
}

// JobService машина состояний задания исполнителя и его документы.
type JobService struct {
	jobs     JobRepository
	docs     DocumentRepository
	history  HistoryWriter
	users    UserLookup
	store    storage.DocumentStore
	cache    *CacheService
	notifier Notifier
	opts     JobOptions
	now      func() time.Time
}

// NewJobService создаёт сервис заданий.
func NewJobService(
	jobs JobRepository,
	docs DocumentRepository,
	history HistoryWriter,
	users UserLookup,
	store storage.DocumentStore,
	cache *CacheService,
	notifier Notifier,
	opts JobOptions,
) *JobService {
	if opts.DueWindow <= 0 {
		opts.DueWindow = 72 * time.Hour
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 * 1024 * 1024
	}
	if opts.PoolCacheTTL <= 0 {
		opts.PoolCacheTTL = 30 * time.Second
	}
	return &JobService{
		jobs:     jobs,
		docs:     docs,
		history:  history,
		users:    users,
		store:    store,
		cache:    cache,
		notifier: notifier,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// MaxUploadBytes лимит размера документа.
func (s *JobService) MaxUploadBytes() int64 {
	return s.opts.MaxUploadBytes
}

// UploadInput загружаемый файл, уже прочитанный в память.
type UploadInput struct {
	DocumentType string
	FileName     string
	ContentType  string
	Data         []byte
}

// AvailableJobsFilter фильтр пула заданий.
type AvailableJobsFilter struct {
	County string
	Search string
	Limit  int
	Offset int
}

// ListAvailable возвращает свободные задания. Результат кэшируется на короткое время.
func (s *JobService) ListAvailable(ctx context.Context, actor Actor, f AvailableJobsFilter) (*repository.JobListResult, error) {
	if err := actor.require(valueobject.RoleContractor, valueobject.RoleAdmin); err != nil {
		return nil, err
	}

	params := repository.JobListParams{
		County: strings.TrimSpace(f.County),
		Search: validation.NormalizeSearch(f.Search),
		Limit:  f.Limit,
		Offset: f.Offset,
	}
	key := JobPoolCacheKey(params.County, params.Search, params.Limit, params.Offset)

	value, err := s.cache.GetOrSet(ctx, key, s.opts.PoolCacheTTL, func() (interface{}, error) {
		return s.jobs.ListAvailable(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	return value.(*repository.JobListResult), nil
}

// ListMine возвращает задания исполнителя, опционально по статусу.
func (s *JobService) ListMine(ctx context.Context, actor Actor, rawStatus string) ([]models.Job, error) {
	if err := actor.require(valueobject.RoleContractor); err != nil {
		return nil, err
	}

	var status valueobject.ContractorStatus
	if rawStatus != "" {
		parsed, err := valueobject.ParseContractorStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	views, err := s.jobs.ListMine(ctx, actor.ID, status)
	if err != nil {
		return nil, err
	}
	return s.withDocuments(ctx, views)
}

// GetJob возвращает задание с загруженными и недостающими документами.
// Исполнитель видит свои задания и свободные задания пула.
func (s *JobService) GetJob(ctx context.Context, actor Actor, caseID uuid.UUID) (*models.Job, error) {
	v, err := s.loadJob(ctx, caseID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case valueobject.RoleAdmin:
	case valueobject.RoleContractor:
		open := v.ContractorStatus == valueobject.ContractorStatusUnassigned && v.Status.IsPostable()
		if !open && !v.IsAssignedTo(actor.ID) {
			return nil, apperror.ErrForbidden
		}
	default:
		return nil, apperror.ErrForbidden
	}

	jobs, err := s.withDocuments(ctx, []models.CaseView{*v})
	if err != nil {
		return nil, err
	}
	return &jobs[0], nil
}

// Claim закрепляет свободное задание за исполнителем. Проигравший гонку получает 409.
func (s *JobService) Claim(ctx context.Context, actor Actor, caseID uuid.UUID) (*models.Job, error) {
	if err := actor.require(valueobject.RoleContractor); err != nil {
		return nil, err
	}

	assignedAt := s.now()
	dueDate := assignedAt.Add(s.opts.DueWindow)

	if _, err := s.jobs.Claim(ctx, caseID, actor.ID, assignedAt, dueDate); err != nil {
		switch {
		case errors.Is(err, repository.ErrJobNotFound):
			return nil, apperror.ErrJobNotFound
		case errors.Is(err, repository.ErrJobTaken):
			return nil, apperror.ErrJobAlreadyClaimed
		case errors.Is(err, repository.ErrJobNotPostable):
			return nil, apperror.New(apperror.ErrCodeConflict, "job is not open for claiming")
		}
		return nil, err
	}

	s.cache.InvalidateJobPool()
	s.cache.InvalidateAnalytics()
	s.recordHistory(ctx, caseID, actor.ID, models.HistoryJobClaimed, nil, map[string]interface{}{
		"contractor_id": actor.ID.String(),
		"due_date":      dueDate,
	})

	job, err := s.GetJob(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}

	contractorName := "A contractor"
	if u, err := s.users.GetByID(ctx, actor.ID); err == nil {
		contractorName = u.DisplayName()
	}
	s.notifier.Notify(ctx, job.LandlordID, &caseID, notify.EventJobClaimed, notify.Data{
		CaseID:         caseID.String(),
		CaseType:       string(job.CaseType),
		Address:        job.AddressLine(),
		ContractorName: contractorName,
		DueDate:        &dueDate,
	})

	return job, nil
}

// Unclaim возвращает задание в пул. Доступно только назначенному исполнителю до завершения.
func (s *JobService) Unclaim(ctx context.Context, actor Actor, caseID uuid.UUID) error {
	if err := actor.require(valueobject.RoleContractor); err != nil {
		return err
	}

	v, err := s.loadJob(ctx, caseID)
	if err != nil {
		return err
	}
	if !v.IsAssignedTo(actor.ID) {
		return apperror.New(apperror.ErrCodeForbidden, "job is not assigned to you")
	}
	if v.ContractorStatus == valueobject.ContractorStatusCompleted {
		return apperror.New(apperror.ErrCodeValidation, "completed job cannot be released")
	}

	if err := s.jobs.Unclaim(ctx, caseID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrJobStateChanged) {
			return apperror.New(apperror.ErrCodeConflict, "job state changed, reload and try again")
		}
		return err
	}

	s.cache.InvalidateJobPool()
	s.cache.InvalidateAnalytics()
	s.recordHistory(ctx, caseID, actor.ID, models.HistoryJobUnclaimed, string(v.ContractorStatus), string(valueobject.ContractorStatusUnassigned))
	return nil
}

// UpdateStatus двигает задание вперёд: ASSIGNED -> IN_PROGRESS -> COMPLETED.
// COMPLETED требует все четыре обязательных документа.
func (s *JobService) UpdateStatus(ctx context.Context, actor Actor, caseID uuid.UUID, rawStatus string) (*models.Job, error) {
	if err := actor.require(valueobject.RoleContractor); err != nil {
		return nil, err
	}
	target, err := valueobject.ParseContractorStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	v, err := s.loadJob(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !v.IsAssignedTo(actor.ID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "job is not assigned to you")
	}

	current := v.ContractorStatus
	if target == valueobject.ContractorStatusUnassigned {
		return nil, apperror.New(apperror.ErrCodeValidation, "use unclaim to release a job")
	}
	if !current.CanTransitionTo(target) {
		return nil, apperror.Newf(apperror.ErrCodeValidation, "cannot move job from %s to %s", current, target)
	}

	if target == valueobject.ContractorStatusCompleted {
		if err := s.ensureDocumentsComplete(ctx, caseID); err != nil {
			return nil, err
		}
	}

	if _, err := s.jobs.UpdateStatus(ctx, caseID, actor.ID, current, target); err != nil {
		switch {
		case errors.Is(err, repository.ErrDocumentsIncomplete):
			if docErr := s.ensureDocumentsComplete(ctx, caseID); docErr != nil {
				return nil, docErr
			}
			return nil, apperror.New(apperror.ErrCodeConflict, "job state changed, reload and try again")
		case errors.Is(err, repository.ErrJobStateChanged):
			return nil, apperror.New(apperror.ErrCodeConflict, "job state changed, reload and try again")
		}
		return nil, err
	}

	s.cache.InvalidateAnalytics()
	s.recordHistory(ctx, caseID, actor.ID, models.HistoryJobStatusChanged, string(current), string(target))

	job, err := s.GetJob(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}

	if target == valueobject.ContractorStatusCompleted {
		s.notifier.Notify(ctx, job.LandlordID, &caseID, notify.EventJobCompleted, notify.Data{
			CaseID:   caseID.String(),
			CaseType: string(job.CaseType),
			Address:  job.AddressLine(),
		})
	}
	return job, nil
}

func (s *JobService) ensureDocumentsComplete(ctx context.Context, caseID uuid.UUID) error {
	types, err := s.jobs.DocumentTypes(ctx, []uuid.UUID{caseID})
	if err != nil {
		return err
	}
	missing := valueobject.MissingDocuments(types[caseID])
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, m := range missing {
		names[i] = string(m)
	}
	return apperror.Newf(apperror.ErrCodeValidation, "missing documents: %s", strings.Join(names, ", "))
}

// UploadDocument проверяет и сохраняет документ задания. Повторная загрузка того же
// типа отклоняется с 409: сначала нужно удалить прежний файл.
func (s *JobService) UploadDocument(ctx context.Context, actor Actor, caseID uuid.UUID, in UploadInput) (*models.CaseDocument, error) {
	if err := actor.require(valueobject.RoleContractor); err != nil {
		return nil, err
	}
	docType, err := valueobject.ParseDocumentType(in.DocumentType)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadEditableJob(ctx, actor, caseID); err != nil {
		return nil, err
	}

	mimeType, err := validation.ValidateUpload(in.ContentType, in.Data, s.opts.MaxUploadBytes)
	if err != nil {
		if errors.Is(err, validation.ErrFileTooLarge) {
			return nil, apperror.Wrap(err, apperror.ErrCodeTooLarge, fmt.Sprintf("file exceeds %d MB limit", s.opts.MaxUploadBytes/(1024*1024)))
		}
		return nil, invalid(err)
	}

	if _, err := s.docs.GetByType(ctx, caseID, docType); err == nil {
		return nil, apperror.ErrDocumentExists
	} else if !errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, err
	}

	fileName := storage.SanitizeFilename(in.FileName)
	key := storage.DocumentKey(caseID, string(docType), mimeType)
	written, err := s.store.Save(ctx, key, bytes.NewReader(in.Data), int64(len(in.Data)), mimeType)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, apperror.Wrap(err, apperror.ErrCodeTooLarge, "file exceeds upload limit")
		}
		return nil, fmt.Errorf("job service: save document: %w", err)
	}

	doc := &models.CaseDocument{
		CaseID:       caseID,
		DocumentType: docType,
		FileName:     fileName,
		MimeType:     mimeType,
		FileSize:     written,
		StorageKey:   key,
		UploadedBy:   actor.ID,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		s.removeObject(ctx, key)
		if errors.Is(err, repository.ErrDocumentExists) {
			return nil, apperror.ErrDocumentExists
		}
		return nil, err
	}

	s.recordHistory(ctx, caseID, actor.ID, models.HistoryDocumentUploaded, nil, map[string]string{
		"document_type": string(docType),
		"file_name":     fileName,
	})
	logger.FromContext(ctx).WithFields(logrus.Fields{
		"case_id":       caseID,
		"document_type": docType,
		"size":          written,
	}).Info("document uploaded")

	s.attachURL(ctx, doc)
	return doc, nil
}

// ListDocuments возвращает документы дела назначенному исполнителю, владельцу или администратору.
func (s *JobService) ListDocuments(ctx context.Context, actor Actor, caseID uuid.UUID) ([]models.CaseDocument, error) {
	if _, err := s.loadReadableJob(ctx, actor, caseID); err != nil {
		return nil, err
	}
	docs, err := s.docs.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		s.attachURL(ctx, &docs[i])
	}
	return docs, nil
}

// DeleteDocument удаляет документ, пока задание не завершено.
func (s *JobService) DeleteDocument(ctx context.Context, actor Actor, caseID uuid.UUID, rawType string) error {
	if err := actor.require(valueobject.RoleContractor); err != nil {
		return err
	}
	docType, err := valueobject.ParseDocumentType(rawType)
	if err != nil {
		return err
	}
	if _, err := s.loadEditableJob(ctx, actor, caseID); err != nil {
		return err
	}

	doc, err := s.docs.GetByType(ctx, caseID, docType)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return apperror.ErrDocumentNotFound
		}
		return err
	}
	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return apperror.ErrDocumentNotFound
		}
		return err
	}
	s.removeObject(ctx, doc.StorageKey)
	s.recordHistory(ctx, caseID, actor.ID, models.HistoryDocumentDeleted, map[string]string{"document_type": string(docType)}, nil)
	return nil
}

// DocumentFile открытый файл документа и его сохранённые метаданные.
type DocumentFile struct {
	io.ReadCloser
	MimeType string
	FileName string
}

// OpenDocument открывает файл по ключу хранилища после проверки доступа к делу.
// Файл без записи в case_documents не отдаётся.
func (s *JobService) OpenDocument(ctx context.Context, actor Actor, key string) (*DocumentFile, error) {
	caseID, err := storage.CaseIDFromKey(key)
	if err != nil {
		return nil, apperror.ErrDocumentNotFound
	}
	if _, err := s.loadReadableJob(ctx, actor, caseID); err != nil {
		return nil, err
	}

	docs, err := s.docs.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	var doc *models.CaseDocument
	for i := range docs {
		if docs[i].StorageKey == key {
			doc = &docs[i]
			break
		}
	}
	if doc == nil {
		return nil, apperror.ErrDocumentNotFound
	}

	rc, err := s.store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, apperror.ErrDocumentNotFound
		}
		return nil, err
	}
	return &DocumentFile{ReadCloser: rc, MimeType: doc.MimeType, FileName: doc.FileName}, nil
}

func (s *JobService) loadJob(ctx context.Context, caseID uuid.UUID) (*models.CaseView, error) {
	v, err := s.jobs.GetJob(ctx, caseID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *JobService) loadEditableJob(ctx context.Context, actor Actor, caseID uuid.UUID) (*models.CaseView, error) {
	v, err := s.loadJob(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !v.IsAssignedTo(actor.ID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "job is not assigned to you")
	}
	if v.ContractorStatus == valueobject.ContractorStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeValidation, "job is already completed")
	}
	return v, nil
}

func (s *JobService) loadReadableJob(ctx context.Context, actor Actor, caseID uuid.UUID) (*models.CaseView, error) {
	v, err := s.loadJob(ctx, caseID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case valueobject.RoleAdmin:
		return v, nil
	case valueobject.RoleLandlord:
		if v.LandlordID == actor.ID {
			return v, nil
		}
	case valueobject.RoleContractor:
		if v.IsAssignedTo(actor.ID) {
			return v, nil
		}
	}
	return nil, apperror.ErrForbidden
}

func (s *JobService) withDocuments(ctx context.Context, views []models.CaseView) ([]models.Job, error) {
	ids := make([]uuid.UUID, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	types := map[uuid.UUID][]valueobject.DocumentType{}
	if len(ids) > 0 {
		var err error
		types, err = s.jobs.DocumentTypes(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	jobs := make([]models.Job, len(views))
	for i, v := range views {
		uploaded := types[v.ID]
		if uploaded == nil {
			uploaded = []valueobject.DocumentType{}
		}
		jobs[i] = models.Job{
			CaseView:          v,
			UploadedDocuments: uploaded,
			MissingDocuments:  valueobject.MissingDocuments(uploaded),
		}
	}
	return jobs, nil
}

func (s *JobService) attachURL(ctx context.Context, doc *models.CaseDocument) {
	url, err := s.store.URL(ctx, doc.StorageKey)
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("storage_key", doc.StorageKey).Warn("job service: cannot build document url")
		return
	}
	doc.URL = url
}

func (s *JobService) removeObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		logger.FromContext(ctx).WithError(err).WithField("storage_key", key).Warn("job service: failed to remove document file")
	}
}

func (s *JobService) recordHistory(ctx context.Context, caseID, userID uuid.UUID, action string, oldValue, newValue interface{}) {
	if err := s.history.AddHistory(ctx, caseID, &userID, action, oldValue, newValue); err != nil {
		logger.FromContext(ctx).WithError(err).WithField("case_id", caseID).Warn("job service: failed to write history")
	}
}
