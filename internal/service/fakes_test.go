package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/notify"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/storage"
)

// sentNotification вызов Notifier, записанный фейком.
type sentNotification struct {
	UserID uuid.UUID
	CaseID *uuid.UUID
	Event  string
	Data   notify.Data
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, caseID *uuid.UUID, event string, data notify.Data) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, CaseID: caseID, Event: event, Data: data})
}

func (n *recordingNotifier) events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.Event
	}
	return out
}

type fakeUsers map[uuid.UUID]*models.User

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

// memoryStore общее in-memory хранилище для тестов дел, заданий и корзины.
// Все методы под одним мьютексом, как строки под блокировкой в Postgres.
type memoryStore struct {
	mu         sync.Mutex
	cases      map[uuid.UUID]*models.LegalCase
	properties map[uuid.UUID]*models.Property
	tenants    map[uuid.UUID]*models.Tenant
	docs       map[uuid.UUID][]models.CaseDocument
	history    map[uuid.UUID][]models.CaseHistory
	txns       []models.CheckoutTransaction
	statusErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		cases:      map[uuid.UUID]*models.LegalCase{},
		properties: map[uuid.UUID]*models.Property{},
		tenants:    map[uuid.UUID]*models.Tenant{},
		docs:       map[uuid.UUID][]models.CaseDocument{},
		history:    map[uuid.UUID][]models.CaseHistory{},
	}
}

// seedParty создаёт объект и арендатора арендодателя.
func (s *memoryStore) seedParty(landlordID uuid.UUID) (*models.Property, *models.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Property{
		ID: uuid.New(), LandlordID: landlordID, Address: "12 Elm St", City: "Baltimore",
		State: "MD", ZipCode: "21201", County: "Baltimore City", PropertyType: "single_family",
	}
	t := &models.Tenant{ID: uuid.New(), LandlordID: landlordID, PropertyID: p.ID, TenantNames: []string{"Tom Tenant"}}
	s.properties[p.ID] = p
	s.tenants[t.ID] = t
	return p, t
}

// seedCase кладёт готовое дело в хранилище.
func (s *memoryStore) seedCase(landlordID uuid.UUID, price int64, status valueobject.CaseStatus, payment valueobject.PaymentStatus) *models.LegalCase {
	p, t := s.seedParty(landlordID)
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.LegalCase{
		ID: uuid.New(), LandlordID: landlordID, PropertyID: p.ID, TenantID: t.ID,
		CaseType: valueobject.CaseTypeFTPR, Status: status, PaymentStatus: payment,
		ContractorStatus: valueobject.ContractorStatusUnassigned, Price: price,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	s.cases[c.ID] = c
	return c
}

func (s *memoryStore) caseCopy(id uuid.UUID) *models.LegalCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.cases[id]
	return &c
}

func (s *memoryStore) viewLocked(c *models.LegalCase) models.CaseView {
	v := models.CaseView{LegalCase: *c}
	if p, ok := s.properties[c.PropertyID]; ok {
		v.PropertyAddress = &p.Address
		v.PropertyCity = &p.City
		v.PropertyState = &p.State
		v.PropertyZip = &p.ZipCode
		v.PropertyCounty = &p.County
	}
	if t, ok := s.tenants[c.TenantID]; ok {
		v.TenantNames = append(pq.StringArray{}, t.TenantNames...)
	}
	return v
}

func (s *memoryStore) addHistoryLocked(caseID uuid.UUID, userID uuid.UUID, action string) {
	s.history[caseID] = append(s.history[caseID], models.CaseHistory{
		ID: uuid.New(), CaseID: caseID, UserID: &userID, Action: action, CreatedAt: time.Now(),
	})
}

func (s *memoryStore) Create(_ context.Context, c *models.LegalCase, actorID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	copied := *c
	s.cases[c.ID] = &copied
	s.addHistoryLocked(c.ID, actorID, models.HistoryCaseCreated)
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.LegalCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return nil, repository.ErrCaseNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *memoryStore) GetView(_ context.Context, id uuid.UUID) (*models.CaseView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return nil, repository.ErrCaseNotFound
	}
	v := s.viewLocked(c)
	return &v, nil
}

func (s *memoryStore) Update(_ context.Context, c *models.LegalCase, actorID uuid.UUID, changes map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[c.ID]; !ok {
		return repository.ErrCaseNotFound
	}
	copied := *c
	s.cases[c.ID] = &copied
	if len(changes) > 0 {
		s.addHistoryLocked(c.ID, actorID, models.HistoryCaseUpdated)
	}
	return nil
}

func (s *memoryStore) UpdateStatus(_ context.Context, id uuid.UUID, status valueobject.CaseStatus, actorID uuid.UUID) (valueobject.CaseStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusErr != nil {
		return "", s.statusErr
	}
	c, ok := s.cases[id]
	if !ok {
		return "", repository.ErrCaseNotFound
	}
	previous := c.Status
	if previous != status {
		c.Status = status
		s.addHistoryLocked(id, actorID, models.HistoryStatusChanged)
	}
	return previous, nil
}

func (s *memoryStore) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status valueobject.PaymentStatus, actorID uuid.UUID) (valueobject.PaymentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return "", repository.ErrCaseNotFound
	}
	previous := c.PaymentStatus
	if previous != status {
		c.PaymentStatus = status
		s.addHistoryLocked(id, actorID, models.HistoryPaymentStatusChanged)
	}
	return previous, nil
}

func (s *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[id]; !ok {
		return repository.ErrCaseNotFound
	}
	delete(s.cases, id)
	delete(s.docs, id)
	delete(s.history, id)
	return nil
}

func (s *memoryStore) List(_ context.Context, params repository.CaseListParams) (*repository.CaseListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CaseView{}
	for _, c := range s.cases {
		if params.LandlordID != nil && c.LandlordID != *params.LandlordID {
			continue
		}
		if params.Status != "" && string(c.Status) != params.Status {
			continue
		}
		out = append(out, s.viewLocked(c))
	}
	return &repository.CaseListResult{Cases: out, Total: len(out), Limit: params.Limit}, nil
}

func (s *memoryStore) ListHistory(_ context.Context, caseID uuid.UUID) ([]models.CaseHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CaseHistory{}, s.history[caseID]...), nil
}

func (s *memoryStore) GetProperty(_ context.Context, id, landlordID uuid.UUID) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[id]
	if !ok || p.LandlordID != landlordID {
		return nil, repository.ErrPropertyNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *memoryStore) GetTenant(_ context.Context, id, landlordID uuid.UUID) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok || t.LandlordID != landlordID {
		return nil, repository.ErrTenantNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *memoryStore) ListByCase(_ context.Context, caseID uuid.UUID) ([]models.CaseDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CaseDocument{}, s.docs[caseID]...), nil
}

// cart

func (s *memoryStore) ListCart(_ context.Context, landlordID uuid.UUID) ([]models.CaseView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CaseView{}
	for _, c := range s.cases {
		if c.LandlordID == landlordID && c.IsInCart() {
			out = append(out, s.viewLocked(c))
		}
	}
	return out, nil
}

func (s *memoryStore) Checkout(_ context.Context, landlordID uuid.UUID, caseIDs []uuid.UUID) (*models.CheckoutTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prices := make([]int64, 0, len(caseIDs))
	ids := make(pq.StringArray, 0, len(caseIDs))
	for _, id := range caseIDs {
		c, ok := s.cases[id]
		if !ok || c.LandlordID != landlordID || !c.IsInCart() {
			return nil, repository.ErrCartChanged
		}
		prices = append(prices, c.Price)
		ids = append(ids, id.String())
	}
	totals := valueobject.CalculateTotals(prices)
	txn := models.CheckoutTransaction{
		ID: uuid.New(), LandlordID: landlordID, CaseIDs: ids,
		Subtotal: totals.Subtotal, ProcessingFee: totals.ProcessingFee, Tax: totals.Tax, Total: totals.Total,
		Status: "completed", Provider: "simulated", CreatedAt: time.Now(),
	}
	for _, id := range caseIDs {
		s.cases[id].Status = valueobject.CaseStatusSubmitted
		s.cases[id].PaymentStatus = valueobject.PaymentStatusPaid
		s.addHistoryLocked(id, landlordID, models.HistoryCheckedOut)
	}
	s.txns = append(s.txns, txn)
	return &txn, nil
}

func (s *memoryStore) ListTransactions(_ context.Context, landlordID uuid.UUID) ([]models.CheckoutTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CheckoutTransaction{}
	for _, t := range s.txns {
		if t.LandlordID == landlordID {
			out = append(out, t)
		}
	}
	return out, nil
}

// memoryRefs цены и юридические фирмы.
type memoryRefs struct {
	prices map[valueobject.CaseType]int64
	firms  map[uuid.UUID]*models.LawFirm
}

func newMemoryRefs() *memoryRefs {
	return &memoryRefs{
		prices: map[valueobject.CaseType]int64{valueobject.CaseTypeFTPR: 8000, valueobject.CaseTypeHoldover: 2000},
		firms:  map[uuid.UUID]*models.LawFirm{},
	}
}

func (r *memoryRefs) GetPrice(_ context.Context, caseType valueobject.CaseType) (int64, error) {
	if p, ok := r.prices[caseType]; ok {
		return p, nil
	}
	return 0, repository.ErrPriceNotConfigured
}

func (r *memoryRefs) GetByID(_ context.Context, id uuid.UUID) (*models.LawFirm, error) {
	if f, ok := r.firms[id]; ok {
		return f, nil
	}
	return nil, repository.ErrLawFirmNotFound
}

// memoryObjects хранилище файлов документов.
type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}}
}

func (m *memoryObjects) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return int64(len(data)), nil
}

func (m *memoryObjects) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *memoryObjects) URL(_ context.Context, key string) (string, error) {
	return "/api/files/" + key, nil
}

func (m *memoryObjects) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (s *memoryStore) AddHistory(_ context.Context, caseID uuid.UUID, userID *uuid.UUID, action string, _, _ interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[caseID] = append(s.history[caseID], models.CaseHistory{
		ID: uuid.New(), CaseID: caseID, UserID: userID, Action: action, CreatedAt: time.Now(),
	})
	return nil
}

func (s *memoryStore) historyActions(caseID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	for _, h := range s.history[caseID] {
		out = append(out, h.Action)
	}
	return out
}

// jobView реализует JobRepository поверх memoryStore.
type jobView struct{ *memoryStore }

func (j jobView) Claim(_ context.Context, caseID, contractorID uuid.UUID, assignedAt, dueDate time.Time) (*models.LegalCase, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	c, ok := j.cases[caseID]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	if c.ContractorStatus != valueobject.ContractorStatusUnassigned {
		return nil, repository.ErrJobTaken
	}
	if !c.Status.IsPostable() {
		return nil, repository.ErrJobNotPostable
	}
	c.ContractorID = &contractorID
	c.ContractorStatus = valueobject.ContractorStatusAssigned
	c.AssignedAt = &assignedAt
	c.DueDate = &dueDate
	copied := *c
	return &copied, nil
}

func (j jobView) Unclaim(_ context.Context, caseID, contractorID uuid.UUID) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	c, ok := j.cases[caseID]
	if !ok || !c.IsAssignedTo(contractorID) || !c.ContractorStatus.IsActive() {
		return repository.ErrJobStateChanged
	}
	c.ContractorID = nil
	c.ContractorStatus = valueobject.ContractorStatusUnassigned
	c.AssignedAt = nil
	c.DueDate = nil
	return nil
}

func (j jobView) UpdateStatus(_ context.Context, caseID, contractorID uuid.UUID, from, to valueobject.ContractorStatus) (*models.LegalCase, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	c, ok := j.cases[caseID]
	if !ok || !c.IsAssignedTo(contractorID) || c.ContractorStatus != from {
		return nil, repository.ErrJobStateChanged
	}
	if to == valueobject.ContractorStatusCompleted {
		types := make([]valueobject.DocumentType, 0, len(j.docs[caseID]))
		for _, d := range j.docs[caseID] {
			types = append(types, d.DocumentType)
		}
		if len(valueobject.MissingDocuments(types)) > 0 {
			return nil, repository.ErrDocumentsIncomplete
		}
		now := time.Now()
		c.JobCompletedAt = &now
	}
	c.ContractorStatus = to
	copied := *c
	return &copied, nil
}

func (j jobView) GetJob(_ context.Context, caseID uuid.UUID) (*models.CaseView, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	c, ok := j.cases[caseID]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	v := j.viewLocked(c)
	return &v, nil
}

func (j jobView) ListAvailable(_ context.Context, params repository.JobListParams) (*repository.JobListResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := []models.CaseView{}
	for _, c := range j.cases {
		if c.ContractorStatus != valueobject.ContractorStatusUnassigned || !c.Status.IsPostable() {
			continue
		}
		v := j.viewLocked(c)
		if params.County != "" && (v.PropertyCounty == nil || *v.PropertyCounty != params.County) {
			continue
		}
		out = append(out, v)
	}
	return &repository.JobListResult{Jobs: out, Total: len(out), Limit: params.Limit}, nil
}

func (j jobView) ListMine(_ context.Context, contractorID uuid.UUID, status valueobject.ContractorStatus) ([]models.CaseView, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := []models.CaseView{}
	for _, c := range j.cases {
		if !c.IsAssignedTo(contractorID) || (status != "" && c.ContractorStatus != status) {
			continue
		}
		out = append(out, j.viewLocked(c))
	}
	return out, nil
}

func (j jobView) DocumentTypes(_ context.Context, caseIDs []uuid.UUID) (map[uuid.UUID][]valueobject.DocumentType, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := map[uuid.UUID][]valueobject.DocumentType{}
	for _, id := range caseIDs {
		for _, d := range j.docs[id] {
			out[id] = append(out[id], d.DocumentType)
		}
	}
	return out, nil
}

// docView реализует DocumentRepository поверх memoryStore.
type docView struct{ *memoryStore }

func (d docView) Create(_ context.Context, doc *models.CaseDocument) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.docs[doc.CaseID] {
		if existing.DocumentType == doc.DocumentType {
			return repository.ErrDocumentExists
		}
	}
	doc.ID = uuid.New()
	doc.CreatedAt = time.Now()
	d.docs[doc.CaseID] = append(d.docs[doc.CaseID], *doc)
	return nil
}

func (d docView) GetByType(_ context.Context, caseID uuid.UUID, docType valueobject.DocumentType) (*models.CaseDocument, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.docs[caseID] {
		if existing.DocumentType == docType {
			copied := existing
			return &copied, nil
		}
	}
	return nil, repository.ErrDocumentNotFound
}

func (d docView) Delete(_ context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for caseID, docs := range d.docs {
		for i, existing := range docs {
			if existing.ID == id {
				d.docs[caseID] = append(docs[:i:i], docs[i+1:]...)
				return nil
			}
		}
	}
	return repository.ErrDocumentNotFound
}

// properties

func (s *memoryStore) CreateProperty(_ context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	copied := *p
	s.properties[p.ID] = &copied
	return nil
}

func (s *memoryStore) UpdateProperty(_ context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.properties[p.ID]
	if !ok || existing.LandlordID != p.LandlordID {
		return repository.ErrPropertyNotFound
	}
	copied := *p
	s.properties[p.ID] = &copied
	return nil
}

func (s *memoryStore) DeleteProperty(_ context.Context, id, landlordID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[id]
	if !ok || p.LandlordID != landlordID {
		return repository.ErrPropertyNotFound
	}
	for _, c := range s.cases {
		if c.PropertyID == id {
			return repository.ErrPropertyInUse
		}
	}
	delete(s.properties, id)
	for tid, t := range s.tenants {
		if t.PropertyID == id {
			delete(s.tenants, tid)
		}
	}
	return nil
}

func (s *memoryStore) ListProperties(_ context.Context, params repository.PropertyListParams) (*repository.PropertyListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Property{}
	for _, p := range s.properties {
		if p.LandlordID != params.LandlordID {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(p.Address+" "+p.City), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, *p)
	}
	return &repository.PropertyListResult{Properties: out, Total: len(out), Limit: params.Limit, Offset: params.Offset}, nil
}

func (s *memoryStore) CreateTenant(_ context.Context, t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	copied := *t
	s.tenants[t.ID] = &copied
	return nil
}

func (s *memoryStore) UpdateTenant(_ context.Context, t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tenants[t.ID]
	if !ok || existing.LandlordID != t.LandlordID {
		return repository.ErrTenantNotFound
	}
	copied := *t
	s.tenants[t.ID] = &copied
	return nil
}

func (s *memoryStore) DeleteTenant(_ context.Context, id, landlordID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok || t.LandlordID != landlordID {
		return repository.ErrTenantNotFound
	}
	for _, c := range s.cases {
		if c.TenantID == id {
			return repository.ErrTenantInUse
		}
	}
	delete(s.tenants, id)
	return nil
}

func (s *memoryStore) ListTenants(_ context.Context, landlordID uuid.UUID, propertyID *uuid.UUID) ([]models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Tenant{}
	for _, t := range s.tenants {
		if t.LandlordID != landlordID || (propertyID != nil && t.PropertyID != *propertyID) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

// law firms и цены

func (r *memoryRefs) Create(_ context.Context, f *models.LawFirm) error {
	for _, existing := range r.firms {
		if f.ReferralCode != nil && existing.ReferralCode != nil && *existing.ReferralCode == *f.ReferralCode {
			return repository.ErrReferralCodeTaken
		}
	}
	f.ID = uuid.New()
	copied := *f
	r.firms[f.ID] = &copied
	return nil
}

func (r *memoryRefs) Update(_ context.Context, f *models.LawFirm) error {
	if _, ok := r.firms[f.ID]; !ok {
		return repository.ErrLawFirmNotFound
	}
	copied := *f
	r.firms[f.ID] = &copied
	return nil
}

func (r *memoryRefs) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.firms[id]; !ok {
		return repository.ErrLawFirmNotFound
	}
	delete(r.firms, id)
	return nil
}

func (r *memoryRefs) List(_ context.Context, search string) ([]models.LawFirm, error) {
	out := []models.LawFirm{}
	for _, f := range r.firms {
		if search == "" || strings.Contains(strings.ToLower(f.Name), strings.ToLower(search)) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *memoryRefs) ListPrices(_ context.Context) ([]models.CasePrice, error) {
	out := []models.CasePrice{}
	for t, p := range r.prices {
		out = append(out, models.CasePrice{CaseType: t, Price: p})
	}
	return out, nil
}

func (r *memoryRefs) SetPrice(_ context.Context, caseType valueobject.CaseType, price int64, updatedBy *uuid.UUID) (*models.CasePrice, error) {
	r.prices[caseType] = price
	return &models.CasePrice{CaseType: caseType, Price: price, UpdatedBy: updatedBy, UpdatedAt: time.Now()}, nil
}

func (s *memoryStore) ListAll(ctx context.Context, params repository.CaseListParams) ([]models.CaseView, error) {
	res, err := s.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return res.Cases, nil
}

// seedUsers пользователи по email для SeedService.
type seedUsers struct {
	byEmail map[string]*models.User
}

func (u *seedUsers) Create(_ context.Context, user *models.User) error {
	if _, ok := u.byEmail[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	user.ID = uuid.New()
	u.byEmail[user.Email] = user
	return nil
}

func (u *seedUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := u.byEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}
