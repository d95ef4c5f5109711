package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/http/handlers/common"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/notify"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/service"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/storage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.SetOutput(io.Discard)
	if err := common.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// newTestEngine роутер, который кладёт в контекст пользователя, как AuthMiddleware.
func newTestEngine(userID uuid.UUID, role valueobject.Role) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set("userID", userID)
			c.Set("role", role)
		}
		c.Next()
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type noopNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *noopNotifier) Notify(_ context.Context, _ uuid.UUID, _ *uuid.UUID, event string, _ notify.Data) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

type noopHistory struct{}

func (noopHistory) AddHistory(context.Context, uuid.UUID, *uuid.UUID, string, interface{}, interface{}) error {
	return nil
}

type noUsers struct{}

func (noUsers) GetByID(context.Context, uuid.UUID) (*models.User, error) {
	return nil, repository.ErrUserNotFound
}

// stubJobs одно задание под мьютексом. Непереопределённые методы JobRepository паникуют.
type stubJobs struct {
	service.JobRepository
	mu   sync.Mutex
	view models.CaseView
}

func newStubJobs(landlordID uuid.UUID) *stubJobs {
	address := "12 Elm St"
	return &stubJobs{view: models.CaseView{
		LegalCase: models.LegalCase{
			ID:               uuid.New(),
			LandlordID:       landlordID,
			PropertyID:       uuid.New(),
			TenantID:         uuid.New(),
			CaseType:         valueobject.CaseTypeFTPR,
			Status:           valueobject.CaseStatusSubmitted,
			PaymentStatus:    valueobject.PaymentStatusPaid,
			ContractorStatus: valueobject.ContractorStatusUnassigned,
			Price:            8000,
		},
		PropertyAddress: &address,
		TenantNames:     pq.StringArray{"Tom Tenant"},
	}}
}

func (s *stubJobs) assign(contractorID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ContractorID = &contractorID
	s.view.ContractorStatus = valueobject.ContractorStatusAssigned
}

func (s *stubJobs) Claim(_ context.Context, caseID, contractorID uuid.UUID, assignedAt, dueDate time.Time) (*models.LegalCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caseID != s.view.ID {
		return nil, repository.ErrJobNotFound
	}
	if s.view.ContractorStatus != valueobject.ContractorStatusUnassigned {
		return nil, repository.ErrJobTaken
	}
	s.view.ContractorID = &contractorID
	s.view.ContractorStatus = valueobject.ContractorStatusAssigned
	s.view.AssignedAt = &assignedAt
	s.view.DueDate = &dueDate
	c := s.view.LegalCase
	return &c, nil
}

func (s *stubJobs) GetJob(_ context.Context, caseID uuid.UUID) (*models.CaseView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caseID != s.view.ID {
		return nil, repository.ErrJobNotFound
	}
	v := s.view
	return &v, nil
}

func (s *stubJobs) DocumentTypes(context.Context, []uuid.UUID) (map[uuid.UUID][]valueobject.DocumentType, error) {
	return map[uuid.UUID][]valueobject.DocumentType{}, nil
}

// stubDocs документы по типу.
type stubDocs struct {
	mu   sync.Mutex
	docs map[valueobject.DocumentType]models.CaseDocument
}

func newStubDocs() *stubDocs {
	return &stubDocs{docs: map[valueobject.DocumentType]models.CaseDocument{}}
}

func (d *stubDocs) Create(_ context.Context, doc *models.CaseDocument) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.docs[doc.DocumentType]; ok {
		return repository.ErrDocumentExists
	}
	doc.ID = uuid.New()
	doc.CreatedAt = time.Now()
	d.docs[doc.DocumentType] = *doc
	return nil
}

func (d *stubDocs) GetByType(_ context.Context, _ uuid.UUID, docType valueobject.DocumentType) (*models.CaseDocument, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if doc, ok := d.docs[docType]; ok {
		return &doc, nil
	}
	return nil, repository.ErrDocumentNotFound
}

func (d *stubDocs) ListByCase(context.Context, uuid.UUID) ([]models.CaseDocument, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []models.CaseDocument{}
	for _, doc := range d.docs {
		out = append(out, doc)
	}
	return out, nil
}

func (d *stubDocs) Delete(_ context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for t, doc := range d.docs {
		if doc.ID == id {
			delete(d.docs, t)
			return nil
		}
	}
	return repository.ErrDocumentNotFound
}

// memStore файлы в памяти.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return int64(len(data)), nil
}

func (m *memStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) URL(_ context.Context, key string) (string, error) {
	return "/api/files/" + key, nil
}

// stubCart корзина из готовых дел.
type stubCart struct {
	items []models.CaseView
	txns  []models.CheckoutTransaction
}

func cartItem(landlordID uuid.UUID, price int64) models.CaseView {
	address := "12 Elm St"
	return models.CaseView{
		LegalCase: models.LegalCase{
			ID:               uuid.New(),
			LandlordID:       landlordID,
			PropertyID:       uuid.New(),
			TenantID:         uuid.New(),
			CaseType:         valueobject.CaseTypeFTPR,
			Status:           valueobject.CaseStatusNoticeDraft,
			PaymentStatus:    valueobject.PaymentStatusUnpaid,
			ContractorStatus: valueobject.ContractorStatusUnassigned,
			Price:            price,
		},
		PropertyAddress: &address,
		TenantNames:     pq.StringArray{"Tom Tenant"},
	}
}

func (s *stubCart) ListCart(_ context.Context, landlordID uuid.UUID) ([]models.CaseView, error) {
	out := []models.CaseView{}
	for _, item := range s.items {
		if item.LandlordID == landlordID && item.IsInCart() {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubCart) Checkout(_ context.Context, landlordID uuid.UUID, caseIDs []uuid.UUID) (*models.CheckoutTransaction, error) {
	prices := []int64{}
	ids := pq.StringArray{}
	for _, id := range caseIDs {
		for i := range s.items {
			if s.items[i].ID == id {
				prices = append(prices, s.items[i].Price)
				ids = append(ids, id.String())
				s.items[i].Status = valueobject.CaseStatusSubmitted
				s.items[i].PaymentStatus = valueobject.PaymentStatusPaid
			}
		}
	}
	totals := valueobject.CalculateTotals(prices)
	txn := models.CheckoutTransaction{
		ID: uuid.New(), LandlordID: landlordID, CaseIDs: ids,
		Subtotal: totals.Subtotal, ProcessingFee: totals.ProcessingFee, Tax: totals.Tax, Total: totals.Total,
		Status: "completed", Provider: "simulated", CreatedAt: time.Now(),
	}
	s.txns = append(s.txns, txn)
	return &txn, nil
}

func (s *stubCart) ListTransactions(context.Context, uuid.UUID) ([]models.CheckoutTransaction, error) {
	return s.txns, nil
}
