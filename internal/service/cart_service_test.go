package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/notify"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
)

type cartFixture struct {
	svc      *CartService
	store    *memoryStore
	notifier *recordingNotifier
	landlord Actor
}

func newCartFixture() *cartFixture {
	store := newMemoryStore()
	notifier := &recordingNotifier{}
	return &cartFixture{
		svc:      NewCartService(store, NewCacheService(), notifier),
		store:    store,
		notifier: notifier,
		landlord: Actor{ID: uuid.New(), Role: valueobject.RoleLandlord},
	}
}

func (f *cartFixture) draft(price int64) *models.LegalCase {
	return f.store.seedCase(f.landlord.ID, price, valueobject.CaseStatusNoticeDraft, valueobject.PaymentStatusUnpaid)
}

func TestCartService_TotalsScenario(t *testing.T) {
	f := newCartFixture()
	f.draft(8000)
	f.draft(2000)
	f.store.seedCase(f.landlord.ID, 5000, valueobject.CaseStatusSubmitted, valueobject.PaymentStatusPaid)

	cart, err := f.svc.GetCart(context.Background(), f.landlord)
	require.NoError(t, err)

	assert.Len(t, cart.Items, 2)
	assert.True(t, cart.CanCheckout)
	assert.Equal(t, valueobject.Totals{Subtotal: 10000, ProcessingFee: 300, Tax: 825, Total: 11125}, cart.Totals)
}

func TestCartService_CheckoutWholeCart(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	a := f.draft(8000)
	b := f.draft(2000)

	res, err := f.svc.Checkout(ctx, f.landlord, nil)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.TransactionID)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, res.CaseIDs)
	assert.Equal(t, int64(11125), res.Totals.Total)

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		c := f.store.caseCopy(id)
		assert.Equal(t, valueobject.CaseStatusSubmitted, c.Status)
		assert.Equal(t, valueobject.PaymentStatusPaid, c.PaymentStatus)
		assert.Equal(t, []string{models.HistoryCheckedOut}, f.store.historyActions(id))
	}

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notify.EventCheckoutCompleted, f.notifier.sent[0].Event)
	assert.Equal(t, res.TransactionID.String(), f.notifier.sent[0].Data.TransactionID)

	txns, err := f.svc.ListTransactions(ctx, f.landlord)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, res.TransactionID, txns[0].ID)

	_, err = f.svc.Checkout(ctx, f.landlord, nil)
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)
}

func TestCartService_CheckoutSelection(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	a := f.draft(8000)
	b := f.draft(2000)

	res, err := f.svc.Checkout(ctx, f.landlord, []uuid.UUID{a.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID}, res.CaseIDs)
	assert.Equal(t, valueobject.Totals{Subtotal: 8000, ProcessingFee: 240, Tax: 660, Total: 8900}, res.Totals)

	assert.True(t, f.store.caseCopy(b.ID).IsInCart())

	_, err = f.svc.Checkout(ctx, f.landlord, []uuid.UUID{a.ID})
	assert.True(t, apperror.IsValidation(err))
}

func TestCartService_CannotCheckoutBrokenItems(t *testing.T) {
	f := newCartFixture()
	c := f.draft(8000)
	f.store.mu.Lock()
	delete(f.store.tenants, c.TenantID)
	f.store.mu.Unlock()

	cart, err := f.svc.GetCart(context.Background(), f.landlord)
	require.NoError(t, err)
	assert.False(t, cart.CanCheckout)

	_, err = f.svc.Checkout(context.Background(), f.landlord, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestCartService_RequiresLandlord(t *testing.T) {
	f := newCartFixture()
	contractor := Actor{ID: uuid.New(), Role: valueobject.RoleContractor}

	_, err := f.svc.GetCart(context.Background(), contractor)
	assert.True(t, apperror.IsForbidden(err))
	_, err = f.svc.Checkout(context.Background(), contractor, nil)
	assert.True(t, apperror.IsForbidden(err))
}

func TestCanCheckout(t *testing.T) {
	addr := "1 Main St"
	valid := models.CaseView{
		LegalCase: models.LegalCase{
			PropertyID: uuid.New(), TenantID: uuid.New(), Price: 100,
			Status: valueobject.CaseStatusNoticeDraft, PaymentStatus: valueobject.PaymentStatusUnpaid,
		},
		PropertyAddress: &addr,
		TenantNames:     []string{"T"},
	}
	paid := valueobject.PaymentStatusPaid

	tests := []struct {
		name  string
		items func() []models.CaseView
		want  bool
	}{
		{"empty", func() []models.CaseView { return nil }, false},
		{"valid", func() []models.CaseView { return []models.CaseView{valid} }, true},
		{"negative price", func() []models.CaseView { v := valid; v.Price = -1; return []models.CaseView{v} }, false},
		{"missing property", func() []models.CaseView { v := valid; v.PropertyAddress = nil; return []models.CaseView{valid, v} }, false},
		{"already paid", func() []models.CaseView { v := valid; v.PaymentStatus = paid; return []models.CaseView{v} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanCheckout(tt.items()))
		})
	}
}
