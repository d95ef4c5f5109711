package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/service"
)

func newCartHandler(repo *stubCart) *CartHandler {
	return NewCartHandler(service.NewCartService(repo, service.NewCacheService(), &noopNotifier{}))
}

func TestCartHandler_GetCart_Totals(t *testing.T) {
	landlordID := uuid.New()
	repo := &stubCart{items: []models.CaseView{cartItem(landlordID, 8000), cartItem(landlordID, 2000)}}
	handler := newCartHandler(repo)

	r := newTestEngine(landlordID, valueobject.RoleLandlord)
	r.GET("/cart", handler.GetCart)
	req, _ := http.NewRequest(http.MethodGet, "/cart", nil)
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code)
	var cart service.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Len(t, cart.Items, 2)
	assert.True(t, cart.CanCheckout)
	assert.Equal(t, valueobject.Totals{Subtotal: 10000, ProcessingFee: 300, Tax: 825, Total: 11125}, cart.Totals)
}

func TestCartHandler_GetCart_ContractorForbidden(t *testing.T) {
	handler := newCartHandler(&stubCart{})
	r := newTestEngine(uuid.New(), valueobject.RoleContractor)
	r.GET("/cart", handler.GetCart)

	req, _ := http.NewRequest(http.MethodGet, "/cart", nil)
	w := serve(r, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCartHandler_Checkout(t *testing.T) {
	landlordID := uuid.New()
	first := cartItem(landlordID, 8000)
	second := cartItem(landlordID, 2000)
	repo := &stubCart{items: []models.CaseView{first, second}}
	handler := newCartHandler(repo)

	r := newTestEngine(landlordID, valueobject.RoleLandlord)
	r.POST("/checkout", handler.Checkout)
	req, _ := http.NewRequest(http.MethodPost, "/checkout", nil)
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result service.CheckoutResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEqual(t, uuid.Nil, result.TransactionID)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, result.CaseIDs)
	assert.Equal(t, int64(11125), result.Totals.Total)

	for _, item := range repo.items {
		assert.Equal(t, valueobject.CaseStatusSubmitted, item.Status)
		assert.Equal(t, valueobject.PaymentStatusPaid, item.PaymentStatus)
	}
}

func TestCartHandler_Checkout_SelectedCases(t *testing.T) {
	landlordID := uuid.New()
	first := cartItem(landlordID, 8000)
	second := cartItem(landlordID, 2000)
	repo := &stubCart{items: []models.CaseView{first, second}}
	handler := newCartHandler(repo)

	r := newTestEngine(landlordID, valueobject.RoleLandlord)
	r.POST("/checkout", handler.Checkout)
	req, _ := http.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"case_ids":["`+first.ID.String()+`"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result service.CheckoutResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, []uuid.UUID{first.ID}, result.CaseIDs)
	assert.Equal(t, int64(8000), result.Totals.Subtotal)
	assert.Equal(t, valueobject.CaseStatusNoticeDraft, repo.items[1].Status)
}

func TestCartHandler_Checkout_EmptyCart(t *testing.T) {
	handler := newCartHandler(&stubCart{})
	r := newTestEngine(uuid.New(), valueobject.RoleLandlord)
	r.POST("/checkout", handler.Checkout)

	req, _ := http.NewRequest(http.MethodPost, "/checkout", nil)
	w := serve(r, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cart is empty")
}

func TestCartHandler_Checkout_Unauthorized(t *testing.T) {
	r := newTestEngine(uuid.Nil, "")
	handler := &CartHandler{cart: nil}
	r.POST("/checkout", handler.Checkout)

	req, _ := http.NewRequest(http.MethodPost, "/checkout", nil)
	w := serve(r, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
