package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/http/handlers/common"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/service"
)

// CartHandler корзина черновиков и оплата.
type CartHandler struct {
	cart *service.CartService
}

// NewCartHandler создаёт новый хэндлер.
func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// GetCart обрабатывает GET /cart.
func (h *CartHandler) GetCart(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	cart, err := h.cart.GetCart(c.Request.Context(), actor)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// Checkout обрабатывает POST /checkout. Пустой case_ids оплачивает всю корзину.
func (h *CartHandler) Checkout(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	var req struct {
		CaseIDs []uuid.UUID `json:"case_ids"`
	}
	if c.Request.ContentLength != 0 {
		if err := common.BindAndValidate(c, &req); err != nil {
			common.RespondAppError(c, err)
			return
		}
	}

	result, err := h.cart.Checkout(c.Request.Context(), actor, req.CaseIDs)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListTransactions обрабатывает GET /checkout/transactions.
func (h *CartHandler) ListTransactions(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	txs, err := h.cart.ListTransactions(c.Request.Context(), actor)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
