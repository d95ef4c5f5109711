package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/http/handlers/common"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/service"
)

// ReferenceHandler юридические фирмы и цены по типам дел.
type ReferenceHandler struct {
	refs *service.ReferenceService
}

// NewReferenceHandler создаёт новый хэндлер.
func NewReferenceHandler(refs *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{refs: refs}
}

type lawFirmRequest struct {
	Name         string  `json:"name" binding:"required"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone *string `json:"contact_phone"`
	Address      *string `json:"address"`
	ReferralCode *string `json:"referral_code"`
}

func (r lawFirmRequest) input() service.LawFirmInput {
	return service.LawFirmInput{
		Name:         r.Name,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		Address:      r.Address,
		ReferralCode: r.ReferralCode,
	}
}

// ListLawFirms обрабатывает GET /law-firms.
func (h *ReferenceHandler) ListLawFirms(c *gin.Context) {
	firms, err := h.refs.ListLawFirms(c.Request.Context(), c.Query("search"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"law_firms": firms})
}

// GetLawFirm обрабатывает GET /law-firms/:id.
func (h *ReferenceHandler) GetLawFirm(c *gin.Context) {
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	firm, err := h.refs.GetLawFirm(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, firm)
}

// CreateLawFirm обрабатывает POST /admin/law-firms.
func (h *ReferenceHandler) CreateLawFirm(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	var req lawFirmRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	firm, err := h.refs.CreateLawFirm(c.Request.Context(), actor, req.input())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, firm)
}

// UpdateLawFirm обрабатывает PUT /admin/law-firms/:id.
func (h *ReferenceHandler) UpdateLawFirm(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req lawFirmRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	firm, err := h.refs.UpdateLawFirm(c.Request.Context(), actor, id, req.input())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, firm)
}

// DeleteLawFirm обрабатывает DELETE /admin/law-firms/:id.
func (h *ReferenceHandler) DeleteLawFirm(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.refs.DeleteLawFirm(c.Request.Context(), actor, id); err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPrices обрабатывает GET /pricing.
func (h *ReferenceHandler) ListPrices(c *gin.Context) {
	prices, err := h.refs.ListPrices(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prices": prices})
}

// SetPrice обрабатывает PUT /admin/pricing/:case_type.
func (h *ReferenceHandler) SetPrice(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	var req struct {
		Price *int64 `json:"price" binding:"required,min=0"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	price, err := h.refs.SetPrice(c.Request.Context(), actor, c.Param("case_type"), *req.Price)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, price)
}
