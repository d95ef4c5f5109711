package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/http/handlers/common"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/service"
)

// CaseHandler дела арендодателя: CRUD, статусы, история и документы.
type CaseHandler struct {
	cases *service.CaseService
	jobs  *service.JobService
}

// NewCaseHandler создаёт новый хэндлер.
func NewCaseHandler(cases *service.CaseService, jobs *service.JobService) *CaseHandler {
	return &CaseHandler{cases: cases, jobs: jobs}
}

type createCaseRequest struct {
	LandlordID          *uuid.UUID `json:"landlord_id"`
	PropertyID          uuid.UUID  `json:"property_id" binding:"required"`
	TenantID            uuid.UUID  `json:"tenant_id" binding:"required"`
	CaseType            string     `json:"case_type" binding:"required,case_type"`
	LawFirmID           *uuid.UUID `json:"law_firm_id"`
	Price               *int64     `json:"price" binding:"omitempty,min=0"`
	RentOwedAtFiling    int64      `json:"rent_owed_at_filing" binding:"min=0"`
	CurrentRentOwed     int64      `json:"current_rent_owed" binding:"min=0"`
	LateFeesCharged     int64      `json:"late_fees_charged" binding:"min=0"`
	NoRightOfRedemption bool       `json:"no_right_of_redemption"`
	DateInitiated       *time.Time `json:"date_initiated"`
	CourtCaseNumber     *string    `json:"court_case_number"`
}

type updateCaseRequest struct {
	LawFirmID           *uuid.UUID `json:"law_firm_id"`
	ClearLawFirm        bool       `json:"clear_law_firm"`
	Price               *int64     `json:"price" binding:"omitempty,min=0"`
	RentOwedAtFiling    *int64     `json:"rent_owed_at_filing" binding:"omitempty,min=0"`
	CurrentRentOwed     *int64     `json:"current_rent_owed" binding:"omitempty,min=0"`
	LateFeesCharged     *int64     `json:"late_fees_charged" binding:"omitempty,min=0"`
	NoRightOfRedemption *bool      `json:"no_right_of_redemption"`
	CourtCaseNumber     *string    `json:"court_case_number"`
	TrialDate           *time.Time `json:"trial_date"`
	CourtHearingDate    *time.Time `json:"court_hearing_date"`
	CourtOutcomeNotes   *string    `json:"court_outcome_notes"`
}

// ListCases обрабатывает GET /cases.
func (h *CaseHandler) ListCases(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	from, err := common.ParseDateQuery(c, "from")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	to, err := common.ParseDateQuery(c, "to")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	limit, offset := common.GetPagination(c)

	filter := service.CaseListFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		CaseType:      c.Query("case_type"),
		Search:        c.Query("search"),
		From:          from,
		To:            to,
		Limit:         limit,
		Offset:        offset,
	}
	if raw := c.Query("landlord_id"); raw != "" && actor.IsAdmin() {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "invalid landlord_id")
			return
		}
		filter.LandlordID = &id
	}

	result, err := h.cases.List(c.Request.Context(), actor, filter)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateCase обрабатывает POST /cases.
func (h *CaseHandler) CreateCase(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	var req createCaseRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	view, err := h.cases.Create(c.Request.Context(), actor, service.CreateCaseInput{
		LandlordID:          req.LandlordID,
		PropertyID:          req.PropertyID,
		TenantID:            req.TenantID,
		CaseType:            req.CaseType,
		LawFirmID:           req.LawFirmID,
		Price:               req.Price,
		RentOwedAtFiling:    req.RentOwedAtFiling,
		CurrentRentOwed:     req.CurrentRentOwed,
		LateFeesCharged:     req.LateFeesCharged,
		NoRightOfRedemption: req.NoRightOfRedemption,
		DateInitiated:       req.DateInitiated,
		CourtCaseNumber:     req.CourtCaseNumber,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetCase обрабатывает GET /cases/:id.
func (h *CaseHandler) GetCase(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.cases.Get(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateCase обрабатывает PUT /cases/:id.
func (h *CaseHandler) UpdateCase(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req updateCaseRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	view, err := h.cases.Update(c.Request.Context(), actor, id, service.UpdateCaseInput{
		LawFirmID:           req.LawFirmID,
		ClearLawFirm:        req.ClearLawFirm,
		Price:               req.Price,
		RentOwedAtFiling:    req.RentOwedAtFiling,
		CurrentRentOwed:     req.CurrentRentOwed,
		LateFeesCharged:     req.LateFeesCharged,
		NoRightOfRedemption: req.NoRightOfRedemption,
		CourtCaseNumber:     req.CourtCaseNumber,
		TrialDate:           req.TrialDate,
		CourtHearingDate:    req.CourtHearingDate,
		CourtOutcomeNotes:   req.CourtOutcomeNotes,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateStatus обрабатывает PATCH /cases/:id/status.
func (h *CaseHandler) UpdateStatus(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,case_status"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	view, err := h.cases.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdatePaymentStatus обрабатывает PATCH /cases/:id/payment-status.
func (h *CaseHandler) UpdatePaymentStatus(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		PaymentStatus string `json:"payment_status" binding:"required,payment_status"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	view, err := h.cases.UpdatePaymentStatus(c.Request.Context(), actor, id, req.PaymentStatus)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteCase обрабатывает DELETE /cases/:id.
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.cases.Delete(c.Request.Context(), actor, id); err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// History обрабатывает GET /cases/:id/history.
func (h *CaseHandler) History(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	history, err := h.cases.History(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// ListDocuments обрабатывает GET /cases/:id/documents.
func (h *CaseHandler) ListDocuments(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	docs, err := h.jobs.ListDocuments(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}
