package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/http/handlers/common"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/service"
)

// PropertyHandler объекты недвижимости и арендаторы арендодателя.
type PropertyHandler struct {
	properties *service.PropertyService
}

// NewPropertyHandler создаёт новый хэндлер.
func NewPropertyHandler(properties *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{properties: properties}
}

type propertyRequest struct {
	Address      string  `json:"address" binding:"required"`
	Unit         *string `json:"unit"`
	City         string  `json:"city" binding:"required"`
	State        string  `json:"state" binding:"required,us_state"`
	ZipCode      string  `json:"zip_code" binding:"required,zip5"`
	County       string  `json:"county" binding:"required"`
	PropertyType string  `json:"property_type"`
	Bedrooms     *int    `json:"bedrooms" binding:"omitempty,min=0"`
	Bathrooms    *int    `json:"bathrooms" binding:"omitempty,min=0"`
	YearBuilt    *int    `json:"year_built"`
}

func (r propertyRequest) input() service.PropertyInput {
	return service.PropertyInput{
		Address:      r.Address,
		Unit:         r.Unit,
		City:         r.City,
		State:        r.State,
		ZipCode:      r.ZipCode,
		County:       r.County,
		PropertyType: r.PropertyType,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		YearBuilt:    r.YearBuilt,
	}
}

type tenantRequest struct {
	PropertyID   uuid.UUID `json:"property_id" binding:"required"`
	TenantNames  []string  `json:"tenant_names" binding:"required,min=1"`
	Email        *string   `json:"email" binding:"omitempty,email"`
	Phone        *string   `json:"phone"`
	IsSubsidized bool      `json:"is_subsidized"`
	SubsidyType  *string   `json:"subsidy_type"`
}

func (r tenantRequest) input() service.TenantInput {
	return service.TenantInput{
		PropertyID:   r.PropertyID,
		TenantNames:  r.TenantNames,
		Email:        r.Email,
		Phone:        r.Phone,
		IsSubsidized: r.IsSubsidized,
		SubsidyType:  r.SubsidyType,
	}
}

// ListProperties обрабатывает GET /properties.
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	limit, offset := common.GetPagination(c)

	result, err := h.properties.ListProperties(c.Request.Context(), actor, c.Query("search"), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateProperty обрабатывает POST /properties.
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	var req propertyRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	property, err := h.properties.CreateProperty(c.Request.Context(), actor, req.input())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, property)
}

// GetProperty обрабатывает GET /properties/:id.
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	property, err := h.properties.GetProperty(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// UpdateProperty обрабатывает PUT /properties/:id.
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req propertyRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	property, err := h.properties.UpdateProperty(c.Request.Context(), actor, id, req.input())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// DeleteProperty обрабатывает DELETE /properties/:id.
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.properties.DeleteProperty(c.Request.Context(), actor, id); err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTenants обрабатывает GET /tenants?property_id=.
func (h *PropertyHandler) ListTenants(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	var propertyID *uuid.UUID
	if raw := c.Query("property_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "invalid property_id")
			return
		}
		propertyID = &id
	}

	tenants, err := h.properties.ListTenants(c.Request.Context(), actor, propertyID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

// CreateTenant обрабатывает POST /tenants.
func (h *PropertyHandler) CreateTenant(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	var req tenantRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	tenant, err := h.properties.CreateTenant(c.Request.Context(), actor, req.input())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tenant)
}

// GetTenant обрабатывает GET /tenants/:id.
func (h *PropertyHandler) GetTenant(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	tenant, err := h.properties.GetTenant(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// UpdateTenant обрабатывает PUT /tenants/:id.
func (h *PropertyHandler) UpdateTenant(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req tenantRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	tenant, err := h.properties.UpdateTenant(c.Request.Context(), actor, id, req.input())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// DeleteTenant обрабатывает DELETE /tenants/:id.
func (h *PropertyHandler) DeleteTenant(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.properties.DeleteTenant(c.Request.Context(), actor, id); err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
