package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/http/handlers/common"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/service"
)

// AdminHandler пользователи, аналитика и очередь уведомлений для администратора.
type AdminHandler struct {
	admin         *service.AdminService
	notifications *service.NotificationService
}

// NewAdminHandler создаёт новый хэндлер.
func NewAdminHandler(admin *service.AdminService, notifications *service.NotificationService) *AdminHandler {
	return &AdminHandler{admin: admin, notifications: notifications}
}

// ListUsers обрабатывает GET /admin/users?search=&role=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	limit, offset := common.GetPagination(c)

	result, err := h.admin.ListUsers(c.Request.Context(), actor, c.Query("search"), c.Query("role"), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateRole обрабатывает PATCH /admin/users/:id/role.
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role" binding:"required,oneof=landlord contractor admin"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	user, err := h.admin.UpdateRole(c.Request.Context(), actor, id, req.Role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetActive обрабатывает PATCH /admin/users/:id/active.
func (h *AdminHandler) SetActive(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	user, err := h.admin.SetActive(c.Request.Context(), actor, id, *req.Active)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Analytics обрабатывает GET /admin/analytics?from=&to=.
func (h *AdminHandler) Analytics(c *gin.Context) {
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

	summary, err := h.admin.Analytics(c.Request.Context(), actor, from, to)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListNotifications обрабатывает GET /admin/notifications?status=failed.
func (h *AdminHandler) ListNotifications(c *gin.Context) {
	status := c.DefaultQuery("status", models.DeliveryFailed)
	limit, offset := common.GetPagination(c)

	list, err := h.notifications.ListByDeliveryStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// RetryNotification обрабатывает POST /admin/notifications/:id/retry.
func (h *AdminHandler) RetryNotification(c *gin.Context) {
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	n, err := h.notifications.Retry(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}
