package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/http/handlers/common"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/service"
)

// multipartOverhead запас на заголовки multipart сверх лимита файла.
const multipartOverhead = 1 << 20

// JobHandler пул заданий и работа исполнителя с документами.
type JobHandler struct {
	jobs *service.JobService
}

// NewJobHandler создаёт новый хэндлер.
func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// ListAvailable обрабатывает GET /jobs/available.
func (h *JobHandler) ListAvailable(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	limit, offset := common.GetPagination(c)

	result, err := h.jobs.ListAvailable(c.Request.Context(), actor, service.AvailableJobsFilter{
		County: c.Query("county"),
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListMine обрабатывает GET /jobs/mine?status=.
func (h *JobHandler) ListMine(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	jobs, err := h.jobs.ListMine(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// GetJob обрабатывает GET /jobs/:id.
func (h *JobHandler) GetJob(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Claim обрабатывает POST /jobs/:id/claim.
func (h *JobHandler) Claim(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	job, err := h.jobs.Claim(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Unclaim обрабатывает POST /jobs/:id/unclaim.
func (h *JobHandler) Unclaim(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.jobs.Unclaim(c.Request.Context(), actor, id); err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondMessage(c, "job released")
}

// UpdateStatus обрабатывает PATCH /jobs/:id/status.
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,contractor_status"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	job, err := h.jobs.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// UploadDocument обрабатывает POST /jobs/:id/documents (multipart: document_type, file).
func (h *JobHandler) UploadDocument(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	maxBytes := h.jobs.MaxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.RespondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d MB limit", maxBytes/(1024*1024)))
			return
		}
		common.RespondBadRequest(c, "file field is required")
		return
	}
	docType := c.PostForm("document_type")
	if docType == "" {
		common.RespondBadRequest(c, "document_type is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondAppError(c, apperror.Internal(err))
		return
	}
	defer src.Close()

	// Лишний байт сверх лимита нужен, чтобы сервис отличил ровно 10 MB от большего файла.
	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		common.RespondBadRequest(c, "cannot read uploaded file")
		return
	}

	doc, err := h.jobs.UploadDocument(c.Request.Context(), actor, id, service.UploadInput{
		DocumentType: docType,
		FileName:     file.Filename,
		ContentType:  file.Header.Get("Content-Type"),
		Data:         data,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// ListDocuments обрабатывает GET /jobs/:id/documents.
func (h *JobHandler) ListDocuments(c *gin.Context) {
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

// DeleteDocument обрабатывает DELETE /jobs/:id/documents/:type.
func (h *JobHandler) DeleteDocument(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.jobs.DeleteDocument(c.Request.Context(), actor, id, c.Param("type")); err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadFile обрабатывает GET /files/*key для локального хранилища.
func (h *JobHandler) DownloadFile(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")

	file, err := h.jobs.OpenDocument(c.Request.Context(), actor, key)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	defer file.Close()

	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", path.Base(key)))
	c.DataFromReader(http.StatusOK, -1, contentType, file, nil)
}
