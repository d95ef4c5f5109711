package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/http/handlers/common"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/service"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(s *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: s}
}

// CasesReport GET /admin/reports/cases.pdf?from=&to=&status=
func (h *ReportHandler) CasesReport(c *gin.Context) {
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

	file, err := h.svc.CasesReport(c.Request.Context(), actor, service.ReportFilter{
		From:   from,
		To:     to,
		Status: c.Query("status"),
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
