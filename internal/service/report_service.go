package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pdf"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
)

// maxReportRows ограничивает размер отчёта.
const maxReportRows = 5000

// ReportCaseLister выборка дел для отчёта без пагинации.
type ReportCaseLister interface {
	ListAll(ctx context.Context, params repository.CaseListParams) ([]models.CaseView, error)
}

// ReportFilter фильтр отчёта по делам.
type ReportFilter struct {
	From   *time.Time
	To     *time.Time
	Status string
}

// ReportFile готовый файл отчёта.
type ReportFile struct {
	Data        []byte
	ContentType string
	FileName    string
}

// ReportService строит PDF-отчёт по делам для администратора.
// Без рендерера отдаёт HTML.
type ReportService struct {
	cases    ReportCaseLister
	renderer pdf.Renderer
	now      func() time.Time
}

// NewReportService создаёт сервис отчётов. renderer может быть nil.
func NewReportService(cases ReportCaseLister, renderer pdf.Renderer) *ReportService {
	return &ReportService{
		cases:    cases,
		renderer: renderer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CasesReport выбирает дела по фильтру и рендерит отчёт.
func (s *ReportService) CasesReport(ctx context.Context, actor Actor, f ReportFilter) (*ReportFile, error) {
	if err := actor.require(valueobject.RoleAdmin); err != nil {
		return nil, err
	}

	params := repository.CaseListParams{From: f.From, To: f.To}
	if f.Status != "" {
		status, err := valueobject.ParseCaseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		params.Status = string(status)
	}

	cases, err := s.cases.ListAll(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(cases) > maxReportRows {
		cases = cases[:maxReportRows]
	}

	data := buildReportData(cases, f, params.Status, s.now())
	html, err := pdf.RenderReportHTML(data)
	if err != nil {
		return nil, fmt.Errorf("report service: render html: %w", err)
	}

	stamp := data.GeneratedAt.Format("20060102-1504")
	if s.renderer == nil {
		return &ReportFile{
			Data:        []byte(html),
			ContentType: "text/html; charset=utf-8",
			FileName:    "cases-" + stamp + ".html",
		}, nil
	}

	started := time.Now()
	out, err := s.renderer.Render(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("report service: render pdf: %w", err)
	}
	logger.FromContext(ctx).WithFields(logrus.Fields{
		"rows":        len(data.Rows),
		"bytes":       len(out),
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("cases report rendered")

	return &ReportFile{
		Data:        out,
		ContentType: "application/pdf",
		FileName:    "cases-" + stamp + ".pdf",
	}, nil
}

func buildReportData(cases []models.CaseView, f ReportFilter, status string, now time.Time) pdf.ReportData {
	rows := make([]pdf.ReportRow, 0, len(cases))
	prices := make([]int64, 0, len(cases))
	for i := range cases {
		c := &cases[i]
		row := pdf.ReportRow{
			CreatedAt:        c.CreatedAt,
			CaseType:         c.CaseType,
			Status:           c.Status,
			PaymentStatus:    c.PaymentStatus,
			ContractorStatus: c.ContractorStatus,
			Address:          c.AddressLine(),
			TenantNames:      c.TenantNames,
			Price:            c.Price,
		}
		if c.PropertyCounty != nil {
			row.County = *c.PropertyCounty
		}
		if c.LandlordName != nil {
			row.Landlord = *c.LandlordName
		}
		rows = append(rows, row)
		prices = append(prices, c.Price)
	}

	return pdf.ReportData{
		Title:       "Eviction cases report",
		From:        f.From,
		To:          f.To,
		Status:      status,
		GeneratedAt: now,
		Rows:        rows,
		Totals:      valueobject.CalculateTotals(prices),
	}
}
