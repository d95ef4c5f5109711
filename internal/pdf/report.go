package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
)

// ReportRow строка отчёта по делу.
type ReportRow struct {
	CreatedAt        time.Time
	CaseType         valueobject.CaseType
	Status           valueobject.CaseStatus
	PaymentStatus    valueobject.PaymentStatus
	ContractorStatus valueobject.ContractorStatus
	Address          string
	County           string
	TenantNames      []string
	Landlord         string
	Price            int64
}

// ReportData данные шаблона отчёта.
type ReportData struct {
	Title       string
	From        *time.Time
	To          *time.Time
	Status      string
	GeneratedAt time.Time
	Rows        []ReportRow
	Totals      valueobject.Totals
}

var reportFuncs = template.FuncMap{
	"join":  strings.Join,
	"money": valueobject.FormatCents,
	"date": func(t *time.Time) string {
		if t == nil {
			return "any"
		}
		return t.Format("2006-01-02")
	},
	"day": func(t time.Time) string { return t.Format("2006-01-02") },
}

var reportTemplate = template.Must(template.New("cases-report").Funcs(reportFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 11px; color: #222; }
  h1 { font-size: 18px; margin-bottom: 4px; }
  .meta { color: #666; margin-bottom: 12px; }
  table { width: 100%; border-collapse: collapse; }
  th, td { border-bottom: 1px solid #ddd; padding: 4px 6px; text-align: left; }
  th { background: #f3f3f3; }
  td.num { text-align: right; }
  .totals { margin-top: 16px; width: 40%; margin-left: auto; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">
  Period: {{date .From}} to {{date .To}}{{if .Status}} &middot; Status: {{.Status}}{{end}}
  &middot; Generated {{day .GeneratedAt}} &middot; {{len .Rows}} cases
</div>
<table>
  <thead>
    <tr><th>Created</th><th>Type</th><th>Status</th><th>Payment</th><th>Job</th><th>Property</th><th>County</th><th>Tenants</th><th>Landlord</th><th>Price</th></tr>
  </thead>
  <tbody>
  {{range .Rows}}
    <tr>
      <td>{{day .CreatedAt}}</td>
      <td>{{.CaseType}}</td>
      <td>{{.Status}}</td>
      <td>{{.PaymentStatus}}</td>
      <td>{{.ContractorStatus}}</td>
      <td>{{.Address}}</td>
      <td>{{.County}}</td>
      <td>{{join .TenantNames ", "}}</td>
      <td>{{.Landlord}}</td>
      <td class="num">{{money .Price}}</td>
    </tr>
  {{else}}
    <tr><td colspan="10">No cases match the filter.</td></tr>
  {{end}}
  </tbody>
</table>
<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{money .Totals.Subtotal}}</td></tr>
  <tr><td>Processing fee (3%)</td><td class="num">{{money .Totals.ProcessingFee}}</td></tr>
  <tr><td>Tax (8.25%)</td><td class="num">{{money .Totals.Tax}}</td></tr>
  <tr><th>Total</th><th class="num">{{money .Totals.Total}}</th></tr>
</table>
</body>
</html>
`))

// RenderReportHTML заполняет HTML-шаблон отчёта по делам.
func RenderReportHTML(data ReportData) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
