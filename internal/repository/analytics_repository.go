package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
)

// AnalyticsRepository считает агрегаты для панели администратора.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository создаёт экземпляр репозитория.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

type groupCount struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

// Summary собирает сводку. from/to ограничивают только ряд дел по дням.
func (r *AnalyticsRepository) Summary(ctx context.Context, from, to time.Time) (*models.Analytics, error) {
	a := &models.Analytics{
		ByStatus:           map[string]int{},
		ByPaymentStatus:    map[string]int{},
		ByContractorStatus: map[string]int{},
		CasesPerDay:        []models.DailyCount{},
	}

	groups := []struct {
		column string
		target map[string]int
	}{
		{"status", a.ByStatus},
		{"payment_status", a.ByPaymentStatus},
		{"contractor_status", a.ByContractorStatus},
	}
	for _, g := range groups {
		var rows []groupCount
		// column берётся из фиксированного списка выше
		query := fmt.Sprintf(`SELECT %s AS key, COUNT(*) AS count FROM legal_cases GROUP BY %s`, g.column, g.column)
		if err := r.db.SelectContext(ctx, &rows, query); err != nil {
			return nil, fmt.Errorf("analytics repository: group by %s %w", g.column, err)
		}
		for _, row := range rows {
			g.target[row.Key] = row.Count
		}
	}

	for _, n := range a.ByStatus {
		a.TotalCases += n
	}

	if err := r.db.QueryRowxContext(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*) FROM checkout_transactions WHERE status = 'completed'
	`).Scan(&a.Revenue, &a.Transactions); err != nil {
		return nil, fmt.Errorf("analytics repository: revenue %w", err)
	}

	if err := r.db.SelectContext(ctx, &a.CasesPerDay, `
		SELECT date_trunc('day', created_at) AS day, COUNT(*) AS count
		FROM legal_cases
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 1
	`, from, to); err != nil {
		return nil, fmt.Errorf("analytics repository: cases per day %w", err)
	}

	a.GeneratedAt = time.Now().UTC()
	return a, nil
}
