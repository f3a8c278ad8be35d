package repository

import (
	"context"
	"time"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
	domainRepo "github.com/billflow/billflow-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetTopClients(ctx context.Context, limit int) ([]domainRepo.TopClientResult, error) {
	var results []domainRepo.TopClientResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id as client_id,
			c.name as client_name,
			COALESCE(SUM(i.total), 0) / 100.0 as total_billed,
			COUNT(i.id) as invoice_count
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.status != ? AND i.deleted_at IS NULL
		GROUP BY c.id, c.name
		ORDER BY total_billed DESC
		LIMIT ?
	`, enum.InvoiceStatusVoid, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetStatusBreakdown(ctx context.Context) ([]domainRepo.StatusBreakdownResult, error) {
	type row struct {
		Status enum.InvoiceStatus
		Count  int
		Total  float64
	}
	var rows []row

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			status,
			COUNT(id) as count,
			COALESCE(SUM(total), 0) / 100.0 as total
		FROM invoices
		WHERE deleted_at IS NULL
		GROUP BY status
		ORDER BY status ASC
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]domainRepo.StatusBreakdownResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, domainRepo.StatusBreakdownResult{
			Status: r.Status.String(),
			Count:  r.Count,
			Total:  r.Total,
		})
	}
	return results, nil
}

func (r *analyticsRepository) GetMonthlyRevenue(ctx context.Context, months int) ([]domainRepo.MonthlyRevenueResult, error) {
	if months <= 0 {
		months = 12
	}

	// Bucket in Go rather than SQL so the query works on both postgres and sqlite
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	var invoices []entity.Invoice
	err := r.db.WithContext(ctx).
		Select("issue_date", "total").
		Where("status != ?", enum.InvoiceStatusVoid).
		Where("issue_date >= ?", start).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	results := make([]domainRepo.MonthlyRevenueResult, months)
	for i := range results {
		results[i].Month = start.AddDate(0, i, 0)
	}
	for _, inv := range invoices {
		idx := (inv.IssueDate.Year()-start.Year())*12 + int(inv.IssueDate.Month()) - int(start.Month())
		if idx >= 0 && idx < months {
			results[idx].Revenue += float64(inv.Total) / 100
		}
	}
	return results, nil
}

func (r *analyticsRepository) GetTotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(total), 0) / 100.0
		FROM invoices
		WHERE status = ? AND deleted_at IS NULL
	`, enum.InvoiceStatusPaid).Scan(&total).Error
	return total, err
}

func (r *analyticsRepository) GetOutstandingBalance(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(amount_due), 0) / 100.0
		FROM invoices
		WHERE status IN (?, ?) AND deleted_at IS NULL
	`, enum.InvoiceStatusSent, enum.InvoiceStatusOverdue).Scan(&total).Error
	return total, err
}

func (r *analyticsRepository) GetOverdueCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("status = ?", enum.InvoiceStatusOverdue).
		Count(&count).Error
	return count, err
}
