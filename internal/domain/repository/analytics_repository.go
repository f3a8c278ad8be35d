package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TopClientResult represents a client's billed revenue
type TopClientResult struct {
	ClientID     uuid.UUID
	ClientName   string
	TotalBilled  float64
	InvoiceCount int
}

// StatusBreakdownResult represents invoice counts and totals per status
type StatusBreakdownResult struct {
	Status string
	Count  int
	Total  float64
}

// MonthlyRevenueResult represents billed revenue for a single month
type MonthlyRevenueResult struct {
	Month   time.Time
	Revenue float64
}

// AnalyticsRepository defines interface for analytics/aggregation queries
type AnalyticsRepository interface {
	// GetTopClients returns top clients by billed revenue
	GetTopClients(ctx context.Context, limit int) ([]TopClientResult, error)

	// GetStatusBreakdown returns invoice counts and totals grouped by status
	GetStatusBreakdown(ctx context.Context) ([]StatusBreakdownResult, error)

	// GetMonthlyRevenue returns billed revenue per month for the last N months
	GetMonthlyRevenue(ctx context.Context, months int) ([]MonthlyRevenueResult, error)

	// GetTotalRevenue returns total collected revenue from paid invoices
	GetTotalRevenue(ctx context.Context) (float64, error)

	// GetOutstandingBalance returns the sum still owed on open invoices
	GetOutstandingBalance(ctx context.Context) (float64, error)

	// GetOverdueCount returns the number of overdue invoices
	GetOverdueCount(ctx context.Context) (int64, error)
}
