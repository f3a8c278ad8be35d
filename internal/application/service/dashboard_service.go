package service

import (
	"context"
	"time"

	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/google/uuid"
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	clientRepo    repository.ClientRepository
	invoiceRepo   repository.InvoiceRepository
	creditRepo    repository.CreditRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	analyticsRepo repository.AnalyticsRepository,
	clientRepo repository.ClientRepository,
	invoiceRepo repository.InvoiceRepository,
	creditRepo repository.CreditRepository,
) *DashboardService {
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		clientRepo:    clientRepo,
		invoiceRepo:   invoiceRepo,
		creditRepo:    creditRepo,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalClients       int64                  `json:"total_clients"`
	TotalInvoices      int64                  `json:"total_invoices"`
	DraftInvoices      int64                  `json:"draft_invoices"`
	OverdueInvoices    int64                  `json:"overdue_invoices"`
	TotalRevenue       float64                `json:"total_revenue"`
	OutstandingBalance float64                `json:"outstanding_balance"`
	OpenCredits        float64                `json:"open_credits"`
	TopClients         []TopClientPoint       `json:"top_clients"`
	StatusBreakdown    []StatusBreakdownPoint `json:"status_breakdown"`
	MonthlyRevenueData []MonthlyRevenuePoint  `json:"monthly_revenue_data"`
}

// TopClientPoint represents a client's billed revenue
type TopClientPoint struct {
	ClientID     string  `json:"client_id"`
	Name         string  `json:"name"`
	TotalBilled  float64 `json:"total_billed"`
	InvoiceCount int     `json:"invoice_count"`
}

// StatusBreakdownPoint represents invoice counts per status
type StatusBreakdownPoint struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
}

// MonthlyRevenuePoint represents billed revenue for a month
type MonthlyRevenuePoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// GetDashboardStats returns dashboard statistics across the whole account
func (s *DashboardService) GetDashboardStats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{}

	paginationParams := pagination.DefaultPagination()
	paginationParams.PerPage = 1 // We only need the count

	// Clients - dashboard shows totals across the account (skipUserFilter = true)
	_, clientCount, err := s.clientRepo.List(ctx, userID, paginationParams, "", true)
	if err != nil {
		return nil, err
	}
	stats.TotalClients = clientCount

	_, invoiceCount, err := s.invoiceRepo.List(ctx, userID, paginationParams, nil, true)
	if err != nil {
		return nil, err
	}
	stats.TotalInvoices = invoiceCount

	draftStatus := enum.InvoiceStatusDraft
	_, draftCount, err := s.invoiceRepo.List(ctx, userID, paginationParams, &repository.InvoiceFilter{Status: &draftStatus}, true)
	if err != nil {
		return nil, err
	}
	stats.DraftInvoices = draftCount

	stats.OverdueInvoices, err = s.analyticsRepo.GetOverdueCount(ctx)
	if err != nil {
		return nil, err
	}

	stats.TotalRevenue, err = s.analyticsRepo.GetTotalRevenue(ctx)
	if err != nil {
		return nil, err
	}

	stats.OutstandingBalance, err = s.analyticsRepo.GetOutstandingBalance(ctx)
	if err != nil {
		return nil, err
	}

	// Open credit balance across all clients
	creditParams := &pagination.PaginationParams{Page: 1, PerPage: 1000}
	credits, _, err := s.creditRepo.List(ctx, userID, creditParams, nil, true)
	if err != nil {
		return nil, err
	}
	var openCredits int64
	now := time.Now()
	for i := range credits {
		if credits[i].IsUsable(now) {
			openCredits += credits[i].Remaining
		}
	}
	stats.OpenCredits = float64(openCredits) / 100

	topClients, err := s.analyticsRepo.GetTopClients(ctx, 5)
	if err != nil {
		return nil, err
	}
	stats.TopClients = make([]TopClientPoint, 0, len(topClients))
	for _, c := range topClients {
		stats.TopClients = append(stats.TopClients, TopClientPoint{
			ClientID:     c.ClientID.String(),
			Name:         c.ClientName,
			TotalBilled:  c.TotalBilled,
			InvoiceCount: c.InvoiceCount,
		})
	}

	breakdown, err := s.analyticsRepo.GetStatusBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	stats.StatusBreakdown = make([]StatusBreakdownPoint, 0, len(breakdown))
	for _, b := range breakdown {
		stats.StatusBreakdown = append(stats.StatusBreakdown, StatusBreakdownPoint{
			Status: b.Status,
			Count:  b.Count,
			Total:  b.Total,
		})
	}

	monthly, err := s.analyticsRepo.GetMonthlyRevenue(ctx, 12)
	if err != nil {
		return nil, err
	}
	stats.MonthlyRevenueData = make([]MonthlyRevenuePoint, 0, len(monthly))
	for _, m := range monthly {
		stats.MonthlyRevenueData = append(stats.MonthlyRevenueData, MonthlyRevenuePoint{
			Month:   m.Month.Format("Jan 2006"),
			Revenue: m.Revenue,
		})
	}

	return stats, nil
}
