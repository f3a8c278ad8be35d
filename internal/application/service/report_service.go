package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ReportService exports billing data as Excel workbooks
type ReportService struct {
	invoiceRepo repository.InvoiceRepository
	creditRepo  repository.CreditRepository
}

// NewReportService creates a new report service
func NewReportService(invoiceRepo repository.InvoiceRepository, creditRepo repository.CreditRepository) *ReportService {
	return &ReportService{
		invoiceRepo: invoiceRepo,
		creditRepo:  creditRepo,
	}
}

// reportPageSize bounds how many rows a single export contains
const reportPageSize = 10000

// InvoiceReportInput selects which invoices to export
type InvoiceReportInput struct {
	UserID       uuid.UUID
	IsSuperAdmin bool
	From         *time.Time
	To           *time.Time
	ClientID     *uuid.UUID
}

// ExportInvoices writes an invoice register to an xlsx workbook
func (s *ReportService) ExportInvoices(ctx context.Context, input *InvoiceReportInput) ([]byte, error) {
	filter := &repository.InvoiceFilter{
		ClientID: input.ClientID,
		From:     input.From,
		To:       input.To,
	}
	params := &pagination.PaginationParams{Page: 1, PerPage: reportPageSize}
	invoices, _, err := s.invoiceRepo.List(ctx, input.UserID, params, filter, input.IsSuperAdmin)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Invoices"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Number", "Client", "Status", "Issue Date", "Due Date", "Subtotal", "Tax", "Credit Applied", "Total", "Amount Due", "Currency"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		end, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(sheet, "A1", end, bold)
	}

	for row, inv := range invoices {
		values := []any{
			inv.Number,
			inv.Client.Name,
			inv.Status.String(),
			inv.IssueDate.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			float64(inv.SubTotal) / 100,
			float64(inv.TaxAmount) / 100,
			float64(inv.CreditApplied) / 100,
			float64(inv.Total) / 100,
			float64(inv.AmountDue) / 100,
			inv.Currency,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportCreditReconciliation writes each credit with its application history to an xlsx workbook
func (s *ReportService) ExportCreditReconciliation(ctx context.Context, userID uuid.UUID, isSuperAdmin bool) ([]byte, error) {
	params := &pagination.PaginationParams{Page: 1, PerPage: reportPageSize}
	credits, _, err := s.creditRepo.List(ctx, userID, params, nil, isSuperAdmin)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Credits"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Reference", "Client", "Status", "Amount", "Applied", "Remaining", "Applications", "Expires"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		end, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(sheet, "A1", end, bold)
	}

	for row, credit := range credits {
		applications, err := s.creditRepo.ListApplicationsByCredit(ctx, credit.ID)
		if err != nil {
			return nil, err
		}
		var applied int64
		for _, a := range applications {
			applied += a.Amount
		}

		expires := ""
		if credit.ExpiresAt != nil {
			expires = credit.ExpiresAt.Format("2006-01-02")
		}

		values := []any{
			credit.Reference,
			credit.Client.Name,
			credit.Status.String(),
			float64(credit.Amount) / 100,
			float64(applied) / 100,
			float64(credit.Remaining) / 100,
			len(applications),
			expires,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
