package entity

import (
	"encoding/json"
	"time"

	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice represents a billable invoice issued to a client
type Invoice struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	ClientID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"client_id"`
	BillingCycleID *uuid.UUID         `gorm:"type:uuid;index" json:"billing_cycle_id,omitempty"`
	TemplateID     *uuid.UUID         `gorm:"type:uuid;index" json:"template_id,omitempty"`
	Number         string             `gorm:"size:100;unique;not null" json:"number"`
	Status         enum.InvoiceStatus `gorm:"default:0" json:"status"`
	IssueDate      time.Time          `gorm:"type:date;not null" json:"issue_date"`
	DueDate        time.Time          `gorm:"type:date;not null" json:"due_date"`
	PeriodStart    *time.Time         `gorm:"type:date" json:"period_start,omitempty"`
	PeriodEnd      *time.Time         `gorm:"type:date" json:"period_end,omitempty"`
	SubTotal       int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	TaxAmount      int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	CreditApplied  int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Total          int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	AmountDue      int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Currency       string             `gorm:"size:3;default:'USD'" json:"currency"`
	Notes          *string            `gorm:"type:text" json:"notes,omitempty"`
	PaidAt         *time.Time         `json:"paid_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	User      User              `gorm:"foreignKey:UserID" json:"-"`
	Client    Client            `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Template  *InvoiceTemplate  `gorm:"foreignKey:TemplateID" json:"-"`
	LineItems []InvoiceLineItem `gorm:"foreignKey:InvoiceID" json:"line_items,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (i Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	return json.Marshal(&struct {
		Alias
		SubTotal      float64 `json:"sub_total"`
		TaxAmount     float64 `json:"tax_amount"`
		CreditApplied float64 `json:"credit_applied"`
		Total         float64 `json:"total"`
		AmountDue     float64 `json:"amount_due"`
	}{
		Alias:         Alias(i),
		SubTotal:      float64(i.SubTotal) / 100,
		TaxAmount:     float64(i.TaxAmount) / 100,
		CreditApplied: float64(i.CreditApplied) / 100,
		Total:         float64(i.Total) / 100,
		AmountDue:     float64(i.AmountDue) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// GetTotalDecimal returns the total as a decimal
func (i *Invoice) GetTotalDecimal() float64 {
	return float64(i.Total) / 100
}

// GetAmountDueDecimal returns the outstanding balance as a decimal
func (i *Invoice) GetAmountDueDecimal() float64 {
	return float64(i.AmountDue) / 100
}

// IsOverdue reports whether an open invoice is past its due date
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status.IsOpen() && now.After(i.DueDate)
}

// InvoiceLineItem represents a line item on an invoice
type InvoiceLineItem struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Description string         `gorm:"size:255;not null" json:"description"`
	Category    *string        `gorm:"size:100" json:"category,omitempty"`
	Quantity    float64        `gorm:"type:decimal(15,4);not null;default:1" json:"quantity"`
	UnitPrice   int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	TotalPrice  int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (li InvoiceLineItem) MarshalJSON() ([]byte, error) {
	type Alias InvoiceLineItem
	return json.Marshal(&struct {
		Alias
		UnitPrice  float64 `json:"unit_price"`
		TotalPrice float64 `json:"total_price"`
	}{
		Alias:      Alias(li),
		UnitPrice:  float64(li.UnitPrice) / 100,
		TotalPrice: float64(li.TotalPrice) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new line item
func (li *InvoiceLineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceLineItem model
func (InvoiceLineItem) TableName() string {
	return "invoice_line_items"
}
