package entity

import (
	"encoding/json"
	"time"

	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BillingCycle represents a recurring billing schedule for a client
type BillingCycle struct {
	ID            uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID             `gorm:"type:uuid;not null;index" json:"user_id"`
	ClientID      uuid.UUID             `gorm:"type:uuid;not null;index" json:"client_id"`
	TaxRateID     *uuid.UUID            `gorm:"type:uuid;index" json:"tax_rate_id,omitempty"`
	TemplateID    *uuid.UUID            `gorm:"type:uuid;index" json:"template_id,omitempty"`
	Name          string                `gorm:"size:255;not null" json:"name"`
	Frequency     enum.BillingFrequency `gorm:"default:0" json:"frequency"`
	Status        enum.CycleStatus      `gorm:"default:0" json:"status"`
	Amount        int64                 `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Description   string                `gorm:"size:255" json:"description"`
	StartDate     time.Time             `gorm:"type:date;not null" json:"start_date"`
	NextBillingAt time.Time             `gorm:"type:date;not null;index" json:"next_billing_at"`
	DueDays       int                   `gorm:"default:30" json:"due_days"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	DeletedAt     gorm.DeletedAt        `gorm:"index" json:"-"`

	// Relationships
	User     User             `gorm:"foreignKey:UserID" json:"-"`
	Client   Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	TaxRate  *TaxRate         `gorm:"foreignKey:TaxRateID" json:"tax_rate,omitempty"`
	Template *InvoiceTemplate `gorm:"foreignKey:TemplateID" json:"-"`
	Invoices []Invoice        `gorm:"foreignKey:BillingCycleID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (b BillingCycle) MarshalJSON() ([]byte, error) {
	type Alias BillingCycle
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(b),
		Amount: float64(b.Amount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new billing cycle
func (b *BillingCycle) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillingCycle model
func (BillingCycle) TableName() string {
	return "billing_cycles"
}

// IsDue reports whether the cycle should generate an invoice at the given time
func (b *BillingCycle) IsDue(now time.Time) bool {
	return b.Status == enum.CycleStatusActive && !b.NextBillingAt.After(now)
}
