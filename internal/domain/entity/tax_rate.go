package entity

import (
	"time"

	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaxRate represents a named tax percentage applied to invoices
type TaxRate struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string         `gorm:"size:255;not null" json:"name"`
	Percentage float64        `gorm:"type:decimal(5,2);not null" json:"percentage"`
	Type       enum.TaxType   `gorm:"default:0" json:"type"`
	Region     *string        `gorm:"size:100" json:"region,omitempty"`
	IsDefault  bool           `gorm:"default:false" json:"is_default"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new tax rate
func (t *TaxRate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TaxRate model
func (TaxRate) TableName() string {
	return "tax_rates"
}

// Apply computes the tax in cents on a subtotal in cents, rounded half up
func (t *TaxRate) Apply(subTotal int64) int64 {
	if t == nil || t.Percentage == 0 {
		return 0
	}
	tax := float64(subTotal) * t.Percentage / 100
	return int64(tax + 0.5)
}
