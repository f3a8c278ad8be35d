package entity

import (
	"encoding/json"
	"time"

	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Credit represents a credit note issued to a client
type Credit struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	ClientID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"client_id"`
	Reference string            `gorm:"size:100;unique;not null" json:"reference"`
	Reason    string            `gorm:"size:255" json:"reason"`
	Status    enum.CreditStatus `gorm:"default:0" json:"status"`
	Amount    int64             `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Remaining int64             `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	ExpiresAt *time.Time        `gorm:"type:date" json:"expires_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	User         User                `gorm:"foreignKey:UserID" json:"-"`
	Client       Client              `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Applications []CreditApplication `gorm:"foreignKey:CreditID" json:"applications,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (c Credit) MarshalJSON() ([]byte, error) {
	type Alias Credit
	return json.Marshal(&struct {
		Alias
		Amount    float64 `json:"amount"`
		Remaining float64 `json:"remaining"`
	}{
		Alias:     Alias(c),
		Amount:    float64(c.Amount) / 100,
		Remaining: float64(c.Remaining) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new credit
func (c *Credit) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Credit model
func (Credit) TableName() string {
	return "credits"
}

// IsUsable reports whether the credit can still be applied to invoices
func (c *Credit) IsUsable(now time.Time) bool {
	if c.Remaining <= 0 {
		return false
	}
	if c.Status == enum.CreditStatusExpired {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	return true
}

// CreditApplication records a portion of a credit applied to an invoice
type CreditApplication struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreditID  uuid.UUID `gorm:"type:uuid;not null;index" json:"credit_id"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Amount    int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Credit  Credit  `gorm:"foreignKey:CreditID" json:"-"`
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (ca CreditApplication) MarshalJSON() ([]byte, error) {
	type Alias CreditApplication
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(ca),
		Amount: float64(ca.Amount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new credit application
func (ca *CreditApplication) BeforeCreate(tx *gorm.DB) error {
	if ca.ID == uuid.Nil {
		ca.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CreditApplication model
func (CreditApplication) TableName() string {
	return "credit_applications"
}
