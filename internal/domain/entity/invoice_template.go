package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceTemplate stores a layout template used to render invoices
type InvoiceTemplate struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Description *string        `gorm:"size:255" json:"description,omitempty"`
	// ParsedJSON holds the template document as validated JSON text
	ParsedJSON string         `gorm:"type:text;not null" json:"parsed_json"`
	IsDefault  bool           `gorm:"default:false" json:"is_default"`
	Version    int            `gorm:"default:1" json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new template
func (t *InvoiceTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceTemplate model
func (InvoiceTemplate) TableName() string {
	return "invoice_templates"
}
