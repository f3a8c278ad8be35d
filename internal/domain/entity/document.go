package entity

import (
	"time"

	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document represents a file attached to a client or invoice
type Document struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	ClientID    *uuid.UUID        `gorm:"type:uuid;index" json:"client_id,omitempty"`
	InvoiceID   *uuid.UUID        `gorm:"type:uuid;index" json:"invoice_id,omitempty"`
	Type        enum.DocumentType `gorm:"default:3" json:"type"`
	FileName    string            `gorm:"size:255;not null" json:"file_name"`
	StoragePath string            `gorm:"size:512;not null" json:"-"`
	ContentType string            `gorm:"size:100" json:"content_type"`
	SizeBytes   int64             `gorm:"default:0" json:"size_bytes"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	User    User     `gorm:"foreignKey:UserID" json:"-"`
	Client  *Client  `gorm:"foreignKey:ClientID" json:"-"`
	Invoice *Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new document
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Document model
func (Document) TableName() string {
	return "documents"
}
