package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client represents a billable client account
type Client struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	CompanyName  *string        `gorm:"size:255" json:"company_name,omitempty"`
	Email        *string        `gorm:"size:255" json:"email,omitempty"`
	Phone        *string        `gorm:"size:50" json:"phone,omitempty"`
	TaxNumber    *string        `gorm:"size:50" json:"tax_number,omitempty"`
	BillingEmail *string        `gorm:"size:255" json:"billing_email,omitempty"`
	Address      *string        `gorm:"type:text" json:"address,omitempty"`
	Notes        *string        `gorm:"type:text" json:"notes,omitempty"`
	Currency     string         `gorm:"size:3;default:'USD'" json:"currency"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	Invoices      []Invoice      `gorm:"foreignKey:ClientID" json:"-"`
	BillingCycles []BillingCycle `gorm:"foreignKey:ClientID" json:"-"`
	Credits       []Credit       `gorm:"foreignKey:ClientID" json:"-"`
	Documents     []Document     `gorm:"foreignKey:ClientID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new client
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "clients"
}
