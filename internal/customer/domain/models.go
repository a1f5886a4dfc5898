// Package domain contains imported storefront customers. Customers arrive in
// bulk through CSV imports and are keyed by email or phone within a tenant.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Customer struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"column:tenant_id;not null;index" json:"tenant_id"`

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"type:text;index" json:"email,omitempty"`
	Phone string `gorm:"type:text;index" json:"phone,omitempty"`

	// State is the customer's default billing state, used to prefill orders.
	State   string `gorm:"type:text" json:"state,omitempty"`
	Address string `gorm:"type:text" json:"address,omitempty"`
	GSTIN   string `gorm:"type:text" json:"gstin,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
