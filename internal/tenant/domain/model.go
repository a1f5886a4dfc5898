// Package domain contains merchant tenant settings. Every document and
// sequence in the system is scoped by tenant; there is no cross-tenant
// visibility anywhere.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxdoc/internal/jurisdiction"
)

// Settings is the seller-side configuration a tenant must provide before any
// document can be generated for it.
type Settings struct {
	TenantID snowflake.ID `gorm:"column:tenant_id;primaryKey"`

	LegalName       string `gorm:"type:text;not null"`
	GSTIN           string `gorm:"type:text;not null"`
	SellerStateCode string `gorm:"column:seller_state_code;type:char(2);not null"`
	Address         string `gorm:"type:text"`

	InvoicePrefix string `gorm:"type:text;not null;default:'INV'"`
	LabelPrefix   string `gorm:"type:text;not null;default:'SHP'"`

	NotifyEmail string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Settings) TableName() string { return "tenant_settings" }

// SellerJurisdiction resolves the configured seller state.
func (s Settings) SellerJurisdiction() jurisdiction.Jurisdiction {
	return jurisdiction.Resolve(s.SellerStateCode)
}

// PrefixFor returns the document prefix for a kind string.
func (s Settings) PrefixFor(kind string) string {
	switch kind {
	case "shipping_label":
		return s.LabelPrefix
	default:
		return s.InvoicePrefix
	}
}

// ValidateForDocuments reports whether the settings are complete enough to
// assemble documents. Checked before any sequence number is consumed.
func (s Settings) ValidateForDocuments(kind string) error {
	if strings.TrimSpace(s.GSTIN) == "" {
		return ErrTenantNotConfigured
	}
	if !jurisdiction.IsKnown(s.SellerStateCode) {
		return ErrTenantNotConfigured
	}
	if strings.TrimSpace(s.PrefixFor(kind)) == "" {
		return ErrTenantNotConfigured
	}
	return nil
}
