// Package seed bootstraps a usable local install: one configured tenant so
// documents can be generated immediately after startup.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/smallbiznis/taxdoc/internal/tenant/domain"
	"gorm.io/gorm"
)

const (
	defaultTenantID  = snowflake.ID(1)
	defaultLegalName = "Demo Traders Pvt Ltd"
	defaultGSTIN     = "27AAPFU0939F1ZV"
	defaultState     = "27"
)

// EnsureDefaultTenant seeds tenant 1 with complete seller settings. Existing
// settings are never overwritten.
func EnsureDefaultTenant(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing tenantdomain.Settings
		err := tx.Where("tenant_id = ?", defaultTenantID).Take(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&tenantdomain.Settings{
			TenantID:        defaultTenantID,
			LegalName:       defaultLegalName,
			GSTIN:           defaultGSTIN,
			SellerStateCode: defaultState,
			InvoicePrefix:   "INV",
			LabelPrefix:     "SHP",
		}).Error
	})
}
