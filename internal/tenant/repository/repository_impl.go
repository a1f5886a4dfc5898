package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/smallbiznis/taxdoc/internal/tenant/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	conn *gorm.DB
}

func NewRepository(conn *gorm.DB) tenantdomain.Repository {
	return &repository{conn: conn}
}

func (r *repository) FindByTenantID(ctx context.Context, tenantID snowflake.ID) (*tenantdomain.Settings, error) {
	var settings tenantdomain.Settings
	err := r.conn.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Take(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repository) Save(ctx context.Context, settings *tenantdomain.Settings) error {
	return r.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"legal_name", "gstin", "seller_state_code", "address",
				"invoice_prefix", "label_prefix", "notify_email", "updated_at",
			}),
		}).
		Create(settings).Error
}
