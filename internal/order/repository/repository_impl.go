package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/smallbiznis/taxdoc/internal/order/domain"
	"gorm.io/gorm"
)

type repository struct {
	conn *gorm.DB
}

func NewRepository(conn *gorm.DB) orderdomain.Repository {
	return &repository{conn: conn}
}

func (r *repository) FindByID(ctx context.Context, tenantID, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := r.conn.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Take(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderdomain.ErrRecordNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) Create(ctx context.Context, order *orderdomain.Order) error {
	return r.conn.WithContext(ctx).Create(order).Error
}
