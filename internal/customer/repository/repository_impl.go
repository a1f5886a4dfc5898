package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	domain "github.com/smallbiznis/taxdoc/internal/customer/domain"
	"gorm.io/gorm"
)

type repository struct {
	conn *gorm.DB
	node *snowflake.Node
}

func NewRepository(conn *gorm.DB, node *snowflake.Node) domain.Repository {
	return &repository{conn: conn, node: node}
}

func (r *repository) Insert(ctx context.Context, customer *domain.Customer) error {
	if customer.ID == 0 {
		customer.ID = r.node.Generate()
	}
	return r.conn.WithContext(ctx).Create(customer).Error
}

// FindByKey looks a customer up by email first, then phone. Missing
// customers return nil, not an error.
func (r *repository) FindByKey(ctx context.Context, tenantID snowflake.ID, email, phone string) (*domain.Customer, error) {
	query := r.conn.WithContext(ctx).Where("tenant_id = ?", tenantID)
	switch {
	case email != "":
		query = query.Where("email = ?", email)
	case phone != "":
		query = query.Where("phone = ?", phone)
	default:
		return nil, nil
	}

	var customer domain.Customer
	if err := query.Take(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, tenantID snowflake.ID, afterID snowflake.ID, limit int) ([]*domain.Customer, error) {
	query := r.conn.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Limit(limit)
	if afterID != 0 {
		query = query.Where("id > ?", afterID)
	}

	var customers []*domain.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}
