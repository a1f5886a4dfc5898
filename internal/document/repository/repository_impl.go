package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
	"gorm.io/gorm"
)

type repository struct {
	conn *gorm.DB
}

func NewRepository(conn *gorm.DB) documentdomain.Repository {
	return &repository{conn: conn}
}

func (r *repository) Save(ctx context.Context, doc *documentdomain.Document) error {
	return r.conn.WithContext(ctx).Create(doc).Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, id snowflake.ID) (*documentdomain.Document, error) {
	var doc documentdomain.Document
	err := r.conn.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Take(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, documentdomain.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *repository) List(ctx context.Context, tenantID snowflake.ID, filter documentdomain.ListFilter) ([]*documentdomain.Document, error) {
	stmt := r.conn.WithContext(ctx).
		Model(&documentdomain.Document{}).
		Where("tenant_id = ?", tenantID)

	if filter.Kind != "" {
		stmt = stmt.Where("kind = ?", filter.Kind)
	}
	if filter.PageToken != "" {
		stmt = stmt.Where("id > ?", filter.PageToken)
	}

	limit := filter.PageSize
	if limit <= 0 {
		limit = 25
	}
	// One past the limit so the caller can detect a following page.
	stmt = stmt.Order("id ASC").Limit(limit + 1)

	var docs []*documentdomain.Document
	if err := stmt.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
