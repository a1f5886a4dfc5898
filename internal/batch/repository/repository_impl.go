package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	domain "github.com/smallbiznis/taxdoc/internal/batch/domain"
	"gorm.io/gorm"
)

type repository struct {
	conn *gorm.DB
	node *snowflake.Node
}

func NewRepository(conn *gorm.DB, node *snowflake.Node) domain.Repository {
	return &repository{conn: conn, node: node}
}

func (r *repository) AppendLog(ctx context.Context, log *domain.Log) error {
	if log.ID == 0 {
		log.ID = r.node.Generate()
	}
	return r.conn.WithContext(ctx).Create(log).Error
}

func (r *repository) ListLogs(ctx context.Context, tenantID snowflake.ID, limit int) ([]*domain.Log, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var logs []*domain.Log
	err := r.conn.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("started_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
