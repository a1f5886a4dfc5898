package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type ListFilter struct {
	Kind      DocumentKind
	PageToken string
	PageSize  int
}

type Repository interface {
	Save(ctx context.Context, doc *Document) error
	FindByID(ctx context.Context, tenantID, id snowflake.ID) (*Document, error)
	List(ctx context.Context, tenantID snowflake.ID, filter ListFilter) ([]*Document, error)
}
