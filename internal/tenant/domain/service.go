package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Get(ctx context.Context, tenantID snowflake.ID) (Settings, error)
	Upsert(ctx context.Context, settings Settings) (Settings, error)
}

type Repository interface {
	FindByTenantID(ctx context.Context, tenantID snowflake.ID) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}

var (
	ErrNotFound            = errors.New("tenant_not_found")
	ErrTenantNotConfigured = errors.New("tenant_not_configured")
	ErrInvalidTenant       = errors.New("invalid_tenant")
)
