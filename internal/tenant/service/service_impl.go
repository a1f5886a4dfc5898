package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/smallbiznis/taxdoc/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Param struct {
	fx.In

	Repository tenantdomain.Repository
	Log        *zap.Logger
}

type service struct {
	repo tenantdomain.Repository
	log  *zap.Logger
}

func NewService(p Param) tenantdomain.Service {
	return &service{repo: p.Repository, log: p.Log.Named("tenant")}
}

func (s *service) Get(ctx context.Context, tenantID snowflake.ID) (tenantdomain.Settings, error) {
	if tenantID == 0 {
		return tenantdomain.Settings{}, tenantdomain.ErrInvalidTenant
	}
	settings, err := s.repo.FindByTenantID(ctx, tenantID)
	if err != nil {
		return tenantdomain.Settings{}, err
	}
	if settings == nil {
		return tenantdomain.Settings{}, tenantdomain.ErrNotFound
	}
	return *settings, nil
}

func (s *service) Upsert(ctx context.Context, settings tenantdomain.Settings) (tenantdomain.Settings, error) {
	if settings.TenantID == 0 {
		return tenantdomain.Settings{}, tenantdomain.ErrInvalidTenant
	}
	settings.GSTIN = strings.ToUpper(strings.TrimSpace(settings.GSTIN))
	settings.SellerStateCode = strings.TrimSpace(settings.SellerStateCode)
	if settings.InvoicePrefix == "" {
		settings.InvoicePrefix = "INV"
	}
	if settings.LabelPrefix == "" {
		settings.LabelPrefix = "SHP"
	}

	now := time.Now().UTC()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now

	if err := s.repo.Save(ctx, &settings); err != nil {
		return tenantdomain.Settings{}, err
	}
	s.log.Info("tenant settings saved", zap.String("tenant_id", settings.TenantID.String()))
	return settings, nil
}
