package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	domain "github.com/smallbiznis/taxdoc/internal/customer/domain"
	"github.com/smallbiznis/taxdoc/internal/tabular"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Param struct {
	fx.In

	Repository domain.Repository
	Log        *zap.Logger
}

type service struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewService(p Param) domain.Service {
	return &service{
		repo: p.Repository,
		log:  p.Log.Named("customer.service"),
	}
}

func importSchema(allowDuplicates bool) tabular.Schema {
	return tabular.Schema{
		Columns: []tabular.Column{
			{Name: "name", Required: true},
			{Name: "email"},
			{Name: "phone"},
			{Name: "state"},
			{Name: "address"},
			{Name: "gstin"},
		},
		AllowDuplicates: allowDuplicates,
	}
}

func (s *service) Import(ctx context.Context, req domain.ImportRequest) (*domain.ImportResult, error) {
	if req.TenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	if strings.TrimSpace(req.CSV) == "" {
		return nil, domain.ErrEmptyImport
	}

	rows, rowErrors, err := tabular.Decode(req.CSV, importSchema(req.AllowDuplicates))
	if err != nil {
		return nil, err
	}

	result := &domain.ImportResult{Rejected: rowErrors}
	for _, row := range rows {
		email := strings.ToLower(row.Fields["email"])
		phone := row.Fields["phone"]

		if !req.AllowDuplicates {
			existing, err := s.repo.FindByKey(ctx, req.TenantID, email, phone)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				result.Rejected = append(result.Rejected, tabular.RowError{
					Line:   row.Line,
					Raw:    row.Fields["name"],
					Reason: "customer already exists with this email or phone",
				})
				continue
			}
		}

		customer := &domain.Customer{
			TenantID: req.TenantID,
			Name:     row.Fields["name"],
			Email:    email,
			Phone:    phone,
			State:    row.Fields["state"],
			Address:  row.Fields["address"],
			GSTIN:    strings.ToUpper(row.Fields["gstin"]),
		}
		if err := s.repo.Insert(ctx, customer); err != nil {
			return nil, err
		}
		result.Imported++
	}

	s.log.Info("customer import finished",
		zap.Int64("tenant_id", int64(req.TenantID)),
		zap.Int("imported", result.Imported),
		zap.Int("rejected", len(result.Rejected)),
	)
	return result, nil
}

func (s *service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	if req.TenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	limit := int(req.PageSize)
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	var afterID snowflake.ID
	if req.PageToken != "" {
		parsed, err := strconv.ParseInt(req.PageToken, 10, 64)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		afterID = snowflake.ID(parsed)
	}

	customers, err := s.repo.List(ctx, req.TenantID, afterID, limit+1)
	if err != nil {
		return nil, err
	}

	resp := &domain.ListResponse{Customers: customers}
	if len(customers) > limit {
		resp.Customers = customers[:limit]
		resp.NextPageToken = strconv.FormatInt(int64(resp.Customers[limit-1].ID), 10)
	}
	return resp, nil
}
