package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxdoc/internal/tabular"
)

// ImportRequest carries one inbound CSV file for a tenant.
type ImportRequest struct {
	TenantID snowflake.ID
	CSV      string

	// AllowDuplicates keeps rows whose email or phone repeats an already
	// imported customer instead of skipping them.
	AllowDuplicates bool
}

// ImportResult reports per-row outcomes. Rejected rows never abort the rest
// of the file.
type ImportResult struct {
	Imported int                `json:"imported"`
	Rejected []tabular.RowError `json:"rejected,omitempty"`
}

type ListRequest struct {
	TenantID  snowflake.ID
	PageToken string
	PageSize  int32
}

type ListResponse struct {
	Customers     []*Customer `json:"customers"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

type Service interface {
	Import(ctx context.Context, req ImportRequest) (*ImportResult, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}

type Repository interface {
	Insert(ctx context.Context, customer *Customer) error
	FindByKey(ctx context.Context, tenantID snowflake.ID, email, phone string) (*Customer, error)
	List(ctx context.Context, tenantID snowflake.ID, afterID snowflake.ID, limit int) ([]*Customer, error)
}

var (
	ErrInvalidTenant    = errors.New("invalid_tenant")
	ErrEmptyImport      = errors.New("empty_import")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
