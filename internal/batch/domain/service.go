package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
)

type Service interface {
	// Run generates one document of kind per order id. Whole-run failures
	// (invalid kind, unconfigured tenant) return an error and process no
	// items; everything else is reported per item in the Result.
	Run(ctx context.Context, tenantID snowflake.ID, ids []snowflake.ID, kind documentdomain.DocumentKind, opts Options) (*Result, error)
}

type Repository interface {
	AppendLog(ctx context.Context, log *Log) error
	ListLogs(ctx context.Context, tenantID snowflake.ID, limit int) ([]*Log, error)
}

var (
	ErrEmptyBatch    = errors.New("empty_batch")
	ErrInvalidTenant = errors.New("invalid_tenant")
)
