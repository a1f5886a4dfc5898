package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	// FindByID loads one order with its items, scoped by tenant.
	FindByID(ctx context.Context, tenantID, id snowflake.ID) (*Order, error)
	Create(ctx context.Context, order *Order) error
}

var ErrRecordNotFound = errors.New("record_not_found")
