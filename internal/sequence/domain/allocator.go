package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Allocator issues the next document number for a (tenant, kind) pair.
//
// Two concurrent Next calls for the same pair never return the same number.
// The increment itself must be a single storage-level operation; callers are
// never exposed to a read-then-write pair.
type Allocator interface {
	Next(ctx context.Context, tenantID snowflake.ID, kind, prefix string) (SequenceNumber, error)
	// Formatted is Next plus PREFIX-NNNN rendering with the configured width.
	Formatted(ctx context.Context, tenantID snowflake.ID, kind, prefix string) (SequenceNumber, string, error)
}

// Repository is the storage side of allocation. GetAndIncrement atomically
// reserves and returns the current number, creating the row at start on
// first use.
type Repository interface {
	GetAndIncrement(ctx context.Context, tenantID snowflake.ID, kind, prefix string, start int64) (SequenceNumber, error)
}
