// Package domain contains the per-tenant document numbering model.
package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// DocumentSequence is one counter row per (tenant, kind). NextNumber only
// ever moves forward; every value it held was handed out at most once.
type DocumentSequence struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	TenantID   snowflake.ID `gorm:"column:tenant_id;not null;uniqueIndex:ux_document_sequences_tenant_kind"`
	Kind       string       `gorm:"type:text;not null;uniqueIndex:ux_document_sequences_tenant_kind"`
	Prefix     string       `gorm:"type:text;not null"`
	NextNumber int64        `gorm:"column:next_number;not null"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DocumentSequence) TableName() string { return "document_sequences" }

// SequenceNumber is one issued document number.
type SequenceNumber struct {
	Prefix string `json:"prefix"`
	Number int64  `json:"number"`
}

// Format renders the number as PREFIX-NNNN with zero padding to width.
func (n SequenceNumber) Format(width int) string {
	return fmt.Sprintf("%s-%0*d", n.Prefix, width, n.Number)
}
