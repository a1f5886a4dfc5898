// Package domain contains bulk document generation runs. A run takes a list
// of source order ids and produces one document per id, isolating per-item
// failures so one bad record never aborts the rest.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
)

// ErrorKind classifies why a single item failed.
type ErrorKind string

const (
	ErrorKindValidation  ErrorKind = "validation"
	ErrorKindNotFound    ErrorKind = "not_found"
	ErrorKindSequence    ErrorKind = "sequence_unavailable"
	ErrorKindTimeout     ErrorKind = "timeout"
	ErrorKindCancelled   ErrorKind = "cancelled"
	ErrorKindPersistence ErrorKind = "persistence"
	ErrorKindInternal    ErrorKind = "internal"
)

// Options tunes one run. Zero values fall back to configured defaults.
type Options struct {
	// RenderPDF renders each generated document after persistence. Render
	// failures are recorded as warnings on the item, never as failures.
	RenderPDF bool

	// Notify lists notification channels fanned out per generated document.
	Notify []string

	Workers     int
	ItemTimeout time.Duration
}

// ItemSuccess is one generated document within a run.
type ItemSuccess struct {
	SourceRecordID snowflake.ID `json:"source_record_id"`
	DocumentID     snowflake.ID `json:"document_id"`
	Number         string       `json:"number"`

	// Warnings holds post-step failures (render, notify) for a document
	// that was still generated and kept.
	Warnings []string `json:"warnings,omitempty"`
}

// ItemFailure is one input id that produced no document.
type ItemFailure struct {
	SourceRecordID snowflake.ID `json:"source_record_id"`
	Kind           ErrorKind    `json:"error_kind"`
	Message        string       `json:"message"`
}

// Result is the immutable outcome of one run. Items appear in the order the
// ids were submitted, regardless of worker scheduling.
type Result struct {
	RunID    string
	TenantID snowflake.ID
	Kind     documentdomain.DocumentKind

	Requested int
	Successes []ItemSuccess
	Failures  []ItemFailure

	StartedAt   time.Time
	CompletedAt time.Time
}

func (r Result) Succeeded() int { return len(r.Successes) }
func (r Result) Failed() int    { return len(r.Failures) }

// Log is the aggregate audit row persisted once per run.
type Log struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	RunID    string       `gorm:"column:run_id;type:text;not null;uniqueIndex"`
	TenantID snowflake.ID `gorm:"column:tenant_id;not null;index"`

	Kind      documentdomain.DocumentKind `gorm:"type:text;not null"`
	Requested int                         `gorm:"not null"`
	Succeeded int                         `gorm:"not null"`
	Failed    int                         `gorm:"not null"`

	StartedAt   time.Time `gorm:"not null"`
	CompletedAt time.Time `gorm:"not null"`
}

func (Log) TableName() string { return "batch_logs" }
