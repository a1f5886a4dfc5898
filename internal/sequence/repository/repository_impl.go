package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	seqdomain "github.com/smallbiznis/taxdoc/internal/sequence/domain"
	"github.com/smallbiznis/taxdoc/pkg/db"
	"gorm.io/gorm"
)

type repository struct {
	conn  *gorm.DB
	genID *snowflake.Node
}

func NewRepository(conn *gorm.DB, genID *snowflake.Node) seqdomain.Repository {
	return &repository{conn: conn, genID: genID}
}

// GetAndIncrement reserves the current number inside one transaction.
//
// The UPDATE runs first so the row lock is taken by the mutating statement
// itself; the read that follows sees the post-increment value under that
// lock. There is no window where two transactions observe the same
// next_number.
func (r *repository) GetAndIncrement(ctx context.Context, tenantID snowflake.ID, kind, prefix string, start int64) (seqdomain.SequenceNumber, error) {
	var issued seqdomain.SequenceNumber

	err := r.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		res := tx.Exec(
			`UPDATE document_sequences
			 SET next_number = next_number + 1, updated_at = ?
			 WHERE tenant_id = ? AND kind = ?`,
			now, tenantID, kind,
		)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// First allocation for this (tenant, kind): create the row and
			// reserve the start value in the same statement.
			seq := seqdomain.DocumentSequence{
				ID:         r.genID.Generate(),
				TenantID:   tenantID,
				Kind:       kind,
				Prefix:     prefix,
				NextNumber: start + 1,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
			issued = seqdomain.SequenceNumber{Prefix: prefix, Number: start}
			return nil
		}

		var seq seqdomain.DocumentSequence
		if err := tx.Where("tenant_id = ? AND kind = ?", tenantID, kind).Take(&seq).Error; err != nil {
			return err
		}
		issued = seqdomain.SequenceNumber{Prefix: seq.Prefix, Number: seq.NextNumber - 1}
		return nil
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Lost the insert race against another process; the row exists
			// now, so the plain increment path will succeed.
			return r.GetAndIncrement(ctx, tenantID, kind, prefix, start)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return seqdomain.SequenceNumber{}, err
		}
		return seqdomain.SequenceNumber{}, seqdomain.ErrSequenceUnavailable
	}
	return issued, nil
}
