package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	domain "github.com/smallbiznis/taxdoc/internal/batch/domain"
	"github.com/smallbiznis/taxdoc/internal/clock"
	"github.com/smallbiznis/taxdoc/internal/config"
	"github.com/smallbiznis/taxdoc/internal/document/assembler"
	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
	"github.com/smallbiznis/taxdoc/internal/notify"
	"github.com/smallbiznis/taxdoc/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/taxdoc/internal/order/domain"
	"github.com/smallbiznis/taxdoc/internal/providers/pdf"
	seqdomain "github.com/smallbiznis/taxdoc/internal/sequence/domain"
	taxdomain "github.com/smallbiznis/taxdoc/internal/tax/domain"
	tenantdomain "github.com/smallbiznis/taxdoc/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Param struct {
	fx.In

	Assembler assembler.Assembler
	Orders    orderdomain.Repository
	Tenants   tenantdomain.Service
	Batches   domain.Repository
	PDF       pdf.Provider
	Notifier  notify.Service
	Config    config.Config
	Clock     clock.Clock
	Log       *zap.Logger
}

type service struct {
	assembler assembler.Assembler
	orders    orderdomain.Repository
	tenants   tenantdomain.Service
	batches   domain.Repository
	pdf       pdf.Provider
	notifier  notify.Service
	cfg       config.Config
	clock     clock.Clock
	log       *zap.Logger
}

func NewService(p Param) domain.Service {
	return &service{
		assembler: p.Assembler,
		orders:    p.Orders,
		tenants:   p.Tenants,
		batches:   p.Batches,
		pdf:       p.PDF,
		notifier:  p.Notifier,
		cfg:       p.Config,
		clock:     p.Clock,
		log:       p.Log.Named("batch.service"),
	}
}

// itemOutcome holds one slot of the indexed result table. Exactly one of
// success and failure is set once the slot is resolved.
type itemOutcome struct {
	success *domain.ItemSuccess
	failure *domain.ItemFailure
}

func (s *service) Run(ctx context.Context, tenantID snowflake.ID, ids []snowflake.ID, kind documentdomain.DocumentKind, opts domain.Options) (*domain.Result, error) {
	if !kind.Valid() {
		return nil, documentdomain.ErrInvalidKind
	}
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	if len(ids) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	settings, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenantdomain.ErrNotFound) {
			return nil, tenantdomain.ErrTenantNotConfigured
		}
		return nil, err
	}
	if err := settings.ValidateForDocuments(kind.String()); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = s.cfg.Batch.Workers
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	itemTimeout := opts.ItemTimeout
	if itemTimeout <= 0 {
		itemTimeout = time.Duration(s.cfg.Batch.ItemTimeoutSecs) * time.Second
	}

	runID := uuid.NewString()
	startedAt := s.clock.Now()

	outcomes := make([]itemOutcome, len(ids))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					outcomes[idx] = itemOutcome{failure: &domain.ItemFailure{
						SourceRecordID: ids[idx],
						Kind:           domain.ErrorKindCancelled,
						Message:        "batch cancelled before item started",
					}}
					continue
				}
				outcomes[idx] = s.processItem(ctx, settings, ids[idx], kind, opts, itemTimeout)
			}
		}()
	}
	for idx := range ids {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	result := fold(runID, tenantID, kind, ids, outcomes, startedAt, s.clock.Now())

	s.record(ctx, result)
	return result, nil
}

func (s *service) processItem(ctx context.Context, settings tenantdomain.Settings, id snowflake.ID, kind documentdomain.DocumentKind, opts domain.Options, timeout time.Duration) itemOutcome {
	itemCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	order, err := s.orders.FindByID(itemCtx, settings.TenantID, id)
	if err != nil {
		return failureOutcome(id, itemCtx, err)
	}

	doc, err := s.assembler.Assemble(itemCtx, order, settings, kind)
	if err != nil {
		return failureOutcome(id, itemCtx, err)
	}

	success := &domain.ItemSuccess{
		SourceRecordID: id,
		DocumentID:     doc.ID,
		Number:         doc.NumberText,
	}

	// Post-steps run against the already persisted document; their failures
	// downgrade to warnings so the document is never lost.
	if opts.RenderPDF {
		if _, err := s.pdf.RenderDocument(itemCtx, doc); err != nil {
			success.Warnings = append(success.Warnings, "render: "+err.Error())
		}
	}
	if len(opts.Notify) > 0 {
		for _, res := range s.notifier.Notify(itemCtx, settings, doc, opts.Notify) {
			if res.Err != nil {
				success.Warnings = append(success.Warnings, "notify "+res.Channel+": "+res.Err.Error())
			}
		}
	}

	return itemOutcome{success: success}
}

func (s *service) record(ctx context.Context, result *domain.Result) {
	m := metrics.Batch()
	m.IncRun(result.Kind.String())
	m.AddItems(result.Kind.String(), "success", result.Succeeded())
	m.AddItems(result.Kind.String(), "failure", result.Failed())
	m.ObserveDuration(result.Kind.String(), result.CompletedAt.Sub(result.StartedAt).Seconds())

	log := &domain.Log{
		RunID:       result.RunID,
		TenantID:    result.TenantID,
		Kind:        result.Kind,
		Requested:   result.Requested,
		Succeeded:   result.Succeeded(),
		Failed:      result.Failed(),
		StartedAt:   result.StartedAt,
		CompletedAt: result.CompletedAt,
	}
	// The log write happens outside the run's cancellation scope so a
	// cancelled batch still leaves its audit row.
	if err := s.batches.AppendLog(context.WithoutCancel(ctx), log); err != nil {
		s.log.Error("failed to append batch log",
			zap.String("run_id", result.RunID),
			zap.Error(err),
		)
	}

	s.log.Info("batch run completed",
		zap.String("run_id", result.RunID),
		zap.Int64("tenant_id", int64(result.TenantID)),
		zap.String("kind", result.Kind.String()),
		zap.Int("requested", result.Requested),
		zap.Int("succeeded", result.Succeeded()),
		zap.Int("failed", result.Failed()),
		zap.Duration("elapsed", result.CompletedAt.Sub(result.StartedAt)),
	)
}

// fold collapses the indexed outcome table into the immutable result,
// preserving submission order within each of the two lists.
func fold(runID string, tenantID snowflake.ID, kind documentdomain.DocumentKind, ids []snowflake.ID, outcomes []itemOutcome, startedAt, completedAt time.Time) *domain.Result {
	result := &domain.Result{
		RunID:       runID,
		TenantID:    tenantID,
		Kind:        kind,
		Requested:   len(ids),
		StartedAt:   startedAt,
		CompletedAt: completedAt,
	}
	for idx, outcome := range outcomes {
		switch {
		case outcome.success != nil:
			result.Successes = append(result.Successes, *outcome.success)
		case outcome.failure != nil:
			result.Failures = append(result.Failures, *outcome.failure)
		default:
			result.Failures = append(result.Failures, domain.ItemFailure{
				SourceRecordID: ids[idx],
				Kind:           domain.ErrorKindInternal,
				Message:        "item produced no outcome",
			})
		}
	}
	return result
}

func failureOutcome(id snowflake.ID, ctx context.Context, err error) itemOutcome {
	return itemOutcome{failure: &domain.ItemFailure{
		SourceRecordID: id,
		Kind:           classify(ctx, err),
		Message:        err.Error(),
	}}
}

func classify(ctx context.Context, err error) domain.ErrorKind {
	switch {
	case errors.Is(err, context.Canceled):
		return domain.ErrorKindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		if ctx.Err() == context.DeadlineExceeded {
			return domain.ErrorKindTimeout
		}
		return domain.ErrorKindCancelled
	case errors.Is(err, orderdomain.ErrRecordNotFound):
		return domain.ErrorKindNotFound
	case errors.Is(err, seqdomain.ErrSequenceUnavailable):
		return domain.ErrorKindSequence
	case errors.Is(err, documentdomain.ErrAssemblyFailed):
		return domain.ErrorKindPersistence
	case errors.Is(err, taxdomain.ErrInvalidLineItem),
		errors.Is(err, taxdomain.ErrInvalidRate),
		errors.Is(err, documentdomain.ErrInvalidKind),
		errors.Is(err, tenantdomain.ErrTenantNotConfigured):
		return domain.ErrorKindValidation
	default:
		return domain.ErrorKindInternal
	}
}
