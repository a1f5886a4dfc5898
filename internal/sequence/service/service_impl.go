package service

import (
	"context"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxdoc/internal/config"
	seqdomain "github.com/smallbiznis/taxdoc/internal/sequence/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Param struct {
	fx.In

	Repository seqdomain.Repository
	Config     config.Config
	Log        *zap.Logger
}

type allocator struct {
	repo  seqdomain.Repository
	start int64
	width int
	log   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAllocator builds the tenant-scoped number allocator. A per-(tenant,kind)
// mutex serializes in-process callers; the repository's single-statement
// increment covers concurrent processes.
func NewAllocator(p Param) seqdomain.Allocator {
	start := p.Config.Sequence.StartValue
	if start < 1 {
		start = 1
	}
	width := p.Config.Sequence.PadWidth
	if width < 1 {
		width = 4
	}
	return &allocator{
		repo:  p.Repository,
		start: start,
		width: width,
		log:   p.Log.Named("sequence"),
		locks: map[string]*sync.Mutex{},
	}
}

func (a *allocator) Next(ctx context.Context, tenantID snowflake.ID, kind, prefix string) (seqdomain.SequenceNumber, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return seqdomain.SequenceNumber{}, seqdomain.ErrInvalidKind
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return seqdomain.SequenceNumber{}, seqdomain.ErrInvalidPrefix
	}

	lock := a.keyLock(tenantID.String() + "/" + kind)
	lock.Lock()
	defer lock.Unlock()

	issued, err := a.repo.GetAndIncrement(ctx, tenantID, kind, prefix, a.start)
	if err != nil {
		a.log.Warn("sequence allocation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("kind", kind),
			zap.Error(err),
		)
		return seqdomain.SequenceNumber{}, err
	}
	return issued, nil
}

func (a *allocator) Formatted(ctx context.Context, tenantID snowflake.ID, kind, prefix string) (seqdomain.SequenceNumber, string, error) {
	issued, err := a.Next(ctx, tenantID, kind, prefix)
	if err != nil {
		return seqdomain.SequenceNumber{}, "", err
	}
	return issued, issued.Format(a.width), nil
}

func (a *allocator) keyLock(key string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[key] = lock
	}
	return lock
}
