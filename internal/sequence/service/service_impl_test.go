package service

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/taxdoc/internal/config"
	seqdomain "github.com/smallbiznis/taxdoc/internal/sequence/domain"
	seqrepository "github.com/smallbiznis/taxdoc/internal/sequence/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestAllocator(t *testing.T) (seqdomain.Allocator, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&seqdomain.DocumentSequence{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	alloc := NewAllocator(Param{
		Repository: seqrepository.NewRepository(conn, node),
		Config: config.Config{
			Sequence: config.SequenceConfig{StartValue: 1, PadWidth: 4},
		},
		Log: zap.NewNop(),
	})
	return alloc, conn
}

func TestFirstAllocationStartsAtConfiguredValue(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	tenant := snowflake.ID(1001)

	issued, formatted, err := alloc.Formatted(context.Background(), tenant, "invoice", "INV")
	require.NoError(t, err)
	assert.Equal(t, "INV", issued.Prefix)
	assert.Equal(t, int64(1), issued.Number)
	assert.Equal(t, "INV-0001", formatted)

	issued, formatted, err = alloc.Formatted(context.Background(), tenant, "invoice", "INV")
	require.NoError(t, err)
	assert.Equal(t, int64(2), issued.Number)
	assert.Equal(t, "INV-0002", formatted)
}

func TestSequencesAreScopedByTenantAndKind(t *testing.T) {
	alloc, _ := newTestAllocator(t)

	a, err := alloc.Next(context.Background(), snowflake.ID(1), "invoice", "INV")
	require.NoError(t, err)
	b, err := alloc.Next(context.Background(), snowflake.ID(2), "invoice", "INV")
	require.NoError(t, err)
	c, err := alloc.Next(context.Background(), snowflake.ID(1), "shipping_label", "SHP")
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.Number)
	assert.Equal(t, int64(1), b.Number)
	assert.Equal(t, int64(1), c.Number)
	assert.Equal(t, "SHP", c.Prefix)
}

func TestConcurrentAllocationsAreDistinct(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	tenant := snowflake.ID(42)

	const callers = 25
	results := make(chan int64, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			issued, err := alloc.Next(context.Background(), tenant, "invoice", "INV")
			assert.NoError(t, err)
			results <- issued.Number
		}()
	}
	wg.Wait()
	close(results)

	seen := map[int64]bool{}
	for number := range results {
		assert.False(t, seen[number], "number %d issued twice", number)
		seen[number] = true
	}
	assert.Len(t, seen, callers)
}

func TestPrefixIsStickyAfterFirstAllocation(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	tenant := snowflake.ID(7)

	first, err := alloc.Next(context.Background(), tenant, "invoice", "INV")
	require.NoError(t, err)
	assert.Equal(t, "INV", first.Prefix)

	// A different prefix on a later call does not rewrite the stored one.
	second, err := alloc.Next(context.Background(), tenant, "invoice", "XXX")
	require.NoError(t, err)
	assert.Equal(t, "INV", second.Prefix)
	assert.Equal(t, first.Number+1, second.Number)
}

func TestAllocationFailsWhenStoreIsDown(t *testing.T) {
	alloc, conn := newTestAllocator(t)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = alloc.Next(context.Background(), snowflake.ID(9), "invoice", "INV")
	assert.ErrorIs(t, err, seqdomain.ErrSequenceUnavailable)
}

func TestInvalidArguments(t *testing.T) {
	alloc, _ := newTestAllocator(t)

	_, err := alloc.Next(context.Background(), snowflake.ID(9), " ", "INV")
	assert.ErrorIs(t, err, seqdomain.ErrInvalidKind)

	_, err = alloc.Next(context.Background(), snowflake.ID(9), "invoice", "")
	assert.ErrorIs(t, err, seqdomain.ErrInvalidPrefix)
}
