package assembler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/taxdoc/internal/clock"
	"github.com/smallbiznis/taxdoc/internal/config"
	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
	documentrepository "github.com/smallbiznis/taxdoc/internal/document/repository"
	"github.com/smallbiznis/taxdoc/internal/jurisdiction"
	orderdomain "github.com/smallbiznis/taxdoc/internal/order/domain"
	seqdomain "github.com/smallbiznis/taxdoc/internal/sequence/domain"
	seqrepository "github.com/smallbiznis/taxdoc/internal/sequence/repository"
	seqservice "github.com/smallbiznis/taxdoc/internal/sequence/service"
	taxservice "github.com/smallbiznis/taxdoc/internal/tax/service"
	tenantdomain "github.com/smallbiznis/taxdoc/internal/tenant/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type failingDocRepo struct{}

func (failingDocRepo) Save(ctx context.Context, doc *documentdomain.Document) error {
	return errors.New("disk full")
}

func (failingDocRepo) FindByID(ctx context.Context, tenantID, id snowflake.ID) (*documentdomain.Document, error) {
	return nil, documentdomain.ErrNotFound
}

func (failingDocRepo) List(ctx context.Context, tenantID snowflake.ID, filter documentdomain.ListFilter) ([]*documentdomain.Document, error) {
	return nil, nil
}

type fixture struct {
	assembler Assembler
	allocator seqdomain.Allocator
	conn      *gorm.DB
	node      *snowflake.Node
	holder    *config.TaxConfigHolder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&seqdomain.DocumentSequence{},
		&documentdomain.Document{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder := config.NewStaticTaxConfigHolder(config.DefaultTaxConfig())
	allocator := seqservice.NewAllocator(seqservice.Param{
		Repository: seqrepository.NewRepository(conn, node),
		Config: config.Config{
			Sequence: config.SequenceConfig{StartValue: 1, PadWidth: 4},
		},
		Log: zap.NewNop(),
	})

	f := &fixture{
		allocator: allocator,
		conn:      conn,
		node:      node,
		holder:    holder,
	}
	f.assembler = f.newAssembler(t, documentrepository.NewRepository(conn))
	return f
}

func (f *fixture) newAssembler(t *testing.T, docs documentdomain.Repository) Assembler {
	t.Helper()
	rates := taxservice.NewRateResolver(taxservice.ResolverParam{TaxConfig: f.holder})
	return New(Param{
		Engine:    taxservice.NewEngine(taxservice.EngineParam{Rates: rates}),
		Allocator: f.allocator,
		Documents: docs,
		TaxConfig: f.holder,
		GenID:     f.node,
		Clock:     clock.NewFakeClock(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
		Log:       zap.NewNop(),
	})
}

func testSettings() tenantdomain.Settings {
	return tenantdomain.Settings{
		TenantID:        snowflake.ID(501),
		LegalName:       "Sharma Traders Pvt Ltd",
		GSTIN:           "27AAPFU0939F1ZV",
		SellerStateCode: "27",
		InvoicePrefix:   "INV",
		LabelPrefix:     "SHP",
	}
}

func testOrder(tenantID snowflake.ID) *orderdomain.Order {
	return &orderdomain.Order{
		ID:           snowflake.ID(9001),
		TenantID:     tenantID,
		Reference:    "WEB-1042",
		CustomerName: "Asha Patil",
		BillingState: "Maharashtra",
		Items: []orderdomain.OrderItem{
			{Description: "T-shirt", Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
		},
	}
}

func TestAssembleIntraStateInvoice(t *testing.T) {
	f := newFixture(t)
	settings := testSettings()

	doc, err := f.assembler.Assemble(context.Background(), testOrder(settings.TenantID), settings, documentdomain.KindInvoice)
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", doc.NumberText)
	assert.Equal(t, int64(1), doc.Number)
	assert.Equal(t, "27", doc.SellerStateCode)
	assert.Equal(t, "27", doc.BuyerStateCode)
	assert.True(t, doc.CGSTTotal.Equal(decimal.NewFromInt(90)))
	assert.True(t, doc.SGSTTotal.Equal(decimal.NewFromInt(90)))
	assert.True(t, doc.IGSTTotal.IsZero())
	assert.True(t, doc.GrandTotal.Equal(decimal.NewFromInt(1180)))

	var lines []documentdomain.Line
	require.NoError(t, json.Unmarshal(doc.Lines, &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "T-shirt", lines[0].Description)

	// Persisted row is retrievable through the repository.
	stored, err := documentrepository.NewRepository(f.conn).FindByID(context.Background(), settings.TenantID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.NumberText, stored.NumberText)
}

func TestAssembleMisconfiguredTenantDoesNotConsumeNumber(t *testing.T) {
	f := newFixture(t)
	settings := testSettings()
	settings.GSTIN = ""

	_, err := f.assembler.Assemble(context.Background(), testOrder(settings.TenantID), settings, documentdomain.KindInvoice)
	assert.ErrorIs(t, err, tenantdomain.ErrTenantNotConfigured)

	// The failed attempt must not have touched the sequence.
	settings = testSettings()
	doc, err := f.assembler.Assemble(context.Background(), testOrder(settings.TenantID), settings, documentdomain.KindInvoice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Number)
}

func TestAssembleBillingStateGovernsTax(t *testing.T) {
	f := newFixture(t)
	settings := testSettings()

	order := testOrder(settings.TenantID)
	order.BillingState = "Delhi"
	order.ShippingState = "Maharashtra"
	order.ShippingAddress = "12 MG Road, Pune"

	doc, err := f.assembler.Assemble(context.Background(), order, settings, documentdomain.KindInvoice)
	require.NoError(t, err)

	assert.Equal(t, "07", doc.BuyerStateCode)
	assert.True(t, doc.IGSTTotal.Equal(decimal.NewFromInt(180)))
	assert.True(t, doc.CGSTTotal.IsZero())
	assert.Equal(t, "12 MG Road, Pune", doc.ShippingAddress)
}

func TestAssembleFallsBackToShippingStateThenUnknown(t *testing.T) {
	f := newFixture(t)
	settings := testSettings()

	order := testOrder(settings.TenantID)
	order.BillingState = ""
	order.ShippingState = "Karnataka"
	doc, err := f.assembler.Assemble(context.Background(), order, settings, documentdomain.KindInvoice)
	require.NoError(t, err)
	assert.Equal(t, "29", doc.BuyerStateCode)

	order = testOrder(settings.TenantID)
	order.ID = snowflake.ID(9002)
	order.BillingState = ""
	order.ShippingState = ""
	doc, err = f.assembler.Assemble(context.Background(), order, settings, documentdomain.KindInvoice)
	require.NoError(t, err)
	assert.Equal(t, jurisdiction.CodeUnknown, doc.BuyerStateCode)
	assert.True(t, doc.CGSTTotal.IsZero())
	assert.False(t, doc.IGSTTotal.IsZero())
}

func TestAssembleAppliesClassificationDefaults(t *testing.T) {
	f := newFixture(t)
	settings := testSettings()

	order := testOrder(settings.TenantID)
	order.Items = []orderdomain.OrderItem{
		{Description: "explicit", Quantity: 1, UnitPrice: decimal.NewFromInt(100), HSNCode: "1234"},
		{Description: "by category", Quantity: 1, UnitPrice: decimal.NewFromInt(100), Category: "Books"},
		{Description: "fallback", Quantity: 1, UnitPrice: decimal.NewFromInt(100)},
	}

	doc, err := f.assembler.Assemble(context.Background(), order, settings, documentdomain.KindInvoice)
	require.NoError(t, err)

	var lines []documentdomain.Line
	require.NoError(t, json.Unmarshal(doc.Lines, &lines))
	require.Len(t, lines, 3)
	assert.Equal(t, "1234", lines[0].HSNCode)
	assert.Equal(t, "4901", lines[1].HSNCode)
	assert.Equal(t, "9999", lines[2].HSNCode)
}

func TestAssembleShippingLabelCarriesShipmentFields(t *testing.T) {
	f := newFixture(t)
	settings := testSettings()

	order := testOrder(settings.TenantID)
	order.Courier = "Delhivery"
	order.WeightGrams = 750
	order.CODAmount = decimal.NewFromInt(1180)

	doc, err := f.assembler.Assemble(context.Background(), order, settings, documentdomain.KindShippingLabel)
	require.NoError(t, err)

	assert.Equal(t, "SHP-0001", doc.NumberText)
	assert.Equal(t, documentdomain.KindShippingLabel, doc.Kind)
	assert.Equal(t, "Delhivery", doc.Courier)
	assert.Equal(t, int64(750), doc.WeightGrams)
	assert.True(t, doc.CODAmount.Equal(decimal.NewFromInt(1180)))
}

func TestAssemblePersistenceFailureConsumesNumberAsGap(t *testing.T) {
	f := newFixture(t)
	settings := testSettings()

	broken := f.newAssembler(t, failingDocRepo{})
	_, err := broken.Assemble(context.Background(), testOrder(settings.TenantID), settings, documentdomain.KindInvoice)
	assert.ErrorIs(t, err, documentdomain.ErrAssemblyFailed)
	// The store's cause rides along for failure reports.
	assert.Contains(t, err.Error(), "disk full")

	// Number 1 is gone for good; the next successful document is 2.
	doc, err := f.assembler.Assemble(context.Background(), testOrder(settings.TenantID), settings, documentdomain.KindInvoice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Number)
	assert.Equal(t, "INV-0002", doc.NumberText)
}
