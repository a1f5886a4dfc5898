package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	batchdomain "github.com/smallbiznis/taxdoc/internal/batch/domain"
	batchrepository "github.com/smallbiznis/taxdoc/internal/batch/repository"
	batchservice "github.com/smallbiznis/taxdoc/internal/batch/service"
	"github.com/smallbiznis/taxdoc/internal/clock"
	"github.com/smallbiznis/taxdoc/internal/config"
	customerdomain "github.com/smallbiznis/taxdoc/internal/customer/domain"
	customerrepository "github.com/smallbiznis/taxdoc/internal/customer/repository"
	customerservice "github.com/smallbiznis/taxdoc/internal/customer/service"
	"github.com/smallbiznis/taxdoc/internal/document/assembler"
	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
	documentrepository "github.com/smallbiznis/taxdoc/internal/document/repository"
	"github.com/smallbiznis/taxdoc/internal/notify"
	orderdomain "github.com/smallbiznis/taxdoc/internal/order/domain"
	orderrepository "github.com/smallbiznis/taxdoc/internal/order/repository"
	"github.com/smallbiznis/taxdoc/internal/providers/email"
	"github.com/smallbiznis/taxdoc/internal/providers/pdf"
	seqdomain "github.com/smallbiznis/taxdoc/internal/sequence/domain"
	seqrepository "github.com/smallbiznis/taxdoc/internal/sequence/repository"
	seqservice "github.com/smallbiznis/taxdoc/internal/sequence/service"
	taxservice "github.com/smallbiznis/taxdoc/internal/tax/service"
	tenantdomain "github.com/smallbiznis/taxdoc/internal/tenant/domain"
	tenantrepository "github.com/smallbiznis/taxdoc/internal/tenant/repository"
	tenantservice "github.com/smallbiznis/taxdoc/internal/tenant/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	engine *gin.Engine
	conn   *gorm.DB
	node   *snowflake.Node
	orders orderdomain.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&tenantdomain.Settings{},
		&customerdomain.Customer{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&seqdomain.DocumentSequence{},
		&documentdomain.Document{},
		&batchdomain.Log{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{
		HTTPPort: "8080",
		Sequence: config.SequenceConfig{StartValue: 1, PadWidth: 4},
		Batch:    config.BatchConfig{Workers: 2, ItemTimeoutSecs: 5},
	}

	holder := config.NewStaticTaxConfigHolder(config.DefaultTaxConfig())
	rates := taxservice.NewRateResolver(taxservice.ResolverParam{TaxConfig: holder})
	documents := documentrepository.NewRepository(conn)
	orders := orderrepository.NewRepository(conn)
	allocator := seqservice.NewAllocator(seqservice.Param{
		Repository: seqrepository.NewRepository(conn, node),
		Config:     cfg,
		Log:        zap.NewNop(),
	})
	asm := assembler.New(assembler.Param{
		Engine:    taxservice.NewEngine(taxservice.EngineParam{Rates: rates}),
		Allocator: allocator,
		Documents: documents,
		TaxConfig: holder,
		GenID:     node,
		Clock:     clock.NewSystemClock(),
		Log:       zap.NewNop(),
	})
	tenants := tenantservice.NewService(tenantservice.Param{
		Repository: tenantrepository.NewRepository(conn),
		Log:        zap.NewNop(),
	})
	notifier := notify.NewService(notify.Param{Email: &email.NoOpProvider{}, Log: zap.NewNop()})
	batchRepo := batchrepository.NewRepository(conn, node)
	batchSvc := batchservice.NewService(batchservice.Param{
		Assembler: asm,
		Orders:    orders,
		Tenants:   tenants,
		Batches:   batchRepo,
		PDF:       &pdf.NoOpProvider{},
		Notifier:  notifier,
		Config:    cfg,
		Clock:     clock.NewSystemClock(),
		Log:       zap.NewNop(),
	})
	customers := customerservice.NewService(customerservice.Param{
		Repository: customerrepository.NewRepository(conn, node),
		Log:        zap.NewNop(),
	})

	engine := NewEngine()
	NewServer(ServerParams{
		Gin:         engine,
		Cfg:         cfg,
		BatchSvc:    batchSvc,
		BatchRepo:   batchRepo,
		CustomerSvc: customers,
		Documents:   documents,
		TenantSvc:   tenants,
		Renderer:    &pdf.NoOpProvider{},
	})

	return &fixture{engine: engine, conn: conn, node: node, orders: orders}
}

func (f *fixture) request(t *testing.T, method, path, tenant, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if tenant != "" {
		req.Header.Set("X-Tenant-Id", tenant)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *fixture) seedTenant(t *testing.T, tenantID snowflake.ID) {
	t.Helper()
	require.NoError(t, f.conn.Create(&tenantdomain.Settings{
		TenantID:        tenantID,
		LegalName:       "Sharma Traders Pvt Ltd",
		GSTIN:           "27AAPFU0939F1ZV",
		SellerStateCode: "27",
		InvoicePrefix:   "INV",
		LabelPrefix:     "SHP",
	}).Error)
}

func (f *fixture) seedOrder(t *testing.T, tenantID snowflake.ID) snowflake.ID {
	t.Helper()
	order := &orderdomain.Order{
		ID:           f.node.Generate(),
		TenantID:     tenantID,
		Reference:    "WEB-1042",
		CustomerName: "Asha Patil",
		BillingState: "Maharashtra",
		Items: []orderdomain.OrderItem{
			{ID: f.node.Generate(), TenantID: tenantID, Description: "T-shirt", Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
		},
	}
	require.NoError(t, f.orders.Create(context.Background(), order))
	return order.ID
}

func TestMissingTenantHeaderIsUnauthorized(t *testing.T) {
	f := newFixture(t)

	w := f.request(t, http.MethodGet, "/v1/documents", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.request(t, http.MethodGet, "/v1/documents", "not-a-number", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndMetricsAreOpen(t *testing.T) {
	f := newFixture(t)

	w := f.request(t, http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.request(t, http.MethodGet, "/metrics", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateBatchEndToEnd(t *testing.T) {
	f := newFixture(t)
	tenant := snowflake.ID(501)
	f.seedTenant(t, tenant)
	orderID := f.seedOrder(t, tenant)

	body := `{"kind":"invoice","order_ids":["` + orderID.String() + `"]}`
	w := f.request(t, http.MethodPost, "/v1/batches", tenant.String(), "application/json", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"succeeded":1`)
	assert.Contains(t, w.Body.String(), "INV-0001")

	// The generated document shows up in the list and the export.
	w = f.request(t, http.MethodGet, "/v1/documents?kind=invoice", tenant.String(), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "INV-0001")

	w = f.request(t, http.MethodGet, "/v1/exports/documents.csv", tenant.String(), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "INV-0001")

	// One batch log row exists.
	w = f.request(t, http.MethodGet, "/v1/batches", tenant.String(), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Requested":1`)
}

func TestListDocumentsPagination(t *testing.T) {
	f := newFixture(t)
	tenant := snowflake.ID(501)
	f.seedTenant(t, tenant)

	// Two separate runs so document ids are ordered like their numbers.
	for i := 0; i < 2; i++ {
		orderID := f.seedOrder(t, tenant)
		body := `{"kind":"invoice","order_ids":["` + orderID.String() + `"]}`
		w := f.request(t, http.MethodPost, "/v1/batches", tenant.String(), "application/json", body)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := f.request(t, http.MethodGet, "/v1/documents?page_size=1", tenant.String(), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "INV-0001")
	assert.NotContains(t, w.Body.String(), "INV-0002")

	var page struct {
		PageInfo struct {
			NextPageToken string `json:"next_page_token"`
			HasMore       bool   `json:"has_more"`
		} `json:"page_info"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.True(t, page.PageInfo.HasMore)
	require.NotEmpty(t, page.PageInfo.NextPageToken)

	w = f.request(t, http.MethodGet, "/v1/documents?page_size=1&page_token="+url.QueryEscape(page.PageInfo.NextPageToken), tenant.String(), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "INV-0002")
	assert.NotContains(t, w.Body.String(), "INV-0001")

	// A token that is not a cursor never reaches the store.
	w = f.request(t, http.MethodGet, "/v1/documents?page_token=not-a-cursor", tenant.String(), "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_page_token")
}

func TestCreateBatchValidation(t *testing.T) {
	f := newFixture(t)
	tenant := snowflake.ID(501)
	f.seedTenant(t, tenant)

	w := f.request(t, http.MethodPost, "/v1/batches", tenant.String(), "application/json", `{"kind":"receipt","order_ids":["1"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.request(t, http.MethodPost, "/v1/batches", tenant.String(), "application/json", `{"kind":"invoice","order_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBatchUnconfiguredTenant(t *testing.T) {
	f := newFixture(t)

	w := f.request(t, http.MethodPost, "/v1/batches", "999", "application/json", `{"kind":"invoice","order_ids":["1"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "tenant_not_configured")
}

func TestTenantSettingsRoundTrip(t *testing.T) {
	f := newFixture(t)

	w := f.request(t, http.MethodGet, "/v1/tenant/settings", "501", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := `{"legal_name":"Sharma Traders","gstin":"27aapfu0939f1zv","seller_state_code":"27"}`
	w = f.request(t, http.MethodPut, "/v1/tenant/settings", "501", "application/json", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "27AAPFU0939F1ZV")

	w = f.request(t, http.MethodGet, "/v1/tenant/settings", "501", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sharma Traders")
}

func TestImportCustomersEndpoint(t *testing.T) {
	f := newFixture(t)

	csv := "name,email,phone\nAsha Patil,asha@example.com,\n,missing@example.com,\n"
	w := f.request(t, http.MethodPost, "/v1/imports/customers", "501", "text/csv", csv)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"imported":1`)
	assert.Contains(t, w.Body.String(), `"rejected"`)

	w = f.request(t, http.MethodGet, "/v1/customers", "501", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "asha@example.com")
}

func TestGetDocumentNotFound(t *testing.T) {
	f := newFixture(t)

	w := f.request(t, http.MethodGet, "/v1/documents/12345", "501", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBatchRateLimit(t *testing.T) {
	f := newFixture(t)
	tenant := snowflake.ID(501)
	f.seedTenant(t, tenant)
	orderID := f.seedOrder(t, tenant)

	body := `{"kind":"invoice","order_ids":["` + orderID.String() + `"]}`
	var last int
	deadline := time.Now().Add(5 * time.Second)
	for i := 0; i < 40 && time.Now().Before(deadline); i++ {
		w := f.request(t, http.MethodPost, "/v1/batches", tenant.String(), "application/json", body)
		last = w.Code
		if last == http.StatusTooManyRequests {
			break
		}
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
