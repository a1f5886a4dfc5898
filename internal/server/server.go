// Package server exposes the HTTP surface: batch generation, document
// retrieval and export, customer imports and tenant settings.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/taxdoc/internal/batch"
	batchdomain "github.com/smallbiznis/taxdoc/internal/batch/domain"
	"github.com/smallbiznis/taxdoc/internal/config"
	"github.com/smallbiznis/taxdoc/internal/customer"
	customerdomain "github.com/smallbiznis/taxdoc/internal/customer/domain"
	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
	obslogger "github.com/smallbiznis/taxdoc/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/taxdoc/internal/observability/metrics"
	"github.com/smallbiznis/taxdoc/internal/providers/pdf"
	tenantdomain "github.com/smallbiznis/taxdoc/internal/tenant/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	batch.Module,
	customer.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(obsmetrics.HTTP()))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	batchSvc      batchdomain.Service
	batchRepo     batchdomain.Repository
	customerSvc   customerdomain.Service
	documents     documentdomain.Repository
	tenantSvc     tenantdomain.Service
	renderer      pdf.Provider
	batchLimiter  *rateLimiter
	importLimiter *rateLimiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	BatchSvc    batchdomain.Service
	BatchRepo   batchdomain.Repository
	CustomerSvc customerdomain.Service
	Documents   documentdomain.Repository
	TenantSvc   tenantdomain.Service
	Renderer    pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		batchSvc:      p.BatchSvc,
		batchRepo:     p.BatchRepo,
		customerSvc:   p.CustomerSvc,
		documents:     p.Documents,
		tenantSvc:     p.TenantSvc,
		renderer:      p.Renderer,
		batchLimiter:  newRateLimiter(30, time.Minute),
		importLimiter: newRateLimiter(10, time.Minute),
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1", RequireTenant())

	v1.POST("/batches", s.CreateBatch)
	v1.GET("/batches", s.ListBatchLogs)

	v1.GET("/documents", s.ListDocuments)
	v1.GET("/documents/:id", s.GetDocument)
	v1.GET("/documents/:id/pdf", s.RenderDocumentPDF)
	v1.GET("/exports/documents.csv", s.ExportDocuments)

	v1.POST("/imports/customers", s.ImportCustomers)
	v1.GET("/customers", s.ListCustomers)

	v1.GET("/tenant/settings", s.GetTenantSettings)
	v1.PUT("/tenant/settings", s.UpsertTenantSettings)
}
