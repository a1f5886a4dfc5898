package batch

import (
	"github.com/smallbiznis/taxdoc/internal/batch/repository"
	"github.com/smallbiznis/taxdoc/internal/batch/service"
	"github.com/smallbiznis/taxdoc/internal/document"
	"github.com/smallbiznis/taxdoc/internal/notify"
	"github.com/smallbiznis/taxdoc/internal/order"
	"github.com/smallbiznis/taxdoc/internal/providers/pdf"
	"github.com/smallbiznis/taxdoc/internal/tenant"
	"go.uber.org/fx"
)

var Module = fx.Module("batch.service",
	document.Module,
	order.Module,
	tenant.Module,
	notify.Module,
	pdf.Module,
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
