package customer

import (
	"github.com/smallbiznis/taxdoc/internal/customer/repository"
	"github.com/smallbiznis/taxdoc/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
