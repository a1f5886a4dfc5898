package order

import (
	"github.com/smallbiznis/taxdoc/internal/order/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("order.repository",
	fx.Provide(repository.NewRepository),
)
