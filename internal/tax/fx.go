package tax

import (
	"github.com/smallbiznis/taxdoc/internal/tax/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tax.service",
	fx.Provide(service.NewRateResolver),
	fx.Provide(service.NewEngine),
)
