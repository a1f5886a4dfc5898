package notify

import (
	"github.com/smallbiznis/taxdoc/internal/providers/email"
	"go.uber.org/fx"
)

var Module = fx.Module("notify.service",
	email.Module,
	fx.Provide(NewService),
)
