package sequence

import (
	"github.com/smallbiznis/taxdoc/internal/sequence/repository"
	"github.com/smallbiznis/taxdoc/internal/sequence/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sequence.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewAllocator),
)
