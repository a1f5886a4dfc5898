package document

import (
	"github.com/smallbiznis/taxdoc/internal/document/assembler"
	"github.com/smallbiznis/taxdoc/internal/document/repository"
	"github.com/smallbiznis/taxdoc/internal/sequence"
	"github.com/smallbiznis/taxdoc/internal/tax"
	"go.uber.org/fx"
)

var Module = fx.Module("document.service",
	tax.Module,
	sequence.Module,
	fx.Provide(repository.NewRepository),
	fx.Provide(assembler.New),
)
