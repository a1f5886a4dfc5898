package domain

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/taxdoc/internal/jurisdiction"
)

// RateResolver resolves the applicable GST rate (in percent) for one line
// item. The default implementation applies a single configured rate; the
// interface exists so a per-category or per-HSN rate table can be plugged in
// without touching the engine.
type RateResolver interface {
	RateFor(item LineItem) (decimal.Decimal, error)
}

// Engine computes jurisdiction-aware tax splits. Pure CPU work, no I/O.
type Engine interface {
	ComputeSplit(seller, buyer jurisdiction.Jurisdiction, items []LineItem) (*Computation, error)
}
