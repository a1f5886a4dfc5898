package service

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/taxdoc/internal/config"
	"github.com/smallbiznis/taxdoc/internal/jurisdiction"
	taxdomain "github.com/smallbiznis/taxdoc/internal/tax/domain"
	"go.uber.org/fx"
)

var (
	oneHundred = decimal.NewFromInt(100)
	twoHundred = decimal.NewFromInt(200)
)

type ResolverParam struct {
	fx.In

	TaxConfig *config.TaxConfigHolder
}

type defaultRateResolver struct {
	cfg *config.TaxConfigHolder
}

// NewRateResolver returns the default resolver: a caller-supplied per-item
// rate wins, otherwise the single configured default applies regardless of
// category.
func NewRateResolver(p ResolverParam) taxdomain.RateResolver {
	return &defaultRateResolver{cfg: p.TaxConfig}
}

func (r *defaultRateResolver) RateFor(item taxdomain.LineItem) (decimal.Decimal, error) {
	if item.RatePercent != nil {
		rate := *item.RatePercent
		if rate.IsNegative() || rate.GreaterThan(oneHundred) {
			return decimal.Zero, taxdomain.ErrInvalidRate
		}
		return rate, nil
	}
	return decimal.NewFromFloat(r.cfg.Get().DefaultRatePercent), nil
}

type EngineParam struct {
	fx.In

	Rates taxdomain.RateResolver
}

type engine struct {
	rates taxdomain.RateResolver
}

func NewEngine(p EngineParam) taxdomain.Engine {
	return &engine{rates: p.Rates}
}

// ComputeSplit computes the per-item and aggregate GST breakdown.
//
// Seller and buyer in the same known state split the tax into equal CGST and
// SGST halves; any other pairing, including an unresolved buyer state, is
// IGST. Amounts are rounded half-up to 2 decimal places exactly once, here;
// totals are plain sums of the rounded item figures so item-level and
// total-level numbers can never drift apart.
func (e *engine) ComputeSplit(seller, buyer jurisdiction.Jurisdiction, items []taxdomain.LineItem) (*taxdomain.Computation, error) {
	intra := buyer.Code != jurisdiction.CodeUnknown && seller.Code == buyer.Code

	comp := &taxdomain.Computation{
		Seller:     seller,
		Buyer:      buyer,
		PerItem:    make([]taxdomain.TaxSplit, 0, len(items)),
		IntraState: intra,
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}

		rate, err := e.rates.RateFor(item)
		if err != nil {
			return nil, err
		}

		gross := item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
		taxable := gross.Sub(item.Discount)
		if taxable.IsNegative() {
			return nil, taxdomain.ErrInvalidLineItem
		}
		taxable = taxable.Round(2)

		split := taxdomain.TaxSplit{
			TaxableValue: taxable,
			RatePercent:  rate,
		}
		if intra {
			// Each half is computed at rate/2 and rounded independently,
			// which keeps CGST == SGST by construction. At odd-paise taxes
			// the two halves can sum one paisa under a single rounding of
			// the full tax; equal halves are the invariant that holds.
			half := taxable.Mul(rate).Div(twoHundred).Round(2)
			split.CGST = half
			split.SGST = half
		} else {
			split.IGST = taxable.Mul(rate).Div(oneHundred).Round(2)
		}

		comp.PerItem = append(comp.PerItem, split)
		comp.Totals.TaxableValue = comp.Totals.TaxableValue.Add(split.TaxableValue)
		comp.Totals.CGST = comp.Totals.CGST.Add(split.CGST)
		comp.Totals.SGST = comp.Totals.SGST.Add(split.SGST)
		comp.Totals.IGST = comp.Totals.IGST.Add(split.IGST)
		comp.Totals.GrandTotal = comp.Totals.GrandTotal.Add(split.Total())
	}

	return comp, nil
}
