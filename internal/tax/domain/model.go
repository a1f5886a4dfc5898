package domain

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/taxdoc/internal/jurisdiction"
)

// LineItem is one chargeable line on a source order. It is constructed per
// document request and never persisted on its own.
type LineItem struct {
	Description string           `json:"description"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Discount    decimal.Decimal  `json:"discount"`
	Category    string           `json:"category,omitempty"`
	HSNCode     string           `json:"hsn_code,omitempty"`
	RatePercent *decimal.Decimal `json:"rate_percent,omitempty"` // overrides the default rate when set
}

func (i LineItem) Validate() error {
	if i.Quantity <= 0 {
		return ErrInvalidLineItem
	}
	if i.UnitPrice.IsNegative() {
		return ErrInvalidLineItem
	}
	if i.Discount.IsNegative() {
		return ErrInvalidLineItem
	}
	return nil
}

// TaxSplit is the computed tax breakdown for one line item. Exactly one of
// {CGST+SGST} or {IGST} is non-zero, never both.
type TaxSplit struct {
	TaxableValue decimal.Decimal `json:"taxable_value"`
	CGST         decimal.Decimal `json:"cgst"`
	SGST         decimal.Decimal `json:"sgst"`
	IGST         decimal.Decimal `json:"igst"`
	RatePercent  decimal.Decimal `json:"rate_percent"`
}

// TaxAmount returns the total tax on the line.
func (s TaxSplit) TaxAmount() decimal.Decimal {
	return s.CGST.Add(s.SGST).Add(s.IGST)
}

// Total returns taxable value plus tax.
func (s TaxSplit) Total() decimal.Decimal {
	return s.TaxableValue.Add(s.TaxAmount())
}

// Totals aggregates per-item splits. Values are exact sums of the already
// rounded item figures; nothing is re-rounded here.
type Totals struct {
	TaxableValue decimal.Decimal `json:"taxable_value"`
	CGST         decimal.Decimal `json:"cgst"`
	SGST         decimal.Decimal `json:"sgst"`
	IGST         decimal.Decimal `json:"igst"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
}

// Computation is the result of a ComputeSplit call.
type Computation struct {
	Seller  jurisdiction.Jurisdiction
	Buyer   jurisdiction.Jurisdiction
	PerItem []TaxSplit
	Totals  Totals
	// IntraState records whether CGST/SGST applied (seller and buyer in the
	// same known state) as opposed to IGST.
	IntraState bool
}
