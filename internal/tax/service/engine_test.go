package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/taxdoc/internal/config"
	"github.com/smallbiznis/taxdoc/internal/jurisdiction"
	taxdomain "github.com/smallbiznis/taxdoc/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(defaultRate float64) taxdomain.Engine {
	holder := config.NewStaticTaxConfigHolder(config.TaxConfig{
		DefaultRatePercent: defaultRate,
		DefaultHSNCode:     "9999",
	})
	resolver := &defaultRateResolver{cfg: holder}
	return &engine{rates: resolver}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeSplitIntraState(t *testing.T) {
	eng := newTestEngine(18)
	maha := jurisdiction.Resolve("Maharashtra")

	comp, err := eng.ComputeSplit(maha, maha, []taxdomain.LineItem{
		{Description: "T-shirt", Quantity: 2, UnitPrice: dec("500"), Discount: decimal.Zero},
	})
	require.NoError(t, err)
	require.Len(t, comp.PerItem, 1)

	split := comp.PerItem[0]
	assert.True(t, comp.IntraState)
	assert.True(t, split.TaxableValue.Equal(dec("1000")), "taxable = %s", split.TaxableValue)
	assert.True(t, split.CGST.Equal(dec("90")), "cgst = %s", split.CGST)
	assert.True(t, split.SGST.Equal(dec("90")), "sgst = %s", split.SGST)
	assert.True(t, split.IGST.IsZero())
	assert.True(t, comp.Totals.GrandTotal.Equal(dec("1180")), "total = %s", comp.Totals.GrandTotal)
}

func TestComputeSplitOddPaiseHalvesStayEqual(t *testing.T) {
	eng := newTestEngine(18)
	maha := jurisdiction.Resolve("27")

	// Taxable 10.05 @18%: the full tax would round to 1.81, but each half
	// rounds to 0.90 on its own. CGST == SGST always wins; the combined tax
	// may sit one paisa under a single rounding of the full amount.
	comp, err := eng.ComputeSplit(maha, maha, []taxdomain.LineItem{
		{Description: "Sticker", Quantity: 1, UnitPrice: dec("10.05")},
	})
	require.NoError(t, err)
	require.Len(t, comp.PerItem, 1)

	split := comp.PerItem[0]
	assert.True(t, split.CGST.Equal(split.SGST))
	assert.True(t, split.CGST.Equal(dec("0.90")), "cgst = %s", split.CGST)
	assert.True(t, split.TaxAmount().Equal(dec("1.80")), "tax = %s", split.TaxAmount())
	assert.True(t, comp.Totals.GrandTotal.Equal(dec("11.85")))
}

func TestComputeSplitInterState(t *testing.T) {
	eng := newTestEngine(18)

	comp, err := eng.ComputeSplit(jurisdiction.Resolve("27"), jurisdiction.Resolve("07"), []taxdomain.LineItem{
		{Description: "T-shirt", Quantity: 2, UnitPrice: dec("500")},
	})
	require.NoError(t, err)
	require.Len(t, comp.PerItem, 1)

	split := comp.PerItem[0]
	assert.False(t, comp.IntraState)
	assert.True(t, split.CGST.IsZero())
	assert.True(t, split.SGST.IsZero())
	assert.True(t, split.IGST.Equal(dec("180")), "igst = %s", split.IGST)
	assert.True(t, comp.Totals.GrandTotal.Equal(dec("1180")))
}

func TestComputeSplitUnknownBuyerIsInterState(t *testing.T) {
	eng := newTestEngine(18)
	maha := jurisdiction.Resolve("Maharashtra")

	comp, err := eng.ComputeSplit(maha, jurisdiction.Resolve(""), []taxdomain.LineItem{
		{Description: "Export order", Quantity: 1, UnitPrice: dec("100")},
	})
	require.NoError(t, err)

	assert.Equal(t, jurisdiction.CodeUnknown, comp.Buyer.Code)
	assert.False(t, comp.IntraState)
	assert.True(t, comp.PerItem[0].IGST.Equal(dec("18")))
}

func TestComputeSplitExactlyOneSideOfSplitIsNonZero(t *testing.T) {
	eng := newTestEngine(18)
	maha := jurisdiction.Resolve("27")
	items := []taxdomain.LineItem{
		{Description: "a", Quantity: 3, UnitPrice: dec("133.33")},
		{Description: "b", Quantity: 1, UnitPrice: dec("0.01")},
		{Description: "c", Quantity: 7, UnitPrice: dec("249.99"), Discount: dec("100")},
	}

	for _, buyer := range []jurisdiction.Jurisdiction{maha, jurisdiction.Resolve("29")} {
		comp, err := eng.ComputeSplit(maha, buyer, items)
		require.NoError(t, err)
		for i, split := range comp.PerItem {
			hasLocal := !split.CGST.IsZero() || !split.SGST.IsZero()
			hasInter := !split.IGST.IsZero()
			assert.False(t, hasLocal && hasInter, "item %d has both cgst/sgst and igst", i)
			assert.True(t, split.CGST.Equal(split.SGST) || hasInter, "item %d cgst != sgst", i)
		}
	}
}

func TestComputeSplitDiscountClampAndRejection(t *testing.T) {
	eng := newTestEngine(18)
	maha := jurisdiction.Resolve("27")

	// Discount equal to gross leaves a zero-tax line, still valid.
	comp, err := eng.ComputeSplit(maha, maha, []taxdomain.LineItem{
		{Description: "freebie", Quantity: 1, UnitPrice: dec("250"), Discount: dec("250")},
	})
	require.NoError(t, err)
	assert.True(t, comp.PerItem[0].TaxableValue.IsZero())
	assert.True(t, comp.PerItem[0].TaxAmount().IsZero())

	// Discount beyond gross is a bad line item.
	_, err = eng.ComputeSplit(maha, maha, []taxdomain.LineItem{
		{Description: "oops", Quantity: 1, UnitPrice: dec("250"), Discount: dec("250.01")},
	})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidLineItem)
}

func TestComputeSplitRejectsInvalidItems(t *testing.T) {
	eng := newTestEngine(18)
	maha := jurisdiction.Resolve("27")

	cases := []struct {
		name string
		item taxdomain.LineItem
	}{
		{"zero quantity", taxdomain.LineItem{Quantity: 0, UnitPrice: dec("10")}},
		{"negative quantity", taxdomain.LineItem{Quantity: -1, UnitPrice: dec("10")}},
		{"negative price", taxdomain.LineItem{Quantity: 1, UnitPrice: dec("-10")}},
		{"negative discount", taxdomain.LineItem{Quantity: 1, UnitPrice: dec("10"), Discount: dec("-1")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.ComputeSplit(maha, maha, []taxdomain.LineItem{tc.item})
			assert.ErrorIs(t, err, taxdomain.ErrInvalidLineItem)
		})
	}
}

func TestComputeSplitPerItemRateOverride(t *testing.T) {
	eng := newTestEngine(18)
	maha := jurisdiction.Resolve("27")
	five := dec("5")

	comp, err := eng.ComputeSplit(maha, jurisdiction.Resolve("07"), []taxdomain.LineItem{
		{Description: "book", Quantity: 1, UnitPrice: dec("200"), RatePercent: &five},
	})
	require.NoError(t, err)
	assert.True(t, comp.PerItem[0].IGST.Equal(dec("10")))
	assert.True(t, comp.PerItem[0].RatePercent.Equal(five))
}

func TestComputeSplitRejectsBadRateOverride(t *testing.T) {
	eng := newTestEngine(18)
	maha := jurisdiction.Resolve("27")

	for _, raw := range []string{"-1", "101"} {
		rate := dec(raw)
		_, err := eng.ComputeSplit(maha, maha, []taxdomain.LineItem{
			{Description: "x", Quantity: 1, UnitPrice: dec("100"), RatePercent: &rate},
		})
		assert.ErrorIs(t, err, taxdomain.ErrInvalidRate)
	}
}

func TestComputeSplitTotalsAreExactSumsOfItems(t *testing.T) {
	eng := newTestEngine(18)
	maha := jurisdiction.Resolve("27")

	comp, err := eng.ComputeSplit(maha, maha, []taxdomain.LineItem{
		{Description: "a", Quantity: 1, UnitPrice: dec("0.03")},
		{Description: "b", Quantity: 1, UnitPrice: dec("0.03")},
		{Description: "c", Quantity: 1, UnitPrice: dec("0.03")},
	})
	require.NoError(t, err)

	var cgst, taxable, grand decimal.Decimal
	for _, split := range comp.PerItem {
		cgst = cgst.Add(split.CGST)
		taxable = taxable.Add(split.TaxableValue)
		grand = grand.Add(split.Total())
	}
	assert.True(t, comp.Totals.CGST.Equal(cgst))
	assert.True(t, comp.Totals.TaxableValue.Equal(taxable))
	assert.True(t, comp.Totals.GrandTotal.Equal(grand))
}
