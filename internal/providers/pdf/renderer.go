package pdf

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
	"github.com/smallbiznis/taxdoc/internal/jurisdiction"
)

type marotoProvider struct{}

func New() Provider {
	return &marotoProvider{}
}

func (p *marotoProvider) RenderDocument(ctx context.Context, doc *documentdomain.Document) ([]byte, error) {
	_ = ctx
	switch doc.Kind {
	case documentdomain.KindShippingLabel:
		return renderLabel(doc)
	default:
		return renderInvoice(doc)
	}
}

func renderInvoice(doc *documentdomain.Document) ([]byte, error) {
	var lines []documentdomain.Line
	if err := json.Unmarshal(doc.Lines, &lines); err != nil {
		return nil, fmt.Errorf("decode document lines: %w", err)
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Tax Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(18,
		col.New(6).Add(
			text.New("Invoice number: "+doc.NumberText, props.Text{Top: 0}),
			text.New("Date of issue: "+doc.CreatedAt.Format("02 Jan 2006"), props.Text{Top: 4}),
			text.New("Place of supply: "+stateLabel(doc.BuyerStateCode), props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(30,
		col.New(6).Add(
			text.New(doc.SellerName, props.Text{Style: fontstyle.Bold}),
			text.New("GSTIN: "+doc.SellerGSTIN, props.Text{Top: 5}),
			text.New(stateLabel(doc.SellerStateCode), props.Text{Top: 9}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(doc.BuyerName, props.Text{Top: 5}),
			text.New(doc.BillingAddress, props.Text{Top: 9}),
		),
	)

	m.AddRow(10,
		text.NewCol(4, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "HSN", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Taxable", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "CGST/SGST", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "IGST", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, line := range lines {
		m.AddRow(12,
			text.NewCol(4, line.Description, props.Text{Size: 9}),
			text.NewCol(1, line.HSNCode, props.Text{Size: 9}),
			text.NewCol(1, fmt.Sprintf("%d", line.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.TaxableValue.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.CGST.Add(line.SGST).StringFixed(2), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.IGST.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Taxable value", props.Text{Size: 9}),
		text.NewCol(2, doc.TaxableTotal.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "CGST", props.Text{Size: 9}),
		text.NewCol(2, doc.CGSTTotal.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "SGST", props.Text{Size: 9}),
		text.NewCol(2, doc.SGSTTotal.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "IGST", props.Text{Size: 9}),
		text.NewCol(2, doc.IGSTTotal.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, doc.GrandTotal.StringFixed(2), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	rendered, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return rendered.GetBytes(), nil
}

func renderLabel(doc *documentdomain.Document) ([]byte, error) {
	m := maroto.New(config.NewBuilder().Build())

	m.AddRow(12,
		text.NewCol(12, "Shipping Label "+doc.NumberText, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
		}),
	)

	m.AddRow(30,
		col.New(6).Add(
			text.New("From", props.Text{Style: fontstyle.Bold}),
			text.New(doc.SellerName, props.Text{Top: 5}),
			text.New(stateLabel(doc.SellerStateCode), props.Text{Top: 9}),
		),
		col.New(6).Add(
			text.New("Deliver to", props.Text{Style: fontstyle.Bold}),
			text.New(doc.BuyerName, props.Text{Top: 5}),
			text.New(doc.ShippingAddress, props.Text{Top: 9}),
		),
	)

	m.AddRow(20,
		col.New(4).Add(
			text.New("Courier", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(doc.Courier, props.Text{Top: 4, Size: 9}),
		),
		col.New(4).Add(
			text.New("Weight", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(fmt.Sprintf("%d g", doc.WeightGrams), props.Text{Top: 4, Size: 9}),
		),
		col.New(4).Add(
			text.New("COD amount", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(doc.CODAmount.StringFixed(2), props.Text{Top: 4, Size: 9}),
		),
	)

	rendered, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return rendered.GetBytes(), nil
}

func stateLabel(code string) string {
	if j, ok := jurisdiction.ByCode(code); ok {
		return fmt.Sprintf("%s (%s)", j.Name, j.Code)
	}
	return code
}
