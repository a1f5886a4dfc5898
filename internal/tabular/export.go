package tabular

import (
	"strconv"

	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
)

// Export column order is part of the external contract; downstream
// spreadsheets key on position, so these lists never get reordered.
var (
	invoiceColumns = []string{
		"number", "status", "created_at",
		"seller_name", "seller_gstin", "seller_state",
		"buyer_name", "buyer_gstin", "buyer_state",
		"taxable_total", "cgst_total", "sgst_total", "igst_total", "grand_total",
	}
	labelColumns = []string{
		"number", "status", "created_at",
		"seller_name", "buyer_name", "shipping_address",
		"courier", "weight_grams", "cod_amount",
	}
)

// ExportColumns returns the fixed header row for kind.
func ExportColumns(kind documentdomain.DocumentKind) []string {
	if kind == documentdomain.KindShippingLabel {
		return labelColumns
	}
	return invoiceColumns
}

// EncodeDocuments renders documents of one kind as CSV text with the fixed
// column order for that kind.
func EncodeDocuments(kind documentdomain.DocumentKind, docs []*documentdomain.Document) (string, error) {
	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, documentRow(kind, doc))
	}
	return Encode(ExportColumns(kind), rows)
}

func documentRow(kind documentdomain.DocumentKind, doc *documentdomain.Document) []string {
	createdAt := doc.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	if kind == documentdomain.KindShippingLabel {
		return []string{
			doc.NumberText,
			string(doc.Status),
			createdAt,
			doc.SellerName,
			doc.BuyerName,
			doc.ShippingAddress,
			doc.Courier,
			strconv.FormatInt(doc.WeightGrams, 10),
			doc.CODAmount.StringFixed(2),
		}
	}
	return []string{
		doc.NumberText,
		string(doc.Status),
		createdAt,
		doc.SellerName,
		doc.SellerGSTIN,
		doc.SellerStateCode,
		doc.BuyerName,
		doc.BuyerGSTIN,
		doc.BuyerStateCode,
		doc.TaxableTotal.StringFixed(2),
		doc.CGSTTotal.StringFixed(2),
		doc.SGSTTotal.StringFixed(2),
		doc.IGSTTotal.StringFixed(2),
		doc.GrandTotal.StringFixed(2),
	}
}
