// Package domain contains the generated billing documents.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DocumentKind is the closed set of document variants. Batch and export code
// dispatch through this enum, never through free-form strings.
type DocumentKind string

const (
	KindInvoice       DocumentKind = "invoice"
	KindShippingLabel DocumentKind = "shipping_label"
)

func (k DocumentKind) String() string { return string(k) }

func (k DocumentKind) Valid() bool {
	switch k {
	case KindInvoice, KindShippingLabel:
		return true
	}
	return false
}

// ParseKind maps caller input to a DocumentKind.
func ParseKind(raw string) (DocumentKind, error) {
	kind := DocumentKind(raw)
	if !kind.Valid() {
		return "", ErrInvalidKind
	}
	return kind, nil
}

// DocumentStatus represents document lifecycle states. Transitions are owned
// by surrounding workflow code; generation only ever writes ISSUED.
type DocumentStatus string

const (
	DocumentStatusIssued    DocumentStatus = "ISSUED"
	DocumentStatusVoid      DocumentStatus = "VOID"
	DocumentStatusDelivered DocumentStatus = "DELIVERED"
)

// Document is one generated invoice or shipping label. Number is immutable
// after creation and unique within (tenant, kind).
type Document struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	TenantID       snowflake.ID `gorm:"column:tenant_id;not null;index;uniqueIndex:ux_documents_tenant_kind_number"`
	Kind           DocumentKind `gorm:"type:text;not null;uniqueIndex:ux_documents_tenant_kind_number"`
	Number         int64        `gorm:"not null;uniqueIndex:ux_documents_tenant_kind_number"`
	NumberText     string       `gorm:"column:number_text;type:text;not null"`
	SourceRecordID snowflake.ID `gorm:"column:source_record_id;not null;index"`

	SellerName      string `gorm:"type:text;not null"`
	SellerGSTIN     string `gorm:"column:seller_gstin;type:text;not null"`
	SellerStateCode string `gorm:"column:seller_state_code;type:char(2);not null"`

	BuyerName      string `gorm:"type:text;not null"`
	BuyerGSTIN     string `gorm:"column:buyer_gstin;type:text"`
	BuyerStateCode string `gorm:"column:buyer_state_code;type:char(2);not null"`

	// ShippingAddress is display-only; it never influences taxation.
	ShippingAddress string `gorm:"type:text"`
	BillingAddress  string `gorm:"type:text"`

	Lines datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`

	TaxableTotal decimal.Decimal `gorm:"column:taxable_total;type:numeric(14,2);not null"`
	CGSTTotal    decimal.Decimal `gorm:"column:cgst_total;type:numeric(14,2);not null"`
	SGSTTotal    decimal.Decimal `gorm:"column:sgst_total;type:numeric(14,2);not null"`
	IGSTTotal    decimal.Decimal `gorm:"column:igst_total;type:numeric(14,2);not null"`
	GrandTotal   decimal.Decimal `gorm:"column:grand_total;type:numeric(14,2);not null"`

	// Shipment fields, populated for shipping labels.
	Courier     string          `gorm:"type:text"`
	WeightGrams int64           `gorm:"column:weight_grams;not null;default:0"`
	CODAmount   decimal.Decimal `gorm:"column:cod_amount;type:numeric(12,2);not null;default:0"`

	Status    DocumentStatus `gorm:"type:text;not null;default:'ISSUED'"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Document) TableName() string { return "documents" }

// Line is one serialized document line stored in the Lines JSON column.
type Line struct {
	Description  string          `json:"description"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Discount     decimal.Decimal `json:"discount"`
	HSNCode      string          `json:"hsn_code"`
	RatePercent  decimal.Decimal `json:"rate_percent"`
	TaxableValue decimal.Decimal `json:"taxable_value"`
	CGST         decimal.Decimal `json:"cgst"`
	SGST         decimal.Decimal `json:"sgst"`
	IGST         decimal.Decimal `json:"igst"`
	LineTotal    decimal.Decimal `json:"line_total"`
}
