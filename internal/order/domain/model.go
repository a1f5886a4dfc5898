// Package domain contains the source order records that billing documents
// and shipment labels are generated from.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is one source record. Billing state decides taxation; the shipping
// address is carried for display and label generation only.
type Order struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	TenantID snowflake.ID `gorm:"column:tenant_id;not null;index"`

	Reference string `gorm:"type:text;not null"` // storefront order number

	CustomerName  string `gorm:"type:text;not null"`
	CustomerEmail string `gorm:"type:text"`
	CustomerPhone string `gorm:"type:text"`
	BuyerGSTIN    string `gorm:"column:buyer_gstin;type:text"`

	BillingAddress  string `gorm:"type:text"`
	BillingState    string `gorm:"column:billing_state;type:text"`
	ShippingAddress string `gorm:"type:text"`
	ShippingState   string `gorm:"column:shipping_state;type:text"`

	// Shipment fields used for label documents.
	Courier     string          `gorm:"type:text"`
	WeightGrams int64           `gorm:"column:weight_grams;not null;default:0"`
	CODAmount   decimal.Decimal `gorm:"column:cod_amount;type:numeric(12,2);not null;default:0"`

	Status    OrderStatus `gorm:"type:text;not null;default:'PENDING'"`
	Items     []OrderItem `gorm:"foreignKey:OrderID"`
	CreatedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one purchased line on an order.
type OrderItem struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	TenantID snowflake.ID `gorm:"column:tenant_id;not null;index"`
	OrderID  snowflake.ID `gorm:"column:order_id;not null;index"`

	Description string           `gorm:"type:text;not null"`
	Quantity    int64            `gorm:"not null"`
	UnitPrice   decimal.Decimal  `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Discount    decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0"`
	Category    string           `gorm:"type:text"`
	HSNCode     string           `gorm:"column:hsn_code;type:text"`
	RatePercent *decimal.Decimal `gorm:"column:rate_percent;type:numeric(6,3)"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (OrderItem) TableName() string { return "order_items" }
