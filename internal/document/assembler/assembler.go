// Package assembler composes billing documents from source orders.
package assembler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxdoc/internal/clock"
	"github.com/smallbiznis/taxdoc/internal/config"
	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
	"github.com/smallbiznis/taxdoc/internal/jurisdiction"
	orderdomain "github.com/smallbiznis/taxdoc/internal/order/domain"
	seqdomain "github.com/smallbiznis/taxdoc/internal/sequence/domain"
	taxdomain "github.com/smallbiznis/taxdoc/internal/tax/domain"
	tenantdomain "github.com/smallbiznis/taxdoc/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Assembler builds one Document from one order. Settings validation happens
// before sequence allocation so a misconfigured tenant never burns a number.
type Assembler interface {
	Assemble(ctx context.Context, order *orderdomain.Order, settings tenantdomain.Settings, kind documentdomain.DocumentKind) (*documentdomain.Document, error)
}

type Param struct {
	fx.In

	Engine    taxdomain.Engine
	Allocator seqdomain.Allocator
	Documents documentdomain.Repository
	TaxConfig *config.TaxConfigHolder
	GenID     *snowflake.Node
	Clock     clock.Clock
	Log       *zap.Logger
}

type assembler struct {
	engine    taxdomain.Engine
	allocator seqdomain.Allocator
	documents documentdomain.Repository
	taxCfg    *config.TaxConfigHolder
	genID     *snowflake.Node
	clock     clock.Clock
	log       *zap.Logger
}

func New(p Param) Assembler {
	return &assembler{
		engine:    p.Engine,
		allocator: p.Allocator,
		documents: p.Documents,
		taxCfg:    p.TaxConfig,
		genID:     p.GenID,
		clock:     p.Clock,
		log:       p.Log.Named("assembler"),
	}
}

func (a *assembler) Assemble(ctx context.Context, order *orderdomain.Order, settings tenantdomain.Settings, kind documentdomain.DocumentKind) (*documentdomain.Document, error) {
	if !kind.Valid() {
		return nil, documentdomain.ErrInvalidKind
	}
	if err := settings.ValidateForDocuments(kind.String()); err != nil {
		return nil, err
	}

	seller := settings.SellerJurisdiction()
	buyer := a.buyerJurisdiction(order)

	items := make([]taxdomain.LineItem, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, taxdomain.LineItem{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Discount:    line.Discount,
			Category:    line.Category,
			HSNCode:     a.classificationCode(line),
			RatePercent: line.RatePercent,
		})
	}

	comp, err := a.engine.ComputeSplit(seller, buyer, items)
	if err != nil {
		return nil, err
	}

	issued, numberText, err := a.allocator.Formatted(ctx, order.TenantID, kind.String(), settings.PrefixFor(kind.String()))
	if err != nil {
		return nil, err
	}

	lines := make([]documentdomain.Line, 0, len(items))
	for i, item := range items {
		split := comp.PerItem[i]
		lines = append(lines, documentdomain.Line{
			Description:  item.Description,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Discount:     item.Discount,
			HSNCode:      item.HSNCode,
			RatePercent:  split.RatePercent,
			TaxableValue: split.TaxableValue,
			CGST:         split.CGST,
			SGST:         split.SGST,
			IGST:         split.IGST,
			LineTotal:    split.Total(),
		})
	}
	rawLines, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", documentdomain.ErrAssemblyFailed, err)
	}

	doc := &documentdomain.Document{
		ID:              a.genID.Generate(),
		TenantID:        order.TenantID,
		Kind:            kind,
		Number:          issued.Number,
		NumberText:      numberText,
		SourceRecordID:  order.ID,
		SellerName:      settings.LegalName,
		SellerGSTIN:     settings.GSTIN,
		SellerStateCode: seller.Code,
		BuyerName:       order.CustomerName,
		BuyerGSTIN:      order.BuyerGSTIN,
		BuyerStateCode:  buyer.Code,
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		Lines:           datatypes.JSON(rawLines),
		TaxableTotal:    comp.Totals.TaxableValue,
		CGSTTotal:       comp.Totals.CGST,
		SGSTTotal:       comp.Totals.SGST,
		IGSTTotal:       comp.Totals.IGST,
		GrandTotal:      comp.Totals.GrandTotal,
		Status:          documentdomain.DocumentStatusIssued,
		CreatedAt:       a.clock.Now(),
	}
	if kind == documentdomain.KindShippingLabel {
		doc.Courier = order.Courier
		doc.WeightGrams = order.WeightGrams
		doc.CODAmount = order.CODAmount
	}

	if err := a.documents.Save(ctx, doc); err != nil {
		// The allocated number is consumed for good; record the gap so the
		// audit trail explains the hole in the series.
		a.log.Warn("document persistence failed after sequence allocation",
			zap.String("tenant_id", order.TenantID.String()),
			zap.String("kind", kind.String()),
			zap.String("number", numberText),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", documentdomain.ErrAssemblyFailed, err)
	}
	return doc, nil
}

// buyerJurisdiction prefers the billing state; shipping state is only a
// fallback when no billing state is present at all.
func (a *assembler) buyerJurisdiction(order *orderdomain.Order) jurisdiction.Jurisdiction {
	if strings.TrimSpace(order.BillingState) != "" {
		return jurisdiction.Resolve(order.BillingState)
	}
	return jurisdiction.Resolve(order.ShippingState)
}

func (a *assembler) classificationCode(line orderdomain.OrderItem) string {
	if strings.TrimSpace(line.HSNCode) != "" {
		return line.HSNCode
	}
	cfg := a.taxCfg.Get()
	if code, ok := cfg.CategoryHSNCodes[strings.ToLower(strings.TrimSpace(line.Category))]; ok {
		return code
	}
	return cfg.DefaultHSNCode
}
