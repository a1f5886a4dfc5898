// Package notify fans a generated document out to the tenant's configured
// notification channels. Channel failures are reported per channel and never
// affect the document itself.
package notify

import (
	"context"
	"fmt"
	"strings"

	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
	"github.com/smallbiznis/taxdoc/internal/providers/email"
	tenantdomain "github.com/smallbiznis/taxdoc/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const ChannelEmail = "email"

// ChannelResult is the outcome of one notification channel attempt.
type ChannelResult struct {
	Channel string
	Err     error
}

type Service interface {
	// Notify delivers doc over each requested channel and returns one result
	// per channel, in request order. Unknown channels fail their own slot.
	Notify(ctx context.Context, settings tenantdomain.Settings, doc *documentdomain.Document, channels []string) []ChannelResult
}

type Param struct {
	fx.In

	Email email.Provider
	Log   *zap.Logger
}

type service struct {
	email email.Provider
	log   *zap.Logger
}

func NewService(p Param) Service {
	return &service{
		email: p.Email,
		log:   p.Log.Named("notify.service"),
	}
}

func (s *service) Notify(ctx context.Context, settings tenantdomain.Settings, doc *documentdomain.Document, channels []string) []ChannelResult {
	results := make([]ChannelResult, 0, len(channels))
	for _, channel := range channels {
		var err error
		switch channel {
		case ChannelEmail:
			err = s.sendEmail(ctx, settings, doc)
		default:
			err = fmt.Errorf("unknown channel %q", channel)
		}
		if err != nil {
			s.log.Warn("notification failed",
				zap.String("channel", channel),
				zap.Int64("tenant_id", int64(doc.TenantID)),
				zap.String("number", doc.NumberText),
				zap.Error(err),
			)
		}
		results = append(results, ChannelResult{Channel: channel, Err: err})
	}
	return results
}

func (s *service) sendEmail(ctx context.Context, settings tenantdomain.Settings, doc *documentdomain.Document) error {
	to := strings.TrimSpace(settings.NotifyEmail)
	if to == "" {
		return fmt.Errorf("tenant has no notify email configured")
	}

	subject := fmt.Sprintf("%s %s issued", subjectKind(doc.Kind), doc.NumberText)
	body := fmt.Sprintf(
		"<p>%s <strong>%s</strong> has been issued for %s.</p><p>Grand total: %s</p>",
		subjectKind(doc.Kind), doc.NumberText, doc.BuyerName, doc.GrandTotal.StringFixed(2),
	)
	return s.email.Send(ctx, []string{to}, subject, body)
}

func subjectKind(kind documentdomain.DocumentKind) string {
	if kind == documentdomain.KindShippingLabel {
		return "Shipping label"
	}
	return "Invoice"
}
