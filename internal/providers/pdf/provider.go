package pdf

import (
	"context"

	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
)

// Provider renders a generated document to printable bytes. Rendering is an
// optional post-step; its failure never reverts the document it rendered.
type Provider interface {
	RenderDocument(ctx context.Context, doc *documentdomain.Document) ([]byte, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) RenderDocument(ctx context.Context, doc *documentdomain.Document) ([]byte, error) {
	return nil, nil
}
