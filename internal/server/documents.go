package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
	"github.com/smallbiznis/taxdoc/internal/tabular"
	"github.com/smallbiznis/taxdoc/pkg/db/pagination"
)

func (s *Server) ListDocuments(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	filter, err := documentListFilter(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	docs, err := s.documents.List(c.Request.Context(), tenant, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	limit := filter.PageSize
	if limit <= 0 {
		limit = 25
	}
	pageInfo, docs := pagination.BuildCursorPageInfo(docs, limit, func(doc *documentdomain.Document) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: doc.ID.String()})
		return token
	})

	c.JSON(http.StatusOK, gin.H{
		"data":      docs,
		"page_info": pageInfo,
	})
}

func (s *Server) GetDocument(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, documentdomain.ErrNotFound)
		return
	}

	doc, err := s.documents.FindByID(c.Request.Context(), tenant, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": doc})
}

func (s *Server) RenderDocumentPDF(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, documentdomain.ErrNotFound)
		return
	}

	doc, err := s.documents.FindByID(c.Request.Context(), tenant, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pdfBytes, err := s.renderer.RenderDocument(c.Request.Context(), doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.NumberText+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func (s *Server) ExportDocuments(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	// Exports are not paginated; one request returns up to the row cap.
	const exportRowCap = 10000
	filter := documentdomain.ListFilter{
		Kind:     documentdomain.KindInvoice,
		PageSize: exportRowCap,
	}
	if raw := strings.TrimSpace(c.Query("kind")); raw != "" {
		kind, err := documentdomain.ParseKind(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		filter.Kind = kind
	}

	docs, err := s.documents.List(c.Request.Context(), tenant, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if len(docs) > filter.PageSize {
		docs = docs[:filter.PageSize]
	}

	out, err := tabular.EncodeDocuments(filter.Kind, docs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="documents.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}

func documentListFilter(c *gin.Context) (documentdomain.ListFilter, error) {
	var query struct {
		pagination.Pagination
		Kind string `form:"kind"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		return documentdomain.ListFilter{}, invalidRequestError()
	}

	filter := documentdomain.ListFilter{
		PageSize: query.PageSize,
	}
	if query.PageToken != "" {
		cursor, err := pagination.DecodeCursor(query.PageToken)
		if err != nil {
			return documentdomain.ListFilter{}, newValidationError("page_token", "invalid_page_token", "invalid page token")
		}
		// The cursor id feeds a keyset comparison, so it must be a real
		// snowflake before it reaches the query.
		if _, err := snowflake.ParseString(cursor.ID); err != nil {
			return documentdomain.ListFilter{}, newValidationError("page_token", "invalid_page_token", "invalid page token")
		}
		filter.PageToken = cursor.ID
	}
	if raw := strings.TrimSpace(query.Kind); raw != "" {
		kind, err := documentdomain.ParseKind(raw)
		if err != nil {
			return documentdomain.ListFilter{}, err
		}
		filter.Kind = kind
	}
	return filter, nil
}
