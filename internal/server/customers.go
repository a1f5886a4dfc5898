package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/taxdoc/internal/customer/domain"
)

// ImportCustomers accepts a CSV body and imports it row by row. Rejected
// rows come back in the response; they never fail the whole upload.
func (s *Server) ImportCustomers(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if !s.importLimiter.Allow(tenant.String()) {
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 10<<20))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	allowDuplicates, _ := strconv.ParseBool(strings.TrimSpace(c.Query("allow_duplicates")))

	result, err := s.customerSvc.Import(c.Request.Context(), customerdomain.ImportRequest{
		TenantID:        tenant,
		CSV:             string(body),
		AllowDuplicates: allowDuplicates,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ListCustomers(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int32  `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListRequest{
		TenantID:  tenant,
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
