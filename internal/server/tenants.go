package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/smallbiznis/taxdoc/internal/tenant/domain"
)

type upsertTenantSettingsRequest struct {
	LegalName       string `json:"legal_name"`
	GSTIN           string `json:"gstin"`
	SellerStateCode string `json:"seller_state_code"`
	Address         string `json:"address"`
	InvoicePrefix   string `json:"invoice_prefix"`
	LabelPrefix     string `json:"label_prefix"`
	NotifyEmail     string `json:"notify_email"`
}

func (s *Server) GetTenantSettings(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	settings, err := s.tenantSvc.Get(c.Request.Context(), tenant)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (s *Server) UpsertTenantSettings(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req upsertTenantSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.LegalName) == "" {
		AbortWithError(c, newValidationError("legal_name", "invalid_legal_name", "legal name is required"))
		return
	}

	settings, err := s.tenantSvc.Upsert(c.Request.Context(), tenantdomain.Settings{
		TenantID:        tenant,
		LegalName:       strings.TrimSpace(req.LegalName),
		GSTIN:           req.GSTIN,
		SellerStateCode: req.SellerStateCode,
		Address:         strings.TrimSpace(req.Address),
		InvoicePrefix:   strings.TrimSpace(req.InvoicePrefix),
		LabelPrefix:     strings.TrimSpace(req.LabelPrefix),
		NotifyEmail:     strings.TrimSpace(req.NotifyEmail),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}
