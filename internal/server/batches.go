package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	batchdomain "github.com/smallbiznis/taxdoc/internal/batch/domain"
	documentdomain "github.com/smallbiznis/taxdoc/internal/document/domain"
)

type createBatchRequest struct {
	Kind            string   `json:"kind"`
	OrderIDs        []string `json:"order_ids"`
	RenderPDF       bool     `json:"render_pdf"`
	Notify          []string `json:"notify"`
	Workers         int      `json:"workers"`
	ItemTimeoutSecs int      `json:"item_timeout_secs"`
}

type batchResponse struct {
	RunID       string                    `json:"run_id"`
	Kind        string                    `json:"kind"`
	Requested   int                       `json:"requested"`
	Succeeded   int                       `json:"succeeded"`
	Failed      int                       `json:"failed"`
	Successes   []batchdomain.ItemSuccess `json:"successes"`
	Failures    []batchdomain.ItemFailure `json:"failures"`
	StartedAt   time.Time                 `json:"started_at"`
	CompletedAt time.Time                 `json:"completed_at"`
}

func (s *Server) CreateBatch(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if !s.batchLimiter.Allow(tenant.String()) {
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	kind, err := documentdomain.ParseKind(strings.TrimSpace(req.Kind))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ids := make([]snowflake.ID, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil {
			AbortWithError(c, newValidationError("order_ids", "invalid_order_id", "order ids must be numeric"))
			return
		}
		ids = append(ids, id)
	}

	result, err := s.batchSvc.Run(c.Request.Context(), tenant, ids, kind, batchdomain.Options{
		RenderPDF:   req.RenderPDF,
		Notify:      req.Notify,
		Workers:     req.Workers,
		ItemTimeout: time.Duration(req.ItemTimeoutSecs) * time.Second,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": batchResponse{
		RunID:       result.RunID,
		Kind:        result.Kind.String(),
		Requested:   result.Requested,
		Succeeded:   result.Succeeded(),
		Failed:      result.Failed(),
		Successes:   result.Successes,
		Failures:    result.Failures,
		StartedAt:   result.StartedAt,
		CompletedAt: result.CompletedAt,
	}})
}

func (s *Server) ListBatchLogs(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	logs, err := s.batchRepo.ListLogs(c.Request.Context(), tenant, query.Limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}
