package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	financedomain "github.com/lumistone/atelier/internal/finance/domain"
	"github.com/shopspring/decimal"
)

type createFinancialRecordRequest struct {
	RecordType  string          `json:"record_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	RecordedAt  *time.Time      `json:"recorded_at"`
}

func (s *Server) CreateFinancialRecord(c *gin.Context) {
	var req createFinancialRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.financeSvc.Record(c.Request.Context(), financedomain.CreateRequest{
		RecordType:  strings.TrimSpace(req.RecordType),
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		RecordedAt:  req.RecordedAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListFinancialRecords(c *gin.Context) {
	var query struct {
		RecordType string `form:"record_type"`
		From       string `form:"from"`
		To         string `form:"to"`
		SortBy     string `form:"sort_by"`
		OrderBy    string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.financeSvc.List(c.Request.Context(), financedomain.ListRequest{
		RecordType: strings.TrimSpace(query.RecordType),
		From:       from,
		To:         to,
		SortBy:     strings.TrimSpace(query.SortBy),
		OrderBy:    strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) FinancialSummary(c *gin.Context) {
	var query struct {
		From string `form:"from"`
		To   string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.financeSvc.Summary(c.Request.Context(), financedomain.SummaryRequest{
		From: from,
		To:   to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
