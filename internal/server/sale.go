package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/lumistone/atelier/internal/customer/domain"
	"github.com/lumistone/atelier/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type recordSaleRequest struct {
	CustomerID string          `json:"customer_id"`
	SkuID      string          `json:"sku_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Notes      *string         `json:"notes"`
}

func (s *Server) RecordSale(c *gin.Context) {
	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.RecordSale(c.Request.Context(), customerdomain.SaleRequest{
		CustomerID: strings.TrimSpace(req.CustomerID),
		SkuID:      strings.TrimSpace(req.SkuID),
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		Notes:      req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type refundSaleRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) RefundSale(c *gin.Context) {
	var req refundSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Refund(c.Request.Context(), customerdomain.RefundRequest{
		SaleID: strings.TrimSpace(c.Param("id")),
		Reason: req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSales(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
		SkuID      string `form:"sku_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.ListSales(c.Request.Context(), customerdomain.SaleListRequest{
		CustomerID: strings.TrimSpace(query.CustomerID),
		SkuID:      strings.TrimSpace(query.SkuID),
		Status:     strings.TrimSpace(query.Status),
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
