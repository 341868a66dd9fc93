package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	skudomain "github.com/lumistone/atelier/internal/sku/domain"
	"github.com/shopspring/decimal"
)

type createProductRequest struct {
	Materials    []skudomain.MaterialInput `json:"materials"`
	ProductName  string                    `json:"product_name"`
	SellingPrice decimal.Decimal           `json:"selling_price"`
	LaborCost    decimal.Decimal           `json:"labor_cost"`
	CraftCost    decimal.Decimal           `json:"craft_cost"`
	Quantity     int                       `json:"quantity"`
	Photos       []string                  `json:"photos"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.skuSvc.CreateFromMaterials(c.Request.Context(), skudomain.CreateRequest{
		Materials:    req.Materials,
		ProductName:  strings.TrimSpace(req.ProductName),
		SellingPrice: req.SellingPrice,
		LaborCost:    req.LaborCost,
		CraftCost:    req.CraftCost,
		Quantity:     req.Quantity,
		Photos:       req.Photos,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateProductBatch(c *gin.Context) {
	var req skudomain.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.skuSvc.CreateBatch(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Name    string `form:"name"`
		Status  string `form:"status"`
		SortBy  string `form:"sort_by"`
		OrderBy string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.skuSvc.List(c.Request.Context(), skudomain.ListRequest{
		Name:    strings.TrimSpace(query.Name),
		Status:  strings.TrimSpace(query.Status),
		SortBy:  strings.TrimSpace(query.SortBy),
		OrderBy: strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.skuSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProductLogs(c *gin.Context) {
	resp, err := s.skuSvc.Logs(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type adjustProductRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

func (s *Server) AdjustProduct(c *gin.Context) {
	var req adjustProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.skuSvc.Adjust(c.Request.Context(), skudomain.AdjustRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Delta:  req.Delta,
		Reason: req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type destroyProductRequest struct {
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

func (s *Server) DestroyProduct(c *gin.Context) {
	var req destroyProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.skuSvc.Destroy(c.Request.Context(), skudomain.DestroyRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		Quantity: req.Quantity,
		Reason:   req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateProduct(c *gin.Context) {
	resp, err := s.skuSvc.Deactivate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isProductValidationError(err error) bool {
	switch err {
	case skudomain.ErrInvalidName,
		skudomain.ErrInvalidPrice,
		skudomain.ErrInvalidQuantity,
		skudomain.ErrInvalidID,
		skudomain.ErrPurchaseLot,
		skudomain.ErrLotNotFinished,
		skudomain.ErrEmptyBatch:
		return true
	default:
		return false
	}
}
