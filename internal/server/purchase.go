package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	purchasedomain "github.com/lumistone/atelier/internal/purchase/domain"
	"github.com/shopspring/decimal"
)

type createPurchaseRequest struct {
	MaterialType string          `json:"material_type"`
	Name         string          `json:"name"`
	Quality      string          `json:"quality"`
	PieceCount   int             `json:"piece_count"`
	BeadCount    int             `json:"bead_count"`
	StringCount  int             `json:"string_count"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Notes        *string         `json:"notes"`
	Photos       []string        `json:"photos"`
}

func (s *Server) CreatePurchase(c *gin.Context) {
	var req createPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.purchaseSvc.Intake(c.Request.Context(), purchasedomain.CreateRequest{
		MaterialType: strings.TrimSpace(req.MaterialType),
		Name:         strings.TrimSpace(req.Name),
		Quality:      strings.TrimSpace(req.Quality),
		PieceCount:   req.PieceCount,
		BeadCount:    req.BeadCount,
		StringCount:  req.StringCount,
		UnitPrice:    req.UnitPrice,
		Notes:        req.Notes,
		Photos:       req.Photos,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPurchases(c *gin.Context) {
	var query struct {
		MaterialType string `form:"material_type"`
		Status       string `form:"status"`
		Quality      string `form:"quality"`
		SortBy       string `form:"sort_by"`
		OrderBy      string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.purchaseSvc.List(c.Request.Context(), purchasedomain.ListRequest{
		MaterialType: strings.TrimSpace(query.MaterialType),
		Status:       strings.TrimSpace(query.Status),
		Quality:      strings.TrimSpace(query.Quality),
		SortBy:       strings.TrimSpace(query.SortBy),
		OrderBy:      strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPurchaseByID(c *gin.Context) {
	resp, err := s.purchaseSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePurchaseRequest struct {
	Quality *string `json:"quality"`
	Notes   *string `json:"notes"`
	Status  *string `json:"status"`
}

func (s *Server) UpdatePurchase(c *gin.Context) {
	var req updatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.purchaseSvc.Update(c.Request.Context(), purchasedomain.UpdateRequest{
		ID:      strings.TrimSpace(c.Param("id")),
		Quality: req.Quality,
		Notes:   req.Notes,
		Status:  req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isPurchaseValidationError(err error) bool {
	switch err {
	case purchasedomain.ErrInvalidMaterialType,
		purchasedomain.ErrInvalidName,
		purchasedomain.ErrInvalidQuality,
		purchasedomain.ErrInvalidQuantity,
		purchasedomain.ErrInvalidPrice,
		purchasedomain.ErrInvalidStatus,
		purchasedomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
