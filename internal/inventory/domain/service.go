package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type Service interface {
	// Matrix aggregates raw-material stock by material type and quality grade
	// and appends catalog-wide SKU totals.
	Matrix(ctx context.Context) (*MatrixResponse, error)
}

// QualityCell is one material-type/quality bucket of the matrix.
type QualityCell struct {
	Quality        string          `json:"quality"`
	LotCount       int64           `json:"lot_count"`
	RemainingUnits int64           `json:"remaining_units"`
	RemainingValue decimal.Decimal `json:"remaining_value"`
}

type MaterialRow struct {
	MaterialType string        `json:"material_type"`
	Cells        []QualityCell `json:"cells"`
}

type SkuTotals struct {
	ActiveSkuCount int64           `json:"active_sku_count"`
	AvailableUnits int64           `json:"available_units"`
	CostValue      decimal.Decimal `json:"cost_value"`
	RetailValue    decimal.Decimal `json:"retail_value"`
}

type MatrixResponse struct {
	Materials []MaterialRow `json:"materials"`
	Skus      SkuTotals     `json:"skus"`
}
