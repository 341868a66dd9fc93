package service

import (
	"context"

	"github.com/lumistone/atelier/internal/inventory/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

// Service reads aggregates straight off the purchase and SKU tables. There is
// no entity of its own, so it skips the repository layer.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("inventory.service"),
	}
}

type materialBucket struct {
	MaterialType   string
	Quality        string
	LotCount       int64
	RemainingUnits int64
	RemainingValue decimal.Decimal
}

func (s *Service) Matrix(ctx context.Context) (*domain.MatrixResponse, error) {
	var buckets []materialBucket
	err := s.db.WithContext(ctx).
		Table("purchases").
		Select(`material_type,
			quality,
			COUNT(*) AS lot_count,
			SUM(remaining_quantity) AS remaining_units,
			SUM(remaining_quantity * unit_price) AS remaining_value`).
		Where("status = ?", "ACTIVE").
		Group("material_type, quality").
		Order("material_type, quality").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}

	resp := &domain.MatrixResponse{Materials: make([]domain.MaterialRow, 0)}
	rowIndex := make(map[string]int)
	for _, b := range buckets {
		idx, ok := rowIndex[b.MaterialType]
		if !ok {
			idx = len(resp.Materials)
			rowIndex[b.MaterialType] = idx
			resp.Materials = append(resp.Materials, domain.MaterialRow{
				MaterialType: b.MaterialType,
				Cells:        make([]domain.QualityCell, 0, 4),
			})
		}
		resp.Materials[idx].Cells = append(resp.Materials[idx].Cells, domain.QualityCell{
			Quality:        b.Quality,
			LotCount:       b.LotCount,
			RemainingUnits: b.RemainingUnits,
			RemainingValue: b.RemainingValue,
		})
	}

	var totals struct {
		ActiveSkuCount int64
		AvailableUnits int64
		CostValue      decimal.Decimal
		RetailValue    decimal.Decimal
	}
	err = s.db.WithContext(ctx).
		Table("product_skus").
		Select(`COUNT(*) AS active_sku_count,
			COALESCE(SUM(available_quantity), 0) AS available_units,
			COALESCE(SUM(available_quantity * total_cost), 0) AS cost_value,
			COALESCE(SUM(available_quantity * selling_price), 0) AS retail_value`).
		Where("status = ?", "ACTIVE").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	resp.Skus = domain.SkuTotals{
		ActiveSkuCount: totals.ActiveSkuCount,
		AvailableUnits: totals.AvailableUnits,
		CostValue:      totals.CostValue,
		RetailValue:    totals.RetailValue,
	}
	return resp, nil
}
