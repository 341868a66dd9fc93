package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/lumistone/atelier/internal/sku/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, sku *domain.ProductSku) error {
	return db.WithContext(ctx).Create(sku).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ProductSku, error) {
	var sku domain.ProductSku
	err := db.WithContext(ctx).First(&sku, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sku, nil
}

func (r *repo) FindByHash(ctx context.Context, db *gorm.DB, hash string) (*domain.ProductSku, error) {
	var sku domain.ProductSku
	err := db.WithContext(ctx).First(&sku, "material_signature_hash = ?", hash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sku, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.ProductSku, error) {
	stmt := db.WithContext(ctx).Model(&domain.ProductSku{})

	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	stmt = stmt.Order(orderClause(filter.SortBy, filter.OrderBy))

	var items []domain.ProductSku
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, sku *domain.ProductSku) error {
	if sku == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE product_skus
		 SET name = ?, material_cost = ?, labor_cost = ?, craft_cost = ?, total_cost = ?,
		     selling_price = ?, profit_margin = ?, total_quantity = ?, available_quantity = ?,
		     status = ?, updated_at = ?
		 WHERE id = ?`,
		sku.Name,
		sku.MaterialCost,
		sku.LaborCost,
		sku.CraftCost,
		sku.TotalCost,
		sku.SellingPrice,
		sku.ProfitMargin,
		sku.TotalQuantity,
		sku.AvailableQuantity,
		sku.Status,
		sku.UpdatedAt,
		sku.ID,
	).Error
}

func (r *repo) InsertUsage(ctx context.Context, db *gorm.DB, usage *domain.MaterialUsage) error {
	return db.WithContext(ctx).Create(usage).Error
}

func (r *repo) AppendLog(ctx context.Context, db *gorm.DB, entry *domain.SkuInventoryLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) ListLogs(ctx context.Context, db *gorm.DB, skuID snowflake.ID) ([]domain.SkuInventoryLog, error) {
	var logs []domain.SkuInventoryLog
	err := db.WithContext(ctx).
		Where("sku_id = ?", skuID).
		Order("created_at asc, id asc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func orderClause(sortBy, orderBy string) string {
	allowed := map[string]bool{
		"created_at":         true,
		"updated_at":         true,
		"name":               true,
		"selling_price":      true,
		"available_quantity": true,
	}
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	if orderBy != "asc" && orderBy != "desc" {
		orderBy = "desc"
	}
	return sortBy + " " + orderBy
}
