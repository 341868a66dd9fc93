package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, sku *ProductSku) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ProductSku, error)
	FindByHash(ctx context.Context, db *gorm.DB, hash string) (*ProductSku, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]ProductSku, error)
	Update(ctx context.Context, db *gorm.DB, sku *ProductSku) error

	InsertUsage(ctx context.Context, db *gorm.DB, usage *MaterialUsage) error
	AppendLog(ctx context.Context, db *gorm.DB, entry *SkuInventoryLog) error
	ListLogs(ctx context.Context, db *gorm.DB, skuID snowflake.ID) ([]SkuInventoryLog, error)
}
