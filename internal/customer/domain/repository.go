package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	FindByPhone(ctx context.Context, db *gorm.DB, phone string) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Customer, error)
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error

	CreateSale(ctx context.Context, db *gorm.DB, sale *CustomerPurchase) error
	FindSaleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CustomerPurchase, error)
	ListSales(ctx context.Context, db *gorm.DB, filter SaleListRequest, beforeID snowflake.ID, limit int) ([]CustomerPurchase, error)
	UpdateSale(ctx context.Context, db *gorm.DB, sale *CustomerPurchase) error
}
