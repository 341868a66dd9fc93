package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/lumistone/atelier/internal/customer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var c domain.Customer
	err := db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repo) FindByPhone(ctx context.Context, db *gorm.DB, phone string) (*domain.Customer, error) {
	var c domain.Customer
	err := db.WithContext(ctx).First(&c, "phone = ?", phone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Customer, error) {
	stmt := db.WithContext(ctx).Model(&domain.Customer{})

	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Phone != "" {
		stmt = stmt.Where("phone = ?", filter.Phone)
	}

	stmt = stmt.Order(orderClause(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
	}, "created_at"))

	var items []domain.Customer
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	if customer == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE customers SET name = ?, wechat_id = ?, notes = ?, updated_at = ? WHERE id = ?`,
		customer.Name,
		customer.WechatID,
		customer.Notes,
		customer.UpdatedAt,
		customer.ID,
	).Error
}

func (r *repo) CreateSale(ctx context.Context, db *gorm.DB, sale *domain.CustomerPurchase) error {
	return db.WithContext(ctx).Create(sale).Error
}

func (r *repo) FindSaleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CustomerPurchase, error) {
	var sale domain.CustomerPurchase
	err := db.WithContext(ctx).First(&sale, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

func (r *repo) ListSales(ctx context.Context, db *gorm.DB, filter domain.SaleListRequest, beforeID snowflake.ID, limit int) ([]domain.CustomerPurchase, error) {
	stmt := db.WithContext(ctx).Model(&domain.CustomerPurchase{})

	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.SkuID != "" {
		stmt = stmt.Where("sku_id = ?", filter.SkuID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if beforeID != 0 {
		stmt = stmt.Where("id < ?", beforeID)
	}

	// Snowflake IDs are time-ordered, so keyset pagination on id gives
	// stable newest-first pages.
	stmt = stmt.Order("id desc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var items []domain.CustomerPurchase
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateSale(ctx context.Context, db *gorm.DB, sale *domain.CustomerPurchase) error {
	if sale == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE customer_purchases SET status = ?, refunded_at = ?, updated_at = ? WHERE id = ?`,
		sale.Status,
		sale.RefundedAt,
		sale.UpdatedAt,
		sale.ID,
	).Error
}

func orderClause(sortBy, orderBy string, allowed map[string]bool, fallback string) string {
	if !allowed[sortBy] {
		sortBy = fallback
	}
	if orderBy != "asc" && orderBy != "desc" {
		orderBy = "desc"
	}
	return sortBy + " " + orderBy
}
