package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/lumistone/atelier/internal/purchase/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, purchase *domain.Purchase) error {
	return db.WithContext(ctx).Create(purchase).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Purchase, error) {
	var p domain.Purchase
	err := db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Purchase, error) {
	stmt := db.WithContext(ctx).Model(&domain.Purchase{})

	if filter.MaterialType != "" {
		stmt = stmt.Where("material_type = ?", filter.MaterialType)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Quality != "" {
		stmt = stmt.Where("quality = ?", filter.Quality)
	}

	stmt = stmt.Order(orderClause(filter.SortBy, filter.OrderBy))

	var items []domain.Purchase
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, purchase *domain.Purchase) error {
	if purchase == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE purchases
		 SET quality = ?, notes = ?, status = ?, remaining_quantity = ?, updated_at = ?
		 WHERE id = ?`,
		purchase.Quality,
		purchase.Notes,
		purchase.Status,
		purchase.RemainingQuantity,
		purchase.UpdatedAt,
		purchase.ID,
	).Error
}

func (r *repo) UpdateRemaining(ctx context.Context, db *gorm.DB, id snowflake.ID, remaining int, status domain.Status) error {
	return db.WithContext(ctx).Exec(
		`UPDATE purchases SET remaining_quantity = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		remaining,
		status,
		id,
	).Error
}

func orderClause(sortBy, orderBy string) string {
	allowed := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"quality":    true,
	}
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	if orderBy != "asc" && orderBy != "desc" {
		orderBy = "desc"
	}
	return sortBy + " " + orderBy
}
