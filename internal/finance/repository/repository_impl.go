package repository

import (
	"context"
	"time"

	"github.com/lumistone/atelier/internal/finance/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, record *domain.FinancialRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.FinancialRecord, error) {
	stmt := db.WithContext(ctx).Model(&domain.FinancialRecord{})

	if filter.RecordType != "" {
		stmt = stmt.Where("record_type = ?", filter.RecordType)
	}
	if filter.From != nil {
		stmt = stmt.Where("recorded_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("recorded_at < ?", *filter.To)
	}

	stmt = stmt.Order(orderClause(filter.SortBy, filter.OrderBy))

	var items []domain.FinancialRecord
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Summarize(ctx context.Context, db *gorm.DB, from, to time.Time) ([]domain.TypeTotal, error) {
	stmt := db.WithContext(ctx).Model(&domain.FinancialRecord{}).
		Select("record_type, SUM(amount) AS total, COUNT(*) AS count").
		Group("record_type")

	if !from.IsZero() {
		stmt = stmt.Where("recorded_at >= ?", from)
	}
	if !to.IsZero() {
		stmt = stmt.Where("recorded_at < ?", to)
	}

	var totals []domain.TypeTotal
	if err := stmt.Scan(&totals).Error; err != nil {
		return nil, err
	}
	return totals, nil
}

func orderClause(sortBy, orderBy string) string {
	allowed := map[string]bool{
		"recorded_at": true,
		"created_at":  true,
		"amount":      true,
	}
	if !allowed[sortBy] {
		sortBy = "recorded_at"
	}
	if orderBy != "asc" && orderBy != "desc" {
		orderBy = "desc"
	}
	return sortBy + " " + orderBy
}
