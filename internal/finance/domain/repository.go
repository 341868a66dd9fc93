package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TypeTotal is one aggregation bucket of the summary query.
type TypeTotal struct {
	RecordType RecordType      `json:"record_type"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, record *FinancialRecord) error
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]FinancialRecord, error)
	Summarize(ctx context.Context, db *gorm.DB, from, to time.Time) ([]TypeTotal, error)
}
