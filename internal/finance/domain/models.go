package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RecordType classifies a financial record by the business event behind it.
type RecordType string

const (
	RecordIncome  RecordType = "INCOME"
	RecordExpense RecordType = "EXPENSE"
	RecordRefund  RecordType = "REFUND"
	RecordLoss    RecordType = "LOSS"
)

// FinancialRecord is one money movement. Rows written by sale, refund and
// destroy flows carry the originating entity in reference_type/reference_id;
// manual entries reference nothing.
type FinancialRecord struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	RecordType    RecordType      `json:"record_type" gorm:"type:text;not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Description   string          `json:"description" gorm:"type:text;not null"`
	ReferenceType string          `json:"reference_type" gorm:"type:text"`
	ReferenceID   snowflake.ID    `json:"reference_id" gorm:"index"`
	Operator      string          `json:"operator" gorm:"type:text;not null"`
	RecordedAt    time.Time       `json:"recorded_at" gorm:"not null;index"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FinancialRecord) TableName() string { return "financial_records" }
