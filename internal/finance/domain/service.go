package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	// Record writes a manual financial entry. Flow-generated entries (sales,
	// refunds, destroys) go through the repository inside their own
	// transactions and never pass through here.
	Record(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Summary(ctx context.Context, req SummaryRequest) (*SummaryResponse, error)
}

type CreateRequest struct {
	RecordType  string          `json:"record_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	RecordedAt  *time.Time      `json:"recorded_at"`
}

type ListRequest struct {
	RecordType string
	From       *time.Time
	To         *time.Time
	SortBy     string
	OrderBy    string
}

type SummaryRequest struct {
	From *time.Time
	To   *time.Time
}

type Response struct {
	ID            string          `json:"id"`
	RecordType    RecordType      `json:"record_type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Operator      string          `json:"operator"`
	RecordedAt    time.Time       `json:"recorded_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

type SummaryResponse struct {
	From         *time.Time      `json:"from,omitempty"`
	To           *time.Time      `json:"to,omitempty"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	TotalRefund  decimal.Decimal `json:"total_refund"`
	TotalLoss    decimal.Decimal `json:"total_loss"`
	Net          decimal.Decimal `json:"net"`
}

var (
	ErrInvalidRecordType  = errors.New("invalid_record_type")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidDateRange   = errors.New("invalid_date_range")
)

// ParseRecordType maps an input string to a known record type.
func ParseRecordType(s string) (RecordType, error) {
	switch RecordType(s) {
	case RecordIncome, RecordExpense, RecordRefund, RecordLoss:
		return RecordType(s), nil
	default:
		return "", ErrInvalidRecordType
	}
}
