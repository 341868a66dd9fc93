package domain

import (
	"context"
	"errors"
	"time"

	"github.com/lumistone/atelier/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)

	// RecordSale decrements SKU stock, writes a SELL log entry, an INCOME
	// financial record and the sale row in one transaction.
	RecordSale(ctx context.Context, req SaleRequest) (*SaleResponse, error)
	// Refund reverses a sale exactly once: stock back, REFUND log entry,
	// REFUND financial record, status flip. Also one transaction.
	Refund(ctx context.Context, req RefundRequest) (*SaleResponse, error)
	ListSales(ctx context.Context, req SaleListRequest) (*SaleListResponse, error)
}

type CreateRequest struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	WechatID string  `json:"wechat_id"`
	Notes    *string `json:"notes"`
}

type UpdateRequest struct {
	ID       string
	Name     *string `json:"name"`
	WechatID *string `json:"wechat_id"`
	Notes    *string `json:"notes"`
}

type ListRequest struct {
	Name    string
	Phone   string
	SortBy  string
	OrderBy string
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	WechatID  string    `json:"wechat_id,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SaleRequest struct {
	CustomerID string          `json:"customer_id"`
	SkuID      string          `json:"sku_id"`
	Quantity   int             `json:"quantity"`
	// UnitPrice overrides the SKU selling price when the sale was negotiated;
	// zero means sell at list price.
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     *string         `json:"notes"`
}

type RefundRequest struct {
	SaleID string
	Reason string `json:"reason"`
}

// SaleListRequest pages newest-first with a cursor token; sales volume makes
// offset pagination unworkable here.
type SaleListRequest struct {
	CustomerID string
	SkuID      string
	Status     string
	PageToken  string
	PageSize   int32
}

type SaleListResponse struct {
	Sales    []SaleResponse       `json:"sales"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type SaleResponse struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id"`
	SkuID       string          `json:"sku_id"`
	SkuCode     string          `json:"sku_code,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      SaleStatus      `json:"status"`
	Notes       *string         `json:"notes,omitempty"`
	SoldBy      string          `json:"sold_by"`
	SoldAt      time.Time       `json:"sold_at"`
	RefundedAt  *time.Time      `json:"refunded_at,omitempty"`
}

var (
	ErrInvalidName     = errors.New("invalid_customer_name")
	ErrInvalidPhone    = errors.New("invalid_phone")
	ErrPhoneTaken      = errors.New("phone_already_registered")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("customer_not_found")
	ErrSaleNotFound    = errors.New("sale_not_found")
	ErrSkuNotFound     = errors.New("sku_not_found")
	ErrSkuInactive     = errors.New("sku_inactive")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidPrice    = errors.New("invalid_unit_price")
	ErrAlreadyRefunded = errors.New("sale_already_refunded")
)
