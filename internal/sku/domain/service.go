package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	// CreateFromMaterials resolves a SKU for the supplied material set:
	// restocking the existing SKU when the signature matches, creating a
	// fresh one otherwise. The whole operation runs in one transaction.
	CreateFromMaterials(ctx context.Context, req CreateRequest) (*CreateResponse, error)
	// CreateBatch converts finished-type lots one item at a time; each item
	// gets its own transaction so one failure does not roll back siblings.
	CreateBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Logs(ctx context.Context, id string) ([]LogResponse, error)
	Adjust(ctx context.Context, req AdjustRequest) (*Response, error)
	Destroy(ctx context.Context, req DestroyRequest) (*Response, error)
	Deactivate(ctx context.Context, id string) (*Response, error)
}

type MaterialInput struct {
	PurchaseID   string `json:"purchase_id"`
	QuantityUsed int    `json:"quantity_used"`
}

type CreateRequest struct {
	Materials    []MaterialInput `json:"materials"`
	ProductName  string          `json:"product_name"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	CraftCost    decimal.Decimal `json:"craft_cost"`
	// Quantity is the number of sellable units produced. When zero it
	// defaults to the consumed quantity for single-material requests
	// (direct conversion) and to one for combined materials.
	Quantity int      `json:"quantity"`
	Photos   []string `json:"photos"`
}

type CreateResponse struct {
	SkuID             string          `json:"sku_id"`
	SkuCode           string          `json:"sku_code"`
	IsNewSku          bool            `json:"is_new_sku"`
	ProductName       string          `json:"product_name"`
	MaterialCost      decimal.Decimal `json:"material_cost"`
	LaborCost         decimal.Decimal `json:"labor_cost"`
	CraftCost         decimal.Decimal `json:"craft_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	ProfitMargin      decimal.Decimal `json:"profit_margin"`
	TotalQuantity     int             `json:"sku_total_quantity"`
	AvailableQuantity int             `json:"sku_available_quantity"`
}

type BatchItem struct {
	PurchaseID   string          `json:"purchase_id"`
	ProductName  string          `json:"product_name"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	CraftCost    decimal.Decimal `json:"craft_cost"`
	Quantity     int             `json:"quantity"`
}

type BatchRequest struct {
	Items []BatchItem `json:"items"`
}

type BatchFailure struct {
	Index      int    `json:"index"`
	PurchaseID string `json:"purchase_id"`
	Reason     string `json:"reason"`
}

type BatchResponse struct {
	CreatedProducts []CreateResponse `json:"created_products"`
	FailedProducts  []BatchFailure   `json:"failed_products"`
	SuccessCount    int              `json:"success_count"`
	FailedCount     int              `json:"failed_count"`
}

type ListRequest struct {
	Name    string
	Status  string
	SortBy  string
	OrderBy string
}

type AdjustRequest struct {
	ID     string
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

type DestroyRequest struct {
	ID       string
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

type Response struct {
	ID                string          `json:"id"`
	SkuCode           string          `json:"sku_code"`
	Name              string          `json:"name"`
	MaterialCost      decimal.Decimal `json:"material_cost"`
	LaborCost         decimal.Decimal `json:"labor_cost"`
	CraftCost         decimal.Decimal `json:"craft_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	ProfitMargin      decimal.Decimal `json:"profit_margin"`
	TotalQuantity     int             `json:"total_quantity"`
	AvailableQuantity int             `json:"available_quantity"`
	Status            Status          `json:"status"`
	Photos            []string        `json:"photos,omitempty"`
	CreatedBy         string          `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type LogResponse struct {
	ID             string    `json:"id"`
	Action         LogAction `json:"action"`
	QuantityChange int       `json:"quantity_change"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	ReferenceType  string    `json:"reference_type"`
	ReferenceID    string    `json:"reference_id"`
	Notes          string    `json:"notes"`
	Operator       string    `json:"operator"`
	CreatedAt      time.Time `json:"created_at"`
}

var (
	ErrInvalidName     = errors.New("invalid_product_name")
	ErrInvalidPrice    = errors.New("invalid_selling_price")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrPurchaseLot     = errors.New("purchase_not_found")
	ErrLotNotFinished  = errors.New("purchase_not_finished_type")
	ErrInactive        = errors.New("sku_inactive")
	ErrEmptyBatch      = errors.New("empty_batch")
)

// StockError reports an insufficient-stock business rule violation with the
// exact shortfall, so the HTTP layer can render a descriptive message. Ref
// names the purchase lot or SKU that ran short.
type StockError struct {
	Ref       string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.Ref, e.Available, e.Requested)
}
