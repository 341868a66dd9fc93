package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status is the SKU lifecycle: active in the catalog or manually deactivated.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// LogAction tags an inventory log entry with the cause of a quantity change.
type LogAction string

const (
	ActionCreate  LogAction = "CREATE"
	ActionAdjust  LogAction = "ADJUST"
	ActionSell    LogAction = "SELL"
	ActionDestroy LogAction = "DESTROY"
	ActionRefund  LogAction = "REFUND"
)

// ProductSku is a sellable catalog entry. Two creation requests whose
// normalized material sets hash identically restock the same row instead of
// creating a new one; material_signature_hash is that dedup key.
type ProductSku struct {
	ID      snowflake.ID `json:"id" gorm:"primaryKey"`
	SkuCode string       `json:"sku_code" gorm:"type:text;not null;uniqueIndex:ux_product_skus_code"`
	Name    string       `json:"name" gorm:"type:text;not null"`

	MaterialSignature     datatypes.JSON `json:"material_signature" gorm:"type:json;not null"`
	MaterialSignatureHash string         `json:"material_signature_hash" gorm:"type:text;not null;uniqueIndex:ux_product_skus_signature"`

	MaterialCost decimal.Decimal `json:"material_cost" gorm:"type:decimal(12,2);not null"`
	LaborCost    decimal.Decimal `json:"labor_cost" gorm:"type:decimal(12,2);not null"`
	CraftCost    decimal.Decimal `json:"craft_cost" gorm:"type:decimal(12,2);not null"`
	TotalCost    decimal.Decimal `json:"total_cost" gorm:"type:decimal(12,2);not null"`
	SellingPrice decimal.Decimal `json:"selling_price" gorm:"type:decimal(12,2);not null"`
	ProfitMargin decimal.Decimal `json:"profit_margin" gorm:"type:decimal(6,2);not null"`

	TotalQuantity     int `json:"total_quantity" gorm:"not null"`
	AvailableQuantity int `json:"available_quantity" gorm:"not null"`

	Status    Status         `json:"status" gorm:"type:text;not null;default:ACTIVE;index"`
	Photos    datatypes.JSON `json:"photos,omitempty" gorm:"type:json"`
	CreatedBy string         `json:"created_by" gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ProductSku) TableName() string { return "product_skus" }

// MaterialUsage links a purchase lot to the SKU that consumed it. Rows are
// inserted once per consumption event and never updated; deleting one models
// a return to stock.
type MaterialUsage struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	PurchaseID   snowflake.ID `json:"purchase_id" gorm:"not null;index"`
	SkuID        snowflake.ID `json:"sku_id" gorm:"not null;index"`
	QuantityUsed int          `json:"quantity_used" gorm:"not null"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (MaterialUsage) TableName() string { return "material_usages" }

// SkuInventoryLog is the append-only audit trail of quantity changes. The
// SKU counters must always reconcile against this log.
type SkuInventoryLog struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	SkuID          snowflake.ID `json:"sku_id" gorm:"not null;index"`
	Action         LogAction    `json:"action" gorm:"type:text;not null"`
	QuantityChange int          `json:"quantity_change" gorm:"not null"`
	QuantityBefore int          `json:"quantity_before" gorm:"not null"`
	QuantityAfter  int          `json:"quantity_after" gorm:"not null"`
	ReferenceType  string       `json:"reference_type" gorm:"type:text;not null"`
	ReferenceID    snowflake.ID `json:"reference_id" gorm:"not null;index"`
	Notes          string       `json:"notes" gorm:"type:text"`
	Operator       string       `json:"operator" gorm:"type:text;not null"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SkuInventoryLog) TableName() string { return "sku_inventory_logs" }
