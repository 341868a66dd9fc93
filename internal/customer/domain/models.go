package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// SaleStatus tracks whether a customer purchase is still in force.
type SaleStatus string

const (
	SaleActive   SaleStatus = "ACTIVE"
	SaleRefunded SaleStatus = "REFUNDED"
)

type Customer struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Phone     string       `json:"phone" gorm:"type:text;not null;uniqueIndex:ux_customers_phone"`
	WechatID  string       `json:"wechat_id" gorm:"type:text"`
	Notes     *string      `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy string       `json:"created_by" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Customer) TableName() string { return "customers" }

// CustomerPurchase is one sale of a SKU to a customer. A refund flips the
// status to REFUNDED exactly once; the row itself is never deleted.
type CustomerPurchase struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	CustomerID  snowflake.ID    `json:"customer_id" gorm:"not null;index"`
	SkuID       snowflake.ID    `json:"sku_id" gorm:"not null;index"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Status      SaleStatus      `json:"status" gorm:"type:text;not null;default:ACTIVE;index"`
	Notes       *string         `json:"notes,omitempty" gorm:"type:text"`
	SoldBy      string          `json:"sold_by" gorm:"type:text;not null"`
	SoldAt      time.Time       `json:"sold_at" gorm:"not null;index"`
	RefundedAt  *time.Time      `json:"refunded_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CustomerPurchase) TableName() string { return "customer_purchases" }
