package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MaterialType classifies what a purchased lot contains.
type MaterialType string

const (
	MaterialLooseBeads MaterialType = "LOOSE_BEADS"
	MaterialBracelet   MaterialType = "BRACELET"
	MaterialAccessory  MaterialType = "ACCESSORY"
	MaterialFinished   MaterialType = "FINISHED"
)

// Status tracks whether a lot still has consumable stock.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusUsed   Status = "USED"
)

// Purchase is a received raw-material lot. Once a usage record references it,
// only status, remaining quantity, quality and notes may change.
type Purchase struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	Code         string       `json:"code" gorm:"type:text;not null;uniqueIndex:ux_purchases_code"`
	MaterialType MaterialType `json:"material_type" gorm:"type:text;not null;index"`
	Name         string       `json:"name" gorm:"type:text;not null"`
	Quality      string       `json:"quality" gorm:"type:text;not null"`

	// Quantity fields depend on the material type: loose beads are counted in
	// strings (bead_count beads each), everything else in pieces.
	PieceCount  int `json:"piece_count" gorm:"not null;default:0"`
	BeadCount   int `json:"bead_count" gorm:"not null;default:0"`
	StringCount int `json:"string_count" gorm:"not null;default:0"`

	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	TotalCost decimal.Decimal `json:"total_cost" gorm:"type:decimal(12,2);not null"`

	RemainingQuantity int    `json:"remaining_quantity" gorm:"not null"`
	Status            Status `json:"status" gorm:"type:text;not null;default:ACTIVE;index"`

	Notes     *string        `json:"notes,omitempty" gorm:"type:text"`
	Photos    datatypes.JSON `json:"photos,omitempty" gorm:"type:json"`
	CreatedBy string         `json:"created_by" gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Purchase) TableName() string { return "purchases" }

// ConsumableUnits returns how many units a fresh lot of this shape can supply.
func (p *Purchase) ConsumableUnits() int {
	if p.MaterialType == MaterialLooseBeads {
		return p.StringCount
	}
	return p.PieceCount
}
