package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Intake(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
}

type CreateRequest struct {
	MaterialType string          `json:"material_type"`
	Name         string          `json:"name"`
	Quality      string          `json:"quality"`
	PieceCount   int             `json:"piece_count"`
	BeadCount    int             `json:"bead_count"`
	StringCount  int             `json:"string_count"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Notes        *string         `json:"notes"`
	Photos       []string        `json:"photos"`
}

type UpdateRequest struct {
	ID      string
	Quality *string `json:"quality"`
	Notes   *string `json:"notes"`
	Status  *string `json:"status"`
}

type ListRequest struct {
	MaterialType string
	Status       string
	Quality      string
	SortBy       string
	OrderBy      string
}

type Response struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	MaterialType      MaterialType    `json:"material_type"`
	Name              string          `json:"name"`
	Quality           string          `json:"quality"`
	PieceCount        int             `json:"piece_count"`
	BeadCount         int             `json:"bead_count"`
	StringCount       int             `json:"string_count"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	RemainingQuantity int             `json:"remaining_quantity"`
	Status            Status          `json:"status"`
	Notes             *string         `json:"notes,omitempty"`
	Photos            []string        `json:"photos,omitempty"`
	CreatedBy         string          `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

var (
	ErrInvalidMaterialType = errors.New("invalid_material_type")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidQuality      = errors.New("invalid_quality")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)

// ParseMaterialType maps a request string onto a known material type.
func ParseMaterialType(raw string) (MaterialType, error) {
	switch MaterialType(raw) {
	case MaterialLooseBeads, MaterialBracelet, MaterialAccessory, MaterialFinished:
		return MaterialType(raw), nil
	default:
		return "", ErrInvalidMaterialType
	}
}
