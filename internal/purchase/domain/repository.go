package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, purchase *Purchase) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Purchase, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Purchase, error)
	Update(ctx context.Context, db *gorm.DB, purchase *Purchase) error
	UpdateRemaining(ctx context.Context, db *gorm.DB, id snowflake.ID, remaining int, status Status) error
}
