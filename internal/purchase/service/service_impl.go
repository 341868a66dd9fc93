package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lumistone/atelier/internal/config"
	"github.com/lumistone/atelier/internal/operatorctx"
	"github.com/lumistone/atelier/internal/purchase/domain"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Catalog *config.CatalogConfigHolder
	Repo    domain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	catalog *config.CatalogConfigHolder
	repo    domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("purchase.service"),
		genID:   p.GenID,
		catalog: p.Catalog,
		repo:    p.Repo,
	}
}

func (s *Service) Intake(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	materialType, err := domain.ParseMaterialType(strings.TrimSpace(req.MaterialType))
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	quality := strings.ToUpper(strings.TrimSpace(req.Quality))
	if quality == "" || !s.catalog.IsKnownGrade(quality) {
		return nil, domain.ErrInvalidQuality
	}

	if materialType == domain.MaterialLooseBeads {
		if req.StringCount <= 0 || req.BeadCount <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
	} else if req.PieceCount <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	if req.UnitPrice.IsNegative() || req.UnitPrice.IsZero() {
		return nil, domain.ErrInvalidPrice
	}

	now := time.Now().UTC()
	p := &domain.Purchase{
		ID:           s.genID.Generate(),
		Code:         s.newLotCode(now),
		MaterialType: materialType,
		Name:         name,
		Quality:      quality,
		PieceCount:   req.PieceCount,
		BeadCount:    req.BeadCount,
		StringCount:  req.StringCount,
		UnitPrice:    req.UnitPrice,
		Status:       domain.StatusActive,
		Notes:        normalizeNotes(req.Notes),
		CreatedBy:    operatorctx.OperatorFromContext(ctx),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p.RemainingQuantity = p.ConsumableUnits()
	p.TotalCost = req.UnitPrice.Mul(decimal.NewFromInt(int64(p.RemainingQuantity)))
	if len(req.Photos) > 0 {
		encoded, err := json.Marshal(req.Photos)
		if err != nil {
			return nil, err
		}
		p.Photos = datatypes.JSON(encoded)
	}

	if err := s.repo.Create(ctx, s.db, p); err != nil {
		return nil, err
	}

	s.log.Info("purchase lot received",
		zap.String("code", p.Code),
		zap.String("material_type", string(p.MaterialType)),
		zap.Int("units", p.RemainingQuantity),
	)

	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListRequest{
		MaterialType: strings.TrimSpace(req.MaterialType),
		Status:       strings.TrimSpace(req.Status),
		Quality:      strings.ToUpper(strings.TrimSpace(req.Quality)),
		SortBy:       strings.TrimSpace(req.SortBy),
		OrderBy:      strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	purchaseID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, purchaseID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	purchaseID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, purchaseID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Quality != nil {
		quality := strings.ToUpper(strings.TrimSpace(*req.Quality))
		if quality == "" || !s.catalog.IsKnownGrade(quality) {
			return nil, domain.ErrInvalidQuality
		}
		item.Quality = quality
	}
	if req.Notes != nil {
		item.Notes = normalizeNotes(req.Notes)
	}
	if req.Status != nil {
		switch domain.Status(strings.ToUpper(strings.TrimSpace(*req.Status))) {
		case domain.StatusActive:
			item.Status = domain.StatusActive
		case domain.StatusUsed:
			item.Status = domain.StatusUsed
		default:
			return nil, domain.ErrInvalidStatus
		}
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) newLotCode(now time.Time) string {
	prefix := s.catalog.Get().LotCodePrefix
	if prefix == "" {
		prefix = "PUR"
	}
	return prefix + "-" + now.Format("20060102") + "-" + ulid.Make().String()[20:]
}

func toResponse(p *domain.Purchase) domain.Response {
	resp := domain.Response{
		ID:                p.ID.String(),
		Code:              p.Code,
		MaterialType:      p.MaterialType,
		Name:              p.Name,
		Quality:           p.Quality,
		PieceCount:        p.PieceCount,
		BeadCount:         p.BeadCount,
		StringCount:       p.StringCount,
		UnitPrice:         p.UnitPrice,
		TotalCost:         p.TotalCost,
		RemainingQuantity: p.RemainingQuantity,
		Status:            p.Status,
		Notes:             p.Notes,
		CreatedBy:         p.CreatedBy,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if len(p.Photos) > 0 {
		var photos []string
		if err := json.Unmarshal(p.Photos, &photos); err == nil {
			resp.Photos = photos
		}
	}
	return resp
}

func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
