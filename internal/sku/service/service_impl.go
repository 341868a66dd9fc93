package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/lumistone/atelier/internal/config"
	financedomain "github.com/lumistone/atelier/internal/finance/domain"
	"github.com/lumistone/atelier/internal/operatorctx"
	purchasedomain "github.com/lumistone/atelier/internal/purchase/domain"
	"github.com/lumistone/atelier/internal/sku/domain"
	"github.com/lumistone/atelier/internal/sku/signature"
	"github.com/lumistone/atelier/pkg/db"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Catalog   *config.CatalogConfigHolder
	Skus      domain.Repository
	Purchases purchasedomain.Repository
	Finance   financedomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	catalog   *config.CatalogConfigHolder
	skus      domain.Repository
	purchases purchasedomain.Repository
	finance   financedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("sku.service"),
		genID:     p.GenID,
		catalog:   p.Catalog,
		skus:      p.Skus,
		purchases: p.Purchases,
		finance:   p.Finance,
	}
}

func (s *Service) CreateFromMaterials(ctx context.Context, req domain.CreateRequest) (*domain.CreateResponse, error) {
	return s.createOne(ctx, req, false)
}

func (s *Service) createOne(ctx context.Context, req domain.CreateRequest, requireFinished bool) (*domain.CreateResponse, error) {
	name := strings.TrimSpace(req.ProductName)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.SellingPrice.IsNegative() || req.SellingPrice.IsZero() {
		return nil, domain.ErrInvalidPrice
	}
	if req.Quantity < 0 || req.LaborCost.IsNegative() || req.CraftCost.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}

	lines, err := parseLines(req.Materials)
	if err != nil {
		return nil, err
	}
	sorted, canonical, digest, err := signature.Build(lines)
	if err != nil {
		return nil, err
	}

	resp, err := s.resolve(ctx, req, name, sorted, canonical, digest, requireFinished)
	if err != nil && db.IsDuplicateKeyErr(err) {
		// Lost the race against a concurrent create for the same signature.
		// The row exists now, so a fresh transaction resolves as a restock.
		s.log.Warn("signature collision on create, retrying as restock",
			zap.String("signature_hash", digest))
		resp, err = s.resolve(ctx, req, name, sorted, canonical, digest, requireFinished)
	}
	return resp, err
}

func (s *Service) resolve(
	ctx context.Context,
	req domain.CreateRequest,
	name string,
	lines []signature.MaterialLine,
	canonical []byte,
	digest string,
	requireFinished bool,
) (*domain.CreateResponse, error) {
	operator := operatorctx.OperatorFromContext(ctx)
	now := time.Now().UTC()

	var out *domain.CreateResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		materialCost := decimal.Zero
		lots := make([]*purchasedomain.Purchase, 0, len(lines))
		for _, line := range lines {
			lot, err := s.purchases.FindByID(ctx, tx, line.MaterialID)
			if err != nil {
				return err
			}
			if lot == nil {
				return domain.ErrPurchaseLot
			}
			if requireFinished && lot.MaterialType != purchasedomain.MaterialFinished {
				return domain.ErrLotNotFinished
			}
			if lot.RemainingQuantity < line.QuantityUsed {
				return &domain.StockError{
					Ref:       lot.Code,
					Available: lot.RemainingQuantity,
					Requested: line.QuantityUsed,
				}
			}
			materialCost = materialCost.Add(
				lot.UnitPrice.Mul(decimal.NewFromInt(int64(line.QuantityUsed))))
			lots = append(lots, lot)
		}

		quantity := req.Quantity
		if quantity == 0 {
			if len(lines) == 1 {
				// Direct conversion: one lot in, same unit count out.
				quantity = lines[0].QuantityUsed
			} else {
				quantity = 1
			}
		}

		unitMaterialCost := materialCost.DivRound(decimal.NewFromInt(int64(quantity)), 2)
		totalCost := unitMaterialCost.Add(req.LaborCost).Add(req.CraftCost)
		margin := req.SellingPrice.Sub(totalCost).
			Div(req.SellingPrice).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		if minMargin := s.catalog.Get().MinMarginPct; margin.LessThan(decimal.NewFromFloat(minMargin)) {
			s.log.Warn("profit margin below configured floor",
				zap.String("product_name", name),
				zap.String("margin", margin.String()),
				zap.Float64("min_margin_pct", minMargin),
			)
		}

		sku, err := s.skus.FindByHash(ctx, tx, digest)
		if err != nil {
			return err
		}

		isNew := sku == nil
		if isNew {
			sku = &domain.ProductSku{
				ID:                    s.genID.Generate(),
				SkuCode:               s.newSkuCode(name),
				Name:                  name,
				MaterialSignature:     datatypes.JSON(canonical),
				MaterialSignatureHash: digest,
				MaterialCost:          unitMaterialCost,
				LaborCost:             req.LaborCost,
				CraftCost:             req.CraftCost,
				TotalCost:             totalCost,
				SellingPrice:          req.SellingPrice,
				ProfitMargin:          margin,
				TotalQuantity:         quantity,
				AvailableQuantity:     quantity,
				Status:                domain.StatusActive,
				CreatedBy:             operator,
				CreatedAt:             now,
				UpdatedAt:             now,
			}
			if len(req.Photos) > 0 {
				encoded, err := json.Marshal(req.Photos)
				if err != nil {
					return err
				}
				sku.Photos = datatypes.JSON(encoded)
			}
			if err := s.skus.Create(ctx, tx, sku); err != nil {
				return err
			}
			if err := s.appendLog(ctx, tx, sku, domain.ActionCreate, quantity, 0,
				"PRODUCTION", sku.ID, "", operator, now); err != nil {
				return err
			}
		} else {
			before := sku.AvailableQuantity
			sku.TotalQuantity += quantity
			sku.AvailableQuantity += quantity
			// Fresh stock makes a deactivated SKU sellable again.
			sku.Status = domain.StatusActive
			sku.UpdatedAt = now
			if err := s.skus.Update(ctx, tx, sku); err != nil {
				return err
			}
			if err := s.appendLog(ctx, tx, sku, domain.ActionAdjust, quantity, before,
				"PRODUCTION", sku.ID, "restock from identical material set", operator, now); err != nil {
				return err
			}
		}

		for i, line := range lines {
			lot := lots[i]
			remaining := lot.RemainingQuantity - line.QuantityUsed
			status := purchasedomain.StatusActive
			if remaining == 0 {
				status = purchasedomain.StatusUsed
			}
			if err := s.purchases.UpdateRemaining(ctx, tx, lot.ID, remaining, status); err != nil {
				return err
			}
			usage := &domain.MaterialUsage{
				ID:           s.genID.Generate(),
				PurchaseID:   lot.ID,
				SkuID:        sku.ID,
				QuantityUsed: line.QuantityUsed,
				CreatedAt:    now,
			}
			if err := s.skus.InsertUsage(ctx, tx, usage); err != nil {
				return err
			}
		}

		out = &domain.CreateResponse{
			SkuID:             sku.ID.String(),
			SkuCode:           sku.SkuCode,
			IsNewSku:          isNew,
			ProductName:       sku.Name,
			MaterialCost:      sku.MaterialCost,
			LaborCost:         sku.LaborCost,
			CraftCost:         sku.CraftCost,
			TotalCost:         sku.TotalCost,
			SellingPrice:      sku.SellingPrice,
			ProfitMargin:      sku.ProfitMargin,
			TotalQuantity:     sku.TotalQuantity,
			AvailableQuantity: sku.AvailableQuantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sku resolved",
		zap.String("sku_code", out.SkuCode),
		zap.Bool("is_new", out.IsNewSku),
		zap.Int("available", out.AvailableQuantity),
	)
	return out, nil
}

func (s *Service) CreateBatch(ctx context.Context, req domain.BatchRequest) (*domain.BatchResponse, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	resp := &domain.BatchResponse{
		CreatedProducts: make([]domain.CreateResponse, 0, len(req.Items)),
		FailedProducts:  make([]domain.BatchFailure, 0),
	}
	for i, item := range req.Items {
		// Each item runs in its own transaction so one bad lot does not
		// roll back the rest of the batch.
		created, err := s.createOne(ctx, domain.CreateRequest{
			Materials: []domain.MaterialInput{
				{PurchaseID: item.PurchaseID, QuantityUsed: item.Quantity},
			},
			ProductName:  item.ProductName,
			SellingPrice: item.SellingPrice,
			LaborCost:    item.LaborCost,
			CraftCost:    item.CraftCost,
			Quantity:     item.Quantity,
		}, true)
		if err != nil {
			resp.FailedProducts = append(resp.FailedProducts, domain.BatchFailure{
				Index:      i,
				PurchaseID: item.PurchaseID,
				Reason:     err.Error(),
			})
			continue
		}
		resp.CreatedProducts = append(resp.CreatedProducts, *created)
	}
	resp.SuccessCount = len(resp.CreatedProducts)
	resp.FailedCount = len(resp.FailedProducts)
	return resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListRequest{
		Name:    strings.TrimSpace(req.Name),
		Status:  strings.ToUpper(strings.TrimSpace(req.Status)),
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
	}

	items, err := s.skus.List(ctx, s.db, filter)
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
	sku, err := s.findByStringID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(sku)
	return &resp, nil
}

func (s *Service) Logs(ctx context.Context, id string) ([]domain.LogResponse, error) {
	sku, err := s.findByStringID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	logs, err := s.skus.ListLogs(ctx, s.db, sku.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.LogResponse, 0, len(logs))
	for _, entry := range logs {
		resp = append(resp, domain.LogResponse{
			ID:             entry.ID.String(),
			Action:         entry.Action,
			QuantityChange: entry.QuantityChange,
			QuantityBefore: entry.QuantityBefore,
			QuantityAfter:  entry.QuantityAfter,
			ReferenceType:  entry.ReferenceType,
			ReferenceID:    entry.ReferenceID.String(),
			Notes:          entry.Notes,
			Operator:       entry.Operator,
			CreatedAt:      entry.CreatedAt,
		})
	}
	return resp, nil
}

func (s *Service) Adjust(ctx context.Context, req domain.AdjustRequest) (*domain.Response, error) {
	if req.Delta == 0 {
		return nil, domain.ErrInvalidQuantity
	}

	operator := operatorctx.OperatorFromContext(ctx)
	now := time.Now().UTC()

	var out domain.Response
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sku, err := s.findByStringID(ctx, tx, req.ID)
		if err != nil {
			return err
		}

		before := sku.AvailableQuantity
		after := before + req.Delta
		if after < 0 {
			return &domain.StockError{
				Ref:       sku.SkuCode,
				Available: before,
				Requested: -req.Delta,
			}
		}

		sku.AvailableQuantity = after
		sku.TotalQuantity += req.Delta
		sku.UpdatedAt = now
		if err := s.skus.Update(ctx, tx, sku); err != nil {
			return err
		}
		if err := s.appendLog(ctx, tx, sku, domain.ActionAdjust, req.Delta, before,
			"MANUAL", sku.ID, strings.TrimSpace(req.Reason), operator, now); err != nil {
			return err
		}

		out = toResponse(sku)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Destroy(ctx context.Context, req domain.DestroyRequest) (*domain.Response, error) {
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	operator := operatorctx.OperatorFromContext(ctx)
	now := time.Now().UTC()

	var out domain.Response
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sku, err := s.findByStringID(ctx, tx, req.ID)
		if err != nil {
			return err
		}

		before := sku.AvailableQuantity
		if before < req.Quantity {
			return &domain.StockError{
				Ref:       sku.SkuCode,
				Available: before,
				Requested: req.Quantity,
			}
		}

		sku.AvailableQuantity = before - req.Quantity
		sku.TotalQuantity -= req.Quantity
		sku.UpdatedAt = now
		if err := s.skus.Update(ctx, tx, sku); err != nil {
			return err
		}
		if err := s.appendLog(ctx, tx, sku, domain.ActionDestroy, -req.Quantity, before,
			"MANUAL", sku.ID, strings.TrimSpace(req.Reason), operator, now); err != nil {
			return err
		}

		loss := &financedomain.FinancialRecord{
			ID:            s.genID.Generate(),
			RecordType:    financedomain.RecordLoss,
			Amount:        sku.TotalCost.Mul(decimal.NewFromInt(int64(req.Quantity))),
			Description:   "destroyed " + sku.SkuCode,
			ReferenceType: "PRODUCT_SKU",
			ReferenceID:   sku.ID,
			Operator:      operator,
			RecordedAt:    now,
			CreatedAt:     now,
		}
		if reason := strings.TrimSpace(req.Reason); reason != "" {
			loss.Description += ": " + reason
		}
		if err := s.finance.Create(ctx, tx, loss); err != nil {
			return err
		}

		out = toResponse(sku)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*domain.Response, error) {
	sku, err := s.findByStringID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	sku.Status = domain.StatusInactive
	sku.UpdatedAt = time.Now().UTC()
	if err := s.skus.Update(ctx, s.db, sku); err != nil {
		return nil, err
	}

	resp := toResponse(sku)
	return &resp, nil
}

func (s *Service) findByStringID(ctx context.Context, db *gorm.DB, id string) (*domain.ProductSku, error) {
	skuID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	sku, err := s.skus.FindByID(ctx, db, skuID)
	if err != nil {
		return nil, err
	}
	if sku == nil {
		return nil, domain.ErrNotFound
	}
	return sku, nil
}

func (s *Service) appendLog(
	ctx context.Context,
	tx *gorm.DB,
	sku *domain.ProductSku,
	action domain.LogAction,
	change int,
	before int,
	refType string,
	refID snowflake.ID,
	notes string,
	operator string,
	now time.Time,
) error {
	return s.skus.AppendLog(ctx, tx, &domain.SkuInventoryLog{
		ID:             s.genID.Generate(),
		SkuID:          sku.ID,
		Action:         action,
		QuantityChange: change,
		QuantityBefore: before,
		QuantityAfter:  before + change,
		ReferenceType:  refType,
		ReferenceID:    refID,
		Notes:          notes,
		Operator:       operator,
		CreatedAt:      now,
	})
}

func (s *Service) newSkuCode(name string) string {
	prefix := s.catalog.Get().SkuCodePrefix
	if prefix == "" {
		prefix = "SKU"
	}
	short := slug.Make(name)
	if len(short) > 24 {
		short = short[:24]
	}
	return prefix + "-" + short + "-" + ulid.Make().String()[20:]
}

func parseLines(materials []domain.MaterialInput) ([]signature.MaterialLine, error) {
	lines := make([]signature.MaterialLine, 0, len(materials))
	for _, m := range materials {
		id, err := snowflake.ParseString(strings.TrimSpace(m.PurchaseID))
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		lines = append(lines, signature.MaterialLine{
			MaterialID:   id,
			QuantityUsed: m.QuantityUsed,
		})
	}
	return lines, nil
}

func toResponse(sku *domain.ProductSku) domain.Response {
	resp := domain.Response{
		ID:                sku.ID.String(),
		SkuCode:           sku.SkuCode,
		Name:              sku.Name,
		MaterialCost:      sku.MaterialCost,
		LaborCost:         sku.LaborCost,
		CraftCost:         sku.CraftCost,
		TotalCost:         sku.TotalCost,
		SellingPrice:      sku.SellingPrice,
		ProfitMargin:      sku.ProfitMargin,
		TotalQuantity:     sku.TotalQuantity,
		AvailableQuantity: sku.AvailableQuantity,
		Status:            sku.Status,
		CreatedBy:         sku.CreatedBy,
		CreatedAt:         sku.CreatedAt,
		UpdatedAt:         sku.UpdatedAt,
	}
	if len(sku.Photos) > 0 {
		var photos []string
		if err := json.Unmarshal(sku.Photos, &photos); err == nil {
			resp.Photos = photos
		}
	}
	return resp
}
