package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lumistone/atelier/internal/customer/domain"
	financedomain "github.com/lumistone/atelier/internal/finance/domain"
	"github.com/lumistone/atelier/internal/operatorctx"
	skudomain "github.com/lumistone/atelier/internal/sku/domain"
	"github.com/lumistone/atelier/pkg/db"
	"github.com/lumistone/atelier/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Customers domain.Repository
	Skus      skudomain.Repository
	Finance   financedomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	customers domain.Repository
	skus      skudomain.Repository
	finance   financedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("customer.service"),
		genID:     p.GenID,
		customers: p.Customers,
		skus:      p.Skus,
		finance:   p.Finance,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, domain.ErrInvalidPhone
	}

	existing, err := s.customers.FindByPhone(ctx, s.db, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrPhoneTaken
	}

	now := time.Now().UTC()
	c := &domain.Customer{
		ID:        s.genID.Generate(),
		Name:      name,
		Phone:     phone,
		WechatID:  strings.TrimSpace(req.WechatID),
		Notes:     normalizeNotes(req.Notes),
		CreatedBy: operatorctx.OperatorFromContext(ctx),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.customers.Create(ctx, s.db, c); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrPhoneTaken
		}
		return nil, err
	}

	resp := toResponse(c)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListRequest{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
	}

	items, err := s.customers.List(ctx, s.db, filter)
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
	c, err := s.findByStringID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(c)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	c, err := s.findByStringID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		c.Name = name
	}
	if req.WechatID != nil {
		c.WechatID = strings.TrimSpace(*req.WechatID)
	}
	if req.Notes != nil {
		c.Notes = normalizeNotes(req.Notes)
	}

	c.UpdatedAt = time.Now().UTC()
	if err := s.customers.Update(ctx, s.db, c); err != nil {
		return nil, err
	}

	resp := toResponse(c)
	return &resp, nil
}

func (s *Service) RecordSale(ctx context.Context, req domain.SaleRequest) (*domain.SaleResponse, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	skuID, err := snowflake.ParseString(strings.TrimSpace(req.SkuID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if req.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}

	operator := operatorctx.OperatorFromContext(ctx)
	now := time.Now().UTC()

	var out domain.SaleResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.customers.FindByID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrNotFound
		}

		sku, err := s.skus.FindByID(ctx, tx, skuID)
		if err != nil {
			return err
		}
		if sku == nil {
			return domain.ErrSkuNotFound
		}
		if sku.Status != skudomain.StatusActive {
			return domain.ErrSkuInactive
		}

		before := sku.AvailableQuantity
		if before < req.Quantity {
			return &skudomain.StockError{
				Ref:       sku.SkuCode,
				Available: before,
				Requested: req.Quantity,
			}
		}

		unitPrice := req.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = sku.SellingPrice
		}
		total := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))

		sale := &domain.CustomerPurchase{
			ID:          s.genID.Generate(),
			CustomerID:  customer.ID,
			SkuID:       sku.ID,
			Quantity:    req.Quantity,
			UnitPrice:   unitPrice,
			TotalAmount: total,
			Status:      domain.SaleActive,
			Notes:       normalizeNotes(req.Notes),
			SoldBy:      operator,
			SoldAt:      now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.customers.CreateSale(ctx, tx, sale); err != nil {
			return err
		}

		sku.AvailableQuantity = before - req.Quantity
		sku.UpdatedAt = now
		if err := s.skus.Update(ctx, tx, sku); err != nil {
			return err
		}
		if err := s.skus.AppendLog(ctx, tx, &skudomain.SkuInventoryLog{
			ID:             s.genID.Generate(),
			SkuID:          sku.ID,
			Action:         skudomain.ActionSell,
			QuantityChange: -req.Quantity,
			QuantityBefore: before,
			QuantityAfter:  before - req.Quantity,
			ReferenceType:  "CUSTOMER_PURCHASE",
			ReferenceID:    sale.ID,
			Operator:       operator,
			CreatedAt:      now,
		}); err != nil {
			return err
		}

		if err := s.finance.Create(ctx, tx, &financedomain.FinancialRecord{
			ID:            s.genID.Generate(),
			RecordType:    financedomain.RecordIncome,
			Amount:        total,
			Description:   "sale of " + sku.SkuCode + " to " + customer.Name,
			ReferenceType: "CUSTOMER_PURCHASE",
			ReferenceID:   sale.ID,
			Operator:      operator,
			RecordedAt:    now,
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		out = toSaleResponse(sale, sku.SkuCode)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale recorded",
		zap.String("sale_id", out.ID),
		zap.String("sku_code", out.SkuCode),
		zap.Int("quantity", out.Quantity),
	)
	return &out, nil
}

func (s *Service) Refund(ctx context.Context, req domain.RefundRequest) (*domain.SaleResponse, error) {
	saleID, err := snowflake.ParseString(strings.TrimSpace(req.SaleID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	operator := operatorctx.OperatorFromContext(ctx)
	now := time.Now().UTC()

	var out domain.SaleResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.customers.FindSaleByID(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrSaleNotFound
		}
		if sale.Status == domain.SaleRefunded {
			return domain.ErrAlreadyRefunded
		}

		sku, err := s.skus.FindByID(ctx, tx, sale.SkuID)
		if err != nil {
			return err
		}
		if sku == nil {
			return domain.ErrSkuNotFound
		}

		before := sku.AvailableQuantity
		sku.AvailableQuantity = before + sale.Quantity
		sku.UpdatedAt = now
		if err := s.skus.Update(ctx, tx, sku); err != nil {
			return err
		}
		if err := s.skus.AppendLog(ctx, tx, &skudomain.SkuInventoryLog{
			ID:             s.genID.Generate(),
			SkuID:          sku.ID,
			Action:         skudomain.ActionRefund,
			QuantityChange: sale.Quantity,
			QuantityBefore: before,
			QuantityAfter:  before + sale.Quantity,
			ReferenceType:  "CUSTOMER_PURCHASE",
			ReferenceID:    sale.ID,
			Notes:          strings.TrimSpace(req.Reason),
			Operator:       operator,
			CreatedAt:      now,
		}); err != nil {
			return err
		}

		if err := s.finance.Create(ctx, tx, &financedomain.FinancialRecord{
			ID:            s.genID.Generate(),
			RecordType:    financedomain.RecordRefund,
			Amount:        sale.TotalAmount,
			Description:   "refund of sale " + sale.ID.String(),
			ReferenceType: "CUSTOMER_PURCHASE",
			ReferenceID:   sale.ID,
			Operator:      operator,
			RecordedAt:    now,
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		refundedAt := now
		sale.Status = domain.SaleRefunded
		sale.RefundedAt = &refundedAt
		sale.UpdatedAt = now
		if err := s.customers.UpdateSale(ctx, tx, sale); err != nil {
			return err
		}

		out = toSaleResponse(sale, sku.SkuCode)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale refunded", zap.String("sale_id", out.ID))
	return &out, nil
}

func (s *Service) ListSales(ctx context.Context, req domain.SaleListRequest) (*domain.SaleListResponse, error) {
	filter := domain.SaleListRequest{
		CustomerID: strings.TrimSpace(req.CustomerID),
		SkuID:      strings.TrimSpace(req.SkuID),
		Status:     strings.ToUpper(strings.TrimSpace(req.Status)),
	}

	limit := int(req.PageSize)
	if limit <= 0 {
		limit = 20
	}
	if limit > 250 {
		limit = 250
	}

	var beforeID snowflake.ID
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		beforeID, err = snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
	}

	items, err := s.customers.ListSales(ctx, s.db, filter, beforeID, limit+1)
	if err != nil {
		return nil, err
	}

	refs := make([]*domain.CustomerPurchase, len(items))
	for i := range items {
		refs[i] = &items[i]
	}
	pageInfo := pagination.BuildCursorPageInfo(refs, limit, func(sale *domain.CustomerPurchase) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: sale.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})

	if len(items) > limit {
		items = items[:limit]
	}
	resp := make([]domain.SaleResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toSaleResponse(&items[i], ""))
	}
	return &domain.SaleListResponse{Sales: resp, PageInfo: pageInfo}, nil
}

func (s *Service) findByStringID(ctx context.Context, id string) (*domain.Customer, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	c, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func toResponse(c *domain.Customer) domain.Response {
	return domain.Response{
		ID:        c.ID.String(),
		Name:      c.Name,
		Phone:     c.Phone,
		WechatID:  c.WechatID,
		Notes:     c.Notes,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toSaleResponse(sale *domain.CustomerPurchase, skuCode string) domain.SaleResponse {
	return domain.SaleResponse{
		ID:          sale.ID.String(),
		CustomerID:  sale.CustomerID.String(),
		SkuID:       sale.SkuID.String(),
		SkuCode:     skuCode,
		Quantity:    sale.Quantity,
		UnitPrice:   sale.UnitPrice,
		TotalAmount: sale.TotalAmount,
		Status:      sale.Status,
		Notes:       sale.Notes,
		SoldBy:      sale.SoldBy,
		SoldAt:      sale.SoldAt,
		RefundedAt:  sale.RefundedAt,
	}
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
