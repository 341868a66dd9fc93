package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lumistone/atelier/internal/finance/domain"
	"github.com/lumistone/atelier/internal/operatorctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("finance.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	recordType, err := domain.ParseRecordType(strings.ToUpper(strings.TrimSpace(req.RecordType)))
	if err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		return nil, domain.ErrInvalidAmount
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, domain.ErrInvalidDescription
	}

	now := time.Now().UTC()
	recordedAt := now
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt.UTC()
	}

	record := &domain.FinancialRecord{
		ID:          s.genID.Generate(),
		RecordType:  recordType,
		Amount:      req.Amount,
		Description: description,
		Operator:    operatorctx.OperatorFromContext(ctx),
		RecordedAt:  recordedAt,
		CreatedAt:   now,
	}
	if err := s.repo.Create(ctx, s.db, record); err != nil {
		return nil, err
	}

	s.log.Info("financial record written",
		zap.String("record_type", string(recordType)),
		zap.String("amount", req.Amount.String()),
	)

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, domain.ErrInvalidDateRange
	}

	filter := domain.ListRequest{
		RecordType: strings.ToUpper(strings.TrimSpace(req.RecordType)),
		From:       req.From,
		To:         req.To,
		SortBy:     strings.TrimSpace(req.SortBy),
		OrderBy:    strings.TrimSpace(req.OrderBy),
	}
	if filter.RecordType != "" {
		if _, err := domain.ParseRecordType(filter.RecordType); err != nil {
			return nil, err
		}
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

func (s *Service) Summary(ctx context.Context, req domain.SummaryRequest) (*domain.SummaryResponse, error) {
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, domain.ErrInvalidDateRange
	}

	var from, to time.Time
	if req.From != nil {
		from = req.From.UTC()
	}
	if req.To != nil {
		to = req.To.UTC()
	}

	totals, err := s.repo.Summarize(ctx, s.db, from, to)
	if err != nil {
		return nil, err
	}

	out := &domain.SummaryResponse{From: req.From, To: req.To}
	for _, t := range totals {
		switch t.RecordType {
		case domain.RecordIncome:
			out.TotalIncome = t.Total
		case domain.RecordExpense:
			out.TotalExpense = t.Total
		case domain.RecordRefund:
			out.TotalRefund = t.Total
		case domain.RecordLoss:
			out.TotalLoss = t.Total
		}
	}
	out.Net = out.TotalIncome.
		Sub(out.TotalExpense).
		Sub(out.TotalRefund).
		Sub(out.TotalLoss)
	return out, nil
}

func toResponse(r *domain.FinancialRecord) domain.Response {
	resp := domain.Response{
		ID:            r.ID.String(),
		RecordType:    r.RecordType,
		Amount:        r.Amount,
		Description:   r.Description,
		ReferenceType: r.ReferenceType,
		Operator:      r.Operator,
		RecordedAt:    r.RecordedAt,
		CreatedAt:     r.CreatedAt,
	}
	if r.ReferenceID != 0 {
		resp.ReferenceID = r.ReferenceID.String()
	}
	return resp
}
