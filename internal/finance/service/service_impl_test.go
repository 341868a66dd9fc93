package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/lumistone/atelier/internal/finance/domain"
	"github.com/lumistone/atelier/internal/finance/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.FinancialRecord{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	}).(*Service)

	return svc, db
}

func record(t *testing.T, svc *Service, recordType string, amount int64, at time.Time) {
	t.Helper()

	_, err := svc.Record(context.Background(), domain.CreateRequest{
		RecordType:  recordType,
		Amount:      decimal.NewFromInt(amount),
		Description: "test entry",
		RecordedAt:  &at,
	})
	require.NoError(t, err)
}

func TestRecord_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, domain.CreateRequest{
		RecordType:  "DIVIDEND",
		Amount:      decimal.NewFromInt(10),
		Description: "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRecordType)

	_, err = svc.Record(ctx, domain.CreateRequest{
		RecordType:  "EXPENSE",
		Amount:      decimal.Zero,
		Description: "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Record(ctx, domain.CreateRequest{
		RecordType: "EXPENSE",
		Amount:     decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDescription)
}

func TestSummary_NetsAllRecordTypes(t *testing.T) {
	svc, _ := newTestService(t)

	now := time.Now().UTC()
	record(t, svc, "INCOME", 1000, now)
	record(t, svc, "INCOME", 500, now)
	record(t, svc, "EXPENSE", 300, now)
	record(t, svc, "REFUND", 150, now)
	record(t, svc, "LOSS", 50, now)

	resp, err := svc.Summary(context.Background(), domain.SummaryRequest{})
	require.NoError(t, err)

	assert.True(t, resp.TotalIncome.Equal(decimal.NewFromInt(1500)), "income %s", resp.TotalIncome)
	assert.True(t, resp.TotalExpense.Equal(decimal.NewFromInt(300)), "expense %s", resp.TotalExpense)
	assert.True(t, resp.TotalRefund.Equal(decimal.NewFromInt(150)), "refund %s", resp.TotalRefund)
	assert.True(t, resp.TotalLoss.Equal(decimal.NewFromInt(50)), "loss %s", resp.TotalLoss)
	assert.True(t, resp.Net.Equal(decimal.NewFromInt(1000)), "net %s", resp.Net)
}

func TestSummary_DateRangeFilters(t *testing.T) {
	svc, _ := newTestService(t)

	january := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	june := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	record(t, svc, "INCOME", 100, january)
	record(t, svc, "INCOME", 200, june)

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	resp, err := svc.Summary(context.Background(), domain.SummaryRequest{From: &from})
	require.NoError(t, err)
	assert.True(t, resp.TotalIncome.Equal(decimal.NewFromInt(200)), "income %s", resp.TotalIncome)

	to := from
	badFrom := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Summary(context.Background(), domain.SummaryRequest{From: &badFrom, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestList_FiltersByType(t *testing.T) {
	svc, _ := newTestService(t)

	now := time.Now().UTC()
	record(t, svc, "INCOME", 100, now)
	record(t, svc, "EXPENSE", 40, now)

	items, err := svc.List(context.Background(), domain.ListRequest{RecordType: "expense"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.RecordExpense, items[0].RecordType)

	_, err = svc.List(context.Background(), domain.ListRequest{RecordType: "TIPS"})
	assert.ErrorIs(t, err, domain.ErrInvalidRecordType)
}
