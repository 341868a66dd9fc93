package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/lumistone/atelier/internal/customer/domain"
	"github.com/lumistone/atelier/internal/customer/repository"
	financedomain "github.com/lumistone/atelier/internal/finance/domain"
	financerepo "github.com/lumistone/atelier/internal/finance/repository"
	skudomain "github.com/lumistone/atelier/internal/sku/domain"
	skurepo "github.com/lumistone/atelier/internal/sku/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Customer{},
		&domain.CustomerPurchase{},
		&skudomain.ProductSku{},
		&skudomain.SkuInventoryLog{},
		&financedomain.FinancialRecord{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Customers: repository.Provide(),
		Skus:      skurepo.Provide(),
		Finance:   financerepo.Provide(),
	}).(*Service)

	return svc, db, node
}

func seedSku(t *testing.T, db *gorm.DB, node *snowflake.Node, available int) *skudomain.ProductSku {
	t.Helper()

	sku := &skudomain.ProductSku{
		ID:                    node.Generate(),
		SkuCode:               fmt.Sprintf("SKU-%s", node.Generate()),
		Name:                  "Moonstone Pendant",
		MaterialSignature:     []byte(`[]`),
		MaterialSignatureHash: node.Generate().String(),
		MaterialCost:          decimal.NewFromInt(40),
		TotalCost:             decimal.NewFromInt(60),
		SellingPrice:          decimal.NewFromInt(150),
		ProfitMargin:          decimal.NewFromInt(60),
		TotalQuantity:         available,
		AvailableQuantity:     available,
		Status:                skudomain.StatusActive,
		CreatedBy:             "tester",
	}
	require.NoError(t, db.Create(sku).Error)
	return sku
}

func seedCustomer(t *testing.T, svc *Service, phone string) *domain.Response {
	t.Helper()

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:  "Li Wei",
		Phone: phone,
	})
	require.NoError(t, err)
	return resp
}

func TestCreate_RejectsDuplicatePhone(t *testing.T) {
	svc, _, _ := newTestService(t)

	seedCustomer(t, svc, "13800000001")

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:  "Another",
		Phone: "13800000001",
	})
	assert.ErrorIs(t, err, domain.ErrPhoneTaken)
}

func TestRecordSale_MovesStockAndMoney(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	sku := seedSku(t, db, node, 5)
	customer := seedCustomer(t, svc, "13800000002")

	resp, err := svc.RecordSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		SkuID:      sku.ID.String(),
		Quantity:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SaleActive, resp.Status)
	// No negotiated price, so the SKU list price applies.
	assert.True(t, resp.UnitPrice.Equal(decimal.NewFromInt(150)))
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(300)))

	var updated skudomain.ProductSku
	require.NoError(t, db.First(&updated, "id = ?", sku.ID).Error)
	assert.Equal(t, 3, updated.AvailableQuantity)
	assert.Equal(t, 5, updated.TotalQuantity)

	var logs []skudomain.SkuInventoryLog
	require.NoError(t, db.Where("sku_id = ? AND action = ?", sku.ID, skudomain.ActionSell).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, -2, logs[0].QuantityChange)

	var records []financedomain.FinancialRecord
	require.NoError(t, db.Where("record_type = ?", financedomain.RecordIncome).Find(&records).Error)
	require.Len(t, records, 1)
	assert.True(t, records[0].Amount.Equal(decimal.NewFromInt(300)))
}

func TestRecordSale_InsufficientStock(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	sku := seedSku(t, db, node, 1)
	customer := seedCustomer(t, svc, "13800000003")

	_, err := svc.RecordSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		SkuID:      sku.ID.String(),
		Quantity:   3,
	})

	var stockErr *skudomain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Available)

	var saleCount int64
	require.NoError(t, db.Model(&domain.CustomerPurchase{}).Count(&saleCount).Error)
	assert.Zero(t, saleCount)
}

func TestRecordSale_InactiveSkuRejected(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	sku := seedSku(t, db, node, 5)
	require.NoError(t, db.Model(sku).Update("status", skudomain.StatusInactive).Error)
	customer := seedCustomer(t, svc, "13800000004")

	_, err := svc.RecordSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		SkuID:      sku.ID.String(),
		Quantity:   1,
	})
	assert.ErrorIs(t, err, domain.ErrSkuInactive)
}

func TestRefund_RestoresStockOnce(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	sku := seedSku(t, db, node, 5)
	customer := seedCustomer(t, svc, "13800000005")

	sale, err := svc.RecordSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		SkuID:      sku.ID.String(),
		Quantity:   2,
	})
	require.NoError(t, err)

	refunded, err := svc.Refund(ctx, domain.RefundRequest{
		SaleID: sale.ID,
		Reason: "customer changed mind",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SaleRefunded, refunded.Status)
	require.NotNil(t, refunded.RefundedAt)

	var updated skudomain.ProductSku
	require.NoError(t, db.First(&updated, "id = ?", sku.ID).Error)
	assert.Equal(t, 5, updated.AvailableQuantity)

	var records []financedomain.FinancialRecord
	require.NoError(t, db.Where("record_type = ?", financedomain.RecordRefund).Find(&records).Error)
	require.Len(t, records, 1)
	assert.True(t, records[0].Amount.Equal(decimal.NewFromInt(300)))

	// Second refund must not restore stock again.
	_, err = svc.Refund(ctx, domain.RefundRequest{SaleID: sale.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyRefunded)

	require.NoError(t, db.First(&updated, "id = ?", sku.ID).Error)
	assert.Equal(t, 5, updated.AvailableQuantity)
}

func TestListSales_PagesNewestFirst(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	sku := seedSku(t, db, node, 50)
	customer := seedCustomer(t, svc, "13800000006")

	for i := 0; i < 5; i++ {
		_, err := svc.RecordSale(ctx, domain.SaleRequest{
			CustomerID: customer.ID,
			SkuID:      sku.ID.String(),
			Quantity:   1,
		})
		require.NoError(t, err)
	}

	first, err := svc.ListSales(ctx, domain.SaleListRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Sales, 2)
	require.NotNil(t, first.PageInfo)
	assert.True(t, first.PageInfo.HasMore)
	assert.True(t, first.Sales[0].ID > first.Sales[1].ID)

	second, err := svc.ListSales(ctx, domain.SaleListRequest{
		PageSize:  2,
		PageToken: first.PageInfo.NextPageToken,
	})
	require.NoError(t, err)
	require.Len(t, second.Sales, 2)
	assert.NotEqual(t, first.Sales[0].ID, second.Sales[0].ID)
	assert.True(t, first.Sales[1].ID > second.Sales[0].ID)
}
