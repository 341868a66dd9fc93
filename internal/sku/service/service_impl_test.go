package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/lumistone/atelier/internal/config"
	financedomain "github.com/lumistone/atelier/internal/finance/domain"
	financerepo "github.com/lumistone/atelier/internal/finance/repository"
	purchasedomain "github.com/lumistone/atelier/internal/purchase/domain"
	purchaserepo "github.com/lumistone/atelier/internal/purchase/repository"
	"github.com/lumistone/atelier/internal/sku/domain"
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
		&purchasedomain.Purchase{},
		&domain.ProductSku{},
		&domain.MaterialUsage{},
		&domain.SkuInventoryLog{},
		&financedomain.FinancialRecord{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Catalog:   config.NewStaticCatalogConfigHolder(config.DefaultCatalogConfig()),
		Skus:      skurepo.Provide(),
		Purchases: purchaserepo.Provide(),
		Finance:   financerepo.Provide(),
	}).(*Service)

	return svc, db, node
}

func seedLot(t *testing.T, db *gorm.DB, node *snowflake.Node, materialType purchasedomain.MaterialType, pieces int, unitPrice int64) *purchasedomain.Purchase {
	t.Helper()

	lot := &purchasedomain.Purchase{
		ID:                node.Generate(),
		Code:              fmt.Sprintf("PUR-%s", node.Generate()),
		MaterialType:      materialType,
		Name:              "amethyst",
		Quality:           "AA",
		PieceCount:        pieces,
		UnitPrice:         decimal.NewFromInt(unitPrice),
		TotalCost:         decimal.NewFromInt(unitPrice * int64(pieces)),
		RemainingQuantity: pieces,
		Status:            purchasedomain.StatusActive,
		CreatedBy:         "tester",
	}
	require.NoError(t, db.Create(lot).Error)
	return lot
}

func TestCreateFromMaterials_NewSkuDirectConversion(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	lot := seedLot(t, db, node, purchasedomain.MaterialBracelet, 10, 50)

	resp, err := svc.CreateFromMaterials(ctx, domain.CreateRequest{
		Materials: []domain.MaterialInput{
			{PurchaseID: lot.ID.String(), QuantityUsed: 4},
		},
		ProductName:  "Amethyst Bracelet",
		SellingPrice: decimal.NewFromInt(120),
		LaborCost:    decimal.NewFromInt(10),
		CraftCost:    decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	assert.True(t, resp.IsNewSku)
	// Single material with no explicit quantity converts one unit per unit used.
	assert.Equal(t, 4, resp.TotalQuantity)
	assert.Equal(t, 4, resp.AvailableQuantity)
	assert.True(t, resp.MaterialCost.Equal(decimal.NewFromInt(50)), "got %s", resp.MaterialCost)
	assert.True(t, resp.TotalCost.Equal(decimal.NewFromInt(65)), "got %s", resp.TotalCost)

	var updated purchasedomain.Purchase
	require.NoError(t, db.First(&updated, "id = ?", lot.ID).Error)
	assert.Equal(t, 6, updated.RemainingQuantity)
	assert.Equal(t, purchasedomain.StatusActive, updated.Status)

	var logs []domain.SkuInventoryLog
	require.NoError(t, db.Where("sku_id = ?", resp.SkuID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.ActionCreate, logs[0].Action)
	assert.Equal(t, 0, logs[0].QuantityBefore)
	assert.Equal(t, 4, logs[0].QuantityAfter)
}

func TestCreateFromMaterials_IdenticalSignatureRestocks(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	lot := seedLot(t, db, node, purchasedomain.MaterialBracelet, 10, 50)
	req := domain.CreateRequest{
		Materials: []domain.MaterialInput{
			{PurchaseID: lot.ID.String(), QuantityUsed: 3},
		},
		ProductName:  "Amethyst Bracelet",
		SellingPrice: decimal.NewFromInt(120),
		LaborCost:    decimal.NewFromInt(10),
		CraftCost:    decimal.NewFromInt(5),
	}

	first, err := svc.CreateFromMaterials(ctx, req)
	require.NoError(t, err)
	assert.True(t, first.IsNewSku)

	second, err := svc.CreateFromMaterials(ctx, req)
	require.NoError(t, err)
	assert.False(t, second.IsNewSku)
	assert.Equal(t, first.SkuID, second.SkuID)
	assert.Equal(t, 6, second.TotalQuantity)
	assert.Equal(t, 6, second.AvailableQuantity)

	var count int64
	require.NoError(t, db.Model(&domain.ProductSku{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var logs []domain.SkuInventoryLog
	require.NoError(t, db.Where("sku_id = ?", first.SkuID).Order("created_at asc, id asc").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.ActionCreate, logs[0].Action)
	assert.Equal(t, domain.ActionAdjust, logs[1].Action)
	assert.Equal(t, logs[0].QuantityAfter, logs[1].QuantityBefore)

	var usages []domain.MaterialUsage
	require.NoError(t, db.Where("sku_id = ?", first.SkuID).Find(&usages).Error)
	assert.Len(t, usages, 2)

	var updated purchasedomain.Purchase
	require.NoError(t, db.First(&updated, "id = ?", lot.ID).Error)
	assert.Equal(t, 4, updated.RemainingQuantity)
}

func TestCreateFromMaterials_DifferentSignaturesStayDistinct(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	lotA := seedLot(t, db, node, purchasedomain.MaterialBracelet, 10, 50)
	lotB := seedLot(t, db, node, purchasedomain.MaterialBracelet, 10, 80)

	respA, err := svc.CreateFromMaterials(ctx, domain.CreateRequest{
		Materials:    []domain.MaterialInput{{PurchaseID: lotA.ID.String(), QuantityUsed: 2}},
		ProductName:  "Bracelet A",
		SellingPrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	respB, err := svc.CreateFromMaterials(ctx, domain.CreateRequest{
		Materials:    []domain.MaterialInput{{PurchaseID: lotB.ID.String(), QuantityUsed: 2}},
		ProductName:  "Bracelet B",
		SellingPrice: decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	assert.True(t, respA.IsNewSku)
	assert.True(t, respB.IsNewSku)
	assert.NotEqual(t, respA.SkuID, respB.SkuID)

	var count int64
	require.NoError(t, db.Model(&domain.ProductSku{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestCreateFromMaterials_MaterialOrderDoesNotMatter(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	lotA := seedLot(t, db, node, purchasedomain.MaterialLooseBeads, 0, 30)
	lotA.StringCount = 20
	lotA.RemainingQuantity = 20
	require.NoError(t, db.Save(lotA).Error)
	lotB := seedLot(t, db, node, purchasedomain.MaterialAccessory, 20, 10)

	first, err := svc.CreateFromMaterials(ctx, domain.CreateRequest{
		Materials: []domain.MaterialInput{
			{PurchaseID: lotA.ID.String(), QuantityUsed: 2},
			{PurchaseID: lotB.ID.String(), QuantityUsed: 1},
		},
		ProductName:  "Beaded Pendant",
		SellingPrice: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	assert.True(t, first.IsNewSku)
	// Combined materials default to one produced unit per event.
	assert.Equal(t, 1, first.TotalQuantity)

	second, err := svc.CreateFromMaterials(ctx, domain.CreateRequest{
		Materials: []domain.MaterialInput{
			{PurchaseID: lotB.ID.String(), QuantityUsed: 1},
			{PurchaseID: lotA.ID.String(), QuantityUsed: 2},
		},
		ProductName:  "Beaded Pendant",
		SellingPrice: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	assert.False(t, second.IsNewSku)
	assert.Equal(t, first.SkuID, second.SkuID)
	assert.Equal(t, 2, second.TotalQuantity)
}

func TestCreateFromMaterials_InsufficientStockLeavesNoTrace(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	lot := seedLot(t, db, node, purchasedomain.MaterialBracelet, 5, 50)

	_, err := svc.CreateFromMaterials(ctx, domain.CreateRequest{
		Materials:    []domain.MaterialInput{{PurchaseID: lot.ID.String(), QuantityUsed: 8}},
		ProductName:  "Overdrawn Bracelet",
		SellingPrice: decimal.NewFromInt(100),
	})
	require.Error(t, err)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 8, stockErr.Requested)

	var skuCount, logCount, usageCount int64
	require.NoError(t, db.Model(&domain.ProductSku{}).Count(&skuCount).Error)
	require.NoError(t, db.Model(&domain.SkuInventoryLog{}).Count(&logCount).Error)
	require.NoError(t, db.Model(&domain.MaterialUsage{}).Count(&usageCount).Error)
	assert.Zero(t, skuCount)
	assert.Zero(t, logCount)
	assert.Zero(t, usageCount)

	var updated purchasedomain.Purchase
	require.NoError(t, db.First(&updated, "id = ?", lot.ID).Error)
	assert.Equal(t, 5, updated.RemainingQuantity)
}

func TestCreateFromMaterials_DuplicateMaterialRejected(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	lot := seedLot(t, db, node, purchasedomain.MaterialBracelet, 10, 50)

	_, err := svc.CreateFromMaterials(ctx, domain.CreateRequest{
		Materials: []domain.MaterialInput{
			{PurchaseID: lot.ID.String(), QuantityUsed: 1},
			{PurchaseID: lot.ID.String(), QuantityUsed: 2},
		},
		ProductName:  "Doubled Up",
		SellingPrice: decimal.NewFromInt(100),
	})
	require.Error(t, err)
}

func TestCreateFromMaterials_ExhaustingLotMarksItUsed(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	lot := seedLot(t, db, node, purchasedomain.MaterialBracelet, 3, 50)

	_, err := svc.CreateFromMaterials(ctx, domain.CreateRequest{
		Materials:    []domain.MaterialInput{{PurchaseID: lot.ID.String(), QuantityUsed: 3}},
		ProductName:  "Last Of The Lot",
		SellingPrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	var updated purchasedomain.Purchase
	require.NoError(t, db.First(&updated, "id = ?", lot.ID).Error)
	assert.Equal(t, 0, updated.RemainingQuantity)
	assert.Equal(t, purchasedomain.StatusUsed, updated.Status)
}

func TestCreateBatch_PartialFailureKeepsSuccesses(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	finishedA := seedLot(t, db, node, purchasedomain.MaterialFinished, 5, 100)
	finishedB := seedLot(t, db, node, purchasedomain.MaterialFinished, 5, 200)
	bracelet := seedLot(t, db, node, purchasedomain.MaterialBracelet, 5, 50)

	resp, err := svc.CreateBatch(ctx, domain.BatchRequest{
		Items: []domain.BatchItem{
			{PurchaseID: finishedA.ID.String(), ProductName: "Pendant A", SellingPrice: decimal.NewFromInt(300), Quantity: 5},
			{PurchaseID: bracelet.ID.String(), ProductName: "Not Finished", SellingPrice: decimal.NewFromInt(100), Quantity: 2},
			{PurchaseID: finishedB.ID.String(), ProductName: "Pendant B", SellingPrice: decimal.NewFromInt(400), Quantity: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.SuccessCount)
	assert.Equal(t, 1, resp.FailedCount)
	require.Len(t, resp.FailedProducts, 1)
	assert.Equal(t, 1, resp.FailedProducts[0].Index)
	assert.Equal(t, bracelet.ID.String(), resp.FailedProducts[0].PurchaseID)
	assert.NotEmpty(t, resp.FailedProducts[0].Reason)

	var skuCount int64
	require.NoError(t, db.Model(&domain.ProductSku{}).Count(&skuCount).Error)
	assert.Equal(t, int64(2), skuCount)

	var untouched purchasedomain.Purchase
	require.NoError(t, db.First(&untouched, "id = ?", bracelet.ID).Error)
	assert.Equal(t, 5, untouched.RemainingQuantity)
}

func TestAdjust_MovesQuantityAndLogs(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	lot := seedLot(t, db, node, purchasedomain.MaterialBracelet, 10, 50)
	created, err := svc.CreateFromMaterials(ctx, domain.CreateRequest{
		Materials:    []domain.MaterialInput{{PurchaseID: lot.ID.String(), QuantityUsed: 4}},
		ProductName:  "Adjustable",
		SellingPrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	resp, err := svc.Adjust(ctx, domain.AdjustRequest{
		ID:     created.SkuID,
		Delta:  -2,
		Reason: "stocktake correction",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.AvailableQuantity)

	_, err = svc.Adjust(ctx, domain.AdjustRequest{ID: created.SkuID, Delta: -10})
	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)

	var logs []domain.SkuInventoryLog
	require.NoError(t, db.Where("sku_id = ? AND action = ?", created.SkuID, domain.ActionAdjust).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "stocktake correction", logs[0].Notes)
}

func TestDestroy_WritesLossRecord(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	lot := seedLot(t, db, node, purchasedomain.MaterialBracelet, 10, 50)
	created, err := svc.CreateFromMaterials(ctx, domain.CreateRequest{
		Materials:    []domain.MaterialInput{{PurchaseID: lot.ID.String(), QuantityUsed: 4}},
		ProductName:  "Breakable",
		SellingPrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	resp, err := svc.Destroy(ctx, domain.DestroyRequest{
		ID:       created.SkuID,
		Quantity: 2,
		Reason:   "dropped during photoshoot",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.AvailableQuantity)
	assert.Equal(t, 2, resp.TotalQuantity)

	var records []financedomain.FinancialRecord
	require.NoError(t, db.Where("record_type = ?", financedomain.RecordLoss).Find(&records).Error)
	require.Len(t, records, 1)
	assert.True(t, records[0].Amount.Equal(created.TotalCost.Mul(decimal.NewFromInt(2))),
		"got %s", records[0].Amount)
	assert.Contains(t, records[0].Description, "dropped during photoshoot")

	var logs []domain.SkuInventoryLog
	require.NoError(t, db.Where("sku_id = ? AND action = ?", created.SkuID, domain.ActionDestroy).Find(&logs).Error)
	require.Len(t, logs, 1)
}

func TestDeactivate_RestockReactivates(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	lot := seedLot(t, db, node, purchasedomain.MaterialBracelet, 10, 50)
	req := domain.CreateRequest{
		Materials:    []domain.MaterialInput{{PurchaseID: lot.ID.String(), QuantityUsed: 2}},
		ProductName:  "Seasonal",
		SellingPrice: decimal.NewFromInt(100),
	}
	created, err := svc.CreateFromMaterials(ctx, req)
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(ctx, created.SkuID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, deactivated.Status)

	_, err = svc.CreateFromMaterials(ctx, req)
	require.NoError(t, err)

	var sku domain.ProductSku
	require.NoError(t, db.First(&sku, "id = ?", created.SkuID).Error)
	assert.Equal(t, domain.StatusActive, sku.Status)
}
