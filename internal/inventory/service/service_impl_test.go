package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	purchasedomain "github.com/lumistone/atelier/internal/purchase/domain"
	skudomain "github.com/lumistone/atelier/internal/sku/domain"
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
	require.NoError(t, db.AutoMigrate(&purchasedomain.Purchase{}, &skudomain.ProductSku{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{DB: db, Log: zap.NewNop()}).(*Service)
	return svc, db, node
}

func seedLot(t *testing.T, db *gorm.DB, node *snowflake.Node, materialType purchasedomain.MaterialType, quality string, remaining int, unitPrice int64, status purchasedomain.Status) {
	t.Helper()

	require.NoError(t, db.Create(&purchasedomain.Purchase{
		ID:                node.Generate(),
		Code:              fmt.Sprintf("PUR-%s", node.Generate()),
		MaterialType:      materialType,
		Name:              "stone",
		Quality:           quality,
		PieceCount:        remaining,
		UnitPrice:         decimal.NewFromInt(unitPrice),
		TotalCost:         decimal.NewFromInt(unitPrice * int64(remaining)),
		RemainingQuantity: remaining,
		Status:            status,
		CreatedBy:         "tester",
	}).Error)
}

func TestMatrix_GroupsByTypeAndQuality(t *testing.T) {
	svc, db, node := newTestService(t)

	seedLot(t, db, node, purchasedomain.MaterialBracelet, "AA", 10, 50, purchasedomain.StatusActive)
	seedLot(t, db, node, purchasedomain.MaterialBracelet, "AA", 5, 60, purchasedomain.StatusActive)
	seedLot(t, db, node, purchasedomain.MaterialBracelet, "A", 8, 30, purchasedomain.StatusActive)
	seedLot(t, db, node, purchasedomain.MaterialLooseBeads, "AAA", 20, 10, purchasedomain.StatusActive)
	// Exhausted lots stay out of the matrix.
	seedLot(t, db, node, purchasedomain.MaterialAccessory, "B", 0, 5, purchasedomain.StatusUsed)

	resp, err := svc.Matrix(context.Background())
	require.NoError(t, err)

	require.Len(t, resp.Materials, 2)

	byType := make(map[string][]int64)
	for _, row := range resp.Materials {
		for _, cell := range row.Cells {
			byType[row.MaterialType+"/"+cell.Quality] = []int64{cell.LotCount, cell.RemainingUnits}
		}
	}

	assert.Equal(t, []int64{2, 15}, byType["BRACELET/AA"])
	assert.Equal(t, []int64{1, 8}, byType["BRACELET/A"])
	assert.Equal(t, []int64{1, 20}, byType["LOOSE_BEADS/AAA"])
}

func TestMatrix_SkuTotals(t *testing.T) {
	svc, db, node := newTestService(t)

	require.NoError(t, db.Create(&skudomain.ProductSku{
		ID:                    node.Generate(),
		SkuCode:               "SKU-A",
		Name:                  "Pendant",
		MaterialSignature:     []byte(`[]`),
		MaterialSignatureHash: "hash-a",
		TotalCost:             decimal.NewFromInt(60),
		SellingPrice:          decimal.NewFromInt(150),
		TotalQuantity:         4,
		AvailableQuantity:     4,
		Status:                skudomain.StatusActive,
		CreatedBy:             "tester",
	}).Error)
	require.NoError(t, db.Create(&skudomain.ProductSku{
		ID:                    node.Generate(),
		SkuCode:               "SKU-B",
		Name:                  "Bracelet",
		MaterialSignature:     []byte(`[]`),
		MaterialSignatureHash: "hash-b",
		TotalCost:             decimal.NewFromInt(30),
		SellingPrice:          decimal.NewFromInt(90),
		TotalQuantity:         2,
		AvailableQuantity:     2,
		Status:                skudomain.StatusInactive,
		CreatedBy:             "tester",
	}).Error)

	resp, err := svc.Matrix(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.Skus.ActiveSkuCount)
	assert.Equal(t, int64(4), resp.Skus.AvailableUnits)
	assert.True(t, resp.Skus.CostValue.Equal(decimal.NewFromInt(240)), "cost %s", resp.Skus.CostValue)
	assert.True(t, resp.Skus.RetailValue.Equal(decimal.NewFromInt(600)), "retail %s", resp.Skus.RetailValue)
}
