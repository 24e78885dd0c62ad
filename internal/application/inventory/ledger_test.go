package inventory_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func TestRecordMovement_EntradaCreaItem(t *testing.T) {
	h := newHarness(t)
	itemID := h.stockIn(t, "sku-1", whNorte, 12)

	item, err := h.ledger.GetItem(context.Background(), itemID)
	require.NoError(t, err)
	assert.Equal(t, "sku-1", item.ProductID)
	assert.Equal(t, 12, item.QuantityOnHand)
	assert.Equal(t, 1, h.events.count(appinv.EventMovementRecorded))
}

func TestRecordMovement_SalidaSinItemEsNotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.ledger.RecordMovement(context.Background(), appinv.RecordMovementInput{
		ProductID: "sku-x", WarehouseID: whNorte, Type: entity.MovementTypeOut, Quantity: 1, Reason: "venta",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordMovement_EntradaEnBodegaInexistente(t *testing.T) {
	h := newHarness(t)
	_, err := h.ledger.RecordMovement(context.Background(), appinv.RecordMovementInput{
		ProductID: "sku-1", WarehouseID: "no-existe", Type: entity.MovementTypeIn, Quantity: 1, Reason: "compra",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordMovement_NormalizaSigno(t *testing.T) {
	h := newHarness(t)
	itemID := h.stockIn(t, "sku-1", whNorte, 10)

	mov, err := h.ledger.RecordMovement(context.Background(), appinv.RecordMovementInput{
		InventoryItemID: itemID, Type: entity.MovementTypeOut, Quantity: 4, Reason: "venta mostrador",
	})
	require.NoError(t, err)
	assert.Equal(t, -4, mov.Quantity)
	assert.Equal(t, 6, mov.BalanceAfter)
}

func TestRecordMovement_Validaciones(t *testing.T) {
	h := newHarness(t)
	itemID := h.stockIn(t, "sku-1", whNorte, 10)

	cases := map[string]appinv.RecordMovementInput{
		"cantidad cero": {InventoryItemID: itemID, Type: entity.MovementTypeOut, Quantity: 0, Reason: "x"},
		"sin motivo":    {InventoryItemID: itemID, Type: entity.MovementTypeOut, Quantity: 1},
		"tipo inválido": {InventoryItemID: itemID, Type: "SALE", Quantity: 1, Reason: "x"},
		"sin ítem":      {Type: entity.MovementTypeOut, Quantity: 1, Reason: "x"},
	}
	for name, in := range cases {
		_, err := h.ledger.RecordMovement(context.Background(), in)
		var vErr *domain.ValidationError
		assert.ErrorAs(t, err, &vErr, name)
	}
}

func TestRecordMovement_PisoDeDisponible(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	itemID := h.stockIn(t, "sku-1", whNorte, 10)
	_, err := h.reservations.Reserve(ctx, appinv.ReserveInput{
		InventoryItemID: itemID, Quantity: 7, ReferenceID: "ord-1", ReferenceType: entity.ReferenceTypeOrder,
	})
	require.NoError(t, err)

	_, err = h.ledger.RecordMovement(ctx, appinv.RecordMovementInput{
		InventoryItemID: itemID, Type: entity.MovementTypeOut, Quantity: 4, Reason: "venta",
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 10, h.onHand(t, itemID), "un error no aplica nada")

	_, err = h.ledger.RecordMovement(ctx, appinv.RecordMovementInput{
		InventoryItemID: itemID, Type: entity.MovementTypeOut, Quantity: 4, Reason: "corrección", AllowNegative: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, h.onHand(t, itemID))
}

func TestLedger_SaldoIgualASumaDeMovimientos(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	itemID := h.stockIn(t, "sku-1", whNorte, 50)
	rnd := rand.New(rand.NewSource(42))
	types := []entity.MovementType{
		entity.MovementTypeIn, entity.MovementTypeOut, entity.MovementTypeAdjustment, entity.MovementTypeTransfer,
	}

	for i := 0; i < 200; i++ {
		qty := rnd.Intn(9) - 4
		if qty == 0 {
			qty = 1
		}
		_, err := h.ledger.RecordMovement(ctx, appinv.RecordMovementInput{
			InventoryItemID: itemID, Type: types[rnd.Intn(len(types))], Quantity: qty, Reason: "aleatorio",
		})
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}

	report, err := h.ledger.VerifyBalance(ctx, itemID)
	require.NoError(t, err)
	assert.True(t, report.Consistent(), "drift %d", report.Drift)
	assert.Equal(t, report.LedgerSum, h.onHand(t, itemID))
}

func TestReceivePurchaseOrder_CostoPromedio(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cost := decimal.NewFromInt(100)
	_, err := h.ledger.RecordMovement(ctx, appinv.RecordMovementInput{
		ProductID: "sku-1", WarehouseID: whNorte, Type: entity.MovementTypeIn, Quantity: 10, UnitCost: &cost, Reason: "inicial",
	})
	require.NoError(t, err)

	movs, err := h.ledger.ReceivePurchaseOrder(ctx, entity.PurchaseOrderReceipt{
		PurchaseOrderID: "po-77",
		WarehouseID:     whNorte,
		Lines: []entity.PurchaseOrderReceiptLine{
			{ProductID: "sku-1", Quantity: 10, UnitCost: decimal.NewFromInt(200)},
			{ProductID: "sku-2", Quantity: 5, UnitCost: decimal.NewFromInt(30)},
		},
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)

	byRef, err := h.ledger.GetMovementsByReference(ctx, entity.ReferenceTypePurchaseOrder, "po-77")
	require.NoError(t, err)
	assert.Len(t, byRef, 2)

	item, err := h.ledger.GetItem(ctx, movs[0].InventoryItemID)
	require.NoError(t, err)
	if item.ProductID != "sku-1" {
		item, err = h.ledger.GetItem(ctx, movs[1].InventoryItemID)
		require.NoError(t, err)
	}
	assert.True(t, item.AverageCost.Equal(decimal.NewFromInt(150)), item.AverageCost.String())
}

func TestReceivePurchaseOrder_LineaInvalidaNoAplicaNada(t *testing.T) {
	h := newHarness(t)
	_, err := h.ledger.ReceivePurchaseOrder(context.Background(), entity.PurchaseOrderReceipt{
		PurchaseOrderID: "po-1",
		WarehouseID:     whNorte,
		Lines: []entity.PurchaseOrderReceiptLine{
			{ProductID: "sku-1", Quantity: 3},
			{ProductID: "sku-2", Quantity: 0},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, h.available(t, "sku-1", whNorte))
}

func TestListLowStock_PriorizaPorDeficit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a, err := h.ledger.EnsureItem(ctx, "sku-a", whNorte, 10)
	require.NoError(t, err)
	b, err := h.ledger.EnsureItem(ctx, "sku-b", whNorte, 20)
	require.NoError(t, err)
	h.stockIn(t, "sku-a", whNorte, 8)
	h.stockIn(t, "sku-b", whNorte, 5)
	h.stockIn(t, "sku-c", whNorte, 100)

	list, err := h.ledger.ListLowStock(ctx, whNorte)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].InventoryItemID)
	assert.Equal(t, 1, list[0].Priority)
	assert.Equal(t, 30, list[0].IdealStock)
	assert.Equal(t, 25, list[0].SuggestedOrderQty)
	assert.Equal(t, a.ID, list[1].InventoryItemID)
}

func TestRecordMovement_EventoStockBajo(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	item, err := h.ledger.EnsureItem(ctx, "sku-1", whNorte, 5)
	require.NoError(t, err)
	h.stockIn(t, "sku-1", whNorte, 8)

	_, err = h.ledger.RecordMovement(ctx, appinv.RecordMovementInput{
		InventoryItemID: item.ID, Type: entity.MovementTypeOut, Quantity: 4, Reason: "venta",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, h.events.count(appinv.EventStockLow))
}

func TestEnsureItem_EsIdempotente(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first, err := h.ledger.EnsureItem(ctx, "sku-1", whNorte, 3)
	require.NoError(t, err)
	second, err := h.ledger.EnsureItem(ctx, "sku-1", whNorte, 9)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.ReorderLevel)
}

func TestGetMovementHistory_RecientesPrimero(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.stockIn(t, "sku-1", whNorte, 5)
	h.clock.Advance(time.Hour)
	h.stockIn(t, "sku-1", whNorte, 7)

	list, err := h.ledger.GetMovementHistory(ctx, "sku-1", whNorte, nil, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 7, list[0].Quantity)

	from := h.clock.Now().Add(-time.Minute)
	list, err = h.ledger.GetMovementHistory(ctx, "sku-1", whNorte, &from, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
