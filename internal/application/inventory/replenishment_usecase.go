package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
)

const outflowWindowDays = 90

// ListLowStock devuelve los ítems en o bajo su punto de reorden con la cantidad sugerida de pedido,
// priorizados por déficit y luego por salidas de los últimos 90 días.
// warehouseID vacío considera todas las bodegas.
func (l *StockLedger) ListLowStock(ctx context.Context, warehouseID string) ([]dto.LowStockItemResponse, error) {
	// 1. Ítems por debajo del punto de reorden
	items, err := l.repos.Items.ListBelowReorderLevel(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []dto.LowStockItemResponse{}, nil
	}

	since := l.now().AddDate(0, 0, -outflowWindowDays)
	onePointFive := decimal.NewFromFloat(1.5)

	// 2. Enriquecer con reservas activas, stock ideal y salidas recientes
	out := make([]dto.LowStockItemResponse, 0, len(items))
	for _, item := range items {
		reserved, err := l.repos.Reservations.SumActiveByItem(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		outflow, err := l.repos.Movements.SumOutflowSince(ctx, item.ID, since)
		if err != nil {
			return nil, err
		}
		ideal := int(decimal.NewFromInt(int64(item.ReorderLevel)).Mul(onePointFive).Ceil().IntPart())
		suggested := ideal - item.QuantityOnHand
		if suggested < 0 {
			suggested = 0
		}
		out = append(out, dto.LowStockItemResponse{
			InventoryItemID:    item.ID,
			ProductID:          item.ProductID,
			WarehouseID:        item.WarehouseID,
			QuantityOnHand:     item.QuantityOnHand,
			Reserved:           reserved,
			Available:          item.Available(reserved),
			ReorderLevel:       item.ReorderLevel,
			Deficit:            item.ReorderLevel - item.QuantityOnHand,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			AverageCost:        item.AverageCost,
			EstimatedOrderCost: item.AverageCost.Mul(decimal.NewFromInt(int64(suggested))),
			UnitsOutLast90Days: outflow,
		})
	}

	// 3. Mayor déficit primero; empate por volumen de salidas
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Deficit != out[j].Deficit {
			return out[i].Deficit > out[j].Deficit
		}
		return out[i].UnitsOutLast90Days > out[j].UnitsOutLast90Days
	})

	// 4. Prioridad (1 = más urgente)
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
