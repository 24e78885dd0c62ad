package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem representa el stock de un producto en una bodega.
// QuantityOnHand solo cambia a través del ledger (Apply); es siempre la suma con signo
// de todos los movimientos aplicados al ítem.
type InventoryItem struct {
	ID             string
	ProductID      string
	WarehouseID    string
	QuantityOnHand int
	ReorderLevel   int
	AverageCost    decimal.Decimal // costo promedio ponderado
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Apply aplica el delta del movimiento y deja en el movimiento el saldo resultante.
func (i *InventoryItem) Apply(m *StockMovement) {
	i.QuantityOnHand += m.Quantity
	i.UpdatedAt = m.MovementDate
	m.BalanceAfter = i.QuantityOnHand
}

// Available devuelve la cantidad disponible para vender dado el total reservado activo.
func (i *InventoryItem) Available(activeReserved int) int {
	return i.QuantityOnHand - activeReserved
}

// BelowReorderLevel indica si el ítem está en o por debajo del punto de reorden.
func (i *InventoryItem) BelowReorderLevel() bool {
	return i.ReorderLevel > 0 && i.QuantityOnHand <= i.ReorderLevel
}
