package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Tipos de evento publicados al topic de stock.
const (
	EventMovementRecorded      = "stock.movement.recorded"
	EventStockLow              = "stock.low"
	EventReservationCreated    = "stock.reservation.created"
	EventReservationFulfilled  = "stock.reservation.fulfilled"
	EventReservationReleased   = "stock.reservation.released"
	EventReservationExpired    = "stock.reservation.expired"
	EventAdjustmentCreated     = "stock.adjustment.created"
	EventAdjustmentApproved    = "stock.adjustment.approved"
	EventAdjustmentRejected    = "stock.adjustment.rejected"
	EventTransferStatusChanged = "stock.transfer.status_changed"
)

// StockEvent evento de integración. AggregateID es la clave de partición.
type StockEvent struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	AggregateID     string    `json:"aggregate_id"`
	InventoryItemID string    `json:"inventory_item_id,omitempty"`
	ProductID       string    `json:"product_id,omitempty"`
	WarehouseID     string    `json:"warehouse_id,omitempty"`
	Quantity        int       `json:"quantity,omitempty"`
	BalanceAfter    *int      `json:"balance_after,omitempty"`
	Status          string    `json:"status,omitempty"`
	ReferenceID     string    `json:"reference_id,omitempty"`
	ReferenceType   string    `json:"reference_type,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func newEvent(typ, aggregateID string, at time.Time) StockEvent {
	return StockEvent{ID: uuid.NewString(), Type: typ, AggregateID: aggregateID, OccurredAt: at}
}

func movementEvent(m *entity.StockMovement) StockEvent {
	ev := newEvent(EventMovementRecorded, m.InventoryItemID, m.MovementDate)
	ev.InventoryItemID = m.InventoryItemID
	ev.ProductID = m.ProductID
	ev.WarehouseID = m.WarehouseID
	ev.Quantity = m.Quantity
	balance := m.BalanceAfter
	ev.BalanceAfter = &balance
	ev.Status = string(m.Type)
	ev.ReferenceID = m.ReferenceID
	ev.ReferenceType = m.ReferenceType
	return ev
}

func lowStockEvent(item *entity.InventoryItem, at time.Time) StockEvent {
	ev := newEvent(EventStockLow, item.ID, at)
	ev.InventoryItemID = item.ID
	ev.ProductID = item.ProductID
	ev.WarehouseID = item.WarehouseID
	balance := item.QuantityOnHand
	ev.BalanceAfter = &balance
	ev.Quantity = item.ReorderLevel
	return ev
}

func reservationEvent(typ string, r *entity.StockReservation, at time.Time) StockEvent {
	ev := newEvent(typ, r.InventoryItemID, at)
	ev.InventoryItemID = r.InventoryItemID
	ev.ProductID = r.ProductID
	ev.WarehouseID = r.WarehouseID
	ev.Quantity = r.Quantity
	ev.Status = string(r.Status)
	ev.ReferenceID = r.ID
	ev.ReferenceType = entity.ReferenceTypeReservation
	return ev
}

func adjustmentEvent(typ string, a *entity.StockAdjustment, at time.Time) StockEvent {
	ev := newEvent(typ, a.ID, at)
	ev.WarehouseID = a.WarehouseID
	ev.Status = string(a.Status())
	ev.ReferenceID = a.AdjustmentNumber
	ev.ReferenceType = entity.ReferenceTypeAdjustment
	return ev
}

func transferEvent(t *entity.StockTransfer, at time.Time) StockEvent {
	ev := newEvent(EventTransferStatusChanged, t.ID, at)
	ev.WarehouseID = t.FromWarehouseID
	ev.Status = string(t.Status)
	ev.ReferenceID = t.TransferNumber
	ev.ReferenceType = entity.ReferenceTypeTransfer
	return ev
}
