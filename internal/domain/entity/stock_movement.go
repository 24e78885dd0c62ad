package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de inventario.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeIn         MovementType = "IN"         // entrada
	MovementTypeOut        MovementType = "OUT"        // salida
	MovementTypeTransfer   MovementType = "TRANSFER"   // traslado entre bodegas
	MovementTypeAdjustment MovementType = "ADJUSTMENT" // ajuste aprobado
	MovementTypeReserved   MovementType = "RESERVED"   // reserva física
	MovementTypeReleased   MovementType = "RELEASED"   // liberación de reserva física
)

// Tipos de referencia usados por los colaboradores.
const (
	ReferenceTypeOrder         = "ORDER"
	ReferenceTypeWorkOrder     = "WORK_ORDER"
	ReferenceTypePurchaseOrder = "PURCHASE_ORDER"
	ReferenceTypeReservation   = "RESERVATION"
	ReferenceTypeAdjustment    = "ADJUSTMENT"
	ReferenceTypeTransfer      = "TRANSFER"
)

// Valid indica si el tipo es uno de los canónicos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeTransfer,
		MovementTypeAdjustment, MovementTypeReserved, MovementTypeReleased:
		return true
	}
	return false
}

// SignedQuantity normaliza el signo según el tipo: IN/RELEASED positivo, OUT/RESERVED negativo.
// TRANSFER y ADJUSTMENT conservan el signo recibido.
func (t MovementType) SignedQuantity(q int) int {
	abs := q
	if abs < 0 {
		abs = -abs
	}
	switch t {
	case MovementTypeIn, MovementTypeReleased:
		return abs
	case MovementTypeOut, MovementTypeReserved:
		return -abs
	default:
		return q
	}
}

// StockMovement registro inmutable de un cambio de cantidad. Las correcciones son movimientos nuevos.
type StockMovement struct {
	ID              string
	InventoryItemID string
	ProductID       string
	WarehouseID     string
	Type            MovementType
	Quantity        int // con signo
	UnitCost        *decimal.Decimal
	BalanceAfter    int
	Reason          string
	ReferenceID     string
	ReferenceType   string
	MovementDate    time.Time
	PerformedBy     string
	Notes           string
}
