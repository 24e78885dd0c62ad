package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EnsureItemRequest body para POST /api/inventory/items.
type EnsureItemRequest struct {
	ProductID    string `json:"product_id" validate:"required"`
	WarehouseID  string `json:"warehouse_id" validate:"required"`
	ReorderLevel int    `json:"reorder_level" validate:"min=0"`
}

// InventoryItemResponse salida de un ítem de inventario.
type InventoryItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	WarehouseID    string          `json:"warehouse_id"`
	QuantityOnHand int             `json:"quantity_on_hand"`
	ReorderLevel   int             `json:"reorder_level"`
	AverageCost    decimal.Decimal `json:"average_cost"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AvailabilityResponse disponible = en mano − reservas activas.
type AvailabilityResponse struct {
	InventoryItemID string `json:"inventory_item_id,omitempty"`
	ProductID       string `json:"product_id"`
	WarehouseID     string `json:"warehouse_id"`
	QuantityOnHand  int    `json:"quantity_on_hand"`
	Reserved        int    `json:"reserved"`
	Available       int    `json:"available"`
}

// BalanceReportResponse resultado de verificar el saldo contra el ledger.
type BalanceReportResponse struct {
	InventoryItemID string `json:"inventory_item_id"`
	QuantityOnHand  int    `json:"quantity_on_hand"`
	LedgerSum       int    `json:"ledger_sum"`
	Drift           int    `json:"drift"`
	Consistent      bool   `json:"consistent"`
}

// RecordMovementRequest body para POST /api/inventory/movements.
// Identifica el ítem por inventory_item_id o por product_id + warehouse_id.
type RecordMovementRequest struct {
	InventoryItemID string           `json:"inventory_item_id,omitempty"`
	ProductID       string           `json:"product_id,omitempty" validate:"required_without=InventoryItemID"`
	WarehouseID     string           `json:"warehouse_id,omitempty" validate:"required_without=InventoryItemID"`
	Type            string           `json:"type" validate:"required,oneof=IN OUT TRANSFER ADJUSTMENT RESERVED RELEASED"`
	Quantity        int              `json:"quantity" validate:"required"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason          string           `json:"reason" validate:"required,max=500"`
	ReferenceID     string           `json:"reference_id,omitempty"`
	ReferenceType   string           `json:"reference_type,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	AllowNegative   bool             `json:"allow_negative,omitempty"`
}

// MovementResponse salida de un movimiento del ledger.
type MovementResponse struct {
	ID              string           `json:"id"`
	InventoryItemID string           `json:"inventory_item_id"`
	ProductID       string           `json:"product_id"`
	WarehouseID     string           `json:"warehouse_id"`
	Type            string           `json:"type"`
	Quantity        int              `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	BalanceAfter    int              `json:"balance_after"`
	Reason          string           `json:"reason"`
	ReferenceID     string           `json:"reference_id,omitempty"`
	ReferenceType   string           `json:"reference_type,omitempty"`
	MovementDate    time.Time        `json:"movement_date"`
	PerformedBy     string           `json:"performed_by,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// MovementHistoryQuery query de GET /api/inventory/movements.
type MovementHistoryQuery struct {
	ProductID   string `query:"product_id" validate:"required"`
	WarehouseID string `query:"warehouse_id" validate:"required"`
	From        string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To          string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	PageRequest
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ReceiptLineRequest línea recibida de una orden de compra.
type ReceiptLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// ReceivePurchaseOrderRequest body para POST /api/inventory/receipts.
type ReceivePurchaseOrderRequest struct {
	PurchaseOrderID string               `json:"purchase_order_id" validate:"required"`
	SupplierID      string               `json:"supplier_id,omitempty"`
	WarehouseID     string               `json:"warehouse_id" validate:"required"`
	Lines           []ReceiptLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// LowStockItemResponse sugerencia de reposición para un ítem bajo su punto de reorden.
type LowStockItemResponse struct {
	InventoryItemID    string          `json:"inventory_item_id"`
	ProductID          string          `json:"product_id"`
	WarehouseID        string          `json:"warehouse_id"`
	QuantityOnHand     int             `json:"quantity_on_hand"`
	Reserved           int             `json:"reserved"`
	Available          int             `json:"available"`
	ReorderLevel       int             `json:"reorder_level"`
	Deficit            int             `json:"deficit"`
	IdealStock         int             `json:"ideal_stock"`          // ReorderLevel * 1.5
	SuggestedOrderQty  int             `json:"suggested_order_qty"`  // IdealStock - QuantityOnHand
	AverageCost        decimal.Decimal `json:"average_cost"`         // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * AverageCost
	UnitsOutLast90Days int             `json:"units_out_last_90d"`
	Priority           int             `json:"priority"` // 1 = más urgente
}
