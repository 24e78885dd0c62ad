package dto

import "time"

// AdjustmentLineRequest línea de ajuste. quantity_before omitido toma el saldo actual.
type AdjustmentLineRequest struct {
	InventoryItemID  string `json:"inventory_item_id" validate:"required"`
	QuantityBefore   *int   `json:"quantity_before,omitempty"`
	QuantityAdjusted int    `json:"quantity_adjusted" validate:"required"`
}

// CreateAdjustmentRequest body para POST /api/adjustments.
type CreateAdjustmentRequest struct {
	WarehouseID string                  `json:"warehouse_id" validate:"required"`
	Type        string                  `json:"type" validate:"required,oneof=DAMAGE LOSS FOUND COUNT RETURN EXPIRY"`
	Reason      string                  `json:"reason,omitempty" validate:"max=500"`
	Items       []AdjustmentLineRequest `json:"items" validate:"required,min=1,dive"`
}

// AdjustmentLineResponse línea del ajuste.
type AdjustmentLineResponse struct {
	ID               string `json:"id"`
	InventoryItemID  string `json:"inventory_item_id"`
	ProductID        string `json:"product_id"`
	QuantityBefore   int    `json:"quantity_before"`
	QuantityAdjusted int    `json:"quantity_adjusted"`
	QuantityAfter    int    `json:"quantity_after"`
}

// AdjustmentResponse salida de un ajuste.
type AdjustmentResponse struct {
	ID               string                   `json:"id"`
	AdjustmentNumber string                   `json:"adjustment_number"`
	WarehouseID      string                   `json:"warehouse_id"`
	Type             string                   `json:"type"`
	Status           string                   `json:"status"`
	Reason           string                   `json:"reason,omitempty"`
	AdjustedBy       string                   `json:"adjusted_by,omitempty"`
	IsApproved       bool                     `json:"is_approved"`
	IsActive         bool                     `json:"is_active"`
	ApprovedBy       string                   `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time               `json:"approved_at,omitempty"`
	RejectedBy       string                   `json:"rejected_by,omitempty"`
	RejectedAt       *time.Time               `json:"rejected_at,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	Items            []AdjustmentLineResponse `json:"items"`
}

// AdjustmentListResponse lista paginada de ajustes.
type AdjustmentListResponse struct {
	Items []AdjustmentResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
