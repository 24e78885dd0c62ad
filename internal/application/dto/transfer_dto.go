package dto

import "time"

// TransferLineRequest línea del traslado.
type TransferLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	FromWarehouseID string                `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string                `json:"to_warehouse_id" validate:"required,nefield=FromWarehouseID"`
	Notes           string                `json:"notes,omitempty" validate:"max=500"`
	Items           []TransferLineRequest `json:"items" validate:"required,min=1,dive"`
}

// TransferLineResponse línea del traslado.
type TransferLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID              string                 `json:"id"`
	TransferNumber  string                 `json:"transfer_number"`
	FromWarehouseID string                 `json:"from_warehouse_id"`
	ToWarehouseID   string                 `json:"to_warehouse_id"`
	Status          string                 `json:"status"`
	RequestedBy     string                 `json:"requested_by,omitempty"`
	ApprovedBy      string                 `json:"approved_by,omitempty"`
	ShippedBy       string                 `json:"shipped_by,omitempty"`
	ReceivedBy      string                 `json:"received_by,omitempty"`
	CancelledBy     string                 `json:"cancelled_by,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	RequestedAt     time.Time              `json:"requested_at"`
	ApprovedAt      *time.Time             `json:"approved_at,omitempty"`
	ShippedAt       *time.Time             `json:"shipped_at,omitempty"`
	ReceivedAt      *time.Time             `json:"received_at,omitempty"`
	CancelledAt     *time.Time             `json:"cancelled_at,omitempty"`
	Items           []TransferLineResponse `json:"items"`
}
