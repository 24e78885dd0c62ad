package dto

import "time"

// ReserveRequest body para POST /api/reservations.
type ReserveRequest struct {
	InventoryItemID string `json:"inventory_item_id,omitempty"`
	ProductID       string `json:"product_id,omitempty" validate:"required_without=InventoryItemID"`
	WarehouseID     string `json:"warehouse_id,omitempty" validate:"required_without=InventoryItemID"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	ReferenceID     string `json:"reference_id" validate:"required"`
	ReferenceType   string `json:"reference_type" validate:"required"`
	ExpirationHours *int   `json:"expiration_hours,omitempty" validate:"omitempty,min=0"`
	Notes           string `json:"notes,omitempty"`
}

// FulfillRequest body opcional para POST /api/reservations/:id/fulfill.
type FulfillRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ReleaseRequest body para POST /api/reservations/:id/release.
type ReleaseRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ReservationResponse salida de una reserva.
type ReservationResponse struct {
	ID              string     `json:"id"`
	InventoryItemID string     `json:"inventory_item_id"`
	ProductID       string     `json:"product_id"`
	WarehouseID     string     `json:"warehouse_id"`
	Quantity        int        `json:"quantity"`
	ReferenceID     string     `json:"reference_id"`
	ReferenceType   string     `json:"reference_type"`
	Status          string     `json:"status"`
	ReservedAt      time.Time  `json:"reserved_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	ReleasedAt      *time.Time `json:"released_at,omitempty"`
	FulfilledAt     *time.Time `json:"fulfilled_at,omitempty"`
	ExpiredAt       *time.Time `json:"expired_at,omitempty"`
	ReleaseReason   string     `json:"release_reason,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// FulfillResponse reserva despachada y su movimiento OUT.
type FulfillResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Movement    MovementResponse    `json:"movement"`
}

// ExpireResponse resultado de POST /api/reservations/:id/expire.
type ExpireResponse struct {
	ID      string `json:"id"`
	Changed bool   `json:"changed"`
}
