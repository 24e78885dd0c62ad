package entity

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// ReservationStatus estado de una reserva. Active es el único estado no terminal.
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "ACTIVE"
	ReservationStatusFulfilled ReservationStatus = "FULFILLED"
	ReservationStatusReleased  ReservationStatus = "RELEASED"
	ReservationStatusExpired   ReservationStatus = "EXPIRED"
)

// StockReservation retención temporal de stock contra un pedido u orden de trabajo.
// No mueve QuantityOnHand; reduce la cantidad disponible mientras está activa.
type StockReservation struct {
	ID              string
	InventoryItemID string
	ProductID       string
	WarehouseID     string
	Quantity        int
	ReferenceID     string
	ReferenceType   string
	Status          ReservationStatus
	ReservedAt      time.Time
	ExpiresAt       time.Time
	ReleasedAt      *time.Time
	FulfilledAt     *time.Time
	ExpiredAt       *time.Time
	ReleaseReason   string
	Notes           string
}

// IsActive indica si la reserva sigue reteniendo stock.
func (r *StockReservation) IsActive() bool {
	return r.Status == ReservationStatusActive
}

// IsExpired predicado puro para el barrido: el vencimiento ya ocurrió en now.
func (r *StockReservation) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Fulfill Active -> Fulfilled.
func (r *StockReservation) Fulfill(now time.Time) error {
	if err := r.guard(ReservationStatusFulfilled); err != nil {
		return err
	}
	r.Status = ReservationStatusFulfilled
	r.FulfilledAt = &now
	return nil
}

// Release Active -> Released, guardando el motivo.
func (r *StockReservation) Release(reason string, now time.Time) error {
	if err := r.guard(ReservationStatusReleased); err != nil {
		return err
	}
	r.Status = ReservationStatusReleased
	r.ReleaseReason = reason
	r.ReleasedAt = &now
	return nil
}

// Expire Active -> Expired. Si la reserva ya no está activa es un no-op y devuelve false.
func (r *StockReservation) Expire(now time.Time) bool {
	if !r.IsActive() {
		return false
	}
	r.Status = ReservationStatusExpired
	r.ExpiredAt = &now
	return true
}

func (r *StockReservation) guard(target ReservationStatus) error {
	if r.IsActive() {
		return nil
	}
	return &domain.InvalidStateTransitionError{
		Entity:  "reserva",
		ID:      r.ID,
		Current: string(r.Status),
		Target:  string(target),
	}
}
