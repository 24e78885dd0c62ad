package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockReservationRepository puerto de persistencia para reservas.
type StockReservationRepository interface {
	Create(ctx context.Context, r *entity.StockReservation) error
	GetByID(ctx context.Context, id string) (*entity.StockReservation, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockReservation, error)
	Update(ctx context.Context, r *entity.StockReservation) error
	// SumActiveByItem suma las cantidades en estado ACTIVE, sin importar expiresAt.
	SumActiveByItem(ctx context.Context, inventoryItemID string) (int, error)
	ListActiveByReference(ctx context.Context, referenceID string) ([]*entity.StockReservation, error)
	// ListExpiredActive reservas ACTIVE con expiresAt <= now posteriores a after,
	// ordenadas por (expiresAt, id).
	ListExpiredActive(ctx context.Context, now time.Time, after ExpiryCursor, limit int) ([]*entity.StockReservation, error)
}

// ExpiryCursor posición de paginación por (expiresAt, id). El valor cero empieza desde el principio.
type ExpiryCursor struct {
	ExpiresAt time.Time
	ID        string
}

// After indica si la reserva va después del cursor en el orden (expiresAt, id).
func (c ExpiryCursor) After(r *entity.StockReservation) bool {
	if !r.ExpiresAt.Equal(c.ExpiresAt) {
		return r.ExpiresAt.After(c.ExpiresAt)
	}
	return r.ID > c.ID
}

