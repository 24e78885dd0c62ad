package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockMovementRepository puerto del ledger de movimientos. Solo inserción y lectura.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByItem devuelve el historial más reciente primero.
	ListByItem(ctx context.Context, inventoryItemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error)
	// SumByItem suma con signo todas las cantidades del ítem.
	SumByItem(ctx context.Context, inventoryItemID string) (int, error)
	// SumOutflowSince suma (en positivo) las salidas OUT del ítem desde since.
	SumOutflowSince(ctx context.Context, inventoryItemID string, since time.Time) (int, error)
}
