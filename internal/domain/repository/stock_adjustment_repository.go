package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockAdjustmentRepository puerto de persistencia para ajustes y sus líneas.
type StockAdjustmentRepository interface {
	Create(ctx context.Context, a *entity.StockAdjustment) error
	GetByID(ctx context.Context, id string) (*entity.StockAdjustment, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockAdjustment, error)
	// Update persiste la cabecera si la versión coincide (domain.ErrConflict si no) e incrementa Version.
	Update(ctx context.Context, a *entity.StockAdjustment) error
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockAdjustment, error)
}
