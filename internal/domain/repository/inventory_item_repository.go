package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// InventoryItemRepository puerto de persistencia para ítems de inventario (DIP).
// Los Get devuelven (nil, nil) cuando no existe el registro.
type InventoryItemRepository interface {
	// Create falla con domain.ErrDuplicate si ya existe el par (producto, bodega).
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetByProductAndWarehouse(ctx context.Context, productID, warehouseID string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	Update(ctx context.Context, item *entity.InventoryItem) error
	// ListBelowReorderLevel lista ítems con cantidad <= punto de reorden; warehouseID vacío = todas las bodegas.
	ListBelowReorderLevel(ctx context.Context, warehouseID string) ([]*entity.InventoryItem, error)
}
