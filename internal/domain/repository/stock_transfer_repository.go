package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockTransferRepository puerto de persistencia para traslados.
type StockTransferRepository interface {
	Create(ctx context.Context, t *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error)
	// Update persiste la cabecera con control de versión optimista.
	Update(ctx context.Context, t *entity.StockTransfer) error
}
