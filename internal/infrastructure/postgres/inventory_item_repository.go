package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

const itemColumns = `id, product_id, warehouse_id, quantity_on_hand, reorder_level, average_cost, version, created_at, updated_at`

// InventoryItemRepo implementación de InventoryItemRepository sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador de ítems. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

// Create inserta el ítem. ON CONFLICT evita abortar la transacción cuando el par ya existe.
func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`
	cmd, err := r.q.Exec(ctx, query,
		item.ID, item.ProductID, item.WarehouseID, item.QuantityOnHand, item.ReorderLevel,
		item.AverageCost, item.Version, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert inventory item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

// GetByID obtiene un ítem por ID.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetByProductAndWarehouse obtiene el ítem del par (producto, bodega).
func (r *InventoryItemRepo) GetByProductAndWarehouse(ctx context.Context, productID, warehouseID string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE product_id = $1 AND warehouse_id = $2`,
		productID, warehouseID)
}

// GetForUpdate obtiene el ítem y bloquea la fila para update (SELECT FOR UPDATE).
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste saldo y costo promedio e incrementa la versión.
func (r *InventoryItemRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET quantity_on_hand = $2, reorder_level = $3, average_cost = $4, version = version + 1, updated_at = $5
		WHERE id = $1
		RETURNING version`
	err := r.q.QueryRow(ctx, query,
		item.ID, item.QuantityOnHand, item.ReorderLevel, item.AverageCost, item.UpdatedAt,
	).Scan(&item.Version)
	if err != nil {
		if isNoRows(err) {
			return domain.NewNotFoundError("ítem de inventario", item.ID)
		}
		return fmt.Errorf("update inventory item: %w", err)
	}
	return nil
}

// ListBelowReorderLevel ítems con punto de reorden definido y saldo en o bajo él.
func (r *InventoryItemRepo) ListBelowReorderLevel(ctx context.Context, warehouseID string) ([]*entity.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM inventory_items
		WHERE reorder_level > 0 AND quantity_on_hand <= reorder_level
		  AND ($1 = '' OR warehouse_id = $1)
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list low stock items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func (r *InventoryItemRepo) getOne(ctx context.Context, query string, args ...any) (*entity.InventoryItem, error) {
	item, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(
		&it.ID, &it.ProductID, &it.WarehouseID, &it.QuantityOnHand, &it.ReorderLevel,
		&it.AverageCost, &it.Version, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
