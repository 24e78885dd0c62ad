package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)

const adjustmentColumns = `id, adjustment_number, warehouse_id, type, reason, adjusted_by, is_approved, is_active,
	approved_by, approved_at, rejected_by, rejected_at, created_at, version`

// StockAdjustmentRepo ajustes y sus líneas. Las líneas solo se escriben al crear.
type StockAdjustmentRepo struct {
	q Querier
}

// NewStockAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAdjustmentRepository(q Querier) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{q: q}
}

// Create inserta cabecera y líneas. Debe llamarse dentro de una transacción.
func (r *StockAdjustmentRepo) Create(ctx context.Context, a *entity.StockAdjustment) error {
	query := `
		INSERT INTO stock_adjustments (` + adjustmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.AdjustmentNumber, a.WarehouseID, string(a.Type), a.Reason, a.AdjustedBy, a.IsApproved, a.IsActive,
		a.ApprovedBy, a.ApprovedAt, a.RejectedBy, a.RejectedAt, a.CreatedAt, a.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert adjustment: %w", err)
	}
	for _, it := range a.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock_adjustment_items
				(id, adjustment_id, inventory_item_id, product_id, quantity_before, quantity_adjusted, quantity_after)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, a.ID, it.InventoryItemID, it.ProductID, it.QuantityBefore, it.QuantityAdjusted, it.QuantityAfter,
		)
		if err != nil {
			return fmt.Errorf("insert adjustment item: %w", err)
		}
	}
	return nil
}

func (r *StockAdjustmentRepo) GetByID(ctx context.Context, id string) (*entity.StockAdjustment, error) {
	return r.getOne(ctx, `SELECT `+adjustmentColumns+` FROM stock_adjustments WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera; las líneas no cambian después de crear el ajuste.
func (r *StockAdjustmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockAdjustment, error) {
	return r.getOne(ctx, `SELECT `+adjustmentColumns+` FROM stock_adjustments WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste el estado si la versión no cambió desde la lectura.
func (r *StockAdjustmentRepo) Update(ctx context.Context, a *entity.StockAdjustment) error {
	query := `
		UPDATE stock_adjustments
		SET is_approved = $3, is_active = $4, approved_by = $5, approved_at = $6,
		    rejected_by = $7, rejected_at = $8, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version`
	err := r.q.QueryRow(ctx, query,
		a.ID, a.Version, a.IsApproved, a.IsActive, a.ApprovedBy, a.ApprovedAt, a.RejectedBy, a.RejectedAt,
	).Scan(&a.Version)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("ajuste %s: %w", a.ID, domain.ErrConflict)
		}
		return fmt.Errorf("update adjustment: %w", err)
	}
	return nil
}

// ListByWarehouse ajustes de la bodega, más recientes primero, con sus líneas.
func (r *StockAdjustmentRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+adjustmentColumns+`
		FROM stock_adjustments
		WHERE warehouse_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	list := []*entity.StockAdjustment{}
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		list = append(list, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, a := range list {
		if a.Items, err = r.items(ctx, a.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *StockAdjustmentRepo) getOne(ctx context.Context, query, id string) (*entity.StockAdjustment, error) {
	a, err := scanAdjustment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}
	if a.Items, err = r.items(ctx, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *StockAdjustmentRepo) items(ctx context.Context, adjustmentID string) ([]entity.StockAdjustmentItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, adjustment_id, inventory_item_id, product_id, quantity_before, quantity_adjusted, quantity_after
		FROM stock_adjustment_items
		WHERE adjustment_id = $1
		ORDER BY inventory_item_id`, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("list adjustment items: %w", err)
	}
	defer rows.Close()
	var list []entity.StockAdjustmentItem
	for rows.Next() {
		var it entity.StockAdjustmentItem
		if err := rows.Scan(&it.ID, &it.AdjustmentID, &it.InventoryItemID, &it.ProductID,
			&it.QuantityBefore, &it.QuantityAdjusted, &it.QuantityAfter); err != nil {
			return nil, fmt.Errorf("scan adjustment item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func scanAdjustment(row pgx.Row) (*entity.StockAdjustment, error) {
	var a entity.StockAdjustment
	var typ string
	err := row.Scan(
		&a.ID, &a.AdjustmentNumber, &a.WarehouseID, &typ, &a.Reason, &a.AdjustedBy, &a.IsApproved, &a.IsActive,
		&a.ApprovedBy, &a.ApprovedAt, &a.RejectedBy, &a.RejectedAt, &a.CreatedAt, &a.Version,
	)
	if err != nil {
		return nil, err
	}
	a.Type = entity.AdjustmentType(typ)
	return &a, nil
}
