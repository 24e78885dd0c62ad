package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, inventory_item_id, product_id, warehouse_id, type, quantity, unit_cost, balance_after,
	reason, reference_id, reference_type, movement_date, performed_by, notes`

// StockMovementRepo ledger de movimientos. Solo inserta; la tabla rechaza UPDATE y DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.InventoryItemID, m.ProductID, m.WarehouseID, string(m.Type), m.Quantity, m.UnitCost,
		m.BalanceAfter, m.Reason, m.ReferenceID, m.ReferenceType, m.MovementDate, m.PerformedBy, m.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByItem historial del ítem, más reciente primero, con rango de fechas opcional.
func (r *StockMovementRepo) ListByItem(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE inventory_item_id = $1
		  AND ($2::timestamptz IS NULL OR movement_date >= $2)
		  AND ($3::timestamptz IS NULL OR movement_date <= $3)
		ORDER BY movement_date DESC, id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, itemID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements by item: %w", err)
	}
	return collectMovements(rows)
}

// ListByReference movimientos de un documento externo, en orden de registro.
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY movement_date, id`
	rows, err := r.q.Query(ctx, query, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list movements by reference: %w", err)
	}
	return collectMovements(rows)
}

// SumByItem suma con signo de todas las cantidades del ítem.
func (r *StockMovementRepo) SumByItem(ctx context.Context, itemID string) (int, error) {
	var sum int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE inventory_item_id = $1`, itemID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}

// SumOutflowSince unidades salidas (OUT) desde since, en positivo.
func (r *StockMovementRepo) SumOutflowSince(ctx context.Context, itemID string, since time.Time) (int, error) {
	var sum int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(-quantity), 0)
		FROM stock_movements
		WHERE inventory_item_id = $1 AND type = 'OUT' AND movement_date >= $2`, itemID, since,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum outflow: %w", err)
	}
	return sum, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	list := []*entity.StockMovement{}
	for rows.Next() {
		var m entity.StockMovement
		var typ string
		if err := rows.Scan(
			&m.ID, &m.InventoryItemID, &m.ProductID, &m.WarehouseID, &typ, &m.Quantity, &m.UnitCost,
			&m.BalanceAfter, &m.Reason, &m.ReferenceID, &m.ReferenceType, &m.MovementDate, &m.PerformedBy, &m.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = entity.MovementType(typ)
		list = append(list, &m)
	}
	return list, rows.Err()
}
