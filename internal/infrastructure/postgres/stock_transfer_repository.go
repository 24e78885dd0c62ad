package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

const transferColumns = `id, transfer_number, from_warehouse_id, to_warehouse_id, status, requested_by, approved_by,
	shipped_by, received_by, cancelled_by, notes, requested_at, approved_at, shipped_at, received_at, cancelled_at, version`

// StockTransferRepo traslados y sus líneas.
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

// Create inserta cabecera y líneas. Debe llamarse dentro de una transacción.
func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TransferNumber, t.FromWarehouseID, t.ToWarehouseID, string(t.Status), t.RequestedBy, t.ApprovedBy,
		t.ShippedBy, t.ReceivedBy, t.CancelledBy, t.Notes, t.RequestedAt, t.ApprovedAt, t.ShippedAt,
		t.ReceivedAt, t.CancelledAt, t.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	for _, it := range t.Items {
		_, err := r.q.Exec(ctx,
			`INSERT INTO stock_transfer_items (id, transfer_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			it.ID, t.ID, it.ProductID, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert transfer item: %w", err)
		}
	}
	return nil
}

func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera del traslado (SELECT FOR UPDATE).
func (r *StockTransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste estado y responsables si la versión no cambió.
func (r *StockTransferRepo) Update(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		UPDATE stock_transfers
		SET status = $3, approved_by = $4, shipped_by = $5, received_by = $6, cancelled_by = $7,
		    approved_at = $8, shipped_at = $9, received_at = $10, cancelled_at = $11, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version`
	err := r.q.QueryRow(ctx, query,
		t.ID, t.Version, string(t.Status), t.ApprovedBy, t.ShippedBy, t.ReceivedBy, t.CancelledBy,
		t.ApprovedAt, t.ShippedAt, t.ReceivedAt, t.CancelledAt,
	).Scan(&t.Version)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("traslado %s: %w", t.ID, domain.ErrConflict)
		}
		return fmt.Errorf("update transfer: %w", err)
	}
	return nil
}

func (r *StockTransferRepo) getOne(ctx context.Context, query, id string) (*entity.StockTransfer, error) {
	var t entity.StockTransfer
	var status string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.TransferNumber, &t.FromWarehouseID, &t.ToWarehouseID, &status, &t.RequestedBy, &t.ApprovedBy,
		&t.ShippedBy, &t.ReceivedBy, &t.CancelledBy, &t.Notes, &t.RequestedAt, &t.ApprovedAt, &t.ShippedAt,
		&t.ReceivedAt, &t.CancelledAt, &t.Version,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	t.Status = entity.TransferStatus(status)

	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, product_id, quantity
		FROM stock_transfer_items
		WHERE transfer_id = $1
		ORDER BY product_id`, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.StockTransferItem
		if err := rows.Scan(&it.ID, &it.TransferID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		t.Items = append(t.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &t, nil
}
