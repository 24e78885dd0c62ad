package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockReservationRepository = (*StockReservationRepo)(nil)

const reservationColumns = `id, inventory_item_id, product_id, warehouse_id, quantity, reference_id, reference_type,
	status, reserved_at, expires_at, released_at, fulfilled_at, expired_at, release_reason, notes`

// StockReservationRepo reservas sobre PostgreSQL.
type StockReservationRepo struct {
	q Querier
}

// NewStockReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockReservationRepository(q Querier) *StockReservationRepo {
	return &StockReservationRepo{q: q}
}

func (r *StockReservationRepo) Create(ctx context.Context, res *entity.StockReservation) error {
	query := `
		INSERT INTO stock_reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.InventoryItemID, res.ProductID, res.WarehouseID, res.Quantity, res.ReferenceID, res.ReferenceType,
		string(res.Status), res.ReservedAt, res.ExpiresAt, res.ReleasedAt, res.FulfilledAt, res.ExpiredAt,
		res.ReleaseReason, res.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *StockReservationRepo) GetByID(ctx context.Context, id string) (*entity.StockReservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM stock_reservations WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila de la reserva (SELECT FOR UPDATE).
func (r *StockReservationRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockReservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM stock_reservations WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste el estado y las marcas de tiempo de la transición.
func (r *StockReservationRepo) Update(ctx context.Context, res *entity.StockReservation) error {
	query := `
		UPDATE stock_reservations
		SET status = $2, released_at = $3, fulfilled_at = $4, expired_at = $5, release_reason = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		res.ID, string(res.Status), res.ReleasedAt, res.FulfilledAt, res.ExpiredAt, res.ReleaseReason,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFoundError("reserva", res.ID)
	}
	return nil
}

func (r *StockReservationRepo) SumActiveByItem(ctx context.Context, itemID string) (int, error) {
	var sum int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_reservations
		WHERE inventory_item_id = $1 AND status = 'ACTIVE'`, itemID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum active reservations: %w", err)
	}
	return sum, nil
}

func (r *StockReservationRepo) ListActiveByReference(ctx context.Context, referenceID string) ([]*entity.StockReservation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM stock_reservations
		WHERE reference_id = $1 AND status = 'ACTIVE'
		ORDER BY reserved_at, id`, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	return collectReservations(rows)
}

func (r *StockReservationRepo) ListExpiredActive(ctx context.Context, now time.Time, after repository.ExpiryCursor, limit int) ([]*entity.StockReservation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM stock_reservations
		WHERE status = 'ACTIVE' AND expires_at <= $1
		  AND (expires_at, id) > ($2::timestamptz, $3::text)
		ORDER BY expires_at, id
		LIMIT $4`, now, after.ExpiresAt, after.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired reservations: %w", err)
	}
	return collectReservations(rows)
}

func (r *StockReservationRepo) getOne(ctx context.Context, query string, args ...any) (*entity.StockReservation, error) {
	res, err := scanReservation(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func scanReservation(row pgx.Row) (*entity.StockReservation, error) {
	var res entity.StockReservation
	var status string
	err := row.Scan(
		&res.ID, &res.InventoryItemID, &res.ProductID, &res.WarehouseID, &res.Quantity, &res.ReferenceID,
		&res.ReferenceType, &status, &res.ReservedAt, &res.ExpiresAt, &res.ReleasedAt, &res.FulfilledAt,
		&res.ExpiredAt, &res.ReleaseReason, &res.Notes,
	)
	if err != nil {
		return nil, err
	}
	res.Status = entity.ReservationStatus(status)
	return &res, nil
}

func collectReservations(rows pgx.Rows) ([]*entity.StockReservation, error) {
	defer rows.Close()
	list := []*entity.StockReservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}
