package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.InventoryItemRepository    = (*itemRepo)(nil)
	_ repository.StockMovementRepository    = (*movementRepo)(nil)
	_ repository.StockReservationRepository = (*reservationRepo)(nil)
	_ repository.StockAdjustmentRepository  = (*adjustmentRepo)(nil)
	_ repository.StockTransferRepository    = (*transferRepo)(nil)
	_ repository.WarehouseRepository        = (*warehouseRepo)(nil)
)

// Las escrituras validan contra la vista viva y se aplican con Store.write;
// las lecturas usan Store.view según haya o no transacción.

// ─── bodegas ───────────────────────────────────────────────────────────────

type warehouseRepo struct {
	s  *Store
	tx *tx
}

func (r *warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.live.warehouses[w.ID]; ok {
		return domain.ErrDuplicate
	}
	v := *w
	r.s.write(r.tx, func(st *state) { st.warehouses[v.ID] = v })
	r.tx.onRollback(func() { delete(r.s.live.warehouses, v.ID) })
	return nil
}

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.view(r.tx).warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

// ─── ítems ────────────────────────────────────────────────────────────────

type itemRepo struct {
	s  *Store
	tx *tx
}

func (r *itemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	// El ítem recién creado queda bloqueado por la transacción, como una fila insertada en PostgreSQL.
	if err := r.tx.lock(ctx, "item:"+item.ID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey(item.ProductID, item.WarehouseID)
	if _, ok := r.s.live.itemByPair[key]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.s.live.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	v := *item
	r.s.write(r.tx, func(st *state) {
		st.items[v.ID] = v
		st.itemByPair[key] = v.ID
	})
	r.tx.onRollback(func() {
		delete(r.s.live.items, v.ID)
		delete(r.s.live.itemByPair, key)
	})
	return nil
}

func (r *itemRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.get(id), nil
}

func (r *itemRepo) GetByProductAndWarehouse(_ context.Context, productID, warehouseID string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.view(r.tx).itemByPair[pairKey(productID, warehouseID)]
	if !ok {
		return nil, nil
	}
	return r.get(id), nil
}

func (r *itemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	if err := r.tx.lock(ctx, "item:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *itemRepo) Update(_ context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.live.items[item.ID]
	if !ok {
		return domain.NewNotFoundError("ítem de inventario", item.ID)
	}
	item.Version = prev.Version + 1
	v := *item
	r.s.write(r.tx, func(st *state) { st.items[v.ID] = v })
	r.tx.onRollback(func() { r.s.live.items[v.ID] = prev })
	return nil
}

func (r *itemRepo) ListBelowReorderLevel(_ context.Context, warehouseID string) ([]*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.InventoryItem
	for id, it := range r.s.view(r.tx).items {
		if warehouseID != "" && it.WarehouseID != warehouseID {
			continue
		}
		if it.BelowReorderLevel() {
			out = append(out, r.get(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// get se llama con s.mu tomado.
func (r *itemRepo) get(id string) *entity.InventoryItem {
	it, ok := r.s.view(r.tx).items[id]
	if !ok {
		return nil
	}
	return &it
}

// ─── movimientos ─────────────────────────────────────────────────────────

type movementRepo struct {
	s  *Store
	tx *tx
}

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v := *m
	r.s.write(r.tx, func(st *state) { st.movements = append(st.movements, v) })
	r.tx.onRollback(func() {
		live := r.s.live
		for i := len(live.movements) - 1; i >= 0; i-- {
			if live.movements[i].ID == v.ID {
				live.movements = append(live.movements[:i], live.movements[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (r *movementRepo) ListByItem(_ context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	movements := r.s.view(r.tx).movements
	var matched []*entity.StockMovement
	for i := len(movements) - 1; i >= 0; i-- {
		m := movements[i]
		if m.InventoryItemID != itemID {
			continue
		}
		if from != nil && m.MovementDate.Before(*from) {
			continue
		}
		if to != nil && m.MovementDate.After(*to) {
			continue
		}
		matched = append(matched, &m)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].MovementDate.After(matched[j].MovementDate) })
	return page(matched, limit, offset), nil
}

func (r *movementRepo) ListByReference(_ context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.StockMovement{}
	for _, m := range r.s.view(r.tx).movements {
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *movementRepo) SumByItem(_ context.Context, itemID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := 0
	for _, m := range r.s.view(r.tx).movements {
		if m.InventoryItemID == itemID {
			sum += m.Quantity
		}
	}
	return sum, nil
}

func (r *movementRepo) SumOutflowSince(_ context.Context, itemID string, since time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := 0
	for _, m := range r.s.view(r.tx).movements {
		if m.InventoryItemID == itemID && m.Type == entity.MovementTypeOut && !m.MovementDate.Before(since) {
			sum -= m.Quantity
		}
	}
	return sum, nil
}

// ─── reservas ────────────────────────────────────────────────────────────

type reservationRepo struct {
	s  *Store
	tx *tx
}

func (r *reservationRepo) Create(_ context.Context, res *entity.StockReservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.live.reservations[res.ID]; ok {
		return domain.ErrDuplicate
	}
	v := *res
	r.s.write(r.tx, func(st *state) { st.reservations[v.ID] = v })
	r.tx.onRollback(func() { delete(r.s.live.reservations, v.ID) })
	return nil
}

func (r *reservationRepo) GetByID(_ context.Context, id string) (*entity.StockReservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	res, ok := r.s.view(r.tx).reservations[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (r *reservationRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockReservation, error) {
	if err := r.tx.lock(ctx, "reservation:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *reservationRepo) Update(_ context.Context, res *entity.StockReservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.live.reservations[res.ID]
	if !ok {
		return domain.NewNotFoundError("reserva", res.ID)
	}
	v := *res
	r.s.write(r.tx, func(st *state) { st.reservations[v.ID] = v })
	r.tx.onRollback(func() { r.s.live.reservations[v.ID] = prev })
	return nil
}

func (r *reservationRepo) SumActiveByItem(_ context.Context, itemID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := 0
	for _, res := range r.s.view(r.tx).reservations {
		if res.InventoryItemID == itemID && res.IsActive() {
			sum += res.Quantity
		}
	}
	return sum, nil
}

func (r *reservationRepo) ListActiveByReference(_ context.Context, referenceID string) ([]*entity.StockReservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.StockReservation{}
	for _, res := range r.s.view(r.tx).reservations {
		if res.ReferenceID == referenceID && res.IsActive() {
			res := res
			out = append(out, &res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservedAt.Before(out[j].ReservedAt) })
	return out, nil
}

func (r *reservationRepo) ListExpiredActive(_ context.Context, now time.Time, after repository.ExpiryCursor, limit int) ([]*entity.StockReservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockReservation
	for _, res := range r.s.view(r.tx).reservations {
		if res.IsActive() && res.IsExpired(now) && after.After(&res) {
			res := res
			out = append(out, &res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiresAt.Equal(out[j].ExpiresAt) {
			return out[i].ExpiresAt.Before(out[j].ExpiresAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, 0), nil
}

// ─── ajustes ─────────────────────────────────────────────────────────────

type adjustmentRepo struct {
	s  *Store
	tx *tx
}

func (r *adjustmentRepo) Create(_ context.Context, a *entity.StockAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.live.adjustments[a.ID]; ok {
		return domain.ErrDuplicate
	}
	v := cloneAdjustment(*a)
	r.s.write(r.tx, func(st *state) { st.adjustments[v.ID] = v })
	r.tx.onRollback(func() { delete(r.s.live.adjustments, v.ID) })
	return nil
}

func (r *adjustmentRepo) GetByID(_ context.Context, id string) (*entity.StockAdjustment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.view(r.tx).adjustments[id]
	if !ok {
		return nil, nil
	}
	a = cloneAdjustment(a)
	return &a, nil
}

func (r *adjustmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockAdjustment, error) {
	if err := r.tx.lock(ctx, "adjustment:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *adjustmentRepo) Update(_ context.Context, a *entity.StockAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.live.adjustments[a.ID]
	if !ok {
		return domain.NewNotFoundError("ajuste", a.ID)
	}
	if prev.Version != a.Version {
		return domain.ErrConflict
	}
	a.Version++
	v := cloneAdjustment(*a)
	r.s.write(r.tx, func(st *state) { st.adjustments[v.ID] = v })
	r.tx.onRollback(func() { r.s.live.adjustments[v.ID] = prev })
	return nil
}

func (r *adjustmentRepo) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockAdjustment
	for _, a := range r.s.view(r.tx).adjustments {
		if a.WarehouseID == warehouseID {
			a = cloneAdjustment(a)
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}

func cloneAdjustment(a entity.StockAdjustment) entity.StockAdjustment {
	a.Items = append([]entity.StockAdjustmentItem(nil), a.Items...)
	return a
}

// ─── traslados ───────────────────────────────────────────────────────────

type transferRepo struct {
	s  *Store
	tx *tx
}

func (r *transferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.live.transfers[t.ID]; ok {
		return domain.ErrDuplicate
	}
	v := cloneTransfer(*t)
	r.s.write(r.tx, func(st *state) { st.transfers[v.ID] = v })
	r.tx.onRollback(func() { delete(r.s.live.transfers, v.ID) })
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.view(r.tx).transfers[id]
	if !ok {
		return nil, nil
	}
	t = cloneTransfer(t)
	return &t, nil
}

func (r *transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	if err := r.tx.lock(ctx, "transfer:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *transferRepo) Update(_ context.Context, t *entity.StockTransfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.live.transfers[t.ID]
	if !ok {
		return domain.NewNotFoundError("traslado", t.ID)
	}
	if prev.Version != t.Version {
		return domain.ErrConflict
	}
	t.Version++
	v := cloneTransfer(*t)
	r.s.write(r.tx, func(st *state) { st.transfers[v.ID] = v })
	r.tx.onRollback(func() { r.s.live.transfers[v.ID] = prev })
	return nil
}

func cloneTransfer(t entity.StockTransfer) entity.StockTransfer {
	t.Items = append([]entity.StockTransferItem(nil), t.Items...)
	return t
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
