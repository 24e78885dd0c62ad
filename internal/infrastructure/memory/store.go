package memory

import (
	"context"
	"fmt"
	"sync"

	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

var _ appinv.TxRunner = (*Store)(nil)

// Store almacenamiento en memoria con la misma semántica transaccional que PostgreSQL para el motor:
// GetForUpdate toma un lock por fila que se mantiene hasta el fin de Run, y un error en fn
// deshace todas las escrituras de la transacción.
//
// Hay dos vistas del estado. Las transacciones leen y escriben la vista viva; las lecturas fuera
// de Run usan la vista confirmada, que solo recibe las escrituras de una transacción al hacer commit.
// Se usa en tests y con STORAGE_DRIVER=memory.
type Store struct {
	mu        sync.RWMutex
	live      *state
	committed *state

	locks *keyedLocker
}

type state struct {
	warehouses   map[string]entity.Warehouse
	items        map[string]entity.InventoryItem
	itemByPair   map[string]string
	movements    []entity.StockMovement
	reservations map[string]entity.StockReservation
	adjustments  map[string]entity.StockAdjustment
	transfers    map[string]entity.StockTransfer
}

func newState() *state {
	return &state{
		warehouses:   make(map[string]entity.Warehouse),
		items:        make(map[string]entity.InventoryItem),
		itemByPair:   make(map[string]string),
		reservations: make(map[string]entity.StockReservation),
		adjustments:  make(map[string]entity.StockAdjustment),
		transfers:    make(map[string]entity.StockTransfer),
	}
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		live:      newState(),
		committed: newState(),
		locks:     newKeyedLocker(),
	}
}

// Repos repositorios fuera de transacción (consultas).
func (s *Store) Repos() appinv.TxRepos {
	return s.repos(nil)
}

// Run ejecuta fn en una transacción: locks por fila hasta el final y rollback si fn falla.
func (s *Store) Run(ctx context.Context, fn func(repos appinv.TxRepos) error) (err error) {
	tx := &tx{store: s, held: make(map[string]func())}
	defer tx.releaseLocks()
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()

	if err := fn(s.repos(tx)); err != nil {
		tx.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.rollback()
		return fmt.Errorf("commit transaction: %w", err)
	}
	tx.commit()
	return nil
}

func (s *Store) repos(t *tx) appinv.TxRepos {
	return appinv.TxRepos{
		Items:        &itemRepo{s: s, tx: t},
		Movements:    &movementRepo{s: s, tx: t},
		Reservations: &reservationRepo{s: s, tx: t},
		Adjustments:  &adjustmentRepo{s: s, tx: t},
		Transfers:    &transferRepo{s: s, tx: t},
		Warehouses:   &warehouseRepo{s: s, tx: t},
	}
}

// view vista que lee un repositorio: la viva dentro de una transacción, la confirmada fuera.
func (s *Store) view(t *tx) *state {
	if t == nil {
		return s.committed
	}
	return s.live
}

// write aplica fn a la vista viva. Fuera de transacción también a la confirmada;
// dentro de una, fn se repite sobre la confirmada en el commit. Se llama con s.mu tomado.
func (s *Store) write(t *tx, fn func(st *state)) {
	fn(s.live)
	if t == nil {
		fn(s.committed)
		return
	}
	t.redo = append(t.redo, fn)
}

// tx estado de una transacción: locks tomados, registro de deshacer y escrituras pendientes de commit.
type tx struct {
	store *Store
	held  map[string]func()
	undo  []func()
	redo  []func(st *state)
}

// lock toma el lock de la clave una sola vez por transacción.
func (t *tx) lock(ctx context.Context, key string) error {
	if t == nil {
		return nil
	}
	if _, ok := t.held[key]; ok {
		return nil
	}
	unlock, err := t.store.locks.Lock(ctx, key)
	if err != nil {
		return err
	}
	t.held[key] = unlock
	return nil
}

// onRollback registra cómo deshacer una escritura en la vista viva; se llama con store.mu tomado.
func (t *tx) onRollback(fn func()) {
	if t == nil {
		return
	}
	t.undo = append(t.undo, fn)
}

func (t *tx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, fn := range t.redo {
		fn(t.store.committed)
	}
	t.redo = nil
	t.undo = nil
}

func (t *tx) rollback() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.redo = nil
}

func (t *tx) releaseLocks() {
	for key, unlock := range t.held {
		unlock()
		delete(t.held, key)
	}
}

func pairKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}
