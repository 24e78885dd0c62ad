package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	whNorte = "wh-norte"
	whSur   = "wh-sur"
)

// fakeClock reloj controlable por los tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingPublisher guarda los eventos publicados.
type recordingPublisher struct {
	mu     sync.Mutex
	events []appinv.StockEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...appinv.StockEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) count(typ string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

type harness struct {
	store        *memory.Store
	clock        *fakeClock
	events       *recordingPublisher
	ledger       *appinv.StockLedger
	reservations *appinv.ReservationEngine
	adjustments  *appinv.AdjustmentWorkflow
	transfers    *appinv.TransferWorkflow
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	clock := &fakeClock{now: time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)}
	events := &recordingPublisher{}
	opts := []appinv.Option{appinv.WithClock(clock.Now), appinv.WithPublisher(events)}
	repos := store.Repos()

	for _, id := range []string{whNorte, whSur} {
		require.NoError(t, repos.Warehouses.Create(context.Background(), &entity.Warehouse{ID: id, Name: id}))
	}
	return &harness{
		store:        store,
		clock:        clock,
		events:       events,
		ledger:       appinv.NewStockLedger(store, repos, opts...),
		reservations: appinv.NewReservationEngine(store, repos, opts...),
		adjustments:  appinv.NewAdjustmentWorkflow(store, repos, opts...),
		transfers:    appinv.NewTransferWorkflow(store, repos, nil, opts...),
	}
}

// stockIn registra una entrada y devuelve el id del ítem.
func (h *harness) stockIn(t *testing.T, productID, warehouseID string, qty int) string {
	t.Helper()
	mov, err := h.ledger.RecordMovement(context.Background(), appinv.RecordMovementInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        entity.MovementTypeIn,
		Quantity:    qty,
		Reason:      "carga inicial",
	})
	require.NoError(t, err)
	return mov.InventoryItemID
}

func (h *harness) available(t *testing.T, productID, warehouseID string) int {
	t.Helper()
	n, err := h.ledger.GetAvailableQuantity(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	return n
}

func (h *harness) onHand(t *testing.T, itemID string) int {
	t.Helper()
	item, err := h.ledger.GetItem(context.Background(), itemID)
	require.NoError(t, err)
	return item.QuantityOnHand
}

func intPtr(n int) *int { return &n }
