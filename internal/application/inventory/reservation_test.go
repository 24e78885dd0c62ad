package inventory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func reserve(t *testing.T, h *harness, itemID string, qty int, ref string) *entity.StockReservation {
	t.Helper()
	res, err := h.reservations.Reserve(context.Background(), appinv.ReserveInput{
		InventoryItemID: itemID, Quantity: qty, ReferenceID: ref, ReferenceType: entity.ReferenceTypeOrder,
	})
	require.NoError(t, err)
	return res
}

// ──────────────────────────────────────────────────────────────────────────────
// Reserve
// ──────────────────────────────────────────────────────────────────────────────

func TestReserve_ReduceDisponibleSinTocarEnMano(t *testing.T) {
	h := newHarness(t)
	itemID := h.stockIn(t, "sku-1", whNorte, 10)

	res := reserve(t, h, itemID, 4, "ord-1")

	assert.Equal(t, entity.ReservationStatusActive, res.Status)
	assert.Equal(t, h.clock.Now().Add(24*time.Hour), res.ExpiresAt)
	assert.Equal(t, 10, h.onHand(t, itemID))
	assert.Equal(t, 6, h.available(t, "sku-1", whNorte))
	assert.Equal(t, 1, h.events.count(appinv.EventReservationCreated))
}

func TestReserve_PorParProductoBodega(t *testing.T) {
	h := newHarness(t)
	h.stockIn(t, "sku-1", whNorte, 3)

	res, err := h.reservations.Reserve(context.Background(), appinv.ReserveInput{
		ProductID: "sku-1", WarehouseID: whNorte, Quantity: 3, ReferenceID: "wo-9", ReferenceType: entity.ReferenceTypeWorkOrder,
	})
	require.NoError(t, err)
	assert.Equal(t, "sku-1", res.ProductID)
	assert.Zero(t, h.available(t, "sku-1", whNorte))
}

func TestReserve_StockInsuficiente(t *testing.T) {
	h := newHarness(t)
	itemID := h.stockIn(t, "sku-1", whNorte, 5)
	reserve(t, h, itemID, 3, "ord-1")

	_, err := h.reservations.Reserve(context.Background(), appinv.ReserveInput{
		InventoryItemID: itemID, Quantity: 3, ReferenceID: "ord-2", ReferenceType: entity.ReferenceTypeOrder,
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
}

func TestReserve_Validaciones(t *testing.T) {
	h := newHarness(t)
	itemID := h.stockIn(t, "sku-1", whNorte, 5)
	ctx := context.Background()

	cases := map[string]appinv.ReserveInput{
		"cantidad cero":  {InventoryItemID: itemID, Quantity: 0, ReferenceID: "o", ReferenceType: "ORDER"},
		"sin referencia": {InventoryItemID: itemID, Quantity: 1, ReferenceType: "ORDER"},
		"sin tipo":       {InventoryItemID: itemID, Quantity: 1, ReferenceID: "o"},
		"horas negativas": {
			InventoryItemID: itemID, Quantity: 1, ReferenceID: "o", ReferenceType: "ORDER", ExpirationHours: intPtr(-1),
		},
	}
	for name, in := range cases {
		_, err := h.reservations.Reserve(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestReserve_ConcurrenteNoSobreReserva(t *testing.T) {
	h := newHarness(t)
	itemID := h.stockIn(t, "sku-1", whNorte, 7)

	const workers = 20
	var ok, rejected int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.reservations.Reserve(context.Background(), appinv.ReserveInput{
				InventoryItemID: itemID, Quantity: 1, ReferenceID: "ord", ReferenceType: entity.ReferenceTypeOrder,
			})
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, domain.ErrInsufficientStock):
				atomic.AddInt32(&rejected, 1)
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 7, ok)
	assert.EqualValues(t, workers-7, rejected)
	assert.Zero(t, h.available(t, "sku-1", whNorte))
}

// ──────────────────────────────────────────────────────────────────────────────
// Fulfill / Release / Expire
// ──────────────────────────────────────────────────────────────────────────────

func TestFulfill_SacaStockYMantieneDisponible(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	itemID := h.stockIn(t, "sku-1", whNorte, 10)
	res := reserve(t, h, itemID, 4, "ord-7")
	require.Equal(t, 6, h.available(t, "sku-1", whNorte))

	done, mov, err := h.reservations.Fulfill(ctx, appinv.FulfillInput{ReservationID: res.ID, PerformedBy: "u-1"})
	require.NoError(t, err)

	assert.Equal(t, entity.ReservationStatusFulfilled, done.Status)
	assert.NotNil(t, done.FulfilledAt)
	assert.Equal(t, entity.MovementTypeOut, mov.Type)
	assert.Equal(t, -4, mov.Quantity)
	assert.Equal(t, "ord-7", mov.ReferenceID)
	assert.Equal(t, 6, h.onHand(t, itemID))
	assert.Equal(t, 6, h.available(t, "sku-1", whNorte))

	_, _, err = h.reservations.Fulfill(ctx, appinv.FulfillInput{ReservationID: res.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, 6, h.onHand(t, itemID))
}

func TestFulfill_ReservaInexistente(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.reservations.Fulfill(context.Background(), appinv.FulfillInput{ReservationID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRelease_DevuelveDisponible(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	itemID := h.stockIn(t, "sku-1", whNorte, 10)
	res := reserve(t, h, itemID, 4, "ord-1")

	_, err := h.reservations.Release(ctx, res.ID, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	released, err := h.reservations.Release(ctx, res.ID, "pedido cancelado")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusReleased, released.Status)
	assert.Equal(t, "pedido cancelado", released.ReleaseReason)
	assert.Equal(t, 10, h.available(t, "sku-1", whNorte))

	_, err = h.reservations.Release(ctx, res.ID, "otra vez")
	var stateErr *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "RELEASED", stateErr.Current)

	_, _, err = h.reservations.Fulfill(ctx, appinv.FulfillInput{ReservationID: res.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestExpire_EsIdempotente(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	itemID := h.stockIn(t, "sku-1", whNorte, 10)
	res := reserve(t, h, itemID, 4, "ord-1")

	changed, err := h.reservations.Expire(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = h.reservations.Expire(ctx, res.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := h.reservations.GetReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusExpired, got.Status)
	assert.Equal(t, 1, h.events.count(appinv.EventReservationExpired))
	assert.Equal(t, 10, h.available(t, "sku-1", whNorte))
}

func TestTerminales_ConcurrentesSoloUnaGana(t *testing.T) {
	for i := 0; i < 50; i++ {
		h := newHarness(t)
		ctx := context.Background()
		itemID := h.stockIn(t, "sku-1", whNorte, 10)
		res := reserve(t, h, itemID, 4, "ord-1")

		var wins int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		run := func(fn func() (bool, error)) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				won, err := fn()
				if err != nil && !errors.Is(err, domain.ErrInvalidStateTransition) {
					t.Errorf("error inesperado: %v", err)
				}
				if won {
					atomic.AddInt32(&wins, 1)
				}
			}()
		}
		run(func() (bool, error) {
			_, _, err := h.reservations.Fulfill(ctx, appinv.FulfillInput{ReservationID: res.ID})
			return err == nil, err
		})
		run(func() (bool, error) {
			_, err := h.reservations.Release(ctx, res.ID, "pedido cancelado")
			return err == nil, err
		})
		run(func() (bool, error) {
			return h.reservations.Expire(ctx, res.ID)
		})
		close(start)
		wg.Wait()

		require.EqualValues(t, 1, wins)

		movs, err := h.store.Repos().Movements.ListByItem(ctx, itemID, nil, nil, 100, 0)
		require.NoError(t, err)
		outs := 0
		for _, m := range movs {
			if m.Type == entity.MovementTypeOut {
				outs++
			}
		}
		got, err := h.reservations.GetReservation(ctx, res.ID)
		require.NoError(t, err)
		if got.Status == entity.ReservationStatusFulfilled {
			assert.Equal(t, 1, outs)
			assert.Equal(t, 6, h.onHand(t, itemID))
		} else {
			assert.Zero(t, outs)
			assert.Equal(t, 10, h.onHand(t, itemID))
		}
		assert.Equal(t, h.onHand(t, itemID), h.available(t, "sku-1", whNorte))
	}
}

func TestGetActiveReservations_SoloActivas(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	itemID := h.stockIn(t, "sku-1", whNorte, 10)
	a := reserve(t, h, itemID, 1, "ord-5")
	reserve(t, h, itemID, 2, "ord-5")
	reserve(t, h, itemID, 3, "ord-6")
	_, err := h.reservations.Release(ctx, a.ID, "línea eliminada")
	require.NoError(t, err)

	list, err := h.reservations.GetActiveReservations(ctx, "ord-5")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Quantity)
}
