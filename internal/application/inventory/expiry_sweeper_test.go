package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// fakeLocker SweepLocker en memoria que cuenta adquisiciones y liberaciones.
type fakeLocker struct {
	mu       sync.Mutex
	deny     bool
	err      error
	acquired int
	released int
}

func (l *fakeLocker) TryLock(_ context.Context, _ string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, false, l.err
	}
	if l.deny {
		return nil, false, nil
	}
	l.acquired++
	return func(context.Context) error {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
		return nil
	}, true, nil
}

func (l *fakeLocker) counts() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acquired, l.released
}

// failingReservations falla GetForUpdate para los ids marcados.
type failingReservations struct {
	repository.StockReservationRepository
	fail map[string]bool
}

func (f *failingReservations) GetForUpdate(ctx context.Context, id string) (*entity.StockReservation, error) {
	if f.fail[id] {
		return nil, errors.New("fila bloqueada")
	}
	return f.StockReservationRepository.GetForUpdate(ctx, id)
}

// failingTx envuelve el TxRunner y entrega repositorios de reservas que fallan.
type failingTx struct {
	inner appinv.TxRunner
	fail  map[string]bool
}

func (f *failingTx) Run(ctx context.Context, fn func(repos appinv.TxRepos) error) error {
	return f.inner.Run(ctx, func(r appinv.TxRepos) error {
		r.Reservations = &failingReservations{StockReservationRepository: r.Reservations, fail: f.fail}
		return fn(r)
	})
}

func TestSweepOnce_VenceReservasSinVigencia(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	itemID := h.stockIn(t, "sku-1", whNorte, 10)

	_, err := h.reservations.Reserve(ctx, appinv.ReserveInput{
		InventoryItemID: itemID, Quantity: 6, ReferenceID: "ord-1", ReferenceType: entity.ReferenceTypeOrder,
		ExpirationHours: intPtr(0),
	})
	require.NoError(t, err)
	reserve(t, h, itemID, 2, "ord-2")
	require.Equal(t, 2, h.available(t, "sku-1", whNorte))

	sweeper := appinv.NewExpirySweeper(h.reservations, appinv.SweeperConfig{BatchSize: 1}, nil)
	result, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
	assert.Zero(t, result.Failed)
	assert.Equal(t, 8, h.available(t, "sku-1", whNorte))

	result, err = sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)

	h.clock.Advance(25 * time.Hour)
	result, err = sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 10, h.available(t, "sku-1", whNorte))
}

func TestSweepOnce_RecorreVariosLotes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	itemID := h.stockIn(t, "sku-1", whNorte, 50)
	for i := 0; i < 7; i++ {
		reserve(t, h, itemID, 1, "ord")
	}
	h.clock.Advance(48 * time.Hour)

	sweeper := appinv.NewExpirySweeper(h.reservations, appinv.SweeperConfig{BatchSize: 3}, nil)
	result, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Expired)
	assert.Equal(t, 50, h.available(t, "sku-1", whNorte))
}

func TestRun_SinLockNoBarre(t *testing.T) {
	h := newHarness(t)
	itemID := h.stockIn(t, "sku-1", whNorte, 5)
	res := reserve(t, h, itemID, 5, "ord-1")
	h.clock.Advance(48 * time.Hour)

	for _, locker := range []*fakeLocker{{deny: true}, {err: errors.New("redis caído")}} {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		appinv.NewExpirySweeper(h.reservations, appinv.SweeperConfig{Interval: time.Hour}, locker).Run(ctx)
	}

	got, err := h.reservations.GetReservation(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusActive, got.Status)
}

func TestRun_ConLockBarreYLibera(t *testing.T) {
	h := newHarness(t)
	itemID := h.stockIn(t, "sku-1", whNorte, 5)
	res := reserve(t, h, itemID, 5, "ord-1")
	h.clock.Advance(48 * time.Hour)

	locker := &fakeLocker{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		appinv.NewExpirySweeper(h.reservations, appinv.SweeperConfig{Interval: time.Hour}, locker).Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		got, err := h.reservations.GetReservation(context.Background(), res.ID)
		return err == nil && got.Status == entity.ReservationStatusExpired
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	acquired, released := locker.counts()
	assert.Equal(t, 1, acquired)
	assert.Equal(t, acquired, released)
}

func TestSweepOnce_FallosNoDetienenElBarrido(t *testing.T) {
	for _, batch := range []int{1, 2, 200} {
		h := newHarness(t)
		ctx := context.Background()
		itemID := h.stockIn(t, "sku-1", whNorte, 10)

		fail := map[string]bool{}
		var ids []string
		for i := 0; i < 3; i++ {
			res, err := h.reservations.Reserve(ctx, appinv.ReserveInput{
				InventoryItemID: itemID, Quantity: 1, ReferenceID: "ord", ReferenceType: entity.ReferenceTypeOrder,
				ExpirationHours: intPtr(0),
			})
			require.NoError(t, err)
			ids = append(ids, res.ID)
			h.clock.Advance(time.Minute)
		}
		// las dos más antiguas quedan al frente de la cola y siempre fallan
		fail[ids[0]] = true
		fail[ids[1]] = true

		engine := appinv.NewReservationEngine(&failingTx{inner: h.store, fail: fail}, h.store.Repos(),
			appinv.WithClock(h.clock.Now))
		sweeper := appinv.NewExpirySweeper(engine, appinv.SweeperConfig{BatchSize: batch}, nil)

		result, err := sweeper.SweepOnce(ctx)
		require.NoError(t, err, "batch %d", batch)
		assert.Equal(t, appinv.SweepResult{Scanned: 3, Expired: 1, Failed: 2}, result, "batch %d", batch)

		last, err := h.reservations.GetReservation(ctx, ids[2])
		require.NoError(t, err)
		assert.Equal(t, entity.ReservationStatusExpired, last.Status)
		assert.Equal(t, 8, h.available(t, "sku-1", whNorte))

		// las fallidas siguen activas y se reintentan en la siguiente pasada
		result, err = sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, appinv.SweepResult{Scanned: 2, Failed: 2}, result, "batch %d", batch)
		first, err := h.reservations.GetReservation(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, entity.ReservationStatusActive, first.Status)
	}
}
