package entity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func activeReservation(expiresAt time.Time) *entity.StockReservation {
	return &entity.StockReservation{
		ID:        "res-1",
		Quantity:  5,
		Status:    entity.ReservationStatusActive,
		ExpiresAt: expiresAt,
	}
}

func TestReservation_FulfillUnaSolaVez(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	r := activeReservation(now.Add(time.Hour))

	require.NoError(t, r.Fulfill(now))
	assert.Equal(t, entity.ReservationStatusFulfilled, r.Status)
	require.NotNil(t, r.FulfilledAt)

	err := r.Fulfill(now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
	assert.Contains(t, err.Error(), "FULFILLED")
}

func TestReservation_ReleaseGuardaMotivo(t *testing.T) {
	now := time.Now()
	r := activeReservation(now.Add(time.Hour))

	require.NoError(t, r.Release("pedido cancelado", now))
	assert.Equal(t, entity.ReservationStatusReleased, r.Status)
	assert.Equal(t, "pedido cancelado", r.ReleaseReason)
	require.NotNil(t, r.ReleasedAt)

	var stateErr *domain.InvalidStateTransitionError
	require.ErrorAs(t, r.Fulfill(now), &stateErr)
	assert.Equal(t, "RELEASED", stateErr.Current)
}

func TestReservation_ExpireEsIdempotente(t *testing.T) {
	now := time.Now()
	r := activeReservation(now)

	assert.True(t, r.Expire(now))
	assert.Equal(t, entity.ReservationStatusExpired, r.Status)
	assert.False(t, r.Expire(now), "una reserva ya vencida no cambia")

	fulfilled := activeReservation(now)
	require.NoError(t, fulfilled.Fulfill(now))
	assert.False(t, fulfilled.Expire(now))
	assert.Equal(t, entity.ReservationStatusFulfilled, fulfilled.Status)
}

func TestReservation_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	assert.True(t, activeReservation(now).IsExpired(now), "vence exactamente en now")
	assert.True(t, activeReservation(now.Add(-time.Minute)).IsExpired(now))
	assert.False(t, activeReservation(now.Add(time.Minute)).IsExpired(now))
}
