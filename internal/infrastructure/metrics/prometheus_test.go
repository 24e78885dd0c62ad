package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
)

func TestPrometheus_UnidadesEnValorAbsoluto(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheus(reg)

	m.MovementRecorded("OUT", -4)
	m.MovementRecorded("OUT", -2)
	m.MovementRecorded("IN", 10)

	expected := `
# HELP inventario_ledger_movement_units_total Unidades movidas (valor absoluto) por tipo de movimiento
# TYPE inventario_ledger_movement_units_total counter
inventario_ledger_movement_units_total{type="IN"} 10
inventario_ledger_movement_units_total{type="OUT"} 6
# HELP inventario_ledger_movements_total Movimientos registrados en el ledger por tipo
# TYPE inventario_ledger_movements_total counter
inventario_ledger_movements_total{type="IN"} 1
inventario_ledger_movements_total{type="OUT"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"inventario_ledger_movement_units_total", "inventario_ledger_movements_total"))
}

func TestPrometheus_Barrido(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheus(reg)

	m.SweepFinished(inventory.SweepResult{Scanned: 5, Expired: 4, Failed: 1}, 20*time.Millisecond)
	m.SweepFinished(inventory.SweepResult{Scanned: 1, Expired: 1}, time.Millisecond)

	expected := `
# HELP inventario_ledger_sweep_expired_total Reservas vencidas por el barrido
# TYPE inventario_ledger_sweep_expired_total counter
inventario_ledger_sweep_expired_total 5
# HELP inventario_ledger_sweep_failed_total Reservas que el barrido no pudo vencer
# TYPE inventario_ledger_sweep_failed_total counter
inventario_ledger_sweep_failed_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"inventario_ledger_sweep_expired_total", "inventario_ledger_sweep_failed_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "inventario_ledger_sweep_duration_seconds"))
}

func TestPrometheus_TransicionesPorEstado(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheus(reg)

	m.ReservationTransition("ACTIVE")
	m.ReservationTransition("FULFILLED")
	m.ReservationRejected("insufficient_stock")
	m.WorkflowTransition("transfer", "SHIPPED")

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "inventario_ledger_reservation_transitions_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "inventario_ledger_reservations_rejected_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "inventario_ledger_workflow_transitions_total"))
}
