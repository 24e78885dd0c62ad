package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

var _ inventory.Metrics = (*Prometheus)(nil)

const namespace = "inventario_ledger"

// Prometheus contadores del ledger, reservas y flujos de aprobación.
type Prometheus struct {
	movements            *prometheus.CounterVec
	movementUnits        *prometheus.CounterVec
	reservations         *prometheus.CounterVec
	reservationsRejected *prometheus.CounterVec
	workflows            *prometheus.CounterVec
	sweepExpired         prometheus.Counter
	sweepFailed          prometheus.Counter
	sweepDuration        prometheus.Histogram
}

// NewPrometheus crea y registra las métricas en reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_total",
			Help:      "Movimientos registrados en el ledger por tipo",
		}, []string{"type"}),
		movementUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movement_units_total",
			Help:      "Unidades movidas (valor absoluto) por tipo de movimiento",
		}, []string{"type"}),
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_transitions_total",
			Help:      "Transiciones de reservas por estado destino",
		}, []string{"status"}),
		reservationsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_rejected_total",
			Help:      "Reservas rechazadas por motivo",
		}, []string{"reason"}),
		workflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_transitions_total",
			Help:      "Transiciones de ajustes y traslados",
		}, []string{"workflow", "status"}),
		sweepExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_expired_total",
			Help:      "Reservas vencidas por el barrido",
		}),
		sweepFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_failed_total",
			Help:      "Reservas que el barrido no pudo vencer",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duración de cada pasada del barrido",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.movements, m.movementUnits, m.reservations, m.reservationsRejected,
		m.workflows, m.sweepExpired, m.sweepFailed, m.sweepDuration,
	)
	return m
}

func (m *Prometheus) MovementRecorded(movementType string, quantity int) {
	if quantity < 0 {
		quantity = -quantity
	}
	m.movements.WithLabelValues(movementType).Inc()
	m.movementUnits.WithLabelValues(movementType).Add(float64(quantity))
}

func (m *Prometheus) ReservationTransition(status string) {
	m.reservations.WithLabelValues(status).Inc()
}

func (m *Prometheus) ReservationRejected(reason string) {
	m.reservationsRejected.WithLabelValues(reason).Inc()
}

func (m *Prometheus) WorkflowTransition(workflow, status string) {
	m.workflows.WithLabelValues(workflow, status).Inc()
}

func (m *Prometheus) SweepFinished(result inventory.SweepResult, elapsed time.Duration) {
	m.sweepExpired.Add(float64(result.Expired))
	m.sweepFailed.Add(float64(result.Failed))
	m.sweepDuration.Observe(elapsed.Seconds())
}
