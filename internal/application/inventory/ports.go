package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción (o al pool, fuera de ella).
type TxRepos struct {
	Items        repository.InventoryItemRepository
	Movements    repository.StockMovementRepository
	Reservations repository.StockReservationRepository
	Adjustments  repository.StockAdjustmentRepository
	Transfers    repository.StockTransferRepository
	Warehouses   repository.WarehouseRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error todo se deshace; nunca hay aplicación parcial.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// EventPublisher publica eventos de stock después del commit.
type EventPublisher interface {
	Publish(ctx context.Context, events ...StockEvent) error
}

// Metrics contadores del motor; la implementación Prometheus vive en infrastructure/metrics.
type Metrics interface {
	MovementRecorded(movementType string, quantity int)
	ReservationTransition(status string)
	ReservationRejected(reason string)
	WorkflowTransition(workflow, status string)
	SweepFinished(result SweepResult, elapsed time.Duration)
}

// SweepLocker lock distribuido opcional para que un solo nodo barra a la vez.
// ok=false significa que otro nodo tiene el lock.
type SweepLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

// ManifestRenderer genera el PDF de despacho de un traslado.
type ManifestRenderer interface {
	RenderTransferManifest(data TransferManifestData) ([]byte, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...StockEvent) error { return nil }

// NopPublisher descarta los eventos (sin Kafka configurado).
var NopPublisher EventPublisher = nopPublisher{}

type nopMetrics struct{}

func (nopMetrics) MovementRecorded(string, int) {}
func (nopMetrics) ReservationTransition(string) {}
func (nopMetrics) ReservationRejected(string) {}
func (nopMetrics) WorkflowTransition(string, string) {}
func (nopMetrics) SweepFinished(SweepResult, time.Duration) {}
