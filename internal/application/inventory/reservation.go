package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ReservationEngine retiene stock contra pedidos sin descontarlo de QuantityOnHand.
// La lectura del disponible y la creación de la reserva se serializan por ítem con el bloqueo de fila.
type ReservationEngine struct {
	*engine
}

// NewReservationEngine construye el motor de reservas.
func NewReservationEngine(tx TxRunner, repos TxRepos, opts ...Option) *ReservationEngine {
	return &ReservationEngine{engine: newEngine(tx, repos, opts...)}
}

// ReserveInput entrada para reservar stock.
type ReserveInput struct {
	InventoryItemID string
	ProductID       string
	WarehouseID     string
	Quantity        int
	ReferenceID     string
	ReferenceType   string
	// ExpirationHours nil usa el valor por defecto; 0 crea una reserva vencida de inmediato.
	ExpirationHours *int
	Notes           string
}

// FulfillInput entrada para despachar una reserva.
type FulfillInput struct {
	ReservationID string
	PerformedBy   string
	Notes         string
}

// Reserve crea una reserva ACTIVE si disponible (en mano − reservas activas) cubre la cantidad.
func (s *ReservationEngine) Reserve(ctx context.Context, in ReserveInput) (res *entity.StockReservation, err error) {
	ctx, span := s.startSpan(ctx, "Reserve",
		attribute.String("reservation.reference_id", in.ReferenceID),
		attribute.Int("reservation.quantity", in.Quantity),
	)
	defer func() { endSpan(span, err) }()

	if in.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if strings.TrimSpace(in.ReferenceID) == "" {
		return nil, domain.NewValidationError("reference_id", "es obligatorio")
	}
	if strings.TrimSpace(in.ReferenceType) == "" {
		return nil, domain.NewValidationError("reference_type", "es obligatorio")
	}
	hours := s.defaultExpirationHours
	if in.ExpirationHours != nil {
		hours = *in.ExpirationHours
	}
	if hours < 0 {
		return nil, domain.NewValidationError("expiration_hours", "no puede ser negativo")
	}

	itemID := in.InventoryItemID
	if itemID == "" {
		if in.ProductID == "" || in.WarehouseID == "" {
			return nil, domain.NewValidationError("inventory_item_id", "indique el ítem o el par product_id/warehouse_id")
		}
		item, err := s.resolveItem(ctx, in.ProductID, in.WarehouseID, false)
		if err != nil {
			return nil, err
		}
		itemID = item.ID
	}

	now := s.now()
	err = s.tx.Run(ctx, func(r TxRepos) error {
		item, err := r.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.NewNotFoundError("ítem de inventario", itemID)
		}
		reserved, err := r.Reservations.SumActiveByItem(ctx, item.ID)
		if err != nil {
			return err
		}
		if available := item.Available(reserved); available < in.Quantity {
			return &domain.InsufficientStockError{InventoryItemID: item.ID, Available: available, Requested: in.Quantity}
		}
		res = &entity.StockReservation{
			ID:              uuid.NewString(),
			InventoryItemID: item.ID,
			ProductID:       item.ProductID,
			WarehouseID:     item.WarehouseID,
			Quantity:        in.Quantity,
			ReferenceID:     in.ReferenceID,
			ReferenceType:   in.ReferenceType,
			Status:          entity.ReservationStatusActive,
			ReservedAt:      now,
			ExpiresAt:       now.Add(time.Duration(hours) * time.Hour),
			Notes:           in.Notes,
		}
		return r.Reservations.Create(ctx, res)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.metrics.ReservationRejected("insufficient_stock")
		}
		return nil, err
	}
	s.metrics.ReservationTransition(string(res.Status))
	s.publish(ctx, []StockEvent{reservationEvent(EventReservationCreated, res, now)})
	return res, nil
}

// Fulfill pasa la reserva a FULFILLED y registra la salida OUT de la misma cantidad en la misma
// transacción. La retención se libera en el mismo instante en que el stock sale, así que el
// disponible no cambia.
func (s *ReservationEngine) Fulfill(ctx context.Context, in FulfillInput) (res *entity.StockReservation, mov *entity.StockMovement, err error) {
	ctx, span := s.startSpan(ctx, "Fulfill", attribute.String("reservation.id", in.ReservationID))
	defer func() { endSpan(span, err) }()

	now := s.now()
	var applied *appliedMovement
	err = s.tx.Run(ctx, func(r TxRepos) error {
		var err error
		res, err = lockReservation(ctx, r, in.ReservationID)
		if err != nil {
			return err
		}
		if err := res.Fulfill(now); err != nil {
			return err
		}
		if err := r.Reservations.Update(ctx, res); err != nil {
			return err
		}
		applied, err = applyMovement(ctx, r, RecordMovementInput{
			InventoryItemID: res.InventoryItemID,
			Type:            entity.MovementTypeOut,
			Quantity:        res.Quantity,
			Reason:          "Despacho de reserva " + res.ID,
			ReferenceID:     res.ReferenceID,
			ReferenceType:   res.ReferenceType,
			PerformedBy:     in.PerformedBy,
			Notes:           in.Notes,
		}, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.metrics.ReservationTransition(string(res.Status))
	events := append([]StockEvent{reservationEvent(EventReservationFulfilled, res, now)}, s.movementEvents([]*appliedMovement{applied})...)
	s.publish(ctx, events)
	return res, applied.movement, nil
}

// Release libera la reserva (pedido cancelado) guardando el motivo.
func (s *ReservationEngine) Release(ctx context.Context, reservationID, reason string) (res *entity.StockReservation, err error) {
	ctx, span := s.startSpan(ctx, "Release", attribute.String("reservation.id", reservationID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("reason", "es obligatorio")
	}
	now := s.now()
	err = s.tx.Run(ctx, func(r TxRepos) error {
		var err error
		res, err = lockReservation(ctx, r, reservationID)
		if err != nil {
			return err
		}
		if err := res.Release(reason, now); err != nil {
			return err
		}
		return r.Reservations.Update(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ReservationTransition(string(res.Status))
	s.publish(ctx, []StockEvent{reservationEvent(EventReservationReleased, res, now)})
	return res, nil
}

// Expire vence la reserva. Sobre una reserva que ya no está activa no hace nada y devuelve false;
// así el barrido puede ejecutarse varias veces o en varias instancias.
func (s *ReservationEngine) Expire(ctx context.Context, reservationID string) (changed bool, err error) {
	ctx, span := s.startSpan(ctx, "Expire", attribute.String("reservation.id", reservationID))
	defer func() { endSpan(span, err) }()

	now := s.now()
	var res *entity.StockReservation
	err = s.tx.Run(ctx, func(r TxRepos) error {
		var err error
		res, err = lockReservation(ctx, r, reservationID)
		if err != nil {
			return err
		}
		if changed = res.Expire(now); !changed {
			return nil
		}
		return r.Reservations.Update(ctx, res)
	})
	if err != nil || !changed {
		return false, err
	}
	s.metrics.ReservationTransition(string(res.Status))
	s.publish(ctx, []StockEvent{reservationEvent(EventReservationExpired, res, now)})
	return true, nil
}

// GetReservation devuelve la reserva o NotFoundError.
func (s *ReservationEngine) GetReservation(ctx context.Context, id string) (*entity.StockReservation, error) {
	res, err := s.repos.Reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, domain.NewNotFoundError("reserva", id)
	}
	return res, nil
}

// GetActiveReservations reservas ACTIVE de un pedido u orden.
func (s *ReservationEngine) GetActiveReservations(ctx context.Context, referenceID string) ([]*entity.StockReservation, error) {
	if strings.TrimSpace(referenceID) == "" {
		return nil, domain.NewValidationError("reference_id", "es obligatorio")
	}
	return s.repos.Reservations.ListActiveByReference(ctx, referenceID)
}

func lockReservation(ctx context.Context, r TxRepos, id string) (*entity.StockReservation, error) {
	res, err := r.Reservations.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, domain.NewNotFoundError("reserva", id)
	}
	return res, nil
}
