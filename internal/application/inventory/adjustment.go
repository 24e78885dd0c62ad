package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// AdjustmentWorkflow correcciones manuales de conteo con aprobación previa.
// Un ajuste sin aprobar no afecta el ledger.
type AdjustmentWorkflow struct {
	*engine
}

// NewAdjustmentWorkflow construye el flujo de ajustes.
func NewAdjustmentWorkflow(tx TxRunner, repos TxRepos, opts ...Option) *AdjustmentWorkflow {
	return &AdjustmentWorkflow{engine: newEngine(tx, repos, opts...)}
}

// CreateAdjustmentInput entrada para crear un ajuste.
type CreateAdjustmentInput struct {
	WarehouseID string
	Type        entity.AdjustmentType
	Reason      string
	AdjustedBy  string
	Items       []AdjustmentLineInput
}

// AdjustmentLineInput línea del ajuste. QuantityBefore nil toma el saldo actual del ítem.
type AdjustmentLineInput struct {
	InventoryItemID  string
	QuantityBefore   *int
	QuantityAdjusted int
}

// CreateAdjustment registra el ajuste en estado PENDING con la foto de cantidades por línea.
func (w *AdjustmentWorkflow) CreateAdjustment(ctx context.Context, in CreateAdjustmentInput) (adj *entity.StockAdjustment, err error) {
	ctx, span := w.startSpan(ctx, "CreateAdjustment", attribute.String("warehouse.id", in.WarehouseID))
	defer func() { endSpan(span, err) }()

	if err := validateAdjustment(in); err != nil {
		return nil, err
	}

	now := w.now()
	id := uuid.New()
	err = w.tx.Run(ctx, func(r TxRepos) error {
		wh, err := r.Warehouses.GetByID(ctx, in.WarehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.NewNotFoundError("bodega", in.WarehouseID)
		}
		adj = &entity.StockAdjustment{
			ID:               id.String(),
			AdjustmentNumber: inventory.DocumentNumber(inventory.AdjustmentPrefix, now, id),
			WarehouseID:      in.WarehouseID,
			Type:             in.Type,
			Reason:           in.Reason,
			AdjustedBy:       in.AdjustedBy,
			IsActive:         true,
			CreatedAt:        now,
			Version:          1,
		}
		for i, line := range in.Items {
			item, err := r.Items.GetByID(ctx, line.InventoryItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.NewNotFoundError("ítem de inventario", line.InventoryItemID)
			}
			if item.WarehouseID != in.WarehouseID {
				return domain.NewValidationError(fmt.Sprintf("items[%d].inventory_item_id", i), "no pertenece a la bodega del ajuste")
			}
			before := item.QuantityOnHand
			if line.QuantityBefore != nil {
				before = *line.QuantityBefore
			}
			it := entity.NewStockAdjustmentItem(uuid.NewString(), item.ID, item.ProductID, before, line.QuantityAdjusted)
			it.AdjustmentID = adj.ID
			adj.Items = append(adj.Items, it)
		}
		return r.Adjustments.Create(ctx, adj)
	})
	if err != nil {
		return nil, err
	}
	w.metrics.WorkflowTransition("adjustment", string(adj.Status()))
	w.publish(ctx, []StockEvent{adjustmentEvent(EventAdjustmentCreated, adj, now)})
	w.log.Info().Str("adjustment_id", adj.ID).Str("number", adj.AdjustmentNumber).
		Int("lines", len(adj.Items)).Msg("ajuste creado")
	return adj, nil
}

// ApproveAdjustment aprueba y emite un movimiento ADJUSTMENT por línea, una sola vez.
// No revalida QuantityBefore contra el saldo vivo ni impide saldos negativos: solo lo registra en el log.
func (w *AdjustmentWorkflow) ApproveAdjustment(ctx context.Context, id, approvedBy string) (adj *entity.StockAdjustment, err error) {
	ctx, span := w.startSpan(ctx, "ApproveAdjustment", attribute.String("adjustment.id", id))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(approvedBy) == "" {
		return nil, domain.NewValidationError("approved_by", "es obligatorio")
	}

	now := w.now()
	var applied []*appliedMovement
	err = w.tx.Run(ctx, func(r TxRepos) error {
		applied = applied[:0]
		var err error
		adj, err = lockAdjustment(ctx, r, id)
		if err != nil {
			return err
		}
		if err := adj.Approve(approvedBy, now); err != nil {
			return err
		}

		lines := make([]entity.StockAdjustmentItem, len(adj.Items))
		copy(lines, adj.Items)
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].InventoryItemID < lines[j].InventoryItemID })

		for _, line := range lines {
			a, err := applyMovement(ctx, r, RecordMovementInput{
				InventoryItemID: line.InventoryItemID,
				Type:            entity.MovementTypeAdjustment,
				Quantity:        line.QuantityAdjusted,
				Reason:          fmt.Sprintf("Ajuste %s (%s)", adj.AdjustmentNumber, adj.Type),
				ReferenceID:     adj.ID,
				ReferenceType:   entity.ReferenceTypeAdjustment,
				PerformedBy:     approvedBy,
				AllowNegative:   true,
			}, now)
			if err != nil {
				return err
			}
			w.warnIfStale(adj, line, a)
			applied = append(applied, a)
		}
		return r.Adjustments.Update(ctx, adj)
	})
	if err != nil {
		return nil, err
	}
	w.metrics.WorkflowTransition("adjustment", string(adj.Status()))
	events := append(w.movementEvents(applied), adjustmentEvent(EventAdjustmentApproved, adj, now))
	w.publish(ctx, events)
	return adj, nil
}

// RejectAdjustment anula el ajuste sin efecto en el ledger.
func (w *AdjustmentWorkflow) RejectAdjustment(ctx context.Context, id, rejectedBy string) (adj *entity.StockAdjustment, err error) {
	ctx, span := w.startSpan(ctx, "RejectAdjustment", attribute.String("adjustment.id", id))
	defer func() { endSpan(span, err) }()

	now := w.now()
	err = w.tx.Run(ctx, func(r TxRepos) error {
		var err error
		adj, err = lockAdjustment(ctx, r, id)
		if err != nil {
			return err
		}
		if err := adj.Reject(rejectedBy, now); err != nil {
			return err
		}
		return r.Adjustments.Update(ctx, adj)
	})
	if err != nil {
		return nil, err
	}
	w.metrics.WorkflowTransition("adjustment", string(adj.Status()))
	w.publish(ctx, []StockEvent{adjustmentEvent(EventAdjustmentRejected, adj, now)})
	return adj, nil
}

// GetAdjustment devuelve el ajuste con sus líneas.
func (w *AdjustmentWorkflow) GetAdjustment(ctx context.Context, id string) (*entity.StockAdjustment, error) {
	adj, err := w.repos.Adjustments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, domain.NewNotFoundError("ajuste", id)
	}
	return adj, nil
}

// ListAdjustments ajustes de una bodega, más recientes primero.
func (w *AdjustmentWorkflow) ListAdjustments(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	if warehouseID == "" {
		return nil, domain.NewValidationError("warehouse_id", "es obligatorio")
	}
	limit, offset = clampPage(limit, offset)
	return w.repos.Adjustments.ListByWarehouse(ctx, warehouseID, limit, offset)
}

func (w *AdjustmentWorkflow) warnIfStale(adj *entity.StockAdjustment, line entity.StockAdjustmentItem, a *appliedMovement) {
	live := a.movement.BalanceAfter - a.movement.Quantity
	if live != line.QuantityBefore {
		w.log.Warn().Str("adjustment_id", adj.ID).Str("inventory_item_id", line.InventoryItemID).
			Int("quantity_before", line.QuantityBefore).Int("live_on_hand", live).
			Msg("ajuste aprobado con foto desactualizada")
	}
	if a.item.QuantityOnHand < 0 {
		w.log.Warn().Str("adjustment_id", adj.ID).Str("inventory_item_id", line.InventoryItemID).
			Int("on_hand", a.item.QuantityOnHand).Msg("ajuste deja saldo negativo")
	}
}

func validateAdjustment(in CreateAdjustmentInput) error {
	if in.WarehouseID == "" {
		return domain.NewValidationError("warehouse_id", "es obligatorio")
	}
	if !in.Type.Valid() {
		return domain.NewValidationError("type", fmt.Sprintf("tipo de ajuste desconocido %q", in.Type))
	}
	if len(in.Items) == 0 {
		return domain.NewValidationError("items", "debe tener al menos una línea")
	}
	seen := make(map[string]struct{}, len(in.Items))
	for i, line := range in.Items {
		if line.InventoryItemID == "" {
			return domain.NewValidationError(fmt.Sprintf("items[%d].inventory_item_id", i), "es obligatorio")
		}
		if line.QuantityAdjusted == 0 {
			return domain.NewValidationError(fmt.Sprintf("items[%d].quantity_adjusted", i), "debe ser distinta de cero")
		}
		if _, dup := seen[line.InventoryItemID]; dup {
			return domain.NewValidationError(fmt.Sprintf("items[%d].inventory_item_id", i), "ítem repetido en el ajuste")
		}
		seen[line.InventoryItemID] = struct{}{}
	}
	return nil
}

func lockAdjustment(ctx context.Context, r TxRepos, id string) (*entity.StockAdjustment, error) {
	adj, err := r.Adjustments.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, domain.NewNotFoundError("ajuste", id)
	}
	return adj, nil
}
