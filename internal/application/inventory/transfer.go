package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// TransferWorkflow traslado entre bodegas: solicitar -> aprobar -> despachar -> recibir.
// Despachar descuenta la bodega origen y recibir suma en la destino, cada uno en la misma
// transacción que el cambio de estado.
type TransferWorkflow struct {
	*engine
	manifests ManifestRenderer
}

// NewTransferWorkflow construye el flujo de traslados. manifests puede ser nil (sin PDF).
func NewTransferWorkflow(tx TxRunner, repos TxRepos, manifests ManifestRenderer, opts ...Option) *TransferWorkflow {
	return &TransferWorkflow{engine: newEngine(tx, repos, opts...), manifests: manifests}
}

// RequestTransferInput entrada para solicitar un traslado.
type RequestTransferInput struct {
	FromWarehouseID string
	ToWarehouseID   string
	RequestedBy     string
	Notes           string
	Items           []TransferLineInput
}

// TransferLineInput producto y cantidad a trasladar.
type TransferLineInput struct {
	ProductID string
	Quantity  int
}

// TransferManifestData datos del PDF de despacho.
type TransferManifestData struct {
	Transfer      *entity.StockTransfer
	FromWarehouse *entity.Warehouse
	ToWarehouse   *entity.Warehouse
	GeneratedAt   time.Time
}

// RequestTransfer crea el traslado en PENDING.
func (w *TransferWorkflow) RequestTransfer(ctx context.Context, in RequestTransferInput) (t *entity.StockTransfer, err error) {
	ctx, span := w.startSpan(ctx, "RequestTransfer",
		attribute.String("transfer.from", in.FromWarehouseID),
		attribute.String("transfer.to", in.ToWarehouseID),
	)
	defer func() { endSpan(span, err) }()

	if err := validateTransfer(in); err != nil {
		return nil, err
	}
	now := w.now()
	id := uuid.New()
	err = w.tx.Run(ctx, func(r TxRepos) error {
		for _, whID := range []string{in.FromWarehouseID, in.ToWarehouseID} {
			wh, err := r.Warehouses.GetByID(ctx, whID)
			if err != nil {
				return err
			}
			if wh == nil {
				return domain.NewNotFoundError("bodega", whID)
			}
		}
		t = &entity.StockTransfer{
			ID:              id.String(),
			TransferNumber:  inventory.DocumentNumber(inventory.TransferPrefix, now, id),
			FromWarehouseID: in.FromWarehouseID,
			ToWarehouseID:   in.ToWarehouseID,
			Status:          entity.TransferStatusPending,
			RequestedBy:     in.RequestedBy,
			Notes:           in.Notes,
			RequestedAt:     now,
			Version:         1,
		}
		for _, line := range in.Items {
			t.Items = append(t.Items, entity.StockTransferItem{
				ID:         uuid.NewString(),
				TransferID: t.ID,
				ProductID:  line.ProductID,
				Quantity:   line.Quantity,
			})
		}
		return r.Transfers.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	w.metrics.WorkflowTransition("transfer", string(t.Status))
	w.publish(ctx, []StockEvent{transferEvent(t, now)})
	return t, nil
}

// ApproveTransfer PENDING -> APPROVED.
func (w *TransferWorkflow) ApproveTransfer(ctx context.Context, id, approvedBy string) (*entity.StockTransfer, error) {
	return w.transition(ctx, "ApproveTransfer", id, func(ctx context.Context, r TxRepos, t *entity.StockTransfer, now time.Time) ([]*appliedMovement, error) {
		return nil, t.Approve(approvedBy, now)
	})
}

// ShipTransfer APPROVED -> SHIPPED y salida TRANSFER (−cantidad) en los ítems de la bodega origen.
func (w *TransferWorkflow) ShipTransfer(ctx context.Context, id, shippedBy string) (*entity.StockTransfer, error) {
	return w.transition(ctx, "ShipTransfer", id, func(ctx context.Context, r TxRepos, t *entity.StockTransfer, now time.Time) ([]*appliedMovement, error) {
		if err := t.Ship(shippedBy, now); err != nil {
			return nil, err
		}
		inputs, err := transferMovements(ctx, r, t, t.FromWarehouseID, -1, "Despacho traslado "+t.TransferNumber, shippedBy)
		if err != nil {
			return nil, err
		}
		return applyAll(ctx, r, inputs, now)
	})
}

// ReceiveTransfer SHIPPED -> RECEIVED y entrada TRANSFER (+cantidad) en la bodega destino.
// Los ítems destino que no existan se crean en la misma transacción.
func (w *TransferWorkflow) ReceiveTransfer(ctx context.Context, id, receivedBy string) (*entity.StockTransfer, error) {
	return w.transition(ctx, "ReceiveTransfer", id, func(ctx context.Context, r TxRepos, t *entity.StockTransfer, now time.Time) ([]*appliedMovement, error) {
		if err := t.Receive(receivedBy, now); err != nil {
			return nil, err
		}
		for _, line := range t.Items {
			if _, _, err := ensureItemTx(ctx, r, line.ProductID, t.ToWarehouseID, 0, now); err != nil {
				return nil, err
			}
		}
		inputs, err := transferMovements(ctx, r, t, t.ToWarehouseID, 1, "Recepción traslado "+t.TransferNumber, receivedBy)
		if err != nil {
			return nil, err
		}
		return applyAll(ctx, r, inputs, now)
	})
}

// CancelTransfer cancela desde cualquier estado salvo RECEIVED. Si ya se había despachado,
// devuelve las cantidades a la bodega origen con movimientos compensatorios.
func (w *TransferWorkflow) CancelTransfer(ctx context.Context, id, cancelledBy string) (*entity.StockTransfer, error) {
	return w.transition(ctx, "CancelTransfer", id, func(ctx context.Context, r TxRepos, t *entity.StockTransfer, now time.Time) ([]*appliedMovement, error) {
		wasShipped := t.Status == entity.TransferStatusShipped
		if err := t.Cancel(cancelledBy, now); err != nil {
			return nil, err
		}
		if !wasShipped {
			return nil, nil
		}
		inputs, err := transferMovements(ctx, r, t, t.FromWarehouseID, 1, "Anulación traslado "+t.TransferNumber, cancelledBy)
		if err != nil {
			return nil, err
		}
		return applyAll(ctx, r, inputs, now)
	})
}

// GetTransfer devuelve el traslado con sus líneas.
func (w *TransferWorkflow) GetTransfer(ctx context.Context, id string) (*entity.StockTransfer, error) {
	t, err := w.repos.Transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NewNotFoundError("traslado", id)
	}
	return t, nil
}

// TransferManifest genera el PDF de despacho del traslado.
func (w *TransferWorkflow) TransferManifest(ctx context.Context, id string) ([]byte, error) {
	if w.manifests == nil {
		return nil, errors.New("generador de PDF no configurado")
	}
	t, err := w.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	from, err := w.repos.Warehouses.GetByID(ctx, t.FromWarehouseID)
	if err != nil {
		return nil, err
	}
	to, err := w.repos.Warehouses.GetByID(ctx, t.ToWarehouseID)
	if err != nil {
		return nil, err
	}
	return w.manifests.RenderTransferManifest(TransferManifestData{
		Transfer:      t,
		FromWarehouse: from,
		ToWarehouse:   to,
		GeneratedAt:   w.now(),
	})
}

type transferStep func(ctx context.Context, r TxRepos, t *entity.StockTransfer, now time.Time) ([]*appliedMovement, error)

// transition bloquea la cabecera, aplica el paso y persiste con control de versión.
func (w *TransferWorkflow) transition(ctx context.Context, op, id string, step transferStep) (t *entity.StockTransfer, err error) {
	ctx, span := w.startSpan(ctx, op, attribute.String("transfer.id", id))
	defer func() { endSpan(span, err) }()

	now := w.now()
	var applied []*appliedMovement
	err = w.tx.Run(ctx, func(r TxRepos) error {
		var err error
		t, err = r.Transfers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.NewNotFoundError("traslado", id)
		}
		applied, err = step(ctx, r, t, now)
		if err != nil {
			return err
		}
		return r.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	w.metrics.WorkflowTransition("transfer", string(t.Status))
	events := append(w.movementEvents(applied), transferEvent(t, now))
	w.publish(ctx, events)
	w.log.Info().Str("transfer_id", t.ID).Str("status", string(t.Status)).
		Int("movements", len(applied)).Msg("traslado actualizado")
	return t, nil
}

// transferMovements arma un movimiento TRANSFER por línea sobre los ítems de la bodega dada.
func transferMovements(ctx context.Context, r TxRepos, t *entity.StockTransfer, warehouseID string, sign int, reason, by string) ([]RecordMovementInput, error) {
	inputs := make([]RecordMovementInput, 0, len(t.Items))
	for _, line := range t.Items {
		item, err := r.Items.GetByProductAndWarehouse(ctx, line.ProductID, warehouseID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.NewNotFoundError("ítem de inventario", line.ProductID+"@"+warehouseID)
		}
		inputs = append(inputs, RecordMovementInput{
			InventoryItemID: item.ID,
			Type:            entity.MovementTypeTransfer,
			Quantity:        sign * line.Quantity,
			Reason:          reason,
			ReferenceID:     t.ID,
			ReferenceType:   entity.ReferenceTypeTransfer,
			PerformedBy:     by,
		})
	}
	sortByItem(inputs)
	return inputs, nil
}

func applyAll(ctx context.Context, r TxRepos, inputs []RecordMovementInput, now time.Time) ([]*appliedMovement, error) {
	out := make([]*appliedMovement, 0, len(inputs))
	for _, in := range inputs {
		a, err := applyMovement(ctx, r, in, now)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func validateTransfer(in RequestTransferInput) error {
	if in.FromWarehouseID == "" {
		return domain.NewValidationError("from_warehouse_id", "es obligatorio")
	}
	if in.ToWarehouseID == "" {
		return domain.NewValidationError("to_warehouse_id", "es obligatorio")
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return domain.NewValidationError("to_warehouse_id", "debe ser distinta de la bodega origen")
	}
	if len(in.Items) == 0 {
		return domain.NewValidationError("items", "debe tener al menos una línea")
	}
	seen := make(map[string]struct{}, len(in.Items))
	for i, line := range in.Items {
		if strings.TrimSpace(line.ProductID) == "" {
			return domain.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "es obligatorio")
		}
		if line.Quantity <= 0 {
			return domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que cero")
		}
		if _, dup := seen[line.ProductID]; dup {
			return domain.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "producto repetido en el traslado")
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}
