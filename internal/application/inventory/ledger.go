package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// StockLedger es la única vía para cambiar QuantityOnHand: inserta el movimiento y aplica su
// delta sobre el ítem bloqueado (SELECT FOR UPDATE) en una sola transacción.
type StockLedger struct {
	*engine
}

// NewStockLedger construye el ledger.
func NewStockLedger(tx TxRunner, repos TxRepos, opts ...Option) *StockLedger {
	return &StockLedger{engine: newEngine(tx, repos, opts...)}
}

// RecordMovementInput entrada para registrar un movimiento.
// El ítem se identifica por InventoryItemID o por el par (ProductID, WarehouseID).
type RecordMovementInput struct {
	InventoryItemID string
	ProductID       string
	WarehouseID     string
	Type            entity.MovementType
	Quantity        int
	UnitCost        *decimal.Decimal
	Reason          string
	ReferenceID     string
	ReferenceType   string
	PerformedBy     string
	Notes           string
	// AllowNegative permite que la cantidad disponible quede bajo cero (correcciones).
	AllowNegative bool
}

// Availability desglose de la cantidad disponible de un ítem.
type Availability struct {
	InventoryItemID string
	ProductID       string
	WarehouseID     string
	QuantityOnHand  int
	Reserved        int
	Available       int
}

// BalanceReport resultado de recalcular el saldo desde el ledger.
type BalanceReport struct {
	InventoryItemID string
	QuantityOnHand  int
	LedgerSum       int
	Drift           int
}

// Consistent indica que el saldo coincide con la suma de movimientos.
func (b BalanceReport) Consistent() bool { return b.Drift == 0 }

// RecordMovement valida, bloquea el ítem, aplica el movimiento y publica los eventos tras el commit.
// Una entrada IN sobre un par (producto, bodega) sin ítem lo crea primero.
func (l *StockLedger) RecordMovement(ctx context.Context, in RecordMovementInput) (mov *entity.StockMovement, err error) {
	ctx, span := l.startSpan(ctx, "RecordMovement",
		attribute.String("movement.type", string(in.Type)),
		attribute.Int("movement.quantity", in.Quantity),
	)
	defer func() { endSpan(span, err) }()

	if err := validateMovement(in); err != nil {
		return nil, err
	}
	if in.InventoryItemID == "" {
		item, err := l.resolveItem(ctx, in.ProductID, in.WarehouseID, in.Type == entity.MovementTypeIn)
		if err != nil {
			return nil, err
		}
		in.InventoryItemID = item.ID
	}

	now := l.now()
	var applied *appliedMovement
	err = l.tx.Run(ctx, func(r TxRepos) error {
		var err error
		applied, err = applyMovement(ctx, r, in, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.afterMovements(ctx, []*appliedMovement{applied})
	return applied.movement, nil
}

// EnsureItem obtiene o crea el ítem del par (producto, bodega). reorderLevel solo aplica al crear.
func (l *StockLedger) EnsureItem(ctx context.Context, productID, warehouseID string, reorderLevel int) (*entity.InventoryItem, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	if strings.TrimSpace(warehouseID) == "" {
		return nil, domain.NewValidationError("warehouse_id", "es obligatorio")
	}
	if reorderLevel < 0 {
		return nil, domain.NewValidationError("reorder_level", "no puede ser negativo")
	}
	return l.ensureItem(ctx, productID, warehouseID, reorderLevel)
}

// GetItem devuelve el ítem o NotFoundError.
func (l *StockLedger) GetItem(ctx context.Context, id string) (*entity.InventoryItem, error) {
	item, err := l.repos.Items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NewNotFoundError("ítem de inventario", id)
	}
	return item, nil
}

// GetAvailability devuelve disponible = en mano − reservas activas. Un par sin ítem tiene todo en cero.
func (l *StockLedger) GetAvailability(ctx context.Context, productID, warehouseID string) (*Availability, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.NewValidationError("product_id/warehouse_id", "son obligatorios")
	}
	out := &Availability{ProductID: productID, WarehouseID: warehouseID}
	item, err := l.repos.Items.GetByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return out, nil
	}
	reserved, err := l.repos.Reservations.SumActiveByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	out.InventoryItemID = item.ID
	out.QuantityOnHand = item.QuantityOnHand
	out.Reserved = reserved
	out.Available = item.Available(reserved)
	return out, nil
}

// GetAvailableQuantity atajo de GetAvailability para los colaboradores que solo necesitan el número.
func (l *StockLedger) GetAvailableQuantity(ctx context.Context, productID, warehouseID string) (int, error) {
	a, err := l.GetAvailability(ctx, productID, warehouseID)
	if err != nil {
		return 0, err
	}
	return a.Available, nil
}

// GetMovementHistory movimientos del par (producto, bodega) en el rango, más recientes primero.
func (l *StockLedger) GetMovementHistory(ctx context.Context, productID, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.NewValidationError("product_id/warehouse_id", "son obligatorios")
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, domain.NewValidationError("from", "debe ser anterior a to")
	}
	limit, offset = clampPage(limit, offset)

	item, err := l.repos.Items.GetByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return []*entity.StockMovement{}, nil
	}
	return l.repos.Movements.ListByItem(ctx, item.ID, from, to, limit, offset)
}

// GetMovementsByReference reconstruye por qué cambió el stock para un documento externo.
func (l *StockLedger) GetMovementsByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	if referenceType == "" || referenceID == "" {
		return nil, domain.NewValidationError("reference_type/reference_id", "son obligatorios")
	}
	return l.repos.Movements.ListByReference(ctx, referenceType, referenceID)
}

// VerifyBalance recalcula la suma del ledger con el ítem bloqueado y reporta la diferencia.
func (l *StockLedger) VerifyBalance(ctx context.Context, itemID string) (*BalanceReport, error) {
	var report *BalanceReport
	err := l.tx.Run(ctx, func(r TxRepos) error {
		item, err := r.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.NewNotFoundError("ítem de inventario", itemID)
		}
		sum, err := r.Movements.SumByItem(ctx, item.ID)
		if err != nil {
			return err
		}
		report = &BalanceReport{
			InventoryItemID: item.ID,
			QuantityOnHand:  item.QuantityOnHand,
			LedgerSum:       sum,
			Drift:           item.QuantityOnHand - sum,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !report.Consistent() {
		l.log.Error().Str("inventory_item_id", itemID).Int("drift", report.Drift).
			Msg("saldo del ítem no coincide con el ledger")
	}
	return report, nil
}

// ReceivePurchaseOrder registra una entrada IN por línea de la orden recibida, todas en una transacción.
func (l *StockLedger) ReceivePurchaseOrder(ctx context.Context, receipt entity.PurchaseOrderReceipt) (movs []*entity.StockMovement, err error) {
	ctx, span := l.startSpan(ctx, "ReceivePurchaseOrder", attribute.String("purchase_order.id", receipt.PurchaseOrderID))
	defer func() { endSpan(span, err) }()

	if receipt.PurchaseOrderID == "" {
		return nil, domain.NewValidationError("purchase_order_id", "es obligatorio")
	}
	if receipt.WarehouseID == "" {
		return nil, domain.NewValidationError("warehouse_id", "es obligatorio")
	}
	if len(receipt.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "debe tener al menos una línea")
	}
	for i, line := range receipt.Lines {
		if line.ProductID == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].product_id", i), "es obligatorio")
		}
		if line.Quantity <= 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
		}
		if line.UnitCost.IsNegative() {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].unit_cost", i), "no puede ser negativo")
		}
	}

	inputs := make([]RecordMovementInput, 0, len(receipt.Lines))
	for _, line := range receipt.Lines {
		item, err := l.ensureItem(ctx, line.ProductID, receipt.WarehouseID, 0)
		if err != nil {
			return nil, err
		}
		cost := line.UnitCost
		inputs = append(inputs, RecordMovementInput{
			InventoryItemID: item.ID,
			Type:            entity.MovementTypeIn,
			Quantity:        line.Quantity,
			UnitCost:        &cost,
			Reason:          "Recepción orden de compra " + receipt.PurchaseOrderID,
			ReferenceID:     receipt.PurchaseOrderID,
			ReferenceType:   entity.ReferenceTypePurchaseOrder,
			PerformedBy:     receipt.ReceivedBy,
		})
	}
	sortByItem(inputs)

	now := l.now()
	var applied []*appliedMovement
	err = l.tx.Run(ctx, func(r TxRepos) error {
		applied = applied[:0]
		for _, in := range inputs {
			a, err := applyMovement(ctx, r, in, now)
			if err != nil {
				return err
			}
			applied = append(applied, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.afterMovements(ctx, applied)
	for _, a := range applied {
		movs = append(movs, a.movement)
	}
	l.log.Info().Str("purchase_order_id", receipt.PurchaseOrderID).Int("lines", len(movs)).
		Msg("orden de compra recibida")
	return movs, nil
}

// ─── internos compartidos por ledger, reservas, ajustes y traslados ─────────────

type appliedMovement struct {
	movement   *entity.StockMovement
	item       *entity.InventoryItem
	crossedLow bool
}

func validateMovement(in RecordMovementInput) error {
	if !in.Type.Valid() {
		return domain.NewValidationError("type", fmt.Sprintf("tipo de movimiento desconocido %q", in.Type))
	}
	if in.Type.SignedQuantity(in.Quantity) == 0 {
		return domain.NewValidationError("quantity", "debe ser distinta de cero")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return domain.NewValidationError("reason", "es obligatorio")
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return domain.NewValidationError("unit_cost", "no puede ser negativo")
	}
	if in.InventoryItemID == "" && (in.ProductID == "" || in.WarehouseID == "") {
		return domain.NewValidationError("inventory_item_id", "indique el ítem o el par product_id/warehouse_id")
	}
	return nil
}

// applyMovement aplica un movimiento dentro de la transacción del llamador. Bloquea el ítem,
// verifica el piso de disponible para movimientos que restan y persiste movimiento e ítem.
func applyMovement(ctx context.Context, r TxRepos, in RecordMovementInput, now time.Time) (*appliedMovement, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	qty := in.Type.SignedQuantity(in.Quantity)

	item, err := r.Items.GetForUpdate(ctx, in.InventoryItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NewNotFoundError("ítem de inventario", in.InventoryItemID)
	}
	if in.ProductID != "" && in.ProductID != item.ProductID {
		return nil, domain.NewValidationError("product_id", "no corresponde al ítem de inventario")
	}
	wasLow := item.BelowReorderLevel()

	if qty < 0 && !in.AllowNegative {
		reserved, err := r.Reservations.SumActiveByItem(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		available := item.Available(reserved)
		if available+qty < 0 {
			return nil, &domain.InsufficientStockError{InventoryItemID: item.ID, Available: available, Requested: -qty}
		}
	}
	if in.Type == entity.MovementTypeIn && in.UnitCost != nil {
		item.AverageCost = inventory.WeightedAverageCost(item.QuantityOnHand, item.AverageCost, qty, *in.UnitCost)
	}

	mov := &entity.StockMovement{
		ID:              uuid.NewString(),
		InventoryItemID: item.ID,
		ProductID:       item.ProductID,
		WarehouseID:     item.WarehouseID,
		Type:            in.Type,
		Quantity:        qty,
		UnitCost:        in.UnitCost,
		Reason:          in.Reason,
		ReferenceID:     in.ReferenceID,
		ReferenceType:   in.ReferenceType,
		MovementDate:    now,
		PerformedBy:     in.PerformedBy,
		Notes:           in.Notes,
	}
	item.Apply(mov)

	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := r.Items.Update(ctx, item); err != nil {
		return nil, err
	}
	return &appliedMovement{
		movement:   mov,
		item:       item,
		crossedLow: qty < 0 && !wasLow && item.BelowReorderLevel(),
	}, nil
}

// afterMovements métricas y eventos de movimientos ya confirmados.
func (e *engine) afterMovements(ctx context.Context, applied []*appliedMovement) {
	e.publish(ctx, e.movementEvents(applied))
}

func (e *engine) movementEvents(applied []*appliedMovement) []StockEvent {
	events := make([]StockEvent, 0, len(applied))
	for _, a := range applied {
		e.metrics.MovementRecorded(string(a.movement.Type), a.movement.Quantity)
		events = append(events, movementEvent(a.movement))
		if a.crossedLow {
			events = append(events, lowStockEvent(a.item, a.movement.MovementDate))
			e.log.Warn().Str("inventory_item_id", a.item.ID).Int("on_hand", a.item.QuantityOnHand).
				Int("reorder_level", a.item.ReorderLevel).Msg("ítem bajo punto de reorden")
		}
	}
	return events
}

// resolveItem busca el ítem del par; con create=true lo crea si falta.
func (e *engine) resolveItem(ctx context.Context, productID, warehouseID string, create bool) (*entity.InventoryItem, error) {
	if create {
		return e.ensureItem(ctx, productID, warehouseID, 0)
	}
	item, err := e.repos.Items.GetByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NewNotFoundError("ítem de inventario", productID+"@"+warehouseID)
	}
	return item, nil
}

// ensureItem get-or-create en su propia transacción. Si otra petición lo crea primero
// (ErrDuplicate sobre el par único) se relee el existente.
func (e *engine) ensureItem(ctx context.Context, productID, warehouseID string, reorderLevel int) (*entity.InventoryItem, error) {
	item, err := e.repos.Items.GetByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil || item != nil {
		return item, err
	}
	var created bool
	err = e.tx.Run(ctx, func(r TxRepos) error {
		var err error
		item, created, err = ensureItemTx(ctx, r, productID, warehouseID, reorderLevel, e.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	if created {
		e.log.Info().Str("inventory_item_id", item.ID).Str("product_id", productID).
			Str("warehouse_id", warehouseID).Msg("ítem de inventario creado")
	}
	return item, nil
}

// ensureItemTx get-or-create dentro de una transacción abierta. La bodega debe existir.
func ensureItemTx(ctx context.Context, r TxRepos, productID, warehouseID string, reorderLevel int, now time.Time) (*entity.InventoryItem, bool, error) {
	item, err := r.Items.GetByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil || item != nil {
		return item, false, err
	}
	wh, err := r.Warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, false, err
	}
	if wh == nil {
		return nil, false, domain.NewNotFoundError("bodega", warehouseID)
	}
	item = &entity.InventoryItem{
		ID:           uuid.NewString(),
		ProductID:    productID,
		WarehouseID:  warehouseID,
		ReorderLevel: reorderLevel,
		AverageCost:  decimal.Zero,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = r.Items.Create(ctx, item)
	if errors.Is(err, domain.ErrDuplicate) {
		existing, err := r.Items.GetByProductAndWarehouse(ctx, productID, warehouseID)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, fmt.Errorf("ítem %s@%s duplicado pero no encontrado", productID, warehouseID)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// sortByItem orden de bloqueo: ítems ascendentes por id.
func sortByItem(inputs []RecordMovementInput) {
	sort.SliceStable(inputs, func(i, j int) bool {
		return inputs[i].InventoryItemID < inputs[j].InventoryItemID
	})
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
