package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// InventoryHandler expone el ledger de stock.
type InventoryHandler struct {
	ledger *inventory.StockLedger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.StockLedger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// EnsureItem godoc
// @Summary      Registrar producto en bodega
// @Description  Crea el ítem de inventario (saldo 0) o devuelve el existente.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.EnsureItemRequest  true  "Producto y bodega"
// @Success      200   {object}  dto.InventoryItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/items [post]
func (h *InventoryHandler) EnsureItem(c *fiber.Ctx) error {
	var in dto.EnsureItemRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	item, err := h.ledger.EnsureItem(c.UserContext(), in.ProductID, in.WarehouseID, in.ReorderLevel)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toItemResponse(item))
}

// GetItem godoc
// @Summary      Obtener ítem de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ítem"
// @Success      200  {object}  dto.InventoryItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id} [get]
func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	item, err := h.ledger.GetItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toItemResponse(item))
}

// VerifyBalance godoc
// @Summary      Verificar saldo contra el ledger
// @Description  Compara quantity_on_hand con la suma de movimientos del ítem.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ítem"
// @Success      200  {object}  dto.BalanceReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/verify [get]
func (h *InventoryHandler) VerifyBalance(c *fiber.Ctx) error {
	rep, err := h.ledger.VerifyBalance(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.BalanceReportResponse{
		InventoryItemID: rep.InventoryItemID,
		QuantityOnHand:  rep.QuantityOnHand,
		LedgerSum:       rep.LedgerSum,
		Drift:           rep.Drift,
		Consistent:      rep.Consistent(),
	})
}

// Availability godoc
// @Summary      Cantidad disponible
// @Description  Disponible = en mano − reservas activas. Un producto sin ítem en la bodega da 0.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query     string  true  "ID del producto"
// @Param        warehouse_id  query     string  true  "ID de la bodega"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/availability [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	productID, warehouseID := c.Query("product_id"), c.Query("warehouse_id")
	if productID == "" || warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y warehouse_id son requeridos"})
	}
	av, err := h.ledger.GetAvailability(c.UserContext(), productID, warehouseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAvailabilityResponse(av))
}

// LowStock godoc
// @Summary      Productos bajo punto de reorden
// @Description  Lista priorizada con sugerencia de compra.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query     string  false  "Filtrar por bodega"
// @Success      200  {array}   dto.LowStockItemResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.ledger.ListLowStock(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// RecordMovement godoc
// @Summary      Registrar movimiento
// @Description  Aplica el movimiento al saldo del ítem en la misma transacción. OUT y RESERVED se guardan negativos.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RecordMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	mov, err := h.ledger.RecordMovement(c.UserContext(), inventory.RecordMovementInput{
		InventoryItemID: in.InventoryItemID,
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		Type:            entity.MovementType(in.Type),
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
		Reason:          in.Reason,
		ReferenceID:     in.ReferenceID,
		ReferenceType:   in.ReferenceType,
		PerformedBy:     GetUserID(c),
		Notes:           in.Notes,
		AllowNegative:   in.AllowNegative,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// History godoc
// @Summary      Historial de movimientos
// @Description  Movimientos del producto en la bodega, más recientes primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query     string  true   "ID del producto"
// @Param        warehouse_id  query     string  true   "ID de la bodega"
// @Param        from          query     string  false  "Desde (YYYY-MM-DD)"
// @Param        to            query     string  false  "Hasta, inclusive (YYYY-MM-DD)"
// @Param        limit         query     int     false  "Límite" default(20)
// @Param        offset        query     int     false  "Offset" default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	var q dto.MovementHistoryQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	q.DefaultPage()
	from, to := dateRange(q.From, q.To)
	list, err := h.ledger.GetMovementHistory(c.UserContext(), q.ProductID, q.WarehouseID, from, to, q.Limit, q.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: toMovementList(list),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	})
}

// ByReference godoc
// @Summary      Movimientos por documento de origen
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        reference_type  query     string  true  "Tipo (ORDER, PURCHASE_ORDER, TRANSFER...)"
// @Param        reference_id    query     string  true  "ID del documento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/by-reference [get]
func (h *InventoryHandler) ByReference(c *fiber.Ctx) error {
	refType, refID := c.Query("reference_type"), c.Query("reference_id")
	if refType == "" || refID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reference_type y reference_id son requeridos"})
	}
	list, err := h.ledger.GetMovementsByReference(c.UserContext(), refType, refID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementList(list))
}

// Receipts godoc
// @Summary      Recibir orden de compra
// @Description  Registra una entrada IN por línea y recalcula el costo promedio. Todo o nada.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ReceivePurchaseOrderRequest  true  "Recepción"
// @Success      201   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) Receipts(c *fiber.Ctx) error {
	var in dto.ReceivePurchaseOrderRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	receipt := entity.PurchaseOrderReceipt{
		PurchaseOrderID: in.PurchaseOrderID,
		SupplierID:      in.SupplierID,
		WarehouseID:     in.WarehouseID,
		ReceivedBy:      GetUserID(c),
		Lines:           make([]entity.PurchaseOrderReceiptLine, 0, len(in.Lines)),
	}
	for _, l := range in.Lines {
		receipt.Lines = append(receipt.Lines, entity.PurchaseOrderReceiptLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitCost: l.UnitCost})
	}
	movs, err := h.ledger.ReceivePurchaseOrder(c.UserContext(), receipt)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementList(movs))
}

// dateRange convierte fechas YYYY-MM-DD (ya validadas) en límites UTC; "to" incluye el día completo.
func dateRange(fromStr, toStr string) (from, to *time.Time) {
	if fromStr != "" {
		if t, err := time.Parse(dateLayout, fromStr); err == nil {
			from = &t
		}
	}
	if toStr != "" {
		if t, err := time.Parse(dateLayout, toStr); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			to = &end
		}
	}
	return from, to
}
