package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// AdjustmentHandler flujo de ajustes con aprobación.
type AdjustmentHandler struct {
	wf *inventory.AdjustmentWorkflow
}

// NewAdjustmentHandler construye el handler.
func NewAdjustmentHandler(wf *inventory.AdjustmentWorkflow) *AdjustmentHandler {
	return &AdjustmentHandler{wf: wf}
}

// Create godoc
// @Summary      Crear ajuste
// @Description  Queda PENDING; no afecta el saldo hasta aprobarse.
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateAdjustmentRequest  true  "Ajuste"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/adjustments [post]
func (h *AdjustmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	lines := make([]inventory.AdjustmentLineInput, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, inventory.AdjustmentLineInput{
			InventoryItemID:  it.InventoryItemID,
			QuantityBefore:   it.QuantityBefore,
			QuantityAdjusted: it.QuantityAdjusted,
		})
	}
	adj, err := h.wf.CreateAdjustment(c.UserContext(), inventory.CreateAdjustmentInput{
		WarehouseID: in.WarehouseID,
		Type:        entity.AdjustmentType(in.Type),
		Reason:      in.Reason,
		AdjustedBy:  GetUserID(c),
		Items:       lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAdjustmentResponse(adj))
}

// List godoc
// @Summary      Listar ajustes de una bodega
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query     string  true   "ID de la bodega"
// @Param        limit         query     int     false  "Límite" default(20)
// @Param        offset        query     int     false  "Offset" default(0)
// @Success      200  {object}  dto.AdjustmentListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/adjustments [get]
func (h *AdjustmentHandler) List(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id es requerido"})
	}
	var page dto.PageRequest
	if ok, err := parseQuery(c, &page); !ok {
		return err
	}
	page.DefaultPage()
	list, err := h.wf.ListAdjustments(c.UserContext(), warehouseID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.AdjustmentListResponse{
		Items: make([]dto.AdjustmentResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, a := range list {
		out.Items = append(out.Items, toAdjustmentResponse(a))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener ajuste
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ajuste"
// @Success      200  {object}  dto.AdjustmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id} [get]
func (h *AdjustmentHandler) Get(c *fiber.Ctx) error {
	adj, err := h.wf.GetAdjustment(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAdjustmentResponse(adj))
}

// Approve godoc
// @Summary      Aprobar ajuste
// @Description  Aplica un movimiento ADJUSTMENT por línea. Solo una vez.
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ajuste"
// @Success      200  {object}  dto.AdjustmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id}/approve [post]
func (h *AdjustmentHandler) Approve(c *fiber.Ctx) error {
	adj, err := h.wf.ApproveAdjustment(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAdjustmentResponse(adj))
}

// Reject godoc
// @Summary      Rechazar ajuste
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ajuste"
// @Success      200  {object}  dto.AdjustmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id}/reject [post]
func (h *AdjustmentHandler) Reject(c *fiber.Ctx) error {
	adj, err := h.wf.RejectAdjustment(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAdjustmentResponse(adj))
}
