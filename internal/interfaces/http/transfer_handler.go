package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// TransferHandler traslados entre bodegas.
type TransferHandler struct {
	wf *inventory.TransferWorkflow
}

// NewTransferHandler construye el handler.
func NewTransferHandler(wf *inventory.TransferWorkflow) *TransferHandler {
	return &TransferHandler{wf: wf}
}

// Create godoc
// @Summary      Solicitar traslado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTransferRequest  true  "Traslado"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	lines := make([]inventory.TransferLineInput, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, inventory.TransferLineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	t, err := h.wf.RequestTransfer(c.UserContext(), inventory.RequestTransferInput{
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		RequestedBy:     GetUserID(c),
		Notes:           in.Notes,
		Items:           lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// Get godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	t, err := h.wf.GetTransfer(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Manifest godoc
// @Summary      Manifiesto de despacho (PDF)
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/manifest [get]
func (h *TransferHandler) Manifest(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.wf.TransferManifest(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="traslado-`+id+`.pdf"`)
	return c.Send(pdf)
}

// Approve godoc
// @Summary      Aprobar traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	return h.step(c, h.wf.ApproveTransfer)
}

// Ship godoc
// @Summary      Despachar traslado
// @Description  Descuenta el stock de la bodega origen.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	return h.step(c, h.wf.ShipTransfer)
}

// Receive godoc
// @Summary      Recibir traslado
// @Description  Suma el stock en la bodega destino.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	return h.step(c, h.wf.ReceiveTransfer)
}

// Cancel godoc
// @Summary      Cancelar traslado
// @Description  Si ya se despachó, devuelve el stock a la bodega origen.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	return h.step(c, h.wf.CancelTransfer)
}

func (h *TransferHandler) step(c *fiber.Ctx, fn func(ctx context.Context, id, by string) (*entity.StockTransfer, error)) error {
	t, err := fn(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}
