package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// ReservationHandler expone el motor de reservas.
type ReservationHandler struct {
	engine *inventory.ReservationEngine
}

// NewReservationHandler construye el handler.
func NewReservationHandler(engine *inventory.ReservationEngine) *ReservationHandler {
	return &ReservationHandler{engine: engine}
}

// Reserve godoc
// @Summary      Reservar stock
// @Description  Crea una reserva ACTIVE si el disponible cubre la cantidad. expiration_hours por defecto 24.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ReserveRequest  true  "Reserva"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.engine.Reserve(c.UserContext(), inventory.ReserveInput{
		InventoryItemID: in.InventoryItemID,
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		Quantity:        in.Quantity,
		ReferenceID:     in.ReferenceID,
		ReferenceType:   in.ReferenceType,
		ExpirationHours: in.ExpirationHours,
		Notes:           in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReservationResponse(res))
}

// ListActive godoc
// @Summary      Reservas activas de un documento
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        reference_id  query     string  true  "ID del pedido u orden"
// @Success      200  {array}   dto.ReservationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reservations [get]
func (h *ReservationHandler) ListActive(c *fiber.Ctx) error {
	refID := c.Query("reference_id")
	if refID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reference_id es requerido"})
	}
	list, err := h.engine.GetActiveReservations(c.UserContext(), refID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReservationResponse(r))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener reserva
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	res, err := h.engine.GetReservation(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReservationResponse(res))
}

// Fulfill godoc
// @Summary      Despachar reserva
// @Description  Pasa la reserva a FULFILLED y registra la salida OUT en la misma transacción.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string              true   "ID de la reserva"
// @Param        body  body      dto.FulfillRequest  false  "Notas"
// @Success      200   {object}  dto.FulfillResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/fulfill [post]
func (h *ReservationHandler) Fulfill(c *fiber.Ctx) error {
	var in dto.FulfillRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	res, mov, err := h.engine.Fulfill(c.UserContext(), inventory.FulfillInput{
		ReservationID: c.Params("id"),
		PerformedBy:   GetUserID(c),
		Notes:         in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FulfillResponse{
		Reservation: toReservationResponse(res),
		Movement:    toMovementResponse(mov),
	})
}

// Release godoc
// @Summary      Liberar reserva
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "ID de la reserva"
// @Param        body  body      dto.ReleaseRequest  true  "Motivo"
// @Success      200   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	var in dto.ReleaseRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.engine.Release(c.UserContext(), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReservationResponse(res))
}

// Expire godoc
// @Summary      Vencer reserva
// @Description  Idempotente: changed=false si la reserva ya no estaba activa.
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la reserva"
// @Success      200  {object}  dto.ExpireResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/expire [post]
func (h *ReservationHandler) Expire(c *fiber.Ctx) error {
	id := c.Params("id")
	changed, err := h.engine.Expire(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ExpireResponse{ID: id, Changed: changed})
}
