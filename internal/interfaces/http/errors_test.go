package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

func TestWriteError_MapeaErroresDeDominio(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validación", domain.NewValidationError("quantity", "debe ser mayor que cero"), http.StatusBadRequest, "VALIDATION"},
		{"no encontrado", domain.NewNotFoundError("reserva", "r-1"), http.StatusNotFound, "NOT_FOUND"},
		{"stock insuficiente", &domain.InsufficientStockError{InventoryItemID: "i-1", Available: 2, Requested: 5}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"transición inválida", &domain.InvalidStateTransitionError{Entity: "reserva", ID: "r-1", Current: "RELEASED", Target: "FULFILLED"}, http.StatusConflict, "INVALID_STATE"},
		{"ya aprobado", &domain.AlreadyApprovedError{AdjustmentID: "a-1"}, http.StatusConflict, "ALREADY_APPROVED"},
		{"operación inválida", &domain.InvalidOperationError{Entity: "traslado", ID: "t-1", Operation: "cancelar", Current: "RECEIVED"}, http.StatusConflict, "INVALID_OPERATION"},
		{"conflicto envuelto", fmt.Errorf("ajuste a-1: %w", domain.ErrConflict), http.StatusConflict, "CONFLICT"},
		{"prohibido", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"inesperado", errors.New("conexión perdida"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, tc.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestWriteError_ValidacionIncluyeCampo(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return writeError(c, domain.NewValidationError("reason", "es obligatorio"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "es obligatorio", body.Fields["reason"])
}

func TestWriteError_InternoNoExponeDetalle(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return writeError(c, fmt.Errorf("insert stock movement: %w", errors.New(`pq: relation "stock_movements" does not exist`)))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INTERNAL", body.Code)
	assert.Equal(t, "error interno del servidor", body.Message)
	assert.NotContains(t, body.Message, "stock_movements")
}
