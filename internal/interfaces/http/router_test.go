package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers: API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type apiHarness struct {
	t   *testing.T
	app *fiber.App
}

func newAPI(t *testing.T) *apiHarness {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC:  usecase.NewWarehouseUseCase(repos.Warehouses),
		Ledger:       appinv.NewStockLedger(store, repos),
		Reservations: appinv.NewReservationEngine(store, repos),
		Adjustments:  appinv.NewAdjustmentWorkflow(store, repos),
		Transfers:    appinv.NewTransferWorkflow(store, repos, pdf.NewMarotoManifestRenderer()),
		JWTSecret:    testJWTSecret,
	})
	return &apiHarness{t: t, app: app}
}

// call ejecuta la petición con el rol dado y decodifica la respuesta en out (si no es nil).
func (h *apiHarness) call(method, path, role string, body any, out any) int {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", tokenForRole(h.t, role))
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (h *apiHarness) warehouse(name string) string {
	h.t.Helper()
	var w dto.WarehouseResponse
	status := h.call(http.MethodPost, "/api/warehouses", pkgjwt.RoleAdmin, dto.CreateWarehouseRequest{Name: name}, &w)
	require.Equal(h.t, http.StatusCreated, status)
	return w.ID
}

func (h *apiHarness) stockIn(productID, warehouseID string, qty int) dto.MovementResponse {
	h.t.Helper()
	var mov dto.MovementResponse
	status := h.call(http.MethodPost, "/api/inventory/movements", pkgjwt.RoleBodeguero, dto.RecordMovementRequest{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        "IN",
		Quantity:    qty,
		Reason:      "carga inicial",
	}, &mov)
	require.Equal(h.t, http.StatusCreated, status)
	return mov
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_MovimientoYDisponible(t *testing.T) {
	api := newAPI(t)
	wh := api.warehouse("Norte")

	mov := api.stockIn("prod-1", wh, 10)
	assert.Equal(t, 10, mov.BalanceAfter)
	assert.Equal(t, testUserID, mov.PerformedBy)

	var av dto.AvailabilityResponse
	status := api.call(http.MethodGet, "/api/inventory/availability?product_id=prod-1&warehouse_id="+wh, pkgjwt.RoleVendedor, nil, &av)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 10, av.Available)
	assert.Equal(t, mov.InventoryItemID, av.InventoryItemID)

	var rep dto.BalanceReportResponse
	status = api.call(http.MethodGet, "/api/inventory/items/"+mov.InventoryItemID+"/verify", pkgjwt.RoleSupervisor, nil, &rep)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, rep.Consistent)
	assert.Equal(t, 10, rep.LedgerSum)
}

func TestAPI_MovimientoInvalido_DetallaCampos(t *testing.T) {
	api := newAPI(t)
	wh := api.warehouse("Norte")

	var errResp dto.ErrorResponse
	status := api.call(http.MethodPost, "/api/inventory/movements", pkgjwt.RoleBodeguero, map[string]any{
		"product_id":   "prod-1",
		"warehouse_id": wh,
		"quantity":     5,
	}, &errResp)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errResp.Code)
	assert.Contains(t, errResp.Fields, "type")
	assert.Contains(t, errResp.Fields, "reason")
}

func TestAPI_SalidaSinStock_Retorna409(t *testing.T) {
	api := newAPI(t)
	wh := api.warehouse("Norte")
	api.stockIn("prod-1", wh, 3)

	var errResp dto.ErrorResponse
	status := api.call(http.MethodPost, "/api/inventory/movements", pkgjwt.RoleBodeguero, dto.RecordMovementRequest{
		ProductID: "prod-1", WarehouseID: wh, Type: "OUT", Quantity: 4, Reason: "venta",
	}, &errResp)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)
}

func TestAPI_VendedorNoRegistraMovimientos(t *testing.T) {
	api := newAPI(t)
	wh := api.warehouse("Norte")

	status := api.call(http.MethodPost, "/api/inventory/movements", pkgjwt.RoleVendedor, dto.RecordMovementRequest{
		ProductID: "prod-1", WarehouseID: wh, Type: "IN", Quantity: 4, Reason: "compra",
	}, nil)

	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_HistorialConFechaInvalida_Retorna400(t *testing.T) {
	api := newAPI(t)
	wh := api.warehouse("Norte")

	var errResp dto.ErrorResponse
	status := api.call(http.MethodGet, "/api/inventory/movements?product_id=prod-1&warehouse_id="+wh+"&from=02-02-2026", pkgjwt.RoleVendedor, nil, &errResp)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errResp.Fields, "from")
}

func TestAPI_Historial_MasRecientePrimero(t *testing.T) {
	api := newAPI(t)
	wh := api.warehouse("Norte")
	api.stockIn("prod-1", wh, 5)
	api.stockIn("prod-1", wh, 7)

	var list dto.MovementListResponse
	status := api.call(http.MethodGet, "/api/inventory/movements?product_id=prod-1&warehouse_id="+wh, pkgjwt.RoleVendedor, nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Items, 2)
	assert.Equal(t, 12, list.Items[0].BalanceAfter)
	assert.Equal(t, 20, list.Page.Limit)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservas
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ReservarYDespachar(t *testing.T) {
	api := newAPI(t)
	wh := api.warehouse("Norte")
	api.stockIn("prod-1", wh, 10)

	var res dto.ReservationResponse
	status := api.call(http.MethodPost, "/api/reservations", pkgjwt.RoleVendedor, dto.ReserveRequest{
		ProductID: "prod-1", WarehouseID: wh, Quantity: 4, ReferenceID: "PED-1", ReferenceType: "ORDER",
	}, &res)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "ACTIVE", res.Status)

	var active []dto.ReservationResponse
	status = api.call(http.MethodGet, "/api/reservations?reference_id=PED-1", pkgjwt.RoleVendedor, nil, &active)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, active, 1)

	var out dto.FulfillResponse
	status = api.call(http.MethodPost, "/api/reservations/"+res.ID+"/fulfill", pkgjwt.RoleBodeguero, nil, &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "FULFILLED", out.Reservation.Status)
	assert.Equal(t, -4, out.Movement.Quantity)
	assert.Equal(t, "PED-1", out.Movement.ReferenceID)

	var errResp dto.ErrorResponse
	status = api.call(http.MethodPost, "/api/reservations/"+res.ID+"/release", pkgjwt.RoleVendedor, dto.ReleaseRequest{Reason: "cliente canceló"}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE", errResp.Code)
}

func TestAPI_ReservaMayorAlDisponible_Retorna409(t *testing.T) {
	api := newAPI(t)
	wh := api.warehouse("Norte")
	api.stockIn("prod-1", wh, 2)

	var errResp dto.ErrorResponse
	status := api.call(http.MethodPost, "/api/reservations", pkgjwt.RoleVendedor, dto.ReserveRequest{
		ProductID: "prod-1", WarehouseID: wh, Quantity: 3, ReferenceID: "PED-1", ReferenceType: "ORDER",
	}, &errResp)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)
}

func TestAPI_ReservaInexistente_Retorna404(t *testing.T) {
	api := newAPI(t)

	var errResp dto.ErrorResponse
	status := api.call(http.MethodGet, "/api/reservations/no-existe", pkgjwt.RoleVendedor, nil, &errResp)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errResp.Code)
}

func TestAPI_ExpirarEsIdempotente(t *testing.T) {
	api := newAPI(t)
	wh := api.warehouse("Norte")
	api.stockIn("prod-1", wh, 5)

	var res dto.ReservationResponse
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/api/reservations", pkgjwt.RoleVendedor, dto.ReserveRequest{
		ProductID: "prod-1", WarehouseID: wh, Quantity: 1, ReferenceID: "PED-9", ReferenceType: "ORDER",
	}, &res))

	var first, second dto.ExpireResponse
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/reservations/"+res.ID+"/expire", pkgjwt.RoleAdmin, nil, &first))
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/reservations/"+res.ID+"/expire", pkgjwt.RoleAdmin, nil, &second))
	assert.True(t, first.Changed)
	assert.False(t, second.Changed)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes y traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_AjusteSeApruebaUnaSolaVez(t *testing.T) {
	api := newAPI(t)
	wh := api.warehouse("Norte")
	mov := api.stockIn("prod-1", wh, 10)

	var adj dto.AdjustmentResponse
	status := api.call(http.MethodPost, "/api/adjustments", pkgjwt.RoleBodeguero, dto.CreateAdjustmentRequest{
		WarehouseID: wh,
		Type:        "DAMAGE",
		Reason:      "caja mojada",
		Items:       []dto.AdjustmentLineRequest{{InventoryItemID: mov.InventoryItemID, QuantityAdjusted: -2}},
	}, &adj)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "PENDING", adj.Status)

	var approved dto.AdjustmentResponse
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/adjustments/"+adj.ID+"/approve", pkgjwt.RoleSupervisor, nil, &approved))
	assert.Equal(t, "APPROVED", approved.Status)
	assert.Equal(t, testUserID, approved.ApprovedBy)

	var errResp dto.ErrorResponse
	status = api.call(http.MethodPost, "/api/adjustments/"+adj.ID+"/approve", pkgjwt.RoleSupervisor, nil, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_APPROVED", errResp.Code)

	var item dto.InventoryItemResponse
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/inventory/items/"+mov.InventoryItemID, pkgjwt.RoleVendedor, nil, &item))
	assert.Equal(t, 8, item.QuantityOnHand)
}

func TestAPI_BodegueroNoApruebaAjustes(t *testing.T) {
	api := newAPI(t)

	status := api.call(http.MethodPost, "/api/adjustments/cualquiera/approve", pkgjwt.RoleBodeguero, nil, nil)

	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_TrasladoMismaBodega_Retorna400(t *testing.T) {
	api := newAPI(t)
	wh := api.warehouse("Norte")

	var errResp dto.ErrorResponse
	status := api.call(http.MethodPost, "/api/transfers", pkgjwt.RoleBodeguero, dto.CreateTransferRequest{
		FromWarehouseID: wh,
		ToWarehouseID:   wh,
		Items:           []dto.TransferLineRequest{{ProductID: "prod-1", Quantity: 1}},
	}, &errResp)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errResp.Fields, "to_warehouse_id")
}

func TestAPI_TrasladoCompletoYManifiesto(t *testing.T) {
	api := newAPI(t)
	norte := api.warehouse("Norte")
	sur := api.warehouse("Sur")
	api.stockIn("prod-1", norte, 10)

	var tr dto.TransferResponse
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/api/transfers", pkgjwt.RoleBodeguero, dto.CreateTransferRequest{
		FromWarehouseID: norte,
		ToWarehouseID:   sur,
		Items:           []dto.TransferLineRequest{{ProductID: "prod-1", Quantity: 6}},
	}, &tr))
	assert.Equal(t, "PENDING", tr.Status)

	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/transfers/"+tr.ID+"/approve", pkgjwt.RoleSupervisor, nil, &tr))
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/transfers/"+tr.ID+"/ship", pkgjwt.RoleBodeguero, nil, &tr))
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/api/transfers/"+tr.ID+"/receive", pkgjwt.RoleBodeguero, nil, &tr))
	assert.Equal(t, "RECEIVED", tr.Status)

	var av dto.AvailabilityResponse
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/inventory/availability?product_id=prod-1&warehouse_id="+sur, pkgjwt.RoleVendedor, nil, &av))
	assert.Equal(t, 6, av.Available)

	var errResp dto.ErrorResponse
	status := api.call(http.MethodPost, "/api/transfers/"+tr.ID+"/cancel", pkgjwt.RoleSupervisor, nil, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_OPERATION", errResp.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/transfers/"+tr.ID+"/manifest", nil)
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleVendedor))
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}
