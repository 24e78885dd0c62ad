package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC  *usecase.WarehouseUseCase
	Ledger       *inventory.StockLedger
	Reservations *inventory.ReservationEngine
	Adjustments  *inventory.AdjustmentWorkflow
	Transfers    *inventory.TransferWorkflow
	JWTSecret    string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las escrituras además exigen rol.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	admin := RequireRole(jwt.RoleAdmin)
	warehouseOps := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	supervisors := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor)
	sellers := RequireRole(jwt.RoleAdmin, jwt.RoleVendedor, jwt.RoleBodeguero)

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", admin, warehouseHandler.Create)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	// Inventory (ledger)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	invGroup.Post("/items", warehouseOps, inventoryHandler.EnsureItem)
	invGroup.Get("/items/:id", inventoryHandler.GetItem)
	invGroup.Get("/items/:id/verify", supervisors, inventoryHandler.VerifyBalance)
	invGroup.Get("/availability", inventoryHandler.Availability)
	invGroup.Get("/low-stock", inventoryHandler.LowStock)
	invGroup.Post("/movements", warehouseOps, inventoryHandler.RecordMovement)
	invGroup.Get("/movements", inventoryHandler.History)
	invGroup.Get("/movements/by-reference", inventoryHandler.ByReference)
	invGroup.Post("/receipts", warehouseOps, inventoryHandler.Receipts)

	// Reservations
	reservations := protected.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.Reservations)
	reservations.Post("/", sellers, reservationHandler.Reserve)
	reservations.Get("/", reservationHandler.ListActive)
	reservations.Get("/:id", reservationHandler.Get)
	reservations.Post("/:id/fulfill", sellers, reservationHandler.Fulfill)
	reservations.Post("/:id/release", sellers, reservationHandler.Release)
	reservations.Post("/:id/expire", admin, reservationHandler.Expire)

	// Adjustments
	adjustments := protected.Group("/adjustments")
	adjustmentHandler := NewAdjustmentHandler(deps.Adjustments)
	adjustments.Post("/", warehouseOps, adjustmentHandler.Create)
	adjustments.Get("/", adjustmentHandler.List)
	adjustments.Get("/:id", adjustmentHandler.Get)
	adjustments.Post("/:id/approve", supervisors, adjustmentHandler.Approve)
	adjustments.Post("/:id/reject", supervisors, adjustmentHandler.Reject)

	// Transfers
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers)
	transfers.Post("/", warehouseOps, transferHandler.Create)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Get("/:id/manifest", transferHandler.Manifest)
	transfers.Post("/:id/approve", supervisors, transferHandler.Approve)
	transfers.Post("/:id/ship", warehouseOps, transferHandler.Ship)
	transfers.Post("/:id/receive", warehouseOps, transferHandler.Receive)
	transfers.Post("/:id/cancel", supervisors, transferHandler.Cancel)
}
