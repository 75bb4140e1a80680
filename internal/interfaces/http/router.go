package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RouterDeps agrupa las dependencias de las rutas.
type RouterDeps struct {
	Receiver  purchaseReceiver
	Orders    purchaseOrderService
	Receiving receivingStatusReader
	Movements movementLister
	Health    HealthFunc
	JWTSecret string
	Log       zerolog.Logger
}

// Router registra las rutas bajo /api. Recepción y transiciones: admin y pharmacist.
// Consultas: además doctor. Los pacientes no acceden a compras.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestLogger(deps.Log))

	if deps.Health != nil {
		app.Get("/health", HealthHandler(deps.Health, 3*time.Second))
	}

	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	writers := RequireRole(RoleAdmin, RolePharmacist)
	readers := RequireRole(RoleAdmin, RolePharmacist, RoleDoctor)

	purchaseHandler := NewPurchaseHandler(deps.Receiver, deps.Orders, deps.Receiving)
	purchases := protected.Group("/purchases")
	purchases.Post("/:poId/receive", writers, purchaseHandler.Receive)
	purchases.Post("/:poId/order", writers, purchaseHandler.PlaceOrder)
	purchases.Post("/:poId/cancel", writers, purchaseHandler.Cancel)
	purchases.Get("/:poId/receiving", readers, purchaseHandler.ReceivingStatus)
	purchases.Get("/:poId/receipt.pdf", readers, purchaseHandler.ReceiptPDF)

	inventoryHandler := NewInventoryHandler(deps.Movements)
	protected.Get("/medicines/:id/movements", readers, inventoryHandler.ListMovements)
}
