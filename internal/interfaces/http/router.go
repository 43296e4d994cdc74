package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-core/internal/application/catalog"
	"github.com/jhoicas/inventario-core/internal/application/ledger"
	"github.com/jhoicas/inventario-core/internal/application/receiving"
	"github.com/jhoicas/inventario-core/internal/application/serial"
	appsod "github.com/jhoicas/inventario-core/internal/application/sod"
	"github.com/jhoicas/inventario-core/internal/application/transfer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC     *ledger.StockLedgerUseCase
	LedgerQuery  *ledger.QueryUseCase
	Reconciler   *ledger.ReconcileUseCase
	SerialUC     *serial.LifecycleUseCase
	SerialQuery  *serial.QueryUseCase
	ReceiptUC    *receiving.ReceiptUseCase
	TransferUC   *transfer.WorkflowUseCase
	SODUC        *appsod.ValidationUseCase
	CatalogQuery *catalog.QueryUseCase
	JWTSecret    string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Libro de stock (saldos, movimientos, conciliación)
	ledgerGroup := api.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.LedgerUC, deps.LedgerQuery, deps.Reconciler)
	ledgerGroup.Post("/movements", ledgerHandler.ApplyMovement)
	ledgerGroup.Get("/movements", ledgerHandler.ListMovements)
	ledgerGroup.Get("/balance", ledgerHandler.GetBalance)
	ledgerGroup.Get("/stock", ledgerHandler.ListStockByLocation)
	ledgerGroup.Get("/reconcile", ledgerHandler.Reconcile)

	// Unidades serializadas
	serials := api.Group("/serials")
	serialHandler := NewSerialHandler(deps.SerialUC, deps.SerialQuery, deps.TransferUC)
	serials.Post("/", serialHandler.Create)
	serials.Post("/bulk", serialHandler.BulkCreate)
	serials.Post("/validate-transfer", serialHandler.ValidateTransfer)
	serials.Get("/", serialHandler.List)
	serials.Get("/:serial", serialHandler.GetBySerial)
	serials.Get("/:serial/trail", serialHandler.Trail)
	serials.Post("/:serial/sell", serialHandler.Sell)
	serials.Post("/:serial/return", serialHandler.Return)
	serials.Post("/:serial/warranty-return", serialHandler.WarrantyReturn)
	serials.Post("/:serial/damage", serialHandler.Damage)

	// Recepciones de compra (GRN)
	receipts := api.Group("/receipts")
	receiptHandler := NewReceiptHandler(deps.ReceiptUC)
	receipts.Post("/", receiptHandler.Create)
	receipts.Get("/", receiptHandler.List)
	receipts.Get("/:id", receiptHandler.GetByID)
	receipts.Post("/:id/approve", receiptHandler.Approve)

	// Traslados entre ubicaciones
	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/check", transferHandler.Check)
	transfers.Post("/:id/send", transferHandler.Send)
	transfers.Post("/:id/receive", transferHandler.Receive)
	transfers.Post("/:id/complete", transferHandler.Complete)
	transfers.Post("/:id/cancel", transferHandler.Cancel)

	// Catálogo (solo lectura)
	catalogHandler := NewCatalogHandler(deps.CatalogQuery)
	api.Get("/locations", catalogHandler.ListLocations)
	api.Get("/variations", catalogHandler.ListVariations)
	api.Get("/variations/:id", catalogHandler.GetVariation)

	// Segregación de funciones
	sodGroup := api.Group("/sod")
	sodHandler := NewSODHandler(deps.SODUC, deps.TransferUC, deps.ReceiptUC)
	sodGroup.Post("/validate", sodHandler.Validate)
	sodGroup.Get("/settings", sodHandler.GetSettings)
	sodGroup.Put("/settings", sodHandler.UpdateSettings)
}
