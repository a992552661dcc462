package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/erp-audit/api/handler"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Audit     *apiHandler.AuditHandler
	Inventory *apiHandler.InventoryHandler
	Documents *apiHandler.DocumentHandler
	Treasury  *apiHandler.TreasuryHandler
	Reports   *apiHandler.ReportHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", authMiddleware(handlers.Auth.Refresh))
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Activity log
	r.GET("/api/v1/audit", authMiddleware(handlers.Audit.Recent))
	r.POST("/api/v1/audit", authMiddleware(handlers.Audit.Log))

	// Back office
	r.GET("/api/v1/parties", authMiddleware(handlers.Inventory.ListParties))
	r.POST("/api/v1/parties", authMiddleware(handlers.Inventory.CreateParty))
	r.GET("/api/v1/products", authMiddleware(handlers.Inventory.ListProducts))
	r.POST("/api/v1/products", authMiddleware(handlers.Inventory.CreateProduct))
	r.GET("/api/v1/products/health", authMiddleware(handlers.Inventory.StockHealth))
	r.POST("/api/v1/products/{id}/stock", authMiddleware(handlers.Inventory.AdjustStock))

	r.GET("/api/v1/documents", authMiddleware(handlers.Documents.List))
	r.POST("/api/v1/documents", authMiddleware(handlers.Documents.Create))
	r.GET("/api/v1/documents/pending", authMiddleware(handlers.Documents.Pending))
	r.GET("/api/v1/documents/{id}", authMiddleware(handlers.Documents.Get))
	r.POST("/api/v1/documents/{id}/status", authMiddleware(handlers.Documents.ChangeStatus))
	r.POST("/api/v1/documents/{id}/convert", authMiddleware(handlers.Documents.Convert))

	r.POST("/api/v1/ledger", authMiddleware(handlers.Treasury.RecordEntry))
	r.GET("/api/v1/ledger/{account}/statement", authMiddleware(handlers.Treasury.Statement))

	r.GET("/api/v1/reports", authMiddleware(handlers.Reports.List))
	r.GET("/api/v1/reports/{name}", authMiddleware(handlers.Reports.Run))

	return r
}
