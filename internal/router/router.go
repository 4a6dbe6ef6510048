package router

import (
	"time"

	"github.com/jdirocco/forno/internal/config"
	"github.com/jdirocco/forno/internal/handler"
	"github.com/jdirocco/forno/internal/infra"
	"github.com/jdirocco/forno/internal/middleware"
	"github.com/jdirocco/forno/internal/repository"
	"github.com/jdirocco/forno/internal/service"
	"github.com/jdirocco/forno/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, notifyCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	shopRepo := repository.NewShopRepository(db)
	productRepo := repository.NewProductRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	returnRepo := repository.NewReturnRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	userSvc := service.NewUserService(userRepo, shopRepo, rdb)
	shopSvc := service.NewShopService(shopRepo, rdb)
	productSvc := service.NewProductService(productRepo, rdb)
	shipmentSvc := service.NewShipmentService(shipmentRepo, shopRepo, productRepo, userRepo, dispatcher, cfg.CompanyName, cfg.PDFStoragePath, cfg.PublicBaseURL)
	returnSvc := service.NewReturnService(returnRepo, shipmentRepo, productRepo)
	reportSvc := service.NewReportService(shipmentRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc, userSvc)
	usersH := handler.NewUsersHandler(userSvc)
	shopsH := handler.NewShopsHandler(shopSvc)
	productsH := handler.NewProductsHandler(productSvc)
	shipmentsH := handler.NewShipmentsHandler(shipmentSvc)
	returnsH := handler.NewReturnsHandler(returnSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, notifyCB))

	// Auth (public)
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	api := r.Group("/api", jwtMW)
	{
		api.GET("/auth/me", authH.Me)

		// Shipments — reads are open to every role (SHOP accounts are
		// scoped to their own shop inside the handler)
		api.GET("/shipments", shipmentsH.List)
		api.GET("/shipments/driver/today", middleware.RequireRole("DRIVER", "ADMIN"), shipmentsH.TodayForDriver)
		api.GET("/shipments/shop/:id", middleware.RequireRole("ADMIN", "ACCOUNTANT", "SHOP"), shipmentsH.ListByShop)
		api.GET("/shipments/shop/:id/last-shipment", middleware.RequireRole("ADMIN", "ACCOUNTANT"), shipmentsH.LastForShop)
		api.GET("/shipments/:id", shipmentsH.Get)
		api.GET("/shipments/:id/pdf", shipmentsH.DownloadPDF)

		api.POST("/shipments", middleware.RequireRole("ADMIN", "ACCOUNTANT"), shipmentsH.Create)
		api.PUT("/shipments/:id", middleware.RequireRole("ADMIN", "DRIVER"), shipmentsH.Update)
		api.POST("/shipments/:id/confirm", middleware.RequireRole("ADMIN", "ACCOUNTANT", "DRIVER"), shipmentsH.Confirm)
		api.PUT("/shipments/:id/status", middleware.RequireRole("ADMIN", "DRIVER"), shipmentsH.UpdateStatus)
		api.POST("/shipments/:id/returns", middleware.RequireRole("ADMIN", "DRIVER"), shipmentsH.AttachReturns)
		api.POST("/shipments/:id/send-whatsapp", middleware.RequireRole("ADMIN", "ACCOUNTANT", "DRIVER"), shipmentsH.SendWhatsApp)
		api.POST("/shipments/:id/send-email", middleware.RequireRole("ADMIN", "ACCOUNTANT"), shipmentsH.SendEmail)
		api.DELETE("/shipments/:id", middleware.RequireRole("ADMIN"), shipmentsH.Delete)

		// Returns
		api.GET("/returns", returnsH.List)
		api.GET("/returns/shop/:id", middleware.RequireRole("ADMIN", "ACCOUNTANT"), returnsH.ListByShop)
		api.GET("/returns/shipment/:id", returnsH.ListByShipment)
		api.GET("/returns/:id", returnsH.Get)
		api.POST("/returns", middleware.RequireRole("ADMIN", "ACCOUNTANT", "DRIVER"), returnsH.Create)
		api.PUT("/returns/:id", middleware.RequireRole("ADMIN", "ACCOUNTANT"), returnsH.Update)
		api.PUT("/returns/:id/status", middleware.RequireRole("ADMIN", "ACCOUNTANT"), returnsH.UpdateStatus)
		api.DELETE("/returns/:id", middleware.RequireRole("ADMIN"), returnsH.Delete)

		// Shops — everyone reads the registry, only ADMIN writes
		api.GET("/shops", shopsH.List)
		api.GET("/shops/:id", shopsH.Get)
		shops := api.Group("/shops", middleware.RequireRole("ADMIN"))
		{
			shops.POST("", shopsH.Create)
			shops.PUT("/:id", shopsH.Update)
			shops.DELETE("/:id", shopsH.Delete)
		}

		// Products
		api.GET("/products", productsH.List)
		api.GET("/products/:id", productsH.Get)
		products := api.Group("/products", middleware.RequireRole("ADMIN"))
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
		}

		// Users — /me and /drivers first so they are not captured by /:id
		api.GET("/users/me", usersH.Me)
		api.GET("/users/drivers", middleware.RequireRole("ADMIN", "ACCOUNTANT"), usersH.ListDrivers)
		users := api.Group("/users", middleware.RequireRole("ADMIN"))
		{
			users.GET("", usersH.List)
			users.GET("/:id", usersH.Get)
			users.POST("", usersH.Create)
			users.PUT("/:id", usersH.Update)
			users.PUT("/:id/toggle-active", usersH.ToggleActive)
			users.DELETE("/:id", usersH.Delete)
		}

		// Reports — SHOP accounts see only their own shop (scoped in handler)
		reports := api.Group("/reports", middleware.RequireRole("ADMIN", "ACCOUNTANT", "SHOP"))
		{
			reports.GET("/dashboard", reportsH.Dashboard)
			reports.GET("/shipments", reportsH.Shipments)
			reports.GET("/returns", reportsH.Returns)
			reports.GET("/export.csv", reportsH.ExportCSV)
			reports.GET("/export.xlsx", reportsH.ExportXLSX)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
