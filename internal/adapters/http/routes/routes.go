package routes

import (
	"dna-erp-po/internal/adapters/http/handlers"
	"dna-erp-po/internal/adapters/http/middleware"
	"dna-erp-po/internal/adapters/persistence/repositories"
	"dna-erp-po/internal/config"
	"dna-erp-po/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, dnaService *services.DNAService) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	poRepo := repositories.NewPORepository(db)
	approvalLogRepo := repositories.NewApprovalLogRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	poService := services.NewPOService(poRepo, userRepo, approvalLogRepo, dnaService)
	dashboardService := services.NewDashboardService(poRepo, dnaService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	poHandler := handlers.NewPOHandler(poService)
	dnaHandler := handlers.NewDNAHandler(dnaService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, poHandler, dnaHandler, dashboardHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	poHandler *handlers.POHandler,
	dnaHandler *handlers.DNAHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User listing (Authenticated users)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Get("/", authHandler.ListUsers)

	// Purchase order routes (Authenticated users)
	poRoutes := router.Group("/purchase-orders")
	poRoutes.Use(middleware.AuthMiddleware(cfg))
	setupPORoutes(poRoutes, poHandler)

	// DNA ruleset routes (Authenticated; writes restricted to Director+)
	dnaRoutes := router.Group("/dna")
	dnaRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDNARoutes(dnaRoutes, dnaHandler)

	// Dashboard routes (Authenticated users)
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Get("/overview", dashboardHandler.Overview)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate-limited against brute force)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupPORoutes configures purchase order routes
func setupPORoutes(router fiber.Router, handler *handlers.POHandler) {
	// CRUD
	router.Post("/", handler.Create)
	router.Get("/", handler.List)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
	router.Get("/:id/logs", handler.GetLogs)

	// Lifecycle actions
	router.Post("/:id/submit", handler.Submit)
	router.Post("/:id/approve", handler.Approve)
	router.Post("/:id/reject", handler.Reject)
	router.Post("/:id/revise", handler.Revise)
}

// setupDNARoutes configures ruleset routes
func setupDNARoutes(router fiber.Router, handler *handlers.DNAHandler) {
	router.Get("/", handler.Get)

	// Writes restricted to Director and CEO
	router.Put("/", middleware.DirectorOrAbove(), handler.Update)
	router.Post("/reload", middleware.DirectorOrAbove(), handler.Reload)
}
