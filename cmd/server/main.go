package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"dna-erp-po/internal/adapters/http/middleware"
	"dna-erp-po/internal/adapters/http/routes"
	"dna-erp-po/internal/adapters/persistence/models"
	"dna-erp-po/internal/adapters/persistence/repositories"
	"dna-erp-po/internal/config"
	"dna-erp-po/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "dna-erp-po/docs" // Swagger docs
)

// @title DNA ERP Purchase Order API
// @version 1.0
// @description Purchase order approval backend driven by a configurable company ruleset
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@example.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed demo users and sample purchase orders
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed demo data: %v", err)
	}

	// Load the approval ruleset (falls back to defaults when the file is missing)
	dnaService, err := services.NewDNAService(cfg.DNA.RulesetPath)
	if err != nil {
		log.Fatalf("❌ Failed to load approval ruleset: %v", err)
	}
	log.Printf("✅ Approval ruleset loaded from %s", dnaService.Path())

	// Start SLA scanner (hourly check for overdue pending orders)
	slaService := services.NewSLAService(repositories.NewPORepository(db), dnaService)
	slaService.Start()
	defer slaService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "DNA ERP Purchase Order API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, dnaService)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
