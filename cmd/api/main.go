package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/stadtnetz/stops_core/internal/api"
	"github.com/stadtnetz/stops_core/internal/cache"
	"github.com/stadtnetz/stops_core/internal/db"
	"github.com/stadtnetz/stops_core/internal/middleware"
	"github.com/stadtnetz/stops_core/internal/stops"
)

func main() {
	log.Println("Starting stops API server...")

	// Local development overrides; in deployment everything comes from the
	// real environment
	_ = godotenv.Load()

	// Fail fast on incomplete store configuration, before any query runs
	if err := db.LoadConfigFromEnv().Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize database connection
	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("✓ Database connection established")

	// Initialize Redis connection; rate limiting degrades without it
	if _, err := cache.GetClient(); err != nil {
		log.Printf("Warning: Redis unavailable, rate limiting disabled: %v", err)
	} else {
		defer cache.Close()
		log.Println("✓ Redis connection established")
	}

	svc := stops.NewService(stops.NewPGStore(pool))
	handler := api.NewHandler(svc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Stops API",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimits))

	// Routes
	app.Get("/health", api.Health)
	app.Get("/stops", handler.Stops)
	app.Get("/stops/radius", handler.StopsRadius)
	app.Get("/steige", handler.Steige)
	app.Get("/lines", handler.Lines)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error": "endpoint not found",
		})
	})

	// Get port from environment
	port := getEnv("API_PORT", "8080")
	addr := fmt.Sprintf(":%s", port)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	// Start server
	log.Printf("🚀 Server listening on http://localhost%s", addr)
	log.Printf("📍 Stops: http://localhost%s/stops?lineId=ID", addr)
	log.Printf("❤️  Health check: http://localhost%s/health", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// customErrorHandler handles errors returned from handlers
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
