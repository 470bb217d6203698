package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/mediagrab-io/mediagrab-backend/database"
	"github.com/mediagrab-io/mediagrab-backend/internal/handlers"
	"github.com/mediagrab-io/mediagrab-backend/internal/jobs"
	"github.com/mediagrab-io/mediagrab-backend/internal/models"
	"github.com/mediagrab-io/mediagrab-backend/internal/routes"
	"github.com/mediagrab-io/mediagrab-backend/internal/services"
	"github.com/mediagrab-io/mediagrab-backend/internal/session"
	"github.com/mediagrab-io/mediagrab-backend/internal/storage"
	"github.com/mediagrab-io/mediagrab-backend/internal/utils"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	// The bot token is the one required secret
	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" {
		log.Fatal("❌ TELEGRAM_BOT_TOKEN must be set before starting")
	}

	// Downloads directory for transient files
	downloadsDir := os.Getenv("DOWNLOADS_DIR")
	if downloadsDir == "" {
		downloadsDir = "downloads"
	}
	downloadsDir, err := utils.EnsureDownloadsDir(downloadsDir)
	if err != nil {
		log.Fatal("Failed to create downloads directory:", err)
	}

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing)
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		// Run migrations
		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.CachedMedia{},
			&models.DownloadRecord{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Session store: in-process by default, Redis when configured
	ttl := sessionTTL()
	var sessions session.Store
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisStore, err := session.NewRedisStore(redisAddr, ttl)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		sessions = redisStore
		log.Printf("✅ Using Redis session store at %s (ttl %s)", redisAddr, ttl)
	} else {
		sessions = session.NewMemoryStore(ttl)
		log.Printf("✅ Using in-memory session store (ttl %s)", ttl)
	}

	// Initialize Telegram service
	telegramService, err := services.NewTelegramService()
	if err != nil {
		log.Fatal("Failed to initialize Telegram service:", err)
	}
	log.Println("✅ Telegram service initialized")

	// Set global instances
	storage.SetStore(store)
	services.SetTelegramService(telegramService)

	// Initialize all services
	downloader := services.NewMediaDownloader(downloadsDir)
	botService := services.NewBotService(sessions, store, downloader, telegramService)
	telegramHandler := handlers.NewTelegramHandler(botService)

	// Initialize and start cleanup job
	cleanupJob := jobs.NewCleanupJob(store, downloadsDir)
	cleanupJob.Start()

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "MediaGrab Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	// Health check endpoint for monitoring
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := 200

		// Check database if using it
		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = 503
			}
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"services": fiber.Map{
				"database": status == "healthy",
				"telegram": true,
				"mode":     transportMode(),
			},
		})
	})

	// Setup routes
	routes.SetupRoutes(app, store, telegramHandler)

	// Transport: webhook when a public URL is configured, long polling otherwise
	webhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	if webhookURL != "" {
		err := telegramService.RegisterWebhook(webhookURL, os.Getenv("TELEGRAM_WEBHOOK_SECRET"))
		if err != nil {
			log.Fatal("Failed to register webhook:", err)
		}
	} else {
		if err := telegramService.DeleteWebhook(); err != nil {
			log.Printf("⚠️  Failed to delete stale webhook: %v", err)
		}
		go telegramService.StartPolling(botService.HandleUpdate)
	}

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping cleanup job...")
		cleanupJob.Stop()
		if webhookURL == "" {
			log.Println("⏹️  Stopping polling...")
			telegramService.StopPolling()
		}
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 MediaGrab Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("📡 Transport: %s", transportMode())
	log.Printf("📁 Downloads dir: %s", downloadsDir)
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func sessionTTL() time.Duration {
	raw := os.Getenv("SESSION_TTL_SECONDS")
	if raw == "" {
		return session.DefaultTTL
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		log.Printf("⚠️  Invalid SESSION_TTL_SECONDS %q, using default", raw)
		return session.DefaultTTL
	}
	return time.Duration(seconds) * time.Second
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func transportMode() string {
	if os.Getenv("TELEGRAM_WEBHOOK_URL") != "" {
		return "webhook"
	}
	return "long polling"
}
