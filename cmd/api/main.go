package main

import (
	"context"
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

	"alfredoptarigan/cv-optimizer/internal/config"
	"alfredoptarigan/cv-optimizer/internal/handlers"
	"alfredoptarigan/cv-optimizer/internal/repositories"
	"alfredoptarigan/cv-optimizer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initializes repositories
	docRepo := repositories.NewDocumentRepository(db)
	runRepo := repositories.NewRunRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	extractorService := services.NewExtractorService()
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.EmbeddingModel,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant-backed embedding cache
	vectorCache, err := services.NewVectorCacheService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := vectorCache.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant embedding cache initialized successfully")

	embeddingService := services.NewEmbeddingService(
		geminiService,
		vectorCache,
		cfg.Gemini.EmbeddingModel,
	)

	// Initialize pipeline stages
	parserService := services.NewParserService(geminiService)
	matcherService := services.NewMatcherService(embeddingService, geminiService)
	explainerService := services.NewExplainerService(geminiService)
	rewriterService := services.NewRewriterService(geminiService)
	validatorService := services.NewValidatorService()
	rescorerService := services.NewRescorerService(matcherService)
	reporterService := services.NewReporterService(geminiService, cfg.Worker.RetryMaxAttempts)

	pipelineService := services.NewPipelineService(
		runRepo,
		docRepo,
		extractorService,
		parserService,
		matcherService,
		explainerService,
		rewriterService,
		validatorService,
		rescorerService,
		reporterService,
	)
	log.Println("✅ Pipeline service initialized")

	// Initialize worker
	worker := services.NewWorker(
		runRepo,
		pipelineService,
		cfg.Worker.Concurrency,
	)
	log.Println("✅ Worker initialized successfully")

	// Start worker
	ctx := context.Background()
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Initialize Handlers
	uploadHandler := handlers.NewUploadHandler(
		docRepo,
		storageService,
		cfg.Storage.MaxFileSize,
	)
	stageHandler := handlers.NewStageHandler(
		extractorService,
		parserService,
		matcherService,
		explainerService,
		rewriterService,
		pipelineService,
	)
	optimizeHandler := handlers.NewOptimizeHandler(
		runRepo,
		docRepo,
		worker,
	)

	resultHandler := handlers.NewResultHandler(runRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CV Optimizer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Stage endpoints
	api.Post("/extract", stageHandler.HandleExtract)
	api.Post("/parse-cv", stageHandler.HandleParseCV)
	api.Post("/normalize-job", stageHandler.HandleNormalizeJob)
	api.Post("/match", stageHandler.HandleMatch)
	api.Post("/explain", stageHandler.HandleExplain)
	api.Post("/rewrite", stageHandler.HandleRewrite)
	api.Post("/compare", stageHandler.HandleCompare)

	// Full pipeline endpoints
	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/optimize", optimizeHandler.HandleOptimize)
	api.Get("/runs/:id", resultHandler.HandleGetRun)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CV Optimizer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/extract",
				"POST /api/v1/parse-cv",
				"POST /api/v1/normalize-job",
				"POST /api/v1/match",
				"POST /api/v1/explain",
				"POST /api/v1/rewrite",
				"POST /api/v1/compare",
				"POST /api/v1/upload",
				"POST /api/v1/optimize",
				"GET /api/v1/runs/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}

}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
