package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/api/handlers"
	"github.com/maheshrc27/postpilot/internal/api/middleware"
	"github.com/maheshrc27/postpilot/internal/jobs"
	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	postRepo, db, err := buildRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to set up storage: %v", err)
	}
	if db != nil {
		defer closeDB(db)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-API-Key",
	}))

	whatsappService := service.NewWhatsAppService(*cfg)
	mediaService := service.NewMediaService(*cfg)
	approvalService := service.NewApprovalService(postRepo, whatsappService, cfg.RetentionWindow)
	commandService := service.NewCommandService(approvalService, whatsappService)

	signatureMiddleware := middleware.NewSignatureMiddleware(*cfg)
	keyMiddleware := middleware.NewKeyMiddleware(*cfg)

	webhook := handlers.NewWebhookHandler(queue.NewClient(client))
	app.Post(cfg.WebhookPath, signatureMiddleware.ValidateSignature(), webhook.Incoming)

	health := handlers.NewHealthHandler(approvalService)
	app.Get("/healthz", health.Healthz)

	api := app.Group("/api")
	api.Use(keyMiddleware.RequireKey())

	post := handlers.NewPostHandler(approvalService, mediaService)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)

	// retention cleanup: once at startup, then hourly
	cleanupJob := jobs.NewCleanupJob(approvalService)
	cleanupJob.CleanupExpired()

	c := cron.New()
	c.AddFunc("@every 01h00m00s", cleanupJob.CleanupExpired)
	c.Start()

	// approval-timeout sweeper
	sweeper := jobs.NewTimeoutSweeper(approvalService, whatsappService, cfg.ApprovalTimeout, cfg.SweepInterval)
	sweeper.Start()

	queueW := queue.NewQueue(commandService)

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeProcessCommand, queueW.HandleProcessCommandTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, db, sweeper, c)
}

func buildRepository(cfg *config.Config) (repository.PostRepository, *sql.DB, error) {
	switch cfg.StorageBackend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, nil, fmt.Errorf("database is unreachable: %w", err)
		}
		return repository.NewPostgresRepository(db), db, nil
	case "file":
		repo, err := repository.NewFileRepository(cfg.QueueDir)
		if err != nil {
			return nil, nil, err
		}
		return repo, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q (want file or postgres)", cfg.StorageBackend)
	}
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, sweeper *jobs.TimeoutSweeper, c *cron.Cron) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	sweeper.Stop()
	c.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	if db != nil {
		closeDB(db)
	}
	log.Println("Server shutdown complete.")
}
