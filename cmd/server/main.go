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
	config "github.com/postwavehq/postwave/configs"
	"github.com/postwavehq/postwave/internal/api/handlers"
	"github.com/postwavehq/postwave/internal/api/middleware"
	job "github.com/postwavehq/postwave/internal/jobs"
	"github.com/postwavehq/postwave/internal/oauth"
	"github.com/postwavehq/postwave/internal/platforms"
	"github.com/postwavehq/postwave/internal/queue"
	"github.com/postwavehq/postwave/internal/repository"
	"github.com/postwavehq/postwave/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	asynqClient := asynq.NewClient(redisConn)
	defer asynqClient.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	linkedAccountRepo := repository.NewLinkedAccountRepository(db)
	publishedPostRepo := repository.NewPublishedPostRepository(db)
	contentRepo := repository.NewContentRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)

	stateStore := oauth.NewStateStore(rdb)
	queueClient := queue.NewClient(asynqClient)

	userService := service.NewUserService(userRepo)
	quotaService := service.NewQuotaService(subscriptionRepo, linkedAccountRepo, contentRepo)
	connectionService := service.NewConnectionService(*cfg, stateStore, linkedAccountRepo, quotaService)
	generator := service.NewHTTPGenerator(cfg.GeneratorURL)
	contentService := service.NewContentService(contentRepo, generator, quotaService)
	mediaService := service.NewMediaService(*cfg, mediaAssetRepo)
	publishService := service.NewPublishService(*cfg, publishedPostRepo, linkedAccountRepo, contentRepo, platforms.NewResolver(), queueClient)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	connection := handlers.NewConnectionHandler(connectionService, *cfg)
	app.Get("/auth/:platform/callback", connection.CallbackHandler)
	app.Get("/auth/:platform", authMiddleware.AuthMiddleware(), connection.AddSocialAccount)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	// social accounts api routes
	api.Get("/accounts", connection.ListSocialAccounts)
	api.Post("/accounts/remove", connection.DeleteSocialAccount)

	content := handlers.NewContentHandler(contentService)
	api.Post("/content/generate", content.GenerateContent)
	api.Post("/content/create", content.CreateContent)
	api.Get("/content", content.ListContent)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.UploadMedia)
	api.Get("/media", media.ListMedia)

	post := handlers.NewPostHandler(publishService)
	api.Post("/posts/publish", post.PublishNow)
	api.Post("/posts/schedule", post.SchedulePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)
	api.Get("/posts/metrics", post.PostMetrics)
	api.Get("/analytics", post.Analytics)

	quota := handlers.NewQuotaHandler(quotaService)
	api.Get("/usage", quota.GetUsage)

	// cron jobs
	sweepJob := job.NewScheduledSweepJob(publishedPostRepo, queueClient)

	// queue
	queueW := queue.NewQueue(publishService)

	c := cron.New()
	c.AddFunc("@every 00h05m00s", sweepJob.Sweep)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
