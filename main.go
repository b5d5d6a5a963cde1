package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"codecall-platform/cache"
	"codecall-platform/config"
	"codecall-platform/handlers"
	"codecall-platform/models"
	"codecall-platform/services"
	"codecall-platform/utils"
	"codecall-platform/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration:", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	// The judge join table carries created_at, which orders lead-judge
	// tie-breaking, so it must be registered before migration.
	if err := db.SetupJoinTable(&models.Competition{}, "Judges", &models.CompetitionJudge{}); err != nil {
		log.Fatal("failed to set up judge join table:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.CompletedTask{},
		&models.ApprovedSubmission{},
		&models.Competition{},
		&models.Submission{},
		&models.Training{},
		&models.TrainingSubmission{},
		&models.Notification{},
		&models.WalletMirror{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	appCache := cache.New(redisClient)

	r2Client, err := utils.NewR2Client(cfg.R2)
	if err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	githubClient := services.NewGitHubClient(cfg.GitHub)
	zkSyncClient := services.NewZkSyncClient(cfg.ZkSync)

	authService := services.NewAuthService(db, githubClient)
	competitionService := services.NewCompetitionService(db, appCache, githubClient, r2Client)
	trainingService := services.NewTrainingService(db, appCache, r2Client)
	xpService := services.NewXPService(db)
	userService := services.NewUserService(db, appCache, zkSyncClient)
	notificationService := services.NewNotificationService(db)

	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024, // competition images and starter code archives
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupCompetitionRoutes(app, db, competitionService, githubClient)
	handlers.SetupTrainingRoutes(app, db, trainingService, xpService, githubClient)
	handlers.SetupUserRoutes(app, db, userService, notificationService, githubClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	competitionService.StartStatusWatcher(ctx)

	walletWorker := workers.NewWalletSyncWorker(db, zkSyncClient)
	walletWorker.Start(ctx)

	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()
	log.Printf("✅ Server running on http://localhost:%d", cfg.Server.Port)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
