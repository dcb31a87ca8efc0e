package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"arc-mindshare-system/handlers"
	"arc-mindshare-system/middleware"
	"arc-mindshare-system/models"
	"arc-mindshare-system/services"
	"arc-mindshare-system/utils"
	"arc-mindshare-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Project{},
		&models.Arena{},
		&models.ArenaAccessRequest{},
		&models.ArenaCreator{},
		&models.PointAdjustment{},
		&models.FollowVerification{},
		&models.Mention{},
		&models.CreatorProfile{},
		&models.TrackedProfile{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// --- Social Graph Provider client (last-resort avatar source) ---
	socialGraphURL := os.Getenv("SOCIAL_GRAPH_URL")
	socialGraphToken := os.Getenv("SOCIAL_GRAPH_TOKEN")
	var socialGraph *services.SocialGraphClient
	if socialGraphURL != "" {
		socialGraph = services.NewSocialGraphClient(socialGraphURL, socialGraphToken)
	} else {
		log.Println("⚠️  SOCIAL_GRAPH_URL not set — live avatar resolution disabled")
	}

	leaderboardService := services.NewLeaderboardService(db, socialGraph)
	arenaService := services.NewArenaService(db)
	backfillService := services.NewBackfillService(db)

	// --- Profile sync (secondary registry mirror) ---
	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("ARC_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("ARC_SERVICE_TOKEN environment variable not set")
	}

	profileSyncWorker := workers.NewProfileSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)
	snapshotArchiver := workers.NewSnapshotArchiver(db, leaderboardService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profileSyncWorker.Start(ctx)
	go snapshotArchiver.Poll(ctx, 1*time.Minute)

	arenaService.StartArenaScheduler()

	handlers.SetupLeaderboardRoutes(app, leaderboardService)
	handlers.SetupArenaRoutes(app, arenaService, backfillService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Profile Sync Worker running")
	log.Println("✅ Snapshot Archiver running (every 1m)")
	log.Println("✅ Arena scheduler running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
