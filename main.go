package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"brainbytes-arena/handlers"
	"brainbytes-arena/middleware"
	"brainbytes-arena/models"
	"brainbytes-arena/realtime"
	"brainbytes-arena/services"
	"brainbytes-arena/utils"
	"brainbytes-arena/workers"

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

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // code submissions are small
	})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Challenge{},
		&models.ChallengeMatch{},
		&models.UserProgress{},
		&models.MatchReward{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	rdb, err := utils.NewRedisClient()
	if err != nil {
		log.Fatal("failed to connect to Redis:", err)
	}

	archiveEnabled, err := utils.InitR2()
	if err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	realtimeSecret := os.Getenv("REALTIME_SECRET")
	if realtimeSecret == "" {
		log.Fatal("REALTIME_SECRET environment variable not set")
	}

	judgeHost := os.Getenv("JUDGE0_HOST")
	judgeKey := os.Getenv("JUDGE0_API_KEY")
	if judgeHost == "" || judgeKey == "" {
		log.Fatal("JUDGE0_HOST and JUDGE0_API_KEY environment variables not set")
	}
	caseTimeout := 30 * time.Second
	if v := os.Getenv("JUDGE0_CASE_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			caseTimeout = time.Duration(secs) * time.Second
		}
	}

	hub := realtime.NewHub()
	broker := realtime.NewRedisBroker(rdb)

	matchStore := services.NewGormMatchStore(db)
	challengeService := services.NewChallengeService(db)
	progressionService := services.NewProgressionService(db, rdb)
	matchService := services.NewMatchService(matchStore, broker)
	judgeClient := services.NewJudgeClient(judgeHost, judgeKey, caseTimeout)
	submissionService := services.NewSubmissionService(matchStore, challengeService, judgeClient, progressionService, broker)
	if archiveEnabled {
		submissionService.Archiver = services.R2Archiver{}
	}
	realtimeService := services.NewRealtimeService(matchStore, []byte(realtimeSecret))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relay := workers.NewEventRelayWorker(rdb, hub)
	go relay.Run(ctx)

	pendingTTL := 30 * time.Minute
	if v := os.Getenv("MATCH_PENDING_TTL_MINUTES"); v != "" {
		mins, err := strconv.Atoi(v)
		if err != nil {
			log.Fatal("invalid MATCH_PENDING_TTL_MINUTES:", err)
		}
		pendingTTL = time.Duration(mins) * time.Minute
	}
	matchService.StartExpiryScheduler(pendingTTL)

	handlers.SetupChallengeRoutes(app, challengeService)
	handlers.SetupMatchRoutes(app, matchService, submissionService)
	handlers.SetupRealtimeRoutes(app, realtimeService)
	handlers.SetupProgressionRoutes(app, progressionService)

	// Websocket delivery runs on its own listener; admission is by the
	// signed token from /realtime/auth, not by Gateway headers.
	wsAddr := os.Getenv("WS_ADDR")
	if wsAddr == "" {
		wsAddr = ":5201"
	}
	wsHandler := realtime.NewWSHandler(hub, []byte(realtimeSecret))
	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/realtime/ws", wsHandler.ServeWS)
	go func() {
		if err := http.ListenAndServe(wsAddr, wsMux); err != nil {
			log.Printf("Websocket server error: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":5200"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5200")
	log.Printf("✅ Websocket delivery on %s", wsAddr)
	log.Println("✅ Match event relay running")
	if archiveEnabled {
		log.Println("✅ Match archival to R2 enabled")
	}
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
