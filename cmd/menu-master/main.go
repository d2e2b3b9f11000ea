package main

import (
	"context"
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

	"github.com/JimmyUA/menu-master/internal/auth"
	"github.com/JimmyUA/menu-master/internal/config"
	"github.com/JimmyUA/menu-master/internal/database"
	"github.com/JimmyUA/menu-master/internal/docstore"
	"github.com/JimmyUA/menu-master/internal/llm"
	"github.com/JimmyUA/menu-master/internal/menu"
	"github.com/JimmyUA/menu-master/internal/metrics"
	"github.com/JimmyUA/menu-master/internal/onboarding"
	"github.com/JimmyUA/menu-master/internal/profile"
	"github.com/JimmyUA/menu-master/internal/server"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found - using environment variables")
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	if closer, ok := geminiClient.(llm.Closer); ok {
		defer closer.Close()
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	store := docstore.NewSQLiteStore(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	sessionStore := onboarding.NewSessionStore(store, time.Duration(cfg.SessionTTLHours)*time.Hour)
	dialogue := onboarding.NewDialogueEngine(geminiClient)
	extractor := onboarding.NewExtractor(geminiClient, metricsStore)
	profiles := profile.NewRepository(store)
	conversations := onboarding.NewHandler(sessionStore, dialogue, extractor, profiles)

	authService := auth.NewService(store, cfg.JWTSecretKey, cfg.GoogleClientID)
	menuGenerator := menu.NewGenerator(geminiClient, profiles, store, metricsStore)

	app := fiber.New(fiber.Config{
		AppName: "Menu Master v1.0.0",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	server.SetupRoutes(app, conversations, authService, profiles, menuGenerator)

	go func() {
		log.Printf("Menu Master listening on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
