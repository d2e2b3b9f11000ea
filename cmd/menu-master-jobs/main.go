package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/JimmyUA/menu-master/internal/config"
	"github.com/JimmyUA/menu-master/internal/database"
	"github.com/JimmyUA/menu-master/internal/docstore"
	"github.com/JimmyUA/menu-master/internal/llm"
	"github.com/JimmyUA/menu-master/internal/menu"
	"github.com/JimmyUA/menu-master/internal/metrics"
	"github.com/JimmyUA/menu-master/internal/onboarding"
	"github.com/JimmyUA/menu-master/internal/profile"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found - using environment variables")
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	store := docstore.NewSQLiteStore(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate-menus":
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		if closer, ok := geminiClient.(llm.Closer); ok {
			defer closer.Close()
		}

		profiles := profile.NewRepository(store)
		generator := menu.NewGenerator(geminiClient, profiles, store, metricsStore)

		success, failed, err := generator.ProcessAllUsers(ctx)
		if err != nil {
			log.Fatalf("Menu generation job failed: %v", err)
		}
		fmt.Printf("Generated menus for %d users (%d errors).\n", success, failed)

	case "purge-sessions":
		purgeCmd := flag.NewFlagSet("purge-sessions", flag.ExitOnError)
		limit := purgeCmd.Int("limit", 100, "Maximum number of sessions to remove")
		purgeCmd.Parse(os.Args[2:])

		sessionStore := onboarding.NewSessionStore(store, time.Duration(cfg.SessionTTLHours)*time.Hour)
		removed, err := sessionStore.PurgeExpired(ctx, *limit)
		if err != nil {
			log.Fatalf("Session purge failed: %v", err)
		}
		fmt.Printf("Successfully removed %d expired sessions.\n", removed)

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metricsStore.Cleanup(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: menu-master-jobs <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate-menus     Generate next week's menus for all users")
	fmt.Println("  purge-sessions     Remove expired onboarding sessions")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
