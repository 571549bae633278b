package main

import (
	"context"
	"log"
	"os"

	"github.com/MpenduloXulu/TTI-Website/db"
	"github.com/MpenduloXulu/TTI-Website/internal/auth"
	"github.com/MpenduloXulu/TTI-Website/internal/handlers"
	"github.com/MpenduloXulu/TTI-Website/internal/router"
	"github.com/MpenduloXulu/TTI-Website/internal/scheduler"
	"github.com/MpenduloXulu/TTI-Website/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	var err error

	if err = godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err = auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err = db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	blob, err := storage.NewBlobStoreFromEnv(context.Background())

	if err != nil {
		log.Printf("Document storage disabled: %v", err)
	} else {
		handlers.SetBlobStore(blob)
	}

	sweeper := scheduler.NewSweeper(blob)
	sweeper.Start()
	defer sweeper.Stop()

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err = r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
