package main

import (
	"log"
	"os"

	"github.com/bellapacxx/inzo-lotto/config"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("[FATAL] DATABASE_URL is required in .env or environment")
	}

	if _, err := config.ConnectDB(dsn); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	log.Println("✅ Database migration completed successfully")
}
