package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ Warning: .env file not found, using system environment variables")
	}
}

func main() {

	// Load .env variables
	LoadEnv()

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("❌ JWT_SECRET is missing in .env")
	}

	// Connect DB
	InitDB()

	// Blob store for submission files
	InitFileStore(os.Getenv("UPLOAD_DIR"))

	// Start Gin
	r := gin.Default()

	// CORS
	r.Use(CORSMiddleware())

	// Routes
	SetupRoutes(r)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	log.Println("🚀 Server running on " + addr)
	r.Run(addr)
}
