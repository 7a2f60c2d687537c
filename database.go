package main

import (
	"fmt"
	"log"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	godotenv.Load()

	var dialector gorm.Dialector

	switch os.Getenv("DB_DRIVER") {
	case "sqlite":
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "secret-task-game.db"
		}
		dialector = sqlite.Open(path)
	default:
		host := os.Getenv("DB_HOST")
		user := os.Getenv("DB_USER")
		pass := os.Getenv("DB_PASS")
		name := os.Getenv("DB_NAME")
		port := os.Getenv("DB_PORT")

		if host == "" || user == "" || pass == "" || name == "" || port == "" {
			log.Fatalf("DATABASE ENV MISSING — check .env file")
		}

		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			host, user, pass, name, port,
		)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ Failed to connect: %v", err)
	}

	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	fmt.Println("✅ Database connected and migrated successfully")
}

// Migrate runs AutoMigrate for every model. Split out so tests can run it
// against their own in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Event{},
		&Invitation{},
		&Task{},
		&TaskAssignment{},
		&Submission{},
		&SubmissionFile{},
	)
}
