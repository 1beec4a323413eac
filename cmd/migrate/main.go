package main

import (
	"log"
	"os"

	"collab-workspace-be/internal/model"
	"collab-workspace-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	// 2. Connect
	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Step 1: Extensions")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		color.Yellow("Warn: pgcrypto extension: %v. Continuing...", err)
	}

	// 3. AutoMigrate
	color.Cyan("Step 2: AutoMigrate")
	models := []interface{}{
		&model.Chat{},
		&model.Message{},
		&model.WorkspaceMember{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	// 4. Indexes AutoMigrate cannot express
	color.Cyan("Step 3: JSONB and partial unique indexes")
	for _, sql := range model.PostgresIndexes {
		if err := db.Exec(sql).Error; err != nil {
			color.Red("Error: %v", err)
			os.Exit(1)
		}
	}

	color.Green("Migration completed successfully.")
}
