package main

import (
	"flag"
	"log"
	"os"

	"github.com/mealsnap/backend/config"
	"github.com/mealsnap/backend/internal/database"
	"github.com/mealsnap/backend/internal/store"
)

func main() {
	migrationsDir := flag.String("dir", "migrations", "directory of SQL migration files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.NewGorm(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := store.NewGormStore(db).Migrate(); err != nil {
		log.Fatalf("failed to auto-migrate schema: %v", err)
	}
	log.Println("Schema auto-migration complete")

	// Hand-written SQL migrations (indexes, backfills) run after the schema
	// exists.
	if _, err := os.Stat(*migrationsDir); err == nil {
		if err := database.RunMigrations(db, *migrationsDir); err != nil {
			log.Fatalf("failed to run SQL migrations: %v", err)
		}
		log.Println("SQL migrations complete")
	}
}
