package main

import (
	"database/sql"
	"log"
	"os"

	"pulse-markets/internal/config"

	_ "github.com/lib/pq"
)

// Applies a raw SQL migration file given as the only argument.
// Schema changes that gorm's AutoMigrate cannot express (index rebuilds,
// column drops) go through here.
func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <migration.sql>", os.Args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	migrationSQL, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read migration file: %v", err)
	}

	log.Printf("Executing migration %s...", os.Args[1])
	if _, err := db.Exec(string(migrationSQL)); err != nil {
		log.Fatalf("Failed to execute migration: %v", err)
	}

	log.Println("Migration completed successfully")
}
