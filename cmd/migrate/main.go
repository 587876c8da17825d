package main

import (
	"context"
	"log"

	"drheal-be/internal/config"
	"drheal-be/internal/model"
	"drheal-be/pkg/database"
	"drheal-be/pkg/vectorstore"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up Extensions...")
	for _, sql := range []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	} {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	log.Println("Step 2: Running AutoMigrate...")
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Creating knowledge embeddings table...")
	index := vectorstore.NewPgvectorIndex(db, cfg.Ai.EmbeddingDimension)
	if err := index.Migrate(context.Background()); err != nil {
		log.Fatalf("Error: pgvector migration failed: %v", err)
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
