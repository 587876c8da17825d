package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drheal-be/internal/bootstrap"
	"drheal-be/internal/config"
	"drheal-be/internal/server"
	"drheal-be/internal/tracer"
	"drheal-be/pkg/database"
	"drheal-be/pkg/events"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// 2. Tracer
	shutdownTracer := tracer.InitTracer(cfg.App.ServiceName)
	defer func() { _ = shutdownTracer(context.Background()) }()

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Start Background Services
	if err := container.Start(ctx); err != nil {
		log.Fatalf("[FATAL] Failed to start consumers: %v", err)
	}

	if cfg.Knowledge.Autoload {
		go autoload(ctx, container)
	}

	// 6. Run Server
	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		cancel()
		if err := srv.Shutdown(); err != nil {
			log.Printf("[ERROR] Server shutdown: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Printf("[ERROR] Server stopped: %v", err)
	}
}

func autoload(ctx context.Context, c *bootstrap.Container) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	result, err := c.KnowledgeLoader.Load(loadCtx, false)
	if err != nil {
		log.Printf("[ERROR] Knowledge autoload failed: %v", err)
		return
	}
	if result.Skipped() {
		return
	}
	log.Printf("[INFO] Knowledge autoload complete: %v", result.Summary())

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Publish(ctx, events.NewKnowledgeIngested(result.Summary())); err != nil {
			log.Printf("[WARN] Failed to publish knowledge.ingested: %v", err)
		}
	}
}
