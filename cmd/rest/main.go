package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"candidate-router/internal/bootstrap"
	"candidate-router/internal/config"
	"candidate-router/internal/server"
	"candidate-router/internal/tracer"
	"candidate-router/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.Tracing)

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.Debug)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 5. Start Background Services
	bgCtx, stopBackground := context.WithCancel(context.Background())
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(bgCtx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	if container.NatsSubscriber != nil {
		if err := container.AuditHandler.Start(bgCtx, container.NatsSubscriber); err != nil {
			log.Printf("[WARN] Audit trail disabled: %v", err)
		}
	}

	// Always ticking: auto-advance can be switched on at runtime and
	// CheckAutoAdvance is a no-op while it is off.
	log.Printf("Background: Auto-advance scheduler running on %q (auto-advance=%t)", cfg.Rollout.Schedule, cfg.Rollout.AutoAdvance)
	container.Scheduler.Start()

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// 7. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	container.Scheduler.Stop(ctx)
	stopBackground()
	container.Close()
	if err := shutdownTracer(ctx); err != nil {
		log.Printf("Tracer shutdown error: %v", err)
	}
}
