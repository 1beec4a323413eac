package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"collab-workspace-be/internal/bootstrap"
	"collab-workspace-be/internal/config"
	"collab-workspace-be/internal/server"
	"collab-workspace-be/internal/tracer"
	"collab-workspace-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Initialize Database
	var gormDB *gorm.DB
	if cfg.Database.Driver == config.DriverPostgres {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			log.Fatalf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	defer container.Close()

	// 4. Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing, container.Logger)
	defer shutdownTracer(context.Background())

	// 5. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.Relay.Start(ctx); err != nil {
		log.Fatalf("Unable to start realtime relay: %v", err)
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		container.Logger.Info("Server", "Shutting down", nil)
		if err := srv.Shutdown(); err != nil {
			container.Logger.Error("Server", "Shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		container.Logger.Error("Server", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
