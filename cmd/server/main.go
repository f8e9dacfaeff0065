package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"rent-backend/internal/auth"
	"rent-backend/internal/cache"
	"rent-backend/internal/config"
	"rent-backend/internal/database"
	"rent-backend/internal/db"
	"rent-backend/internal/gateway"
	"rent-backend/internal/handlers"
	"rent-backend/internal/health"
	h "rent-backend/internal/http"
	"rent-backend/internal/middleware"
	"rent-backend/internal/monitoring"
	"rent-backend/internal/repositories"
	"rent-backend/internal/services"
	"rent-backend/migrations"
)

func main() {
	// Parse command-line flags
	port := flag.Int("port", 0, "Server port (overrides config)")
	monitorPort := flag.Int("monitor-port", 9090, "Internal monitoring dashboard port")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (status polling will hit the database)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	// Uses embedded migrations for standalone binary operation
	log.Println("Running database migrations...")
	migrator := database.NewMigratorWithFS(pool, migrations.FS, ".")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	leaseRepo := repositories.NewLeaseRepository(pool)
	missionRepo := repositories.NewMissionRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)

	// Start monitoring dashboard server in background
	go monitoring.NewMonitoringServer(pool, paymentRepo, *monitorPort).Start()

	// Initialize gateway client
	gatewayClient, err := gateway.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize payment gateway: %v", err)
	}
	log.Printf("[Gateway] Using provider: %s", cfg.Gateway.Provider)

	// Initialize services
	settlementService := services.NewSettlementService(paymentRepo, leaseRepo, missionRepo, cfg)
	paymentService := services.NewPaymentService(paymentRepo, leaseRepo, gatewayClient, cfg)
	webhookVerifier := services.NewWebhookVerifier(paymentRepo, settlementService, gatewayClient)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Initialize handlers
	paymentHandler := handlers.NewPaymentHandler(paymentService, webhookVerifier, paymentRepo)
	webhookHandler := handlers.NewWebhookHandler(webhookVerifier)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	// Build router and wrap with panic recovery and metrics middleware
	router := h.NewRouter(paymentHandler, webhookHandler, healthHandler, authMiddleware)
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
