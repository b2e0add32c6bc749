package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/financing-engine/internal/config"
	"github.com/segyhp/financing-engine/internal/handler"
	"github.com/segyhp/financing-engine/internal/repository"
	"github.com/segyhp/financing-engine/internal/service"
	"github.com/segyhp/financing-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var db *sqlx.DB
	if cfg.Store.Backend == config.StoreBackendPostgres || cfg.Ledger.Enabled {
		db, err = sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
	}

	var redisClient *redis.Client
	if cfg.Store.Backend == config.StoreBackendRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	store := buildStore(cfg, db, redisClient)

	var ledger repository.ExpenseLedger
	if cfg.Ledger.Enabled {
		ledger = repository.NewPostgresExpenseLedger(db)
	}

	financingService := service.NewFinancingService(store, ledger, service.SystemClock(), nil)
	if err := financingService.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load financings: %v", err)
	}

	financingHandler := handler.NewFinancingHandler(financingService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	financingHandler.RegisterRoutes(api)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func buildStore(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client) repository.FinancingStore {
	if cfg.Store.Backend == config.StoreBackendRedis {
		return repository.NewRedisStore(redisClient, cfg.Store.Namespace)
	}
	return repository.NewPostgresStore(db, cfg.Store.Namespace)
}
