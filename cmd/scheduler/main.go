package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/segyhp/financing-engine/internal/config"
	"github.com/segyhp/financing-engine/internal/repository"
	"github.com/segyhp/financing-engine/internal/service"
)

func main() {
	log.Println("Starting financing scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, cleanup := buildStore(cfg)
	defer cleanup()

	financingService := service.NewFinancingService(store, nil, service.SystemClock(), nil)
	if err := financingService.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load financings: %v", err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.SchedulerLocation()))

	// Daily sweep: flip pending/overdue against the calendar and write the
	// collection through.
	_, err = c.AddFunc(cfg.Scheduler.RefreshSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		overdue, err := financingService.RefreshStatuses(ctx)
		if err != nil {
			log.Printf("Status refresh failed: %v", err)
			return
		}
		log.Printf("Status refresh complete, %d installment(s) overdue", overdue)
	})
	if err != nil {
		log.Fatalf("Error scheduling status refresh job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func buildStore(cfg *config.Config) (repository.FinancingStore, func()) {
	if cfg.Store.Backend == config.StoreBackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return repository.NewRedisStore(client, cfg.Store.Namespace), func() { client.Close() }
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return repository.NewPostgresStore(db, cfg.Store.Namespace), func() { db.Close() }
}
