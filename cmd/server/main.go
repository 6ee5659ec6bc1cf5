package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm/logger"

	"taskflow/backend/internal/auth"
	"taskflow/backend/internal/cache"
	"taskflow/backend/internal/config"
	"taskflow/backend/internal/database"
	"taskflow/backend/internal/handlers"
	"taskflow/backend/internal/monitoring"
	"taskflow/backend/internal/repositories"
	"taskflow/backend/internal/router"
	"taskflow/backend/internal/services"
	"taskflow/backend/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	pool, err := database.NewDatabasePool(&database.PoolConfig{
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        logger.Warn,
	})
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Migrate(); err != nil {
		log.Fatalf("migrating schema: %v", err)
	}

	redisCache := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	multiCache := cache.NewMultiLevelCache(redisCache)
	defer multiCache.Close()

	queue := worker.NewJobQueue(redisCache.Client())
	reminders := worker.NewWorker(worker.WorkerConfig{
		RedisClient:  redisCache.Client(),
		Concurrency:  cfg.Worker.Concurrency,
		PollInterval: cfg.Worker.PollInterval,
		Queues:       cfg.Worker.Queues,
	})
	reminders.RegisterHandler(worker.JobTypeDueReminder, func(ctx context.Context, job *worker.Job) error {
		log.Printf("task due: owner=%v task=%v title=%v",
			job.Payload["owner_id"], job.Payload["task_id"], job.Payload["title"])
		return nil
	})
	reminders.Start(cfg.Worker.Concurrency)
	defer reminders.Stop()

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BCryptCost)

	authService := services.NewAuthService(repositories.NewUserRepository(pool.DB), hasher, tokens)
	taskService := services.NewCachedTaskService(
		services.NewTaskService(repositories.NewTaskRepository(pool.DB), queue),
		multiCache,
	)

	collector := monitoring.NewCollector()
	health := monitoring.NewHealthChecker()
	health.Register("database", func(ctx context.Context) error { return pool.Health() })
	health.Register("redis", func(ctx context.Context) error { return redisCache.Health() })

	engine := router.New(router.Deps{
		Config:      cfg,
		Tokens:      tokens,
		AuthHandler: handlers.NewAuthHandler(authService),
		TaskHandler: handlers.NewTaskHandler(taskService),
		Collector:   collector,
		Health:      health,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}
