package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bora-alugar-backend/internal/cache"
	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/jobs"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/plan"
	"bora-alugar-backend/internal/push"
	"bora-alugar-backend/internal/realtime"
	"bora-alugar-backend/internal/repository/postgres"
	"bora-alugar-backend/internal/scheduler"
	"bora-alugar-backend/internal/service"
	"bora-alugar-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g. 'LapseSubscriptions', or 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Bora Alugar cronjob runner...", "log_level", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	// Jobs publish through Redis so connected apps on every API instance see
	// lapsed plans and new reminders. Without Redis nobody is listening.
	itemTTL := time.Duration(cfg.Redis.ItemTTL) * time.Second
	var (
		itemCache cache.ItemCache
		events    service.Publisher = service.NoopPublisher{}
	)
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		itemCache = cache.NewRedisItemCache(rdb, itemTTL)
		events = realtime.NewHub(realtime.NewRedisBroker(rdb, cfg.Redis.Channel), nil)
	} else {
		itemCache = cache.NewMemory(itemTTL)
	}

	objects, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	pusher, err := push.New(ctx, cfg.Push)
	if err != nil {
		log.Fatalf("Failed to initialize push notifications: %v", err)
	}
	emailSvc := service.NewEmailService(cfg.Email)

	// Initialize Services
	notifier := service.NewNotifier(store.NotificationRepository, store.UserRepository, pusher, emailSvc, events)
	reviewSvc := service.NewReviewService(
		store.ReviewRepository,
		store.RentalRepository,
		store.ItemRepository,
		store.UserRepository,
		itemCache,
		notifier,
		events,
	)
	subscriptionSvc := service.NewSubscriptionService(store.UserRepository, plan.NewGate(cfg.Plans), cfg.Plans.PeriodDays, notifier, events)
	uploadSvc := service.NewUploadService(store.ItemRepository, objects, itemCache, events, cfg.Storage)

	jobRunner := jobs.NewJobRunner(
		&jobs.Repositories{
			Users:   store.UserRepository,
			Rentals: store.RentalRepository,
			Reviews: store.ReviewRepository,
		},
		&jobs.Services{
			Review:       reviewSvc,
			Subscription: subscriptionSvc,
			Upload:       uploadSvc,
		},
		notifier,
		cfg.Scheduler,
	)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := runJobOnce(jobRunner, *runOnce); err != nil {
			logger.Error("Job failed", "job", *runOnce, "error", err)
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner, scheduler.Specs(jobRunner))
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs one job by name, or every job for "all"
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) error {
	if jobName == "all" {
		return jobRunner.RunAll()
	}
	for _, name := range jobs.Names() {
		if name == jobName {
			return jobRunner.Run(name)
		}
	}

	fmt.Printf("Unknown job %q. Available jobs:\n", jobName)
	for _, name := range jobs.Names() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Printf("  - all\n")
	os.Exit(1)
	return nil
}
