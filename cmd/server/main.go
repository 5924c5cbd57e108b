package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	grpcapi "bora-alugar-backend/internal/api/grpc"
	httpapi "bora-alugar-backend/internal/api/http"
	"bora-alugar-backend/internal/cache"
	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/geocoding"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/plan"
	"bora-alugar-backend/internal/push"
	"bora-alugar-backend/internal/realtime"
	"bora-alugar-backend/internal/repository/postgres"
	"bora-alugar-backend/internal/security"
	"bora-alugar-backend/internal/service"
	"bora-alugar-backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

const (
	shutdownTimeout = 15 * time.Second
	healthInterval  = 15 * time.Second
	visitorIdle     = 10 * time.Minute
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Bora Alugar backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetServerAddress(), "grpc", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Server.RunMigrations {
		if err := postgres.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	store := postgres.NewStore(db)

	// Cache, token denylist and realtime fan-out. Without Redis everything
	// stays in this process.
	var (
		itemCache cache.ItemCache
		denylist  cache.TokenDenylist
		broker    realtime.Broker
		rdb       *redis.Client
	)
	itemTTL := time.Duration(cfg.Redis.ItemTTL) * time.Second
	if cfg.Redis.Addr != "" {
		rdb, err = cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		itemCache = cache.NewRedisItemCache(rdb, itemTTL)
		denylist = cache.NewRedisDenylist(rdb)
		broker = realtime.NewRedisBroker(rdb, cfg.Redis.Channel)
		logger.Info("Redis connection established", "addr", cfg.Redis.Addr)
	} else {
		logger.Info("Redis not configured, using in-process cache and broker")
		mem := cache.NewMemory(itemTTL)
		itemCache, denylist = mem, mem
		broker = realtime.NewLocalBroker()
	}

	hub := realtime.NewHub(broker, cfg.Server.AllowedOrigins)
	go hub.Run(ctx)

	// Initialize Storage
	objects, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Error("Failed to initialize storage", "type", cfg.Storage.Type, "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("Object storage ready", "type", cfg.Storage.Type)

	// Outbound integrations
	pusher, err := push.New(ctx, cfg.Push)
	if err != nil {
		log.Fatalf("Failed to initialize push notifications: %v", err)
	}
	emailSvc := service.NewEmailService(cfg.Email)
	geocoder := geocoding.NewNominatim(cfg.Geocoding)
	gate := plan.NewGate(cfg.Plans)
	tokens := security.NewTokenManager(cfg.JWT)

	// Initialize Services
	notifier := service.NewNotifier(store.NotificationRepository, store.UserRepository, pusher, emailSvc, hub)
	authSvc := service.NewAuthService(store.UserRepository, tokens, denylist)
	userSvc := service.NewUserService(store.UserRepository, store.KYCRepository, geocoder, objects, hub)
	itemSvc := service.NewItemService(
		store.ItemRepository,
		store.UserRepository,
		store.RentalRepository,
		gate,
		cfg.KYC.PriceThresholdCents,
		itemCache,
		geocoder,
		hub,
	)
	rentalSvc := service.NewRentalService(store.RentalRepository, store.ItemRepository, store.UserRepository, notifier, hub)
	reviewSvc := service.NewReviewService(
		store.ReviewRepository,
		store.RentalRepository,
		store.ItemRepository,
		store.UserRepository,
		itemCache,
		notifier,
		hub,
	)
	messageSvc := service.NewMessageService(store.MessageRepository, store.UserRepository, notifier, hub)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	subscriptionSvc := service.NewSubscriptionService(store.UserRepository, gate, cfg.Plans.PeriodDays, notifier, hub)
	uploadSvc := service.NewUploadService(store.ItemRepository, objects, itemCache, hub, cfg.Storage)
	adminSvc := service.NewAdminService(store.KYCRepository, store.UserRepository, itemSvc, reviewSvc, notifier, hub)

	// Health checks shared by both listeners
	checks := map[string]httpapi.HealthCheck{"database": store.Ping}
	grpcChecks := map[string]grpcapi.Check{"database": store.Ping}
	if rdb != nil {
		redisPing := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		checks["redis"] = redisPing
		grpcChecks["redis"] = redisPing
	}

	// HTTP API
	handlers := httpapi.Handlers{
		Auth:     httpapi.NewAuthHandler(authSvc),
		User:     httpapi.NewUserHandler(userSvc, itemSvc, rentalSvc, reviewSvc, noteSvc, subscriptionSvc),
		Item:     httpapi.NewItemHandler(itemSvc, reviewSvc, uploadSvc),
		Rental:   httpapi.NewRentalHandler(rentalSvc, reviewSvc),
		Message:  httpapi.NewMessageHandler(messageSvc),
		Admin:    httpapi.NewAdminHandler(adminSvc),
		Catalog:  httpapi.NewCatalogHandler(subscriptionSvc, userSvc),
		Upload:   httpapi.NewUploadHandler(uploadSvc),
		Realtime: httpapi.NewRealtimeHandler(hub),
		Health:   httpapi.NewHealthHandler(checks),
	}
	if files, ok := objects.(storage.FileServer); ok {
		logger.Info("Serving uploads from local storage", "upload_dir", cfg.Storage.UploadDir)
		handlers.Storage = httpapi.NewStorageHandler(files, cfg.Storage.AllowedTypes, cfg.Storage.MaxFileSize)
	}

	limiter := httpapi.NewRateLimiter(cfg.RateLimit)
	go sweepVisitors(ctx, limiter)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
	})

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           c.Handler(httpapi.NewRouter(handlers, httpapi.NewAuthenticator(tokens, denylist), limiter)),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	// gRPC health and reflection
	grpcServer := grpcapi.NewServer(tokens, denylist, grpcChecks)
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	go grpcServer.Monitor(ctx, healthInterval)

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server failed", "error", err)
	}

	shutdown(httpServer, grpcServer)
	logger.Info("Server stopped")
}

func shutdown(httpServer *http.Server, grpcServer *grpcapi.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	grpcServer.Stop()
}

func sweepVisitors(ctx context.Context, limiter *httpapi.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(visitorIdle); n > 0 {
				logger.Debug("Dropped idle rate limit entries", "count", n)
			}
		}
	}
}
