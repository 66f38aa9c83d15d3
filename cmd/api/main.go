package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lactacare/internal/alerts"
	"lactacare/internal/archive"
	"lactacare/internal/auth"
	"lactacare/internal/cache"
	"lactacare/internal/config"
	"lactacare/internal/domain"
	"lactacare/internal/events"
	"lactacare/internal/handlers"
	"lactacare/internal/metrics"
	"lactacare/internal/monitor"
	"lactacare/internal/notify"
	"lactacare/internal/registry"
	"lactacare/internal/rooms"
	"lactacare/internal/scheduler"
	"lactacare/pkg/logger"
	"lactacare/pkg/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "lactacare/docs" // Import docs for Swagger
)

// @title           Lactacare API
// @version         1.0
// @description     API de custodia de leche materna, reservas de salas de lactancia, alertas y monitoreo de temperatura
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	appLogger := logger.New(cfg.Environment, "lactacare-api")
	defer appLogger.Sync()

	appLogger.Info("🚀 Starting Lactacare API",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
		zap.String("store", cfg.StoreDriver),
	)
	appLogger.Info("⏱️ Custody rules",
		zap.Duration("container_tick", cfg.ContainerTickInterval),
		zap.Duration("pickup_window", cfg.PickupWindow),
		zap.Duration("near_expiry_window", cfg.NearExpiryWindow),
	)

	ctx := context.Background()
	appMetrics := metrics.New()

	// Storage
	appLogger.Info("🔧 Initializing store...")
	store, err := openStores(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer store.Close()
	appLogger.Info("✅ Store initialized successfully")

	catalog, err := rooms.FromConfig(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load room catalog", zap.Error(err))
	}

	// Alerts
	bus := events.NewBus(appLogger)
	dispatcher := alerts.NewDispatcher(appLogger,
		alerts.WithStore(store.alerts),
		alerts.WithMetrics(appMetrics),
	)
	if err := dispatcher.Restore(ctx); err != nil {
		appLogger.Fatal("Failed to restore alerts", zap.Error(err))
	}
	bus.Subscribe("alerts", dispatcher.Handle)

	if cfg.UseKafka {
		appLogger.Info("📡 Kafka Configuration",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic_containers", cfg.KafkaTopicContainers),
			zap.String("topic_reservations", cfg.KafkaTopicReservations),
			zap.String("topic_monitoring", cfg.KafkaTopicMonitoring),
			zap.String("acks", cfg.KafkaAcks),
		)
		publisher, err := events.NewKafkaEventPublisher(cfg, appLogger)
		if err != nil {
			appLogger.Warn("Failed to initialize Kafka publisher, events stay in-process", zap.Error(err))
		} else {
			defer publisher.Close()
			bus.Subscribe("kafka", events.Forward(publisher))
		}
	} else {
		appLogger.Info("📡 Kafka Configuration",
			zap.Bool("enabled", false),
			zap.String("note", "Kafka is disabled (USE_KAFKA=false)"),
		)
	}

	// Cache
	var appCache cache.Cache
	if cfg.UseCache {
		appLogger.Info("💾 Cache Configuration",
			zap.String("redis_host", cfg.RedisHost),
			zap.String("redis_port", cfg.RedisPort),
			zap.Int("cache_ttl", cfg.CacheTTL),
		)
		appCache = cache.NewCache(cfg, appLogger)
	} else {
		appLogger.Info("💾 Cache Configuration",
			zap.Bool("enabled", false),
			zap.String("note", "Using in-memory cache (USE_CACHE=false)"),
		)
		appCache = cache.NewInMemoryCache(appLogger)
	}
	if rc, ok := appCache.(*cache.RedisCache); ok {
		defer rc.Close()
	}
	alertCache := cache.NewAlertListCache(appCache, dispatcher, cache.TTL(cfg.CacheTTL), appLogger)
	dispatcher.AddListener(alertCache.Invalidate)

	// Push notifications
	if cfg.FCMCredentialsFile != "" {
		client, err := notify.NewFCMClient(ctx, cfg.FCMCredentialsFile)
		if err != nil {
			appLogger.Warn("Failed to initialize FCM, push notifications disabled", zap.Error(err))
		} else {
			pusher := notify.NewPushNotifier(client, cfg.FCMTopic, appLogger)
			defer pusher.Close()
			dispatcher.AddListener(pusher.OnChange)
			appLogger.Info("✅ Push notifications enabled", zap.String("topic", cfg.FCMTopic))
		}
	}

	// Registries and monitor
	opts := registry.Options{
		Rules: domain.Rules{
			NearExpiryWindow: cfg.NearExpiryWindow,
			PickupWindow:     cfg.PickupWindow,
		},
		MaxRetries: cfg.MaxVersionRetries,
		Alerts:     dispatcher,
		Metrics:    appMetrics,
	}
	containers := registry.NewContainerRegistry(store.containers, bus, appLogger, opts)
	reservations := registry.NewReservationRegistry(store.reservations, catalog, bus, appLogger, opts)
	attention := registry.NewAttentionService(containers, reservations, appLogger)
	thresholds := domain.Thresholds{
		MaxTemperatureC: cfg.TempMaxC,
		MinTemperatureC: cfg.TempMinC,
		MaxHumidityPct:  cfg.HumidityMaxPct,
		MinHumidityPct:  cfg.HumidityMinPct,
	}
	temperature := monitor.NewTemperatureMonitor(store.readings, bus, thresholds, nil, appMetrics, appLogger)

	// Scheduled jobs
	sched := scheduler.New(nil, appLogger)
	if err := sched.Every("container-tick", cfg.ContainerTickInterval, func(ctx context.Context, now time.Time) {
		containers.Tick(ctx, now)
	}); err != nil {
		appLogger.Fatal("Failed to schedule container tick", zap.Error(err))
	}
	if cfg.SimulateSensor {
		source := monitor.NewSimulatedSource(cfg.SensorUnits, time.Now().UnixNano())
		if err := sched.Every("temperature-tick", cfg.TemperatureTickInterval, func(ctx context.Context, now time.Time) {
			temperature.Tick(ctx, source, now)
		}); err != nil {
			appLogger.Fatal("Failed to schedule temperature tick", zap.Error(err))
		}
		appLogger.Info("🌡️ Simulated sensors enabled", zap.Strings("units", cfg.SensorUnits))
	}
	if cfg.ArchiveS3Bucket != "" {
		s3Client, err := archive.NewS3Client(ctx, archive.S3Config{
			Bucket:   cfg.ArchiveS3Bucket,
			Region:   cfg.ArchiveS3Region,
			Endpoint: cfg.ArchiveS3Endpoint,
		})
		if err != nil {
			appLogger.Warn("Failed to initialize S3 client, archive disabled", zap.Error(err))
		} else {
			archiver := archive.NewArchiver(s3Client, cfg.ArchiveS3Bucket, store.containers, store.reservations, store.alerts, appLogger)
			if err := sched.Cron("archive", cfg.ArchiveCron, func(ctx context.Context, now time.Time) {
				if _, err := archiver.Run(ctx, now); err != nil {
					appLogger.Error("Archive run failed", zap.Error(err))
				}
			}); err != nil {
				appLogger.Fatal("Failed to schedule archive", zap.Error(err))
			}
		}
	}
	sched.Start()

	// HTTP
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// CORS middleware (must be first to handle preflight requests)
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RecoveryHandler(appLogger))
	router.Use(logger.GinMiddleware(appLogger))
	router.Use(middleware.RequestIDMiddleware(appLogger))
	router.Use(middleware.IdempotencyMiddleware(middleware.NewCacheRequestIDStore(appCache), appLogger, 5*time.Minute))
	router.Use(middleware.ErrorHandler(appLogger))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(appMetrics.Handler()))

	appLogger.Info("🔧 Initializing JWT manager...")
	tokens := auth.NewTokenManager(cfg.JWTSecret, appLogger)
	users, err := auth.NewUserStore(cfg.AuthUsers)
	if err != nil {
		appLogger.Fatal("Failed to initialize users", zap.Error(err))
	}
	authHandler := auth.NewAuthHandler(users, tokens, appLogger)
	appLogger.Info("✅ JWT manager initialized successfully", zap.Int("users", len(cfg.AuthUsers)))

	deps := map[string]handlers.Pinger{}
	if store.db != nil {
		deps["database"] = store.db
	}
	if rc, ok := appCache.(*cache.RedisCache); ok {
		deps["redis"] = rc
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.Health("lactacare-api", deps))
		v1.POST("/auth/login", authHandler.Login)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(tokens, appLogger))
		handlers.RegisterRoutes(protected, handlers.Handlers{
			Containers:   handlers.NewContainerHandler(containers, appLogger),
			Reservations: handlers.NewReservationHandler(reservations, attention, appLogger),
			Alerts:       handlers.NewAlertHandler(alertCache, dispatcher, appLogger),
			Temperature:  handlers.NewTemperatureHandler(temperature, appLogger),
			Monitoring:   handlers.NewMonitoringHandler(containers, reservations, dispatcher, temperature, containers, appLogger),
			Rooms:        catalog,
		}, middleware.RateLimitMiddleware(middleware.NewClientLimiter(cfg.RateLimitPerMinute), appLogger))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("✅ Lactacare API listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		appLogger.Error("Scheduler did not stop in time", zap.Error(err))
	}

	appLogger.Info("Server exited")
}
