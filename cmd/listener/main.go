package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lactacare/internal/config"
	"lactacare/internal/database"
	"lactacare/internal/handlers"
	"lactacare/internal/kafka"
	"lactacare/pkg/logger"
	"lactacare/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	appLogger := logger.New(cfg.Environment, "lactacare-listener")
	defer appLogger.Sync()

	appLogger.Info("🚀 Starting Custody Listener",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.StoreDriver),
	)
	appLogger.Info("📡 Kafka Configuration",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic_containers", cfg.KafkaTopicContainers),
		zap.String("topic_reservations", cfg.KafkaTopicReservations),
		zap.String("topic_monitoring", cfg.KafkaTopicMonitoring),
		zap.String("group_id", cfg.KafkaGroupID),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Bool("dead_letter_queue", cfg.DeadLetterQueue),
	)

	appLogger.Info("🔧 Initializing database...")
	db, err := database.FromConfig(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("✅ Database initialized successfully")

	var dlq kafka.DeadLetterSink
	if cfg.DeadLetterQueue {
		appLogger.Info("🔧 Initializing DLQ producer...")
		producer, err := kafka.NewDLQProducer(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize DLQ producer", zap.Error(err))
		}
		defer producer.Close()
		dlq = producer
		appLogger.Info("✅ DLQ producer initialized successfully", zap.String("topic", cfg.DLQTopic))
	}

	custody := database.NewCustodyLog(db)
	projector := kafka.NewCustodyProjector(custody, appLogger)

	appLogger.Info("🔧 Initializing Kafka consumer...")
	consumer, err := kafka.NewConsumer(cfg, projector, dlq, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize Kafka consumer", zap.Error(err))
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 2)
	go func() {
		appLogger.Info("📨 Starting Kafka consumer...")
		if err := consumer.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryHandler(appLogger))
	router.Use(logger.GinMiddleware(appLogger))
	router.Use(middleware.ErrorHandler(appLogger))

	custodyHandler := handlers.NewCustodyHandler(custody, appLogger)
	router.GET("/health", handlers.Health("lactacare-listener", map[string]handlers.Pinger{"database": db}))
	v1 := router.Group("/api/v1")
	{
		v1.GET("/custody/stats", custodyHandler.Stats)
		v1.GET("/custody/:key", custodyHandler.History)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.ListenerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		appLogger.Info("🌐 Custody API listening", zap.String("port", cfg.ListenerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		appLogger.Error("Listener error", zap.Error(err))
	case sig := <-quit:
		appLogger.Info("Shutting down listener", zap.String("signal", sig.String()))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Custody API forced to shutdown", zap.Error(err))
	}

	appLogger.Info("Listener exited")
}
