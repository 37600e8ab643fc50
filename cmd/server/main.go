package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakery-service/config"
	"bakery-service/internal/api"
	"bakery-service/internal/broker"
	"bakery-service/internal/redisclient"
	"bakery-service/internal/service"
	"bakery-service/internal/storage"
	"bakery-service/internal/store"
	"bakery-service/internal/util"
	"bakery-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting bakery service")

	tp, err := util.InitTracer("bakery-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPayments)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	images, err := storage.NewDiskStore(cfg.Storage.UploadDir, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	catalogService := service.NewCatalogService(
		db,
		redisClient,
		cfg.Catalog.DefaultPageSize,
		time.Duration(cfg.Catalog.CacheTTLSeconds)*time.Second,
		time.Duration(cfg.Catalog.NewBadgeDays)*24*time.Hour,
	)
	cartService := service.NewCartService(redisClient, db)
	paymentService := service.NewPaymentService(db, cartService, eventPublisher, service.ProviderConfig{
		BaseURL:         cfg.Payment.ProviderBaseURL,
		AccessToken:     cfg.Payment.AccessToken,
		SuccessURL:      cfg.Payment.SuccessURL,
		NotificationURL: cfg.Payment.NotificationURL,
	})
	checkoutService := service.NewCheckoutService(db, cartService, paymentService, eventPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	paymentConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicPayments, cfg.Kafka.ConsumerGroup)
	paymentWorker := worker.NewPaymentWorker(paymentConsumer, paymentService)
	go func() {
		if err := paymentWorker.Start(workerCtx); err != nil {
			log.Printf("Payment worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(
		catalogService,
		cartService,
		checkoutService,
		paymentService,
		images,
		api.TokenRoleResolver(cfg.Auth.AdminToken),
	)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	paymentWorker.Stop()

	log.Println("Server exited")
}
