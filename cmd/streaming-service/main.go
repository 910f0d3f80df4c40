package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agristream/platform/pkg/common/config"
	"github.com/agristream/platform/pkg/common/database"
	"github.com/agristream/platform/pkg/common/kafka"
	"github.com/agristream/platform/pkg/common/logger"
	"github.com/agristream/platform/pkg/objectstore"
	"github.com/agristream/platform/pkg/schema"
	"github.com/agristream/platform/pkg/streaming"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	if cfg.ProjectID == "" {
		logger.Log.Fatal("PROJECT_ID is required")
	}

	catalog, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load telemetry schema catalog")
	}

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	warehouse := streaming.NewWarehouseRepository(db, cfg.WarehouseDataset, cfg.WarehouseTable)
	if err := warehouse.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate warehouse tables")
	}

	statusRepo := streaming.NewStatusRepository(database.GetRedis())

	objects, err := objectstore.NewMinIO(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3UseTLS)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to create object store client")
	}

	successProducer := kafka.NewProducer(streaming.TopicPath(cfg.ProjectID, cfg.SuccessTopicName))
	defer successProducer.Close()

	errorProducer := kafka.NewProducer(streaming.TopicPath(cfg.ProjectID, cfg.ErrorTopicName))
	defer errorProducer.Close()

	notifier := streaming.NewTopicNotifier(successProducer, errorProducer)
	svc := streaming.NewService(objects, statusRepo, warehouse, notifier, streaming.NewParser(catalog))

	consumer := kafka.NewConsumer(cfg.EventsTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	handler := streaming.NewHTTPHandler(svc, statusRepo)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"topic": cfg.EventsTopic,
			"group": cfg.KafkaGroupID,
		}).Info("Streaming Service consuming object events")

		if err := consumer.Consume(ctx, svc.Handle); err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Fatal("event consumer stopped")
		}
	}()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Streaming Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Streaming Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	database.CloseRedis()
	database.ClosePostgres()

	logger.Log.Info("Streaming Service stopped")
}
