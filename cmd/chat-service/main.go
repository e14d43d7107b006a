package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"casr-tracker/internal/chat"
	"casr-tracker/internal/config"
	"casr-tracker/internal/handlers"
	"casr-tracker/internal/logging"
	"casr-tracker/internal/repositories"
	"casr-tracker/internal/services"
	"casr-tracker/internal/validation"
)

func main() {
	cfg, err := config.Load("8004")
	if err != nil {
		logging.Logger.Fatalf("Event ID: ENV_LOAD_ERROR, Description: Error loading configuration: %v", err)
	}
	logging.InitLogger(logging.Options{SystemName: "chat-service", FilePath: cfg.LogFile, Level: cfg.LogLevel, Console: true})
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Chat Service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repositories.NewChatRepo(cfg.CassandraHosts, cfg.CassandraKeyspace)
	if err != nil {
		logging.Logger.Fatalf("Event ID: CASSANDRA_INIT_FAILED, Description: Failed to initialize Cassandra: %v", err)
	}
	defer repo.CloseSession()
	if err := repo.CreateTables(); err != nil {
		logging.Logger.Fatalf("Event ID: CASSANDRA_TABLES_FAILED, Description: Failed to create chat tables: %v", err)
	}

	// Activity logging is best effort; chat keeps working without Mongo.
	var activity services.ActivityLogger
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI)); err != nil {
		logging.Logger.Warnf("Event ID: DB_CONNECTION_FAILED, Description: activity log disabled: %v", err)
	} else if err := client.Ping(connectCtx, nil); err != nil {
		logging.Logger.Warnf("Event ID: DB_PING_FAILED, Description: activity log disabled: %v", err)
	} else {
		defer client.Disconnect(context.Background())
		activity = services.NewActivityService(client.Database(cfg.MongoDBName))
		logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", cfg.MongoURI)
	}

	policy := chat.DefaultPolicy()
	if cfg.PresenceOnlineFor > 0 {
		policy.OnlineWindow = cfg.PresenceOnlineFor
	}

	router := handlers.NewChatRouter(services.NewChatService(repo, policy, activity), validation.New())

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.EnableCORS(cfg.CORSOrigin, router),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logging.Logger.Infof("Event ID: SERVER_START, Description: Chat service listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed: %v", err)
	}
}
