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

	"casr-tracker/internal/config"
	"casr-tracker/internal/handlers"
	"casr-tracker/internal/logging"
	"casr-tracker/internal/search"
	"casr-tracker/internal/services"
	"casr-tracker/internal/utils"
	"casr-tracker/internal/validation"
)

func main() {
	cfg, err := config.Load("8003")
	if err != nil {
		logging.Logger.Fatalf("Event ID: ENV_LOAD_ERROR, Description: Error loading configuration: %v", err)
	}
	logging.InitLogger(logging.Options{SystemName: "dashboard-service", FilePath: cfg.LogFile, Level: cfg.LogLevel, Console: true})
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Dashboard Service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(connectCtx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", cfg.MongoURI)

	db := client.Database(cfg.MongoDBName)
	activity := services.NewActivityService(db)
	projects := services.NewProjectService(db, activity)
	if err := projects.EnsureIndexes(connectCtx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: Failed to create project indexes: %v", err)
	}

	index := search.NewIndex()
	go services.NewLiveIndexer(db, index, cfg.SearchPollInterval).Run(ctx)

	workflow := utils.NewWorkflowClient(cfg.WorkflowServiceURL, utils.NewHTTPClient(), utils.NewBreaker("WorkflowServiceCB"))

	router := handlers.NewDashboardRouter(handlers.Dashboard{
		Projects:    projects,
		Workflow:    workflow,
		Compliance:  services.NewComplianceService(db, activity),
		Occurrences: services.NewOccurrenceService(db, activity),
		Sanctions:   services.NewSanctionService(db, activity),
		Activity:    activity,
		Users:       services.NewUserService(db),
		Search:      index,
	}, validation.New())

	serve(ctx, cfg.Addr(), handlers.EnableCORS(cfg.CORSOrigin, router))
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, addr string, h http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_ERROR, Description: %v", err)
		}
	}()

	logging.Logger.Infof("Event ID: SERVER_START, Description: Dashboard service listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed: %v", err)
	}
	logging.Logger.Info("Event ID: SERVER_STOPPED, Description: Dashboard service stopped")
}
