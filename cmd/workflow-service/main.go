package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"casr-tracker/internal/config"
	"casr-tracker/internal/handlers"
	"casr-tracker/internal/logging"
	"casr-tracker/internal/services"
)

func main() {
	cfg, err := config.Load("8005")
	if err != nil {
		logging.Logger.Fatalf("Event ID: ENV_LOAD_ERROR, Description: Error loading configuration: %v", err)
	}
	logging.InitLogger(logging.Options{SystemName: "workflow-service", FilePath: cfg.LogFile, Level: cfg.LogLevel, Console: true})
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Workflow Service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUsername, cfg.Neo4jPassword, ""))
	if err != nil {
		logging.Logger.Fatalf("Event ID: NEO4J_DRIVER_FAILED, Description: Failed to create Neo4j driver: %v", err)
	}
	defer driver.Close(context.Background())

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		logging.Logger.Fatalf("Event ID: NEO4J_CONNECT_FAILED, Description: Failed to connect to Neo4j at %s: %v", cfg.Neo4jURI, err)
	}
	logging.Logger.Infof("Event ID: NEO4J_CONNECTED, Description: Connected to Neo4j at %s", cfg.Neo4jURI)

	router := handlers.NewWorkflowRouter(services.NewWorkflowService(driver))

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

	logging.Logger.Infof("Event ID: SERVER_START, Description: Workflow service listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed: %v", err)
	}
}
