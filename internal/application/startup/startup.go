// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/application/container"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/caching/cleanup"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/internal/presentation/http/server"
	"github.com/flipkraft/flipkraft-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `

  ███████╗██╗     ██╗██████╗ ██╗  ██╗██████╗  █████╗ ███████╗████████╗
  ██╔════╝██║     ██║██╔══██╗██║ ██╔╝██╔══██╗██╔══██╗██╔════╝╚══██╔══╝
  █████╗  ██║     ██║██████╔╝█████╔╝ ██████╔╝███████║█████╗     ██║
  ██╔══╝  ██║     ██║██╔═══╝ ██╔═██╗ ██╔══██╗██╔══██║██╔══╝     ██║
  ██║     ███████╗██║██║     ██║  ██╗██║  ██║██║  ██║██║        ██║
  ╚═╝     ╚══════╝╚═╝╚═╝     ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝        ╚═╝
` + "\033[0m")

	// Step 1: Load the engagement scoring configuration
	log.Println("Loading engagement configuration...")
	engagementCfg, err := config.LoadEngagement(config.EngagementConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load engagement configuration: %w", err)
	}
	if err := engagementCfg.Validate(); err != nil {
		return fmt.Errorf("invalid engagement configuration: %w", err)
	}

	// Step 2: Create the channeled logger
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Startup().Info("Channeled logging initialized")

	// Step 3: Create dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer, err := container.NewContainer(ctx, engagementCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	logger.Startup().Info("Dependency injection container created with singleton services",
		"knowledgeBaseEntries", appContainer.Retriever.Size())

	// Step 4: Start background workers
	logger.Startup().Info("Starting background cleanup worker...")
	cleanupWorker := cleanup.NewWorker(appContainer.Sessions, logger)
	go cleanupWorker.Start(ctx)

	logger.Startup().Info("Starting dashboard metrics broadcaster...")
	go appContainer.DashboardBroadcaster.Run()

	// Step 5: Start HTTP server
	logger.Startup().Info("Starting HTTP server...")
	port := config.Port
	httpServer := server.New(port, appContainer)

	// Step 6: Setup graceful shutdown
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	// Cancel background tasks
	cancelBackgroundTasks()

	// Stop server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing lead database...")
	if err := appContainer.Close(); err != nil {
		logger.Shutdown().Error("Error closing lead database", "error", err.Error())
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
