package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/localmeet/localmeet-server/internal/api"
	"github.com/localmeet/localmeet-server/internal/config"
	"github.com/localmeet/localmeet-server/internal/logging"
	"github.com/localmeet/localmeet-server/internal/repository"
	"github.com/localmeet/localmeet-server/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewDefault(cfg.Logging.Level)

	// Prepare the data directory layout
	if err := config.SetupDataDir(cfg); err != nil {
		log.Fatalf("Failed to set up data directory: %v", err)
	}

	// Create repository
	repo := repository.NewFileRepository(cfg.Storage.DataDir, logger)

	// Create service
	svc := service.NewDefaultService(repo, cfg.Auth.JWTSecret)

	// Create API handler
	handler := api.NewHandler(svc, logger)

	// Set up Gin router
	router := gin.Default()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info(context.Background(), "starting server", "addr", serverAddr, "dataDir", cfg.Storage.DataDir)
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
