package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Invalid environment configuration, using defaults: %v", err)
		cfg = config.Default()
	}

	// Flags override environment
	port := flag.String("port", cfg.Server.Port, "Server port")
	host := flag.String("host", cfg.Server.Host, "Server host")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (console logs, debug level)")
	store := flag.String("store", cfg.Launcher.StorePath, "Persisted config file (empty keeps it in memory)")
	endpoints := flag.String("endpoints", cfg.Launcher.EndpointsFile, "Endpoint catalog YAML file")
	publicURL := flag.String("public-url", cfg.Launcher.PublicURL, "Externally visible base URL for launcher redirects")
	sanitize := flag.Bool("sanitize", cfg.Launcher.SanitizeHTML, "Sanitize function HTML before display")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Server.Host = *host
	cfg.Launcher.StorePath = *store
	cfg.Launcher.EndpointsFile = *endpoints
	cfg.Launcher.PublicURL = *publicURL
	cfg.Launcher.SanitizeHTML = *sanitize
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Close(ctx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
