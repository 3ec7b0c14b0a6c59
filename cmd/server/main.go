package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rezforge/launchpad/backend/internal/config"
	"github.com/rezforge/launchpad/backend/internal/server"
)

func main() {
	// Parse flags
	port := flag.String("port", "", "Server port (overrides PORT)")
	storageURI := flag.String("storage", "", "Document store URI, or 'memory' (overrides STORAGE_URI)")
	resolver := flag.String("resolver", "", "Resolver binary (overrides RESOLVER_BIN)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *storageURI != "" {
		cfg.Storage.URI = *storageURI
	}
	if *resolver != "" {
		cfg.Resolver.Bin = *resolver
	}

	log.Println("=" + string(make([]byte, 60)) + "=")
	log.Println("🚀 Rez Launcher - Backend Service")
	log.Println("=" + string(make([]byte, 60)) + "=")

	// Create server
	srv, err := server.NewServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(cfg.Server.Host + ":" + cfg.Server.Port); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		log.Println("\n🛑 Shutting down gracefully...")
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
