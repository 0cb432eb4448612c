package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"happiness.app/happiness-creator/internal/api"
	"happiness.app/happiness-creator/internal/config"
	"happiness.app/happiness-creator/internal/core"
	"happiness.app/happiness-creator/internal/metrics"
	"happiness.app/happiness-creator/internal/store"
)

func main() {
	// Command line flag for schema setup only
	initDBFlag := flag.Bool("init-db", false, "Create the database schema and exit")
	flag.Parse()

	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(strings.ToLower(config.AppConfig.LogLevel))
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", config.AppConfig.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.Debug("Service starting in DEBUG mode")

	// Initialize database store; the schema is created idempotently
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	if *initDBFlag {
		log.Printf("Database schema ready at %s. Exiting.", config.AppConfig.DatabaseURL)
		return
	}

	if err := os.MkdirAll(config.AppConfig.ProfilePicsDir, 0o755); err != nil {
		log.Fatalf("Failed to create profile picture directory: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)

	// Initialize LLM service
	llmService, err := core.NewLLMService(context.Background(), core.LLMOptions{
		APIKey:            config.AppConfig.GeminiAPIKey,
		Model:             config.AppConfig.ChatModel,
		Timeout:           config.AppConfig.LLMTimeout,
		MaxRetries:        config.AppConfig.LLMMaxRetries,
		RequestsPerMinute: config.AppConfig.LLMRequestsPerMinute,
	}, appMetrics)
	if err != nil {
		log.Fatalf("Failed to initialize LLM service: %v", err)
	}
	defer llmService.Close()

	catalogue, err := core.LoadDefaultCatalogue()
	if err != nil {
		log.Fatalf("Failed to load topic catalogue: %v", err)
	}

	// Initialize services
	userService := core.NewUserService(dbStore)
	chatService := core.NewChatService(dbStore, llmService, catalogue, appMetrics)
	communityService := core.NewCommunityService(dbStore, appMetrics)
	marketplaceService := core.NewMarketplaceService(dbStore, core.NewAccessGate(config.AppConfig.AccessCodes), appMetrics)
	datingService := core.NewDatingService(dbStore, config.AppConfig.ProfilePicsDir, appMetrics)

	// Initialize API Handler and Router
	apiHandler, err := api.NewAPIHandler(userService, chatService, communityService, marketplaceService, datingService, config.AppConfig.SessionKey)
	if err != nil {
		log.Fatalf("Failed to initialize handlers: %v", err)
	}
	router := api.NewRouter(apiHandler, reg)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: config.AppConfig.LLMTimeout*time.Duration(config.AppConfig.LLMMaxRetries+1) + 30*time.Second, // A chat render may wait on several model attempts
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// llmService.Close() and dbStore.Close() will be called by their defers.
	log.Println("Server exiting gracefully")
}
