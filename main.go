package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"session-monitor/internal/config"
	Irepository "session-monitor/internal/domain/interfaces/repository"
	"session-monitor/internal/infra/handlers"
	"session-monitor/internal/infra/logger"
	"session-monitor/internal/infra/provider"
	"session-monitor/internal/infra/repository"
	"session-monitor/internal/infra/routes"
	"session-monitor/internal/infra/services"
	"session-monitor/internal/middleware"
	client "session-monitor/internal/pkg"
)

const defaultNapsterBaseURL = "https://spaces-api.napsterai.dev/v1/experiences"

func main() {
	daemon := flag.Bool("daemon", false, "Run continuously, polling on a fixed interval")
	interval := flag.Int("interval", 0, "Check interval in seconds (defaults to CHECK_INTERVAL_SECONDS)")
	flag.Parse()

	config.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewLogger(ctx, true)
	log.Info("Initializing Session Monitor Service...")

	napsterApiKey := config.GetEnv("NAPSTER_API_KEY")
	geminiApiKey := config.GetEnv("GEMINI_API_KEY")

	store := newObjectStore(ctx, log)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	sessionSource := provider.NewNapsterSpacesProvider(
		log,
		httpClient,
		config.GetEnvOrDefault("NAPSTER_API_BASE_URL", defaultNapsterBaseURL),
		config.GetEnv("EXPERIENCE_ID"),
		napsterApiKey,
	)

	geminiModel := config.GetEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash")
	summarizer, err := services.NewSummarizerService(ctx, log, geminiApiKey, geminiModel)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to initialize summarizer: %v", err))
	}
	skillGenerator := services.NewSkillGeneratorService(log, summarizer.Client, geminiModel)

	stateService := services.NewStateService(log, store)
	monitorService := services.NewMonitorService(log, sessionSource, store, stateService, summarizer, skillGenerator)
	overviewService := services.NewOverviewService(log, store)

	log.Info("Session Monitor Service initialized successfully")

	checkInterval := *interval
	if checkInterval <= 0 {
		checkInterval = intervalFromEnv()
	}

	if !*daemon {
		report, err := monitorService.RunOnce(ctx)
		if err != nil {
			log.Fatal(fmt.Sprintf("Fatal error: %v", err))
		}
		log.Info(fmt.Sprintf("Completed. Processed %d session(s)", report.Processed))
		return
	}

	go monitorService.RunForever(ctx, time.Duration(checkInterval)*time.Second)

	runHTTPServer(ctx, log, overviewService, monitorService)
}

// newObjectStore builds the store selected by STORAGE_BACKEND: a GCS bucket
// by default, MongoDB for deployments without one, or an in-memory store for
// local experiments.
func newObjectStore(ctx context.Context, log *logger.Logger) Irepository.ObjectStore {
	backend := config.GetEnvOrDefault("STORAGE_BACKEND", "gcs")

	switch backend {
	case "gcs":
		bucket := config.GetEnvOrDefault("GCS_BUCKET", "ai-interviewer-sessions")
		log.Info(fmt.Sprintf("Using GCS bucket: %s", bucket))
		return repository.NewGCSStore(client.GCSClient(ctx), bucket)
	case "mongo":
		mongoClient := client.MongoClient()
		log.Info("Using MongoDB object store")
		return repository.NewMongoStore(mongoClient.Database("SessionMonitor"))
	case "memory":
		log.Warn("Using in-memory object store, nothing will be persisted")
		return repository.NewMemoryStore()
	default:
		log.Fatal(fmt.Sprintf("Unknown STORAGE_BACKEND: %s", backend))
		return nil
	}
}

func intervalFromEnv() int {
	raw := config.GetEnvOrDefault("CHECK_INTERVAL_SECONDS", "300")
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 300
	}
	return value
}

func runHTTPServer(ctx context.Context, log *logger.Logger, overviewService *services.OverviewService, monitorService *services.MonitorService) {
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(log))

	httpHandlers := handlers.NewHttpHandlers(log, overviewService, monitorService)
	routes := routes.NewRoutes(router, httpHandlers)
	routes.Init()

	port := config.GetEnvOrDefault("PORT", "8080")
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	go func() {
		log.Info(fmt.Sprintf("Server is running on port %s", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(fmt.Sprintf("Error running HTTP server: %s", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	} else {
		log.Info("Server stopped gracefully.")
	}
}
