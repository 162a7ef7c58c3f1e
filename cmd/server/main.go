package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/aggregator"
	"github.com/mirrorday/mirrorday/internal/ai"
	"github.com/mirrorday/mirrorday/internal/config"
	"github.com/mirrorday/mirrorday/internal/handlers"
	"github.com/mirrorday/mirrorday/internal/logger"
	"github.com/mirrorday/mirrorday/internal/middleware"
	"github.com/mirrorday/mirrorday/internal/remote"
	"github.com/mirrorday/mirrorday/internal/sources"
	"github.com/mirrorday/mirrorday/internal/store"
	"github.com/mirrorday/mirrorday/internal/telemetry"
	"github.com/mirrorday/mirrorday/internal/views"
	"github.com/mirrorday/mirrorday/internal/widget"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("data_dir", cfg.DataDir),
		zap.String("notifier", cfg.Notifier),
		zap.String("enrichment_provider", cfg.EnrichmentProvider),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "mirrorday", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Remote sync backend (shared Postgres)
	backend, err := remote.NewPostgresBackend(cfg.RemoteURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_remote_backend", zap.Error(err))
	}
	defer func() {
		if err := backend.Close(); err != nil {
			zapLogger.Warn("failed_to_close_remote_backend", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_remote_backend")

	// Change notifier: LISTEN/NOTIFY on the remote database, or an AMQP
	// fanout for deployments that already run a broker
	var notifier remote.Notifier
	switch cfg.Notifier {
	case "amqp":
		amqpNotifier, err := remote.NewAMQPNotifier(cfg.AMQPURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_amqp_notifier", zap.Error(err))
		}
		// Postgres can't signal broker peers itself, so saves announce
		// through the fanout instead
		backend.SetAnnounce(amqpNotifier.Broadcast)
		notifier = amqpNotifier
	default:
		pgListener, err := remote.NewPGListener(cfg.RemoteURL)
		if err != nil {
			zapLogger.Fatal("failed_to_start_pg_listener", zap.Error(err))
		}
		notifier = pgListener
	}
	defer func() {
		if err := notifier.Close(); err != nil {
			zapLogger.Warn("failed_to_close_notifier", zap.Error(err))
		}
	}()
	zapLogger.Info("change_notifier_ready", zap.String("kind", cfg.Notifier))

	// Redis for rate limiting
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_parse_redis_url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()

	// Stores
	reminderStore := store.New(store.NewFileStore(cfg.RemindersFile()), backend, zapLogger)
	profileStore := store.NewProfileStore(cfg.ProfileFile(), zapLogger)
	listView := views.NewListView(reminderStore)

	storeCtx, storeCancel := context.WithCancel(context.Background())
	defer storeCancel()
	reminderStore.Start(storeCtx, notifier)

	// Source collaborators
	var summarizer ai.Summarizer
	if cfg.OpenAIKey != "" {
		summarizer = ai.NewOpenAISummarizer(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger)
		zapLogger.Info("summarizer_enabled", zap.String("model", cfg.AIModel))
	}

	photoSource := sources.NewDirPhotoSource(cfg.PhotoLibraryDir)
	calendarSource := sources.NewGatewayCalendarSource(cfg.CalendarGatewayURL, cfg.CalendarToken)
	locationTracker := sources.NewFileLocationTracker(cfg.LocationsFile(), cfg.LocationRetentionDays, cfg.LocationAccuracyMax, zapLogger)
	locationTracker.StartTracking()

	var enrichmentSource sources.EnrichmentSource
	switch cfg.EnrichmentProvider {
	case "news":
		if cfg.NewsAPIURL == "" || cfg.NewsAPIKey == "" {
			zapLogger.Warn("news_provider_selected_but_not_configured_enrichment_disabled")
		} else {
			enrichmentSource = sources.NewNewsSource(cfg.NewsAPIURL, cfg.NewsAPIKey, summarizer, zapLogger)
		}
	default:
		enrichmentSource = sources.NewHistorySource("", summarizer, zapLogger)
	}

	manager := aggregator.NewManager(reminderStore, photoSource, calendarSource, locationTracker, enrichmentSource, zapLogger)
	widgetView := widget.New(cfg.RemindersFile(), zapLogger)

	// Handlers
	reminderHandler := handlers.NewReminderHandler(reminderStore, listView)
	reflectionHandler := handlers.NewReflectionHandler(reminderStore, manager)
	profileHandler := handlers.NewProfileHandler(profileStore)
	locationHandler := handlers.NewLocationHandler(locationTracker, zapLogger)
	widgetHandler := handlers.NewWidgetHandler(widgetView)
	healthChecker := handlers.NewHealthChecker(backend)

	rateLimitMW, err := middleware.RateLimit(redisClient, cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}
	authMW := middleware.Auth([]byte(cfg.DeviceTokenSecret), zapLogger)

	// Router. Middleware registered first wraps outermost.
	r := mux.NewRouter()
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("mirrorday"))
	}
	r.Use(middleware.SecurityHeaders(false))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")

	// API v1 routes (device-authenticated, rate-limited)
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW)
	apiRouter.Use(rateLimitMW)

	remindersRouter := apiRouter.PathPrefix("/reminders").Subrouter()
	reminderHandler.RegisterRoutes(remindersRouter)
	reflectionHandler.RegisterRoutes(remindersRouter)

	profileHandler.RegisterRoutes(apiRouter.PathPrefix("/profile").Subrouter())
	locationHandler.RegisterRoutes(apiRouter.PathPrefix("/locations").Subrouter())
	apiRouter.HandleFunc("/widget", widgetHandler.GetWidget).Methods("GET")
	apiRouter.HandleFunc("/sync", reminderHandler.SyncState).Methods("GET")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        corsHandler,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	storeCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
