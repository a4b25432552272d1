package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appaudit "github.com/logidocs/backend/internal/application/audit"
	"github.com/logidocs/backend/internal/application/dashboard"
	appdocument "github.com/logidocs/backend/internal/application/document"
	"github.com/logidocs/backend/internal/application/generalinfo"
	identityapp "github.com/logidocs/backend/internal/application/identity"
	appshipment "github.com/logidocs/backend/internal/application/shipment"
	"github.com/logidocs/backend/internal/infrastructure/auth"
	"github.com/logidocs/backend/internal/infrastructure/config"
	"github.com/logidocs/backend/internal/infrastructure/event"
	"github.com/logidocs/backend/internal/infrastructure/logger"
	"github.com/logidocs/backend/internal/infrastructure/persistence"
	"github.com/logidocs/backend/internal/infrastructure/printing"
	"github.com/logidocs/backend/internal/infrastructure/realtime"
	"github.com/logidocs/backend/internal/infrastructure/storage"
	"github.com/logidocs/backend/internal/infrastructure/telemetry"
	"github.com/logidocs/backend/internal/interfaces/http/handler"
	"github.com/logidocs/backend/internal/interfaces/http/middleware"
	"github.com/logidocs/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/logidocs/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			LogiDocs API
//	@version		1.0
//	@description	Logistics document management: PRO numbers, shipping documents, verification and the Actions Log.

//	@contact.name	LogiDocs Support
//	@contact.email	support@logidocs.example.com

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	telemetry.ServiceVersion = version
	ctx := context.Background()

	// Telemetry first so the providers are global before anything records
	otel, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer otel.shutdown(log)
	log = otel.logs.Bridge(log, cfg.Telemetry.ServiceName, zapcore.InfoLevel)
	zap.ReplaceGlobals(log)

	log.Info("Starting LogiDocs",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backs the token blacklist and fans the Actions Log out across
	// instances. Without it both stay in this process.
	var redisClient *redis.Client
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		log.Warn("Redis disabled: token revocation and live updates are local to this instance")
	}

	objectStorage, err := newObjectStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	remarkRepo := persistence.NewGormRemarkRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	actionLogRepo := persistence.NewGormActionLogRepository(db.DB)

	// Actions Log fan-out: the hub feeds local SSE clients, the Redis
	// broadcaster relays entries written by other instances
	hub := realtime.NewHub(
		realtime.WithClientBuffer(cfg.Realtime.ClientBuffer),
		realtime.WithMaxClients(cfg.Realtime.MaxClients),
		realtime.WithHubLogger(log),
	)
	var broadcaster appaudit.Broadcaster = hub
	if redisClient != nil {
		rb := realtime.NewRedisBroadcaster(redisClient, hub,
			realtime.WithChannel(cfg.Realtime.RedisChannel),
			realtime.WithBroadcasterLogger(log),
		)
		if err := rb.Start(ctx); err != nil {
			log.Fatal("Failed to subscribe to realtime channel", zap.Error(err))
		}
		defer func() {
			if err := rb.Close(); err != nil {
				log.Error("Error closing realtime broadcaster", zap.Error(err))
			}
		}()
		broadcaster = rb
	}

	appMetrics, err := telemetry.NewAppMetrics(otel.metrics, hub)
	if err != nil {
		log.Fatal("Failed to create application metrics", zap.Error(err))
	}
	defer func() {
		if err := appMetrics.Close(); err != nil {
			log.Error("Error closing application metrics", zap.Error(err))
		}
	}()

	// Event bus: every shipment and document event becomes an Actions Log entry
	eventBus := event.NewInMemoryEventBus(log)
	actionLogHandler := appaudit.NewActionLogHandler(actionLogRepo, broadcaster, log)
	eventBus.Subscribe(actionLogHandler)
	eventBus.Subscribe(telemetry.NewEventMetrics(appMetrics))
	log.Info("Event handlers registered",
		zap.Strings("action_log_events", actionLogHandler.EventTypes()),
	)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	exporter, closeExporter := newPDFExporter(cfg, log)
	defer closeExporter()

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.AuthServiceConfig{
		MaxLoginAttempts: cfg.Auth.MaxFailedAttempts,
		LockDuration:     cfg.Auth.LockDuration,
	}, log)
	userService := identityapp.NewUserService(userRepo, blacklist, jwtService, log)
	shipmentService := appshipment.NewShipmentService(shipmentRepo, remarkRepo, eventBus, log)
	documentService := appdocument.NewDocumentService(documentRepo, shipmentRepo, objectStorage, eventBus, appdocument.ServiceConfig{
		MaxFileSize:         cfg.Upload.MaxFileSize,
		AllowedContentTypes: cfg.Upload.AllowedContentTypes,
		PreviewExpiry:       cfg.Storage.PresignExpiry,
	}, log)
	generalInfoService := generalinfo.NewService(shipmentRepo, documentRepo, exporter, log)
	auditService := appaudit.NewService(actionLogRepo, log, appaudit.WithReplayBatch(cfg.Realtime.ReplayLimit))
	dashboardService := dashboard.NewService(documentRepo, shipmentRepo, auditService)

	// HTTP handlers
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, healthChecks(db, redisClient, objectStorage))
	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService, cfg.Cookie),
		User:        handler.NewUserHandler(userService),
		Shipment:    handler.NewShipmentHandler(shipmentService),
		Document:    handler.NewDocumentHandler(documentService),
		GeneralInfo: handler.NewGeneralInfoHandler(generalInfoService),
		Audit: handler.NewAuditHandler(auditService, hub,
			handler.WithStreamHeartbeat(cfg.Realtime.HeartbeatInterval),
			handler.WithPollLimit(cfg.Realtime.PollLimit),
			handler.WithAuditLogger(log),
		),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		System:    systemHandler,
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack in order:
	// 1. Tracing - Server span per route
	// 2. RequestID - Generate/propagate request ID
	// 3. Recovery - Catch panics
	// 4. Logger - Log requests
	// 5. Metrics and profiling labels
	// 6. Security headers and CORS
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     otel.tracer.IsEnabled(),
	}))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(otel.metrics))
	engine.Use(middleware.Profiling(otel.profiler.IsEnabled()))
	engine.Use(middleware.Secure(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, cfg.Upload.MaxFileSize))
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	engine.Use(middleware.SpanErrorMarker())

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	var guards router.Guards
	if cfg.HTTP.AuthRateLimitEnabled {
		loginLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer loginLimiter.Stop()
		guards.LoginRateLimit = middleware.RateLimit(loginLimiter)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1")).Use(jwtMiddleware)
	routeCount := 0
	for _, group := range router.APIGroups(handlers, guards) {
		r.Register(group)
		routeCount += len(group.Routes())
	}
	r.Setup()
	log.Info("API routes registered", zap.String("base_path", r.BasePath()), zap.Int("routes", routeCount))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Ends open SSE streams so Shutdown does not wait on them
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newObjectStorage connects to the S3 bucket. Without a bucket outside
// production, files are kept in memory.
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (appdocument.ObjectStorage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("storage.driver is memory: uploaded files are lost on restart")
		return storage.NewMemoryObjectStorage(), nil
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiry),
	)
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Object storage ready", zap.String("bucket", s3.GetBucket()))
	return s3, nil
}

// newPDFExporter starts the Chrome renderer when printing is enabled. A nil
// exporter makes the PDF endpoint answer PRINTING_DISABLED.
func newPDFExporter(cfg *config.Config, log *zap.Logger) (generalinfo.PDFExporter, func()) {
	noop := func() {}
	if !cfg.Printing.Enabled {
		log.Info("General Info PDF export disabled")
		return nil, noop
	}
	renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Printing.Timeout,
		ExecPath:       cfg.Printing.ChromePath,
		RemoteURL:      cfg.Printing.RemoteURL,
		NoSandbox:      cfg.Printing.NoSandbox,
		Logger:         log,
	})
	if err != nil {
		log.Error("Failed to start PDF renderer, PDF export disabled", zap.Error(err))
		return nil, noop
	}
	exporter, err := printing.NewGeneralInfoExporter(renderer, cfg.Printing.Timeout)
	if err != nil {
		_ = renderer.Close()
		log.Error("Failed to load General Info template, PDF export disabled", zap.Error(err))
		return nil, noop
	}
	return exporter, func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// healthChecks names the dependencies /health pings
func healthChecks(db *persistence.Database, redisClient *redis.Client, objectStorage appdocument.ObjectStorage) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if p, ok := objectStorage.(pinger); ok {
		checks["storage"] = p.Ping
	}
	return checks
}
