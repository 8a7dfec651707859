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
	"go.uber.org/zap"

	academyapp "github.com/sparkcode/dashboard/internal/application/academy"
	activityapp "github.com/sparkcode/dashboard/internal/application/activity"
	dashboardapp "github.com/sparkcode/dashboard/internal/application/dashboard"
	financeapp "github.com/sparkcode/dashboard/internal/application/finance"
	identityapp "github.com/sparkcode/dashboard/internal/application/identity"
	partnerapp "github.com/sparkcode/dashboard/internal/application/partner"
	projectapp "github.com/sparkcode/dashboard/internal/application/project"
	settingsapp "github.com/sparkcode/dashboard/internal/application/settings"
	teamapp "github.com/sparkcode/dashboard/internal/application/team"
	"github.com/sparkcode/dashboard/internal/bootstrap"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/infrastructure/auth"
	"github.com/sparkcode/dashboard/internal/infrastructure/config"
	"github.com/sparkcode/dashboard/internal/infrastructure/logger"
	"github.com/sparkcode/dashboard/internal/infrastructure/printing"
	"github.com/sparkcode/dashboard/internal/infrastructure/realtime"
	"github.com/sparkcode/dashboard/internal/infrastructure/storage"
	"github.com/sparkcode/dashboard/internal/infrastructure/telemetry"
	"github.com/sparkcode/dashboard/internal/interfaces/http/handler"
	"github.com/sparkcode/dashboard/internal/interfaces/http/middleware"
	"github.com/sparkcode/dashboard/internal/interfaces/http/router"

	_ "github.com/sparkcode/dashboard/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			SparkCode Dashboard API
//	@version		1.0
//	@description	Admin dashboard backend for the SparkCode agency and academy: projects, students, courses, clients, team, finance and live subscriptions.

//	@contact.name	SparkCode
//	@contact.email	dev@sparkcode.com

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The profiler starts first so span profiles have an agent to report to.
	profiler, err := telemetry.NewProfiler(cfg.Telemetry.Profiling, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if providers.Enabled() {
		// Every entry from here on also goes to the collector.
		log, err = logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output},
			providers.LogCore(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting SparkCode Dashboard",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	core, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := core.Close(); err != nil {
			log.Error("Error closing storage", zap.Error(err))
		}
	}()

	if err := telemetry.RegisterDBTracing(core.Database.DB, cfg.Telemetry, cfg.Database.Driver, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}
	if sqlDB, err := core.Database.DB.DB(); err == nil {
		if reg, err := telemetry.RegisterDBPoolMetrics(providers.Meter("database"), sqlDB); err != nil {
			log.Warn("Database pool metrics disabled", zap.Error(err))
		} else {
			defer func() { _ = reg.Unregister() }()
		}
	}

	// Subscription bridge
	bridgeOpts := []realtime.Option{realtime.WithLogger(log)}
	if metrics, err := telemetry.NewRealtimeMetrics(providers.Meter("realtime")); err != nil {
		log.Warn("Realtime metrics disabled", zap.Error(err))
	} else {
		bridgeOpts = append(bridgeOpts, realtime.WithMetrics(metrics))
	}
	bridge := realtime.NewBridge(core.Store, core.Feed, bridgeOpts...)

	// Logo uploads; without object storage the upload answers 503.
	var settingsOpts []settingsapp.Option
	objects, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
	if err == nil {
		bucketCtx, bucketCancel := context.WithTimeout(ctx, 10*time.Second)
		err = objects.EnsureBucket(bucketCtx)
		bucketCancel()
	}
	if err != nil {
		log.Warn("Object storage unavailable, logo uploads disabled", zap.Error(err))
	} else {
		settingsOpts = append(settingsOpts, settingsapp.WithStorage(objects, cfg.Storage.MaxLogoSize))
	}

	// Statement PDFs; Chrome starts on the first render.
	renderer := printing.NewChromedpRenderer(cfg.PDF, log)
	defer func() { _ = renderer.Close() }()

	// Identity
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect token blacklist", zap.Error(err))
		}
		defer func() { _ = redisBlacklist.Close() }()
		blacklist = redisBlacklist
	}
	authService := identityapp.NewAuthService(core.Credentials, core.Store, jwtService, blacklist, identityapp.AuthServiceConfig{
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		LockDuration:     cfg.Auth.LockDuration,
		DefaultRole:      identity.ParseRole(cfg.Auth.DefaultRole),
	}, log)

	// Application services
	recorder := core.Recorder
	projectService := projectapp.NewService(core.Store, recorder, log)
	academyService := academyapp.NewService(core.Store, recorder, log)
	clientService := partnerapp.NewClientService(core.Store, recorder, log)
	teamService := teamapp.NewService(core.Store, recorder, log)
	activityService := activityapp.NewService(core.Store, recorder, log)
	settingsService := settingsapp.NewService(core.Store, recorder, log, settingsOpts...)
	financeService := financeapp.NewService(core.Store, recorder, log,
		financeapp.WithPrinter(printing.NewStatementPrinter(renderer)))
	dashboardService := dashboardapp.NewService(core.Store, bridge, log)

	hub := handler.NewStreamHub(cfg.Realtime, log)
	if err := hub.Start(); err != nil {
		log.Fatal("Failed to start stream hub", zap.Error(err))
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version).
		AddCheck("database", func(ctx context.Context) error { return core.Database.Ping() })

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		System:    systemHandler,
		Dashboard: handler.NewDashboardHandler(dashboardService, hub),
		Projects:  handler.NewProjectHandler(projectService),
		Academy:   handler.NewAcademyHandler(academyService),
		Clients:   handler.NewClientHandler(clientService),
		Team:      handler.NewTeamHandler(teamService),
		Activity:  handler.NewActivityHandler(activityService),
		Settings:  handler.NewSettingsHandler(settingsService),
		Finance:   handler.NewFinanceHandler(financeService),
		Realtime:  handler.NewRealtimeHandler(bridge, hub, cfg.Realtime, log),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.Secure())
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = append(cors.AllowHeaders, cfg.HTTP.CORSAllowHeaders...)
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", systemHandler.Health)

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	// The docs guard authenticates on its own, so its JWT check skips nothing.
	docsJWT := jwtConfig
	docsJWT.SkipPaths, docsJWT.SkipPathPrefixes = nil, nil
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, middleware.JWTAuthMiddlewareWithConfig(docsJWT)),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := router.NewRouter(engine)
	r.Use(jwtMiddleware, middleware.TracingAttributeInjector(), middleware.SpanErrorMarker())
	if httpMetrics, err := middleware.HTTPMetrics(providers.Meter("http")); err != nil {
		log.Warn("HTTP metrics disabled", zap.Error(err))
	} else {
		r.Use(httpMetrics)
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(ctx, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		r.Use(middleware.RateLimit(limiter))
	}
	for _, group := range router.DashboardGroups(handlers) {
		r.Register(group)
		log.Debug("Routes registered", zap.String("group", group.Name()), zap.Strings("routes", group.Routes()))
	}
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}
	// Streams outlive any request context; stopping the hub ends them.
	srv.RegisterOnShutdown(hub.Stop)

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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
