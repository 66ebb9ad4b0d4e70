package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appfulfillment "github.com/sellerdesk/backend/internal/application/fulfillment"
	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/infrastructure/cache"
	"github.com/sellerdesk/backend/internal/infrastructure/config"
	"github.com/sellerdesk/backend/internal/infrastructure/ecommerce"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"github.com/sellerdesk/backend/internal/infrastructure/persistence"
	"github.com/sellerdesk/backend/internal/infrastructure/telemetry"
	"github.com/sellerdesk/backend/internal/interfaces/http/handler"
	"github.com/sellerdesk/backend/internal/interfaces/http/middleware"
	"github.com/sellerdesk/backend/internal/interfaces/http/router"
)

const writeTimeoutSlack = 5 * time.Second

//	@title			Sellerdesk Fulfillment API
//	@version		1.0
//	@description	Arranges Shopee shipments and serves pickup details for seller orders

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := loggerConfig(&cfg.Log)
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		BasicAuthUser:   cfg.Telemetry.ProfilingBasicAuthUser,
		BasicAuthToken:  cfg.Telemetry.ProfilingBasicAuthToken,
		ProfileTypes:    cfg.Telemetry.ProfilingTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tp.EnableSpanProfiles()
	}

	// Rebuild the logger so every entry is also exported through OTLP
	if lp.IsEnabled() {
		log, err = logger.New(logCfg, lp.ZapCore(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting fulfillment service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
	)

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, dbTracingConfig(&cfg.Telemetry), log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		if _, err := telemetry.RegisterDBPoolMetrics(mp.Meter("db.pool"), sqlDB); err != nil {
			log.Warn("Database pool metrics unavailable", zap.Error(err))
		}
	}

	checks := map[string]handler.Pinger{"database": db}

	guard, closeGuard := newShipmentGuard(ctx, cfg, log)
	defer closeGuard()
	if pinger, ok := guard.(handler.Pinger); ok {
		checks["redis"] = pinger
	}

	fulfillmentMetrics, err := telemetry.NewFulfillmentMetrics(mp.Meter("fulfillment"))
	if err != nil {
		log.Fatal("Failed to create fulfillment metrics", zap.Error(err))
	}

	gateway, err := ecommerce.NewShopeeGateway(newShopeeConfig(&cfg.Platform), log)
	if err != nil {
		log.Fatal("Failed to create platform gateway", zap.Error(err))
	}
	gateway.SetCallRecorder(fulfillmentMetrics)

	serviceCfg := appfulfillment.Config{
		TrackingAttempts:   cfg.Fulfillment.TrackingAttempts,
		TrackingRetryDelay: cfg.Fulfillment.TrackingRetryDelay,
		DefaultCarrier:     cfg.Fulfillment.DefaultCarrier,
		CallTimeout:        time.Duration(cfg.Platform.TimeoutSeconds) * time.Second,
		ShipmentLockTTL:    cfg.Fulfillment.ShipmentLockTTL,
	}.Normalized()
	service := appfulfillment.NewService(
		ecommerce.NewShopeeLogistics(gateway),
		persistence.NewGormOrderRepository(db.DB),
		guard,
		serviceCfg,
		fulfillmentMetrics,
		log,
	)
	log.Info("Shipment guard configured", zap.Duration("lock_ttl", serviceCfg.ShipmentLockTTL))

	engine, err := router.NewEngine(router.EngineConfig{
		Logger: log,
		CORS:   corsConfig(&cfg.HTTP),
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		MeterProvider:  mp,
		MetricsEnabled: cfg.Telemetry.MetricsEnabled,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		log.Fatal("Failed to configure HTTP engine", zap.Error(err))
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, checks)
	engine.GET("/health", systemHandler.Health)

	systemRoutes := router.NewDomainGroup("/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	router.NewRouter(engine).
		Register(systemRoutes).
		Register(handler.NewFulfillmentHandler(service)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   writeTimeout(cfg.HTTP.WriteTimeout, serviceCfg.ShipmentLockTTL),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Flush telemetry after in-flight requests finished
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newShipmentGuard returns the Redis guard when Redis is enabled and
// reachable, the in-process guard otherwise.
func newShipmentGuard(ctx context.Context, cfg *config.Config, log *zap.Logger) (fulfillment.ShipmentGuard, func()) {
	if !cfg.Redis.Enabled {
		log.Info("Redis disabled, using in-memory shipment guard")
		return cache.NewInMemoryShipmentGuard(), func() {}
	}

	guard, err := cache.NewRedisShipmentGuard(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory shipment guard",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err),
		)
		return cache.NewInMemoryShipmentGuard(), func() {}
	}

	log.Info("Redis shipment guard connected", zap.String("addr", cfg.Redis.Addr()))
	return guard, func() {
		if err := guard.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}
}

// loggerConfig overlays the configured level, format, and output on the logger defaults
func loggerConfig(c *config.LogConfig) *logger.Config {
	lc := logger.DefaultConfig()
	if c.Level != "" {
		lc.Level = c.Level
	}
	if c.Format != "" {
		lc.Format = c.Format
	}
	if c.Output != "" {
		lc.Output = c.Output
	}
	return lc
}

// corsConfig starts from the middleware defaults; empty lists keep them
func corsConfig(c *config.HTTPConfig) middleware.CORSConfig {
	cc := middleware.DefaultCORSConfig()
	if len(c.CORSAllowOrigins) > 0 {
		cc.AllowOrigins = c.CORSAllowOrigins
	}
	if len(c.CORSAllowMethods) > 0 {
		cc.AllowMethods = c.CORSAllowMethods
	}
	if len(c.CORSAllowHeaders) > 0 {
		cc.AllowHeaders = c.CORSAllowHeaders
	}
	return cc
}

func dbTracingConfig(c *config.TelemetryConfig) telemetry.DBTracingConfig {
	tc := telemetry.DefaultDBTracingConfig()
	tc.Enabled = c.DBTraceEnabled
	tc.LogFullSQL = c.DBLogFullSQL
	if c.DBSlowQueryThresh > 0 {
		tc.SlowQueryThresh = c.DBSlowQueryThresh
	}
	return tc
}

// writeTimeout keeps the server from cutting off a SubmitShipment response
// before the workflow's own deadline.
func writeTimeout(configured, lockTTL time.Duration) time.Duration {
	return max(configured, lockTTL+writeTimeoutSlack)
}

func newShopeeConfig(p *config.PlatformConfig) *ecommerce.ShopeeConfig {
	var sc *ecommerce.ShopeeConfig
	if p.Sandbox {
		sc = ecommerce.NewSandboxShopeeConfig(p.PartnerID, p.PartnerKey, p.ShopID, p.AccessToken)
	} else {
		sc = ecommerce.NewShopeeConfig(p.PartnerID, p.PartnerKey, p.ShopID, p.AccessToken)
	}
	if p.BaseURL != "" {
		sc.APIBaseURL = p.BaseURL
	}
	if p.TimeoutSeconds > 0 {
		sc.TimeoutSeconds = p.TimeoutSeconds
	}
	sc.RequestsPerSecond = p.RequestsPerSecond
	if p.Burst > 0 {
		sc.Burst = p.Burst
	}
	return sc
}
