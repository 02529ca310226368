package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	materialapp "github.com/spicemill/stockledger/internal/application/material"
	productionapp "github.com/spicemill/stockledger/internal/application/production"
	purchasingapp "github.com/spicemill/stockledger/internal/application/purchasing"
	stockapp "github.com/spicemill/stockledger/internal/application/stock"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/spicemill/stockledger/internal/infrastructure/cache"
	"github.com/spicemill/stockledger/internal/infrastructure/config"
	"github.com/spicemill/stockledger/internal/infrastructure/event"
	"github.com/spicemill/stockledger/internal/infrastructure/export"
	"github.com/spicemill/stockledger/internal/infrastructure/logger"
	"github.com/spicemill/stockledger/internal/infrastructure/migration"
	"github.com/spicemill/stockledger/internal/infrastructure/persistence"
	"github.com/spicemill/stockledger/internal/infrastructure/scheduler"
	"github.com/spicemill/stockledger/internal/infrastructure/telemetry"
	"github.com/spicemill/stockledger/internal/interfaces/http/handler"
	"github.com/spicemill/stockledger/internal/interfaces/http/middleware"
	"github.com/spicemill/stockledger/internal/interfaces/http/router"
	"github.com/spicemill/stockledger/migrations"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting stock ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	logs, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := logs.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down log export", zap.Error(err))
		}
	}()
	log = logs.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(cfg.Profiling, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to initialize profiling", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tracer.EnableSpanProfiles()
	}

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	if cfg.Database.MigrateOnStart && db.Driver == "postgres" {
		if err := migrate(sqlDB, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.TraceDB {
		if err := telemetry.RegisterDBTracing(db.DB, db.Driver, log); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}

	// Repositories
	materialRepo := persistence.NewGormRawMaterialRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	purchaseRepo := persistence.NewGormStockPurchaseRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	staffRepo := persistence.NewGormStaffRepository(db.DB)
	stockStatusRepo := persistence.NewGormStockStatusRepository(db.DB)
	productionStatusRepo := persistence.NewGormProductionStatusRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	policies := stock.NewPolicyRegistry()
	if err := policies.SetDefault(cfg.Stock.DefaultPolicy); err != nil {
		log.Fatal("Invalid default stock policy", zap.Error(err))
	}
	location := cfg.Stock.Location()

	// Registry snapshots and event idempotency may live in Redis
	stores, err := cache.NewStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}()

	registry := stockapp.NewRegistry(stockStatusRepo, stores.Snapshots(policies), log)
	if err := registry.Start(ctx, stock.PeriodOf(time.Now().In(location))); err != nil {
		log.Fatal("Failed to start stock registry", zap.Error(err))
	}
	defer func() {
		if err := registry.Stop(context.Background()); err != nil {
			log.Error("Error stopping stock registry", zap.Error(err))
		}
	}()

	propagator := stockapp.NewPropagator(scope, policies.Default(), log)
	propagator.SetRegistry(registry)

	// Initialize event bus; the propagator is its only subscriber
	eventBus := event.NewInMemoryEventBus(log)
	propagation := telemetry.NewTracedHandler(propagator)
	var idempotent *event.IdempotentHandler
	if cfg.Event.IdempotencyEnabled {
		idempotent = event.NewIdempotentHandler(propagation, stores.Idempotency(), log)
		eventBus.Subscribe(idempotent)
	} else {
		eventBus.Subscribe(propagation)
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	materialService := materialapp.NewMaterialService(materialRepo)
	importService := materialapp.NewImportService(materialRepo, log)
	vendorService := purchasingapp.NewVendorService(vendorRepo)
	purchaseService := purchasingapp.NewPurchaseService(scope, purchaseRepo, vendorRepo, materialRepo, eventBus, log)
	taskService := productionapp.NewTaskService(scope, taskRepo, materialRepo, staffRepo, eventBus, location, log)
	staffService := productionapp.NewStaffService(staffRepo)
	productionStatusService := productionapp.NewProductionStatusService(productionStatusRepo, policies, log)
	stockStatusService := stockapp.NewStockStatusService(scope, stockStatusRepo, materialRepo, policies, log)
	stockStatusService.SetRegistry(registry)

	// Period rollover
	rollover := scheduler.NewRolloverScheduler(cfg.Scheduler, location, stockStatusService, registry, log)

	// Metrics
	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.NewMetrics(cfg.Metrics.Namespace)
		if err := metrics.RegisterDB(sqlDB, cfg.Database.DBName); err != nil {
			log.Warn("Failed to register database metrics", zap.Error(err))
		}
		if idempotent != nil {
			if err := metrics.RegisterIdempotency(idempotent.Metrics()); err != nil {
				log.Warn("Failed to register idempotency metrics", zap.Error(err))
			}
		}
		if err := metrics.RegisterStock(registry, 5*time.Second); err != nil {
			log.Warn("Failed to register stock metrics", zap.Error(err))
		}
		propagator.SetObserver(metrics)
		rollover.SetObserver(metrics)
	}

	if cfg.Scheduler.Enabled {
		if err := rollover.Start(ctx); err != nil {
			log.Fatal("Failed to start rollover scheduler", zap.Error(err))
		}
		defer func() {
			if err := rollover.Stop(context.Background()); err != nil {
				log.Error("Error stopping rollover scheduler", zap.Error(err))
			}
		}()
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engineCfg := router.EngineConfig{
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           corsCfg,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.App.Name,
			Enabled:     tracer.IsEnabled(),
		},
		Profiling: middleware.ProfilingConfig{
			Enabled:   profiler.IsEnabled(),
			SkipPaths: []string{"/health", cfg.Metrics.Path},
		},
	}
	if metrics != nil {
		engineCfg.Metrics = metrics
		engineCfg.MetricsPath = cfg.Metrics.Path
	}

	engine := router.NewEngine(engineCfg, log, router.Handlers{
		Material:         handler.NewMaterialHandler(materialService, importService),
		Vendor:           handler.NewVendorHandler(vendorService),
		Purchase:         handler.NewPurchaseHandler(purchaseService),
		Task:             handler.NewTaskHandler(taskService),
		Staff:            handler.NewStaffHandler(staffService),
		StockStatus:      handler.NewStockStatusHandler(stockStatusService, policies, export.NewXLSXExporter(), location),
		ProductionStatus: handler.NewProductionStatusHandler(productionStatusService),
		System:           handler.NewSystemHandler(cfg.App.Name, version, sqlDB, registry),
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrate applies the embedded SQL migrations. The migrator is not closed:
// closing it would also close the shared *sql.DB.
func migrate(sqlDB *sql.DB, log *zap.Logger) error {
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	return m.Up()
}
