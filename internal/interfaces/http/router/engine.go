package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spicemill/stockledger/internal/infrastructure/logger"
	"github.com/spicemill/stockledger/internal/interfaces/http/dto"
	"github.com/spicemill/stockledger/internal/interfaces/http/handler"
	"github.com/spicemill/stockledger/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// EngineConfig configures the middleware stack
type EngineConfig struct {
	TrustedProxies []string
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	Tracing        middleware.TracingConfig
	Profiling      middleware.ProfilingConfig
	// Metrics is mounted at MetricsPath when both are set
	Metrics     MetricsSource
	MetricsPath string
}

// MetricsSource observes requests and serves the scrape endpoint.
// *telemetry.Metrics implements it.
type MetricsSource interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Material         *handler.MaterialHandler
	Vendor           *handler.VendorHandler
	Purchase         *handler.PurchaseHandler
	Task             *handler.TaskHandler
	Staff            *handler.StaffHandler
	StockStatus      *handler.StockStatusHandler
	ProductionStatus *handler.ProductionStatusHandler
	System           *handler.SystemHandler
}

// NewEngine builds the gin engine with the middleware stack and every route
func NewEngine(cfg EngineConfig, log *zap.Logger, h Handlers) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// RequestID first so every later middleware sees it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	engine.Use(middleware.Tracing(cfg.Tracing), middleware.SpanAttributes())
	engine.Use(middleware.Profiling(cfg.Profiling))
	if cfg.Metrics != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Metrics))
		if cfg.MetricsPath != "" {
			engine.GET(cfg.MetricsPath, gin.WrapH(cfg.Metrics.Handler()))
		}
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", c.GetString(middleware.RequestIDKey)))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeBadRequest, "Method not allowed", c.GetString(middleware.RequestIDKey)))
	})

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(apiGroups(h)...)
	r.Setup()

	return engine
}

func apiGroups(h Handlers) []RouteRegistrar {
	var groups []RouteRegistrar

	if h.Material != nil {
		materials := NewDomainGroup("materials", "/materials")
		materials.GET("", h.Material.List)
		materials.POST("", h.Material.Create)
		materials.POST("/import", h.Material.Import)
		materials.GET("/:id", h.Material.GetByID)
		materials.PUT("/:id", h.Material.Update)
		materials.DELETE("/:id", h.Material.Delete)
		groups = append(groups, materials)
	}

	if h.Vendor != nil {
		vendors := NewDomainGroup("vendors", "/vendors")
		vendors.GET("", h.Vendor.List)
		vendors.POST("", h.Vendor.Create)
		vendors.GET("/:id", h.Vendor.GetByID)
		vendors.PUT("/:id", h.Vendor.Update)
		vendors.DELETE("/:id", h.Vendor.Delete)
		groups = append(groups, vendors)
	}

	if h.Purchase != nil {
		purchases := NewDomainGroup("purchases", "/purchases")
		purchases.GET("", h.Purchase.List)
		purchases.POST("", h.Purchase.Create)
		purchases.GET("/:id", h.Purchase.GetByID)
		purchases.PUT("/:id", h.Purchase.Update)
		purchases.POST("/:id/receive", h.Purchase.Receive)
		purchases.POST("/:id/cancel", h.Purchase.Cancel)
		purchases.DELETE("/:id", h.Purchase.Delete)
		groups = append(groups, purchases)
	}

	if h.Task != nil {
		tasks := NewDomainGroup("tasks", "/tasks")
		tasks.GET("", h.Task.List)
		tasks.POST("", h.Task.Create)
		tasks.GET("/:id", h.Task.GetByID)
		tasks.PUT("/:id", h.Task.Update)
		tasks.PATCH("/:id/status", h.Task.ChangeStatus)
		tasks.DELETE("/:id", h.Task.Delete)
		groups = append(groups, tasks)
	}

	if h.Staff != nil {
		staff := NewDomainGroup("staff", "/staff")
		staff.GET("", h.Staff.List)
		staff.POST("", h.Staff.Create)
		staff.GET("/:id", h.Staff.GetByID)
		staff.PUT("/:id", h.Staff.Update)
		staff.DELETE("/:id", h.Staff.Delete)
		groups = append(groups, staff)
	}

	if h.StockStatus != nil {
		sheet := NewDomainGroup("stock-status", "/stock-status")
		sheet.GET("", h.StockStatus.List)
		sheet.PUT("", h.StockStatus.SaveBatch)
		sheet.GET("/summary", h.StockStatus.Summary)
		sheet.GET("/stats", h.StockStatus.Stats)
		sheet.GET("/export", h.StockStatus.Export)
		sheet.POST("/recalculate", h.StockStatus.Recalculate)
		sheet.GET("/:id", h.StockStatus.GetByID)
		sheet.PATCH("/:id", h.StockStatus.Update)
		groups = append(groups, sheet)
	}

	if h.ProductionStatus != nil {
		prod := NewDomainGroup("production-status", "/production-status")
		prod.GET("", h.ProductionStatus.List)
		prod.PUT("", h.ProductionStatus.SaveBatch)
		prod.GET("/:id", h.ProductionStatus.GetByID)
		prod.PATCH("/:id", h.ProductionStatus.Adjust)
		groups = append(groups, prod)
	}

	if h.System != nil {
		system := NewDomainGroup("system", "/system")
		system.GET("/info", h.System.GetSystemInfo)
		system.GET("/ping", h.System.Ping)
		groups = append(groups, system)
	}

	return groups
}
